package storage

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"reflect"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"smm-bot/internal/infra/sqlite3"
)

//go:embed schema/*.sql
var schemaFS embed.FS

type storageImpl struct {
	db  *sqlx.DB
	tx  sqlite3.TxManager
	now func() time.Time
}

func New(db *sqlx.DB) *storageImpl {
	return &storageImpl{
		db:  db,
		tx:  sqlite3.WithTx(db, nil),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Migrate applies the embedded schema files in name order. Every statement is
// idempotent, so Migrate is safe to run on each start.
func (s *storageImpl) Migrate(ctx context.Context) error {
	names, err := fs.Glob(schemaFS, "schema/*.sql")
	if err != nil {
		return fmt.Errorf("glob schema: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := schemaFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}

	return nil
}

// Atomic runs fn in one transaction. Storage calls made with the ctx passed to
// fn join it; a nested Atomic joins the outer transaction.
func (s *storageImpl) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.tx(ctx, fn)
}

func (s *storageImpl) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *storageImpl) conn(ctx context.Context) sqlite3.Querier {
	return sqlite3.Conn(ctx, s.db)
}

func (s *storageImpl) stmpBuilder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// fields returns the comma separated db column list of a row struct.
func fields(data any) string {
	var s string
	r := reflect.TypeOf(data)
	for i := 0; i < r.NumField(); i++ {
		tag := r.Field(i).Tag.Get("db")
		if tag != "" {
			s += tag + ","
		}
	}
	return s[:len(s)-1]
}
