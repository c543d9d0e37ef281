package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"smm-bot/internal/stories/users"
)

const usersTable = "users"

var userRowFields = fields(userRow{})

type userRow struct {
	ID          int64           `db:"id"`
	DisplayName string          `db:"display_name"`
	Balance     decimal.Decimal `db:"balance"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (u userRow) ToModel() *users.User {
	return &users.User{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Balance:     u.Balance,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// CreateUser inserts the user unless one with the same id exists. It reports
// whether a row was inserted.
func (s *storageImpl) CreateUser(ctx context.Context, user users.User) (bool, error) {
	now := s.now()
	q, args, err := s.stmpBuilder().
		Insert(usersTable).
		Options("OR IGNORE").
		SetMap(map[string]interface{}{
			"id":           user.ID,
			"display_name": user.DisplayName,
			"balance":      user.Balance.String(),
			"created_at":   now,
			"updated_at":   now,
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.conn(ctx).ExecContext(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("db.ExecContext: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("result.RowsAffected: %w", err)
	}

	return affected > 0, nil
}

// EnsureUser inserts a bare user row for userID if none exists.
func (s *storageImpl) EnsureUser(ctx context.Context, userID int64) error {
	_, err := s.CreateUser(ctx, users.User{ID: userID})
	return err
}

func (s *storageImpl) GetUser(ctx context.Context, criteria users.GetCriteria) (*users.User, error) {
	query := s.stmpBuilder().
		Select(userRowFields).
		From(usersTable).
		Limit(1)

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var row userRow
	err = s.conn(ctx).GetContext(ctx, &row, q, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return row.ToModel(), nil
}

func (s *storageImpl) ListUsers(ctx context.Context, criteria users.ListCriteria) ([]*users.User, error) {
	query := s.stmpBuilder().
		Select(userRowFields).
		From(usersTable).
		OrderBy("created_at ASC", "id ASC")

	if criteria.Limit > 0 {
		query = query.Limit(uint64(criteria.Limit))
	}
	if criteria.Offset > 0 {
		query = query.Offset(uint64(criteria.Offset))
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []userRow
	if err := s.conn(ctx).SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	result := make([]*users.User, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.ToModel())
	}

	return result, nil
}

// GetBalance returns the stored balance, or zero for an unknown user.
func (s *storageImpl) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	q, args, err := s.stmpBuilder().
		Select("balance").
		From(usersTable).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("build sql query: %w", err)
	}

	var balance decimal.Decimal
	err = s.conn(ctx).GetContext(ctx, &balance, q, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("db.GetContext: %w", err)
	}

	return balance, nil
}

// SetBalance overwrites the user's balance, creating the user row if needed.
func (s *storageImpl) SetBalance(ctx context.Context, userID int64, balance decimal.Decimal) error {
	now := s.now()
	q, args, err := s.stmpBuilder().
		Insert(usersTable).
		Columns("id", "balance", "created_at", "updated_at").
		Values(userID, balance.String(), now, now).
		Suffix("ON CONFLICT(id) DO UPDATE SET balance = excluded.balance, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build sql query: %w", err)
	}

	if _, err := s.conn(ctx).ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}

	return nil
}
