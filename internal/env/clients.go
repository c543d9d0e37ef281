package environment

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"smm-bot/internal/config"
	"smm-bot/internal/infra/sqlite3"
	"smm-bot/internal/infra/telegram"
)

type Clients struct {
	SQLiteDB    *sqlite3.DB
	TelegramBot *telegram.Client
}

func newClients(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Clients, error) {
	sqliteDB, err := provideSQLiteDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	telegramBot, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.RateRPS, logger.With("component", "telegram"))
	if err != nil {
		_ = sqliteDB.Close()
		return nil, errors.Wrap(err, "telegram client")
	}

	return &Clients{
		SQLiteDB:    sqliteDB,
		TelegramBot: telegramBot,
	}, nil
}

func provideSQLiteDB(ctx context.Context, cfg config.Config) (*sqlite3.DB, error) {
	maxLifetime, err := time.ParseDuration(cfg.DB.MaxLifetime)
	if err != nil {
		return nil, errors.Wrapf(err, "parse DB_MAX_LIFETIME %q", cfg.DB.MaxLifetime)
	}

	db, err := sqlite3.New(ctx,
		sqlite3.WithPath(cfg.DB.Path),
		sqlite3.WithMaxOpenConns(cfg.DB.MaxOpenConns),
		sqlite3.WithMaxIdleConns(cfg.DB.MaxIdleConns),
		sqlite3.WithConnMaxLifetime(maxLifetime),
		sqlite3.WithBusyTimeout(cfg.DB.BusyTimeout),
	)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	return db, nil
}
