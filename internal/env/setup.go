package environment

import (
	"context"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"

	"smm-bot/internal/config"
)

type closer func()

type Env struct {
	Config   *config.Config
	Logger   *slog.Logger
	Servers  *Servers
	Clients  *Clients
	Services *Services

	Closers []closer
}

func Setup(ctx context.Context) (*Env, error) {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	var cfg config.Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, errors.Wrap(err, "env processing")
	}

	logger := initLogger(cfg)

	shop, err := parseShopSettings(cfg.Shop)
	if err != nil {
		return nil, errors.Wrap(err, "shop settings")
	}

	clients, err := newClients(ctx, cfg, logger)
	if err != nil {
		return nil, errors.Wrap(err, "newClients")
	}

	services, err := newServices(ctx, clients, &cfg, shop, logger)
	if err != nil {
		_ = clients.SQLiteDB.Close()
		return nil, errors.Wrap(err, "newServices")
	}

	return &Env{
		Config:   &cfg,
		Logger:   logger,
		Clients:  clients,
		Services: services,
		Servers:  newServers(ctx, cfg, logger, services),
		Closers: []closer{
			func() {
				if err := clients.SQLiteDB.Close(); err != nil {
					logger.Error("Failed to close database", "error", err)
				}
			},
		},
	}, nil
}
