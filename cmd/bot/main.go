package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	environment "smm-bot/internal/env"
	"smm-bot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := environment.Setup(ctx)
	if err != nil {
		log.Fatalf("Failed to setup environment: %v", err)
	}

	logger := env.Logger
	logger.Info("Starting smm-bot application")

	go func() {
		logger.Info("Starting observability server", slog.String("addr", env.Servers.HTTP.Observability.Addr))
		if err := env.Servers.HTTP.Observability.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Observability server error", slog.Any("error", err))
		}
	}()

	if err := env.Services.Bot.SetupCommands(ctx, env.Services.Localizer, env.Config.Shop.Language); err != nil {
		logger.Warn("Failed to setup bot commands", slog.Any("error", err))
	}

	if err := env.Services.Workers.Start(); err != nil {
		logger.Error("Failed to start workers", slog.Any("error", err))
		shutdown(env)
		return
	}

	// Events already queued are drained on shutdown, so handlers must not
	// inherit the signal context.
	env.Services.Pool.Start(context.WithoutCancel(ctx))

	runUpdates(ctx, env)

	logger.Info("Shutting down application...")
	shutdown(env)
	logger.Info("Application stopped")
}

// runUpdates feeds updates into the dispatch pool until ctx is cancelled.
func runUpdates(ctx context.Context, env *environment.Env) {
	logger := env.Logger
	updates := env.Clients.TelegramBot.Updates()
	logger.Info("Bot started successfully. Press Ctrl+C to stop.")

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			ev, ok := telegram.EventFromUpdate(update)
			if !ok {
				continue
			}
			if err := env.Services.Pool.Submit(ctx, ev); err != nil {
				logger.Warn("Dropped update during shutdown", slog.Int("update_id", update.UpdateID), slog.Any("error", err))
			}
		}
	}
}

func shutdown(env *environment.Env) {
	logger := env.Logger

	shutdownCtx, cancel := context.WithTimeout(context.Background(), env.Config.ShutdownDuration)
	defer cancel()

	env.Clients.TelegramBot.Stop()
	env.Services.Pool.Stop()
	env.Services.Workers.Stop()

	if err := env.Servers.HTTP.Observability.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Observability server shutdown error", slog.Any("error", err))
	}

	for _, closer := range env.Closers {
		closer()
	}
}
