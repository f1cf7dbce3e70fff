package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/mkorobov/daily-topic-bot/internal/di"
	"github.com/mkorobov/daily-topic-bot/internal/scheduler"
	"github.com/mkorobov/daily-topic-bot/internal/shared/config"
	httpServer "github.com/mkorobov/daily-topic-bot/internal/transport/http"
	"github.com/samber/do/v2"
	slogmulti "github.com/samber/slog-multi"
)

func main() {
	// Setup structured logging with multiple handlers using slog-multi
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	// Use Fanout to send logs to both handlers
	multiHandler := slogmulti.Fanout(textHandler, jsonHandler)
	logger := slog.New(multiHandler)
	slog.SetDefault(logger)

	// Setup dependency injection
	injector, err := di.Setup()
	if err != nil {
		slog.Error("Failed to setup dependency injection", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := di.Shutdown(injector); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	// Get services from DI container
	cfg := do.MustInvoke[*config.Config](injector)
	b := do.MustInvoke[*bot.Bot](injector)
	sched := do.MustInvoke[*scheduler.Scheduler](injector)
	jobs := do.MustInvoke[*scheduler.JobSet](injector)
	server := do.MustInvoke[*httpServer.Server](injector)

	// Register scheduled jobs from stored configuration and start firing
	if err := jobs.Reload(); err != nil {
		slog.Error("Failed to load scheduled jobs", "error", err)
		os.Exit(1)
	}
	sched.Start()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start receiving updates
	go b.Start(ctx)

	// Start HTTP server
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Failed to start HTTP server", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Application started", "port", cfg.HTTPPort, "timezone", cfg.Timezone)
	slog.Info("Press Ctrl+C to stop")

	<-ctx.Done()
	slog.Info("Shutting down...")
}
