package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"walletwhiz/internal/config"
	"walletwhiz/internal/database"
	"walletwhiz/internal/events"
	"walletwhiz/internal/server"
	"walletwhiz/internal/sheets"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := database.Initialize(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SeedCurrencies(); err != nil {
		return err
	}

	var deps server.Dependencies
	if cfg.AMQP.Enabled() {
		client, err := events.Dial(cfg.AMQP, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		deps.Publisher = client
		logger.Info("publishing transaction events", slog.String("exchange", cfg.AMQP.Exchange))
	}
	if cfg.Sheets.Enabled() {
		sink, err := sheets.New(ctx, cfg.Sheets, logger)
		if err != nil {
			return err
		}
		deps.BackupSink = sink
		logger.Info("cloud backup enabled", slog.String("spreadsheet_id", cfg.Sheets.SpreadsheetID))
	}

	srv := server.New(cfg, db, deps, logger)

	if cfg.Database.SeedDemoData {
		seeded, err := srv.SeedDemo(cfg.Demo)
		if err != nil {
			logger.Error("demo seeding failed", slog.Any("error", err))
		} else if seeded > 0 {
			logger.Info("demo data seeded", slog.String("username", cfg.Demo.Username), slog.Int("transactions", seeded))
		}
	}

	if !cfg.AMQP.Enabled() {
		// Without a worker consuming events, insights are refreshed here.
		go server.RunEvery(ctx, cfg.Worker.InsightsInterval, func(ctx context.Context) {
			server.RefreshInsights(ctx, srv.Services(), logger)
		})
	}

	return srv.Run(ctx)
}
