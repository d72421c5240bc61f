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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// The worker consumes transaction.created events to keep insights fresh and
// runs the periodic insight refresh.
func main() {
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
	logger.Info("starting walletwhiz worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := database.Initialize(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := server.NewServices(cfg, server.NewRepositories(db), server.Dependencies{}, logger)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.AMQP.Enabled() {
		client, err := events.Dial(cfg.AMQP, logger)
		if err != nil {
			return err
		}
		defer client.Close()

		g.Go(func() error {
			return client.Consume(ctx, events.RefreshInsights(svc.Insight, svc.Metrics, logger))
		})
	} else {
		logger.Info("AMQP disabled, only running periodic insight refresh")
	}

	g.Go(func() error {
		server.RefreshInsights(ctx, svc, logger)
		server.RunEvery(ctx, cfg.Worker.InsightsInterval, func(ctx context.Context) {
			server.RefreshInsights(ctx, svc, logger)
		})
		return nil
	})

	return g.Wait()
}
