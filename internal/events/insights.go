package events

import (
	"context"
	"fmt"
	"log/slog"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/services"
)

// RefreshInsights regenerates the owner's insights for every consumed event.
func RefreshInsights(insightService services.InsightServiceInterface, metrics services.MetricsRecorderInterface, logger *slog.Logger) EventHandler {
	return func(ctx context.Context, event *dto.TransactionCreatedEvent) error {
		insights, err := insightService.GenerateInsights(event.UserID)
		if err != nil {
			metrics.IncrementCounter(services.MetricEventsConsumed, map[string]string{"status": "failed"})
			return fmt.Errorf("generate insights: %w", err)
		}

		metrics.IncrementCounter(services.MetricEventsConsumed, map[string]string{"status": "processed"})
		logger.DebugContext(ctx, "insights refreshed from event",
			slog.String("user_id", event.UserID.String()),
			slog.Int("insights", len(insights)))
		return nil
	}
}
