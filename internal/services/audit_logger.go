package services

import (
	"context"
	"log/slog"
	"time"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"

	"github.com/google/uuid"
)

// AuditLogger writes structured events for background work. Rows in the
// audit_logs table are written by AuditService instead.
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) AuditLoggerInterface {
	return &AuditLogger{
		logger: logger,
	}
}

func (al *AuditLogger) LogRecurringRunStarted(ctx context.Context, due int) {
	al.logger.InfoContext(ctx, "recurring run started",
		slog.String("event_type", "recurring_run_started"),
		slog.Int("due", due),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogRecurringPaymentBooked(ctx context.Context, paymentID, transactionID uuid.UUID, nextDue time.Time) {
	al.logger.InfoContext(ctx, "recurring payment booked",
		slog.String("event_type", "recurring_payment_booked"),
		slog.String("payment_id", paymentID.String()),
		slog.String("transaction_id", transactionID.String()),
		slog.String("next_due", nextDue.Format("2006-01-02")),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogRecurringPaymentFailed(ctx context.Context, paymentID uuid.UUID, errorMsg string) {
	al.logger.WarnContext(ctx, "recurring payment failed",
		slog.String("event_type", "recurring_payment_failed"),
		slog.String("payment_id", paymentID.String()),
		slog.String("error", errorMsg),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogRecurringRunCompleted(ctx context.Context, result *dto.RecurringRunResult, durationMs int64) {
	al.logger.InfoContext(ctx, "recurring run completed",
		slog.String("event_type", "recurring_run_completed"),
		slog.Int("checked", result.Checked),
		slog.Int("booked", result.Booked),
		slog.Int("failed", result.Failed),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogDuplicateRejected(ctx context.Context, userID uuid.UUID, candidates int) {
	al.logger.InfoContext(ctx, "duplicate transaction rejected",
		slog.String("event_type", "duplicate_rejected"),
		slog.String("user_id", userID.String()),
		slog.Int("candidates", candidates),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogImportCompleted(ctx context.Context, userID uuid.UUID, result *models.ImportResult) {
	al.logger.InfoContext(ctx, "csv import completed",
		slog.String("event_type", "import_completed"),
		slog.String("user_id", userID.String()),
		slog.Int("imported", result.Imported),
		slog.Int("duplicates", result.Duplicates),
		slog.Int("errors", len(result.Errors)),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogInsightsGenerated(ctx context.Context, userID uuid.UUID, count int) {
	al.logger.DebugContext(ctx, "insights generated",
		slog.String("event_type", "insights_generated"),
		slog.String("user_id", userID.String()),
		slog.Int("count", count),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogCircuitBreakerStateChange(ctx context.Context, service string, oldState, newState string) {
	al.logger.WarnContext(ctx, "circuit breaker state change",
		slog.String("event_type", "circuit_breaker_state_change"),
		slog.String("service", service),
		slog.String("old_state", oldState),
		slog.String("new_state", newState),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

type correlationKey struct{}

// WithCorrelationID tags ctx so background log lines can be tied together.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func getCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if correlationID, ok := ctx.Value(correlationKey{}).(string); ok {
		return correlationID
	}
	return ""
}
