package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"

	"github.com/google/uuid"
)

const (
	defaultRecurringBatchSize = 200
	// maxCatchUpBookings bounds how many missed occurrences one payment can
	// book in a single run, e.g. a daily payment after a long outage.
	maxCatchUpBookings = 366
	recurringNote      = "Recurring payment"
)

var ErrRecurringRunInProgress = errors.New("recurring run already in progress")

type RecurringProcessor struct {
	recurringRepo      repositories.RecurringPaymentRepositoryInterface
	transactionService TransactionServiceInterface
	auditLogger        AuditLoggerInterface
	metrics            MetricsRecorderInterface
	interval           time.Duration
	batchSize          int
	maxWorkers         int
	workerSemaphore    chan struct{}
	runMu              sync.Mutex
	logger             *slog.Logger
	now                func() time.Time
}

func NewRecurringProcessor(
	recurringRepo repositories.RecurringPaymentRepositoryInterface,
	transactionService TransactionServiceInterface,
	auditLogger AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	interval time.Duration,
	maxWorkers int,
	logger *slog.Logger,
) RecurringProcessorInterface {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &RecurringProcessor{
		recurringRepo:      recurringRepo,
		transactionService: transactionService,
		auditLogger:        auditLogger,
		metrics:            metrics,
		interval:           interval,
		batchSize:          defaultRecurringBatchSize,
		maxWorkers:         maxWorkers,
		workerSemaphore:    make(chan struct{}, maxWorkers),
		logger:             logger,
		now:                time.Now,
	}
}

// Start runs one pass immediately and then one per interval until ctx is
// cancelled. In-flight bookings finish before it returns.
func (p *RecurringProcessor) Start(ctx context.Context) {
	p.logger.Info("starting recurring payment processor",
		slog.Int("max_workers", p.maxWorkers),
		slog.Duration("interval", p.interval),
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.runScheduled(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("recurring payment processor stopped")
			return
		case <-ticker.C:
			p.runScheduled(ctx)
		}
	}
}

func (p *RecurringProcessor) runScheduled(ctx context.Context) {
	if _, err := p.RunDue(ctx, nil); err != nil && !errors.Is(err, ErrRecurringRunInProgress) {
		p.logger.Error("recurring run failed", slog.Any("error", err))
	}
}

// RunDue books every payment due today or earlier, for one user or for all
// users when userID is nil. Concurrent runs are rejected so a payment is
// never booked twice for the same occurrence.
func (p *RecurringProcessor) RunDue(ctx context.Context, userID *uuid.UUID) (*dto.RecurringRunResult, error) {
	if !p.runMu.TryLock() {
		return nil, ErrRecurringRunInProgress
	}
	defer p.runMu.Unlock()

	startTime := time.Now()
	payments, err := p.recurringRepo.ListDue(userID, p.now().UTC(), p.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list due payments: %w", err)
	}

	p.metrics.RecordGauge(MetricRecurringDue, float64(len(payments)), nil)
	p.auditLogger.LogRecurringRunStarted(ctx, len(payments))

	result := &dto.RecurringRunResult{Checked: len(payments)}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i := range payments {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(payment *models.RecurringPayment) {
			defer wg.Done()

			p.workerSemaphore <- struct{}{}
			defer func() { <-p.workerSemaphore }()

			err := p.ProcessPayment(ctx, payment)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				return
			}
			result.Booked++
		}(&payments[i])
	}
	wg.Wait()

	duration := time.Since(startTime)
	p.metrics.RecordProcessingTime(MetricRecurringRun, duration)
	p.auditLogger.LogRecurringRunCompleted(ctx, result, duration.Milliseconds())
	return result, nil
}

// ProcessPayment books every missed occurrence of the payment up to today,
// saving the advanced due date after each booking. Bookings are keyed by
// payment and due date, so an occurrence whose advance failed to save is
// found again instead of booked twice on the next run.
func (p *RecurringProcessor) ProcessPayment(ctx context.Context, payment *models.RecurringPayment) error {
	now := p.now().UTC()
	tags := map[string]string{"frequency": payment.Frequency}

	for n := 0; n < maxCatchUpBookings && payment.IsDue(now); n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		due := payment.NextDueDate
		transaction, err := p.transactionService.AddTransaction(ctx, payment.UserID, &dto.CreateTransactionRequest{
			Type:            payment.Type,
			Amount:          payment.Amount.StringFixed(2),
			CategoryID:      payment.CategoryID,
			Description:     payment.Name,
			TransactionDate: &due,
			Notes:           recurringNote,
			Force:           true,

			RecurringPaymentID: &payment.ID,
		})
		if err != nil {
			return p.fail(ctx, payment, tags, fmt.Errorf("failed to book payment: %w", err))
		}

		payment.Advance(now)
		if err := p.recurringRepo.Update(payment); err != nil {
			return p.fail(ctx, payment, tags, fmt.Errorf("failed to advance payment: %w", err))
		}

		p.metrics.IncrementCounter(MetricRecurringBooked, tags)
		p.auditLogger.LogRecurringPaymentBooked(ctx, payment.ID, transaction.ID, payment.NextDueDate)
	}
	return nil
}

func (p *RecurringProcessor) fail(ctx context.Context, payment *models.RecurringPayment, tags map[string]string, err error) error {
	p.metrics.IncrementCounter(MetricRecurringFailed, tags)
	p.auditLogger.LogRecurringPaymentFailed(ctx, payment.ID, err.Error())
	p.logger.Error("recurring payment failed",
		slog.String("payment_id", payment.ID.String()),
		slog.Any("error", err),
	)
	return err
}
