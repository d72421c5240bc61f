package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"walletwhiz/internal/repositories"

	"github.com/google/uuid"
)

const exportDateLayout = "2006-01-02"

var (
	transactionsCSVHeader = []string{"Date", "Type", "Amount", "Category", "Description", "Notes", "Tags", "Payment Method", "Location"}
	lendingCSVHeader      = []string{"Amount", "Person", "Reason", "Due Date", "Paid"}
)

type exportService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	lendingRepo     repositories.LendingRepositoryInterface
	reportService   ReportServiceInterface
	logger          *slog.Logger
}

func NewExportService(
	transactionRepo repositories.TransactionRepositoryInterface,
	lendingRepo repositories.LendingRepositoryInterface,
	reportService ReportServiceInterface,
	logger *slog.Logger,
) ExportServiceInterface {
	return &exportService{
		transactionRepo: transactionRepo,
		lendingRepo:     lendingRepo,
		reportService:   reportService,
		logger:          logger,
	}
}

// WriteTransactionsCSV writes every transaction in [start, end) oldest
// first. The output can be fed back to the bank import.
func (s *exportService) WriteTransactionsCSV(w io.Writer, userID uuid.UUID, start, end time.Time) error {
	if !end.After(start) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidPeriod)
	}

	transactions, err := s.transactionRepo.GetByDateRange(userID, "", start, end)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(transactionsCSVHeader); err != nil {
		return err
	}
	for _, t := range transactions {
		category := ""
		if t.Category != nil {
			category = t.Category.Name
		}
		record := []string{
			t.TransactionDate.UTC().Format(exportDateLayout),
			t.Type,
			t.Amount.StringFixed(2),
			category,
			t.Description,
			t.Notes,
			strings.Join(t.Tags, ","),
			t.PaymentMethod,
			t.Location,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	s.logger.Debug("transactions exported",
		slog.String("user_id", userID.String()),
		slog.Int("rows", len(transactions)))
	return nil
}

func (s *exportService) WriteMonthlySummaryCSV(w io.Writer, userID uuid.UUID, year int, month time.Month) error {
	summary, err := s.reportService.GetMonthlySummary(userID, year, month)
	if err != nil {
		return err
	}

	records := [][]string{
		{"Monthly Financial Summary"},
		{"Month/Year", fmt.Sprintf("%d/%d", summary.Month, summary.Year)},
		{},
		{"Summary"},
		{"Income", summary.Income.StringFixed(2)},
		{"Expenses", summary.Expense.StringFixed(2)},
		{"Balance", summary.Balance.StringFixed(2)},
		{},
		{"Category Breakdown"},
		{"Category", "Amount"},
	}
	for _, c := range summary.Categories {
		records = append(records, []string{c.CategoryName, c.Amount.StringFixed(2)})
	}

	writer := csv.NewWriter(w)
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func (s *exportService) WriteLendingCSV(w io.Writer, userID uuid.UUID) error {
	records, err := s.lendingRepo.ListByUser(userID)
	if err != nil {
		return fmt.Errorf("failed to load lending records: %w", err)
	}

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, lendingCSVHeader)
	for _, r := range records {
		due := ""
		if r.DueDate != nil {
			due = r.DueDate.UTC().Format(exportDateLayout)
		}
		rows = append(rows, []string{
			r.Amount.StringFixed(2),
			r.Person,
			r.Reason,
			due,
			strconv.FormatBool(r.Paid),
		})
	}

	writer := csv.NewWriter(w)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
