package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"

	"github.com/google/uuid"
)

const (
	colDate        = "date"
	colType        = "type"
	colAmount      = "amount"
	colDescription = "description"
	colCategory    = "category"
	colNotes       = "notes"
	colTags        = "tags"
)

var ErrInvalidImportFile = errors.New("invalid import file")

var importDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

type importService struct {
	transactionRepo    repositories.TransactionRepositoryInterface
	transactionService TransactionServiceInterface
	categoryService    CategoryServiceInterface
	categorizer        CategorizerInterface
	insightService     InsightServiceInterface
	auditLogger        AuditLoggerInterface
	logger             *slog.Logger
}

func NewImportService(
	transactionRepo repositories.TransactionRepositoryInterface,
	transactionService TransactionServiceInterface,
	categoryService CategoryServiceInterface,
	categorizer CategorizerInterface,
	insightService InsightServiceInterface,
	auditLogger AuditLoggerInterface,
	logger *slog.Logger,
) ImportServiceInterface {
	return &importService{
		transactionRepo:    transactionRepo,
		transactionService: transactionService,
		categoryService:    categoryService,
		categorizer:        categorizer,
		insightService:     insightService,
		auditLogger:        auditLogger,
		logger:             logger,
	}
}

type importRow struct {
	line        int
	date        time.Time
	kind        string
	amount      string
	description string
	category    string
	notes       string
	tags        []string
}

// ImportBankCSV reads a bank export with a header row. Bad rows are
// reported by line and skipped; the rest are stored one by one so later
// rows see earlier ones in the duplicate check.
func (s *importService) ImportBankCSV(ctx context.Context, userID uuid.UUID, r io.Reader, opts dto.ImportOptions) (*models.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: file is empty", ErrInvalidImportFile)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidImportFile, err)
	}
	columns := indexColumns(header)
	for _, required := range []string{colDate, colAmount, colDescription} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: missing %q column", ErrInvalidImportFile, required)
		}
	}

	rules := sortedRules(opts.MappingRules)
	result := &models.ImportResult{}

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Errors = append(result.Errors, models.ImportError{Line: parseErr.Line, Message: parseErr.Err.Error()})
				continue
			}
			return result, fmt.Errorf("failed to read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)

		row, err := parseImportRow(record, columns, line)
		if err != nil {
			result.Errors = append(result.Errors, models.ImportError{Line: line, Message: err.Error()})
			continue
		}

		duplicate, err := s.importRow(userID, row, rules, opts.Force)
		if err != nil {
			result.Errors = append(result.Errors, models.ImportError{Line: line, Message: err.Error()})
			continue
		}
		if duplicate {
			result.Duplicates++
			continue
		}
		result.Imported++
	}

	if result.Imported > 0 && s.insightService != nil {
		if _, err := s.insightService.GenerateInsights(userID); err != nil {
			s.logger.Warn("failed to regenerate insights after import", slog.Any("error", err))
		}
	}
	if s.auditLogger != nil {
		s.auditLogger.LogImportCompleted(ctx, userID, result)
	}
	return result, nil
}

// importRow stores one row and reports whether it was skipped as a
// duplicate.
func (s *importService) importRow(userID uuid.UUID, row *importRow, rules []mappingRule, force bool) (bool, error) {
	amount, err := parseAmount(row.amount)
	if err != nil {
		return false, err
	}

	if !force {
		candidates, err := s.transactionService.CheckDuplicates(userID, amount, row.description, row.date)
		if err != nil {
			return false, err
		}
		if len(candidates) > 0 {
			return true, nil
		}
	}

	category, err := s.resolveCategory(userID, row, rules)
	if err != nil {
		return false, err
	}

	transaction := &models.Transaction{
		UserID:          userID,
		Type:            row.kind,
		Amount:          amount,
		CategoryID:      &category.ID,
		Description:     row.description,
		TransactionDate: row.date,
		Notes:           row.notes,
		Tags:            mergeTags(row.tags, row.description, row.notes),
	}
	if err := transaction.Validate(); err != nil {
		return false, err
	}
	if err := s.transactionRepo.Create(transaction); err != nil {
		return false, fmt.Errorf("failed to store row: %w", err)
	}
	return false, nil
}

// resolveCategory tries the explicit column, then the mapping rules, then
// the keyword categorizer, and finally the catch-all category.
func (s *importService) resolveCategory(userID uuid.UUID, row *importRow, rules []mappingRule) (*models.Category, error) {
	if row.category != "" {
		return s.categoryService.GetOrCreateCategory(userID, row.category, row.kind)
	}

	description := strings.ToLower(row.description)
	for _, rule := range rules {
		if strings.Contains(description, rule.pattern) {
			return s.categoryService.GetOrCreateCategory(userID, rule.category, row.kind)
		}
	}

	result, err := s.categorizer.Categorize(userID, row.description, row.kind)
	if err != nil {
		s.logger.Warn("auto-categorization failed during import", slog.Any("error", err))
	} else if result.Category != nil {
		return result.Category, nil
	}

	fallback := models.CategoryOther
	if row.kind == models.TransactionTypeIncome {
		fallback = models.CategoryOtherIncome
	}
	return s.categoryService.GetOrCreateCategory(userID, fallback, row.kind)
}

func parseImportRow(record []string, columns map[string]int, line int) (*importRow, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, err := parseImportDate(field(colDate))
	if err != nil {
		return nil, err
	}

	kind := strings.ToLower(field(colType))
	if kind == "" {
		kind = models.TransactionTypeExpense
	}
	if !models.IsValidTransactionType(kind) {
		return nil, fmt.Errorf("unknown type %q", field(colType))
	}

	amount := field(colAmount)
	// Bank exports often sign debits; the sign is implied by the type.
	amount = strings.TrimPrefix(amount, "-")
	if amount == "" {
		return nil, errors.New("amount is required")
	}

	description := field(colDescription)
	if description == "" {
		return nil, errors.New("description is required")
	}

	var tags []string
	for _, tag := range strings.Split(field(colTags), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return &importRow{
		line:        line,
		date:        date,
		kind:        kind,
		amount:      amount,
		description: description,
		category:    field(colCategory),
		notes:       field(colNotes),
		tags:        tags,
	}, nil
}

func parseImportDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("date is required")
	}
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		if _, exists := columns[name]; !exists {
			columns[name] = i
		}
	}
	return columns
}

type mappingRule struct {
	pattern  string
	category string
}

// sortedRules orders mapping rules longest pattern first so the most
// specific one wins.
func sortedRules(rules map[string]string) []mappingRule {
	sorted := make([]mappingRule, 0, len(rules))
	for pattern, category := range rules {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		category = strings.TrimSpace(category)
		if pattern == "" || category == "" {
			continue
		}
		sorted = append(sorted, mappingRule{pattern: pattern, category: category})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i].pattern) != len(sorted[j].pattern) {
			return len(sorted[i].pattern) > len(sorted[j].pattern)
		}
		return sorted[i].pattern < sorted[j].pattern
	})
	return sorted
}
