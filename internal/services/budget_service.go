package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	suggestLimitMonths      = 3
	budgetSuggestionMonths  = 6
	smallTransactionAverage = 50
	highSpendingThreshold   = 500
)

var (
	suggestLimitBuffer     = decimal.RequireFromString("1.1")
	budgetSuggestionBuffer = decimal.RequireFromString("1.15")
)

const (
	msgWeeklyBudget  = "Consider setting a weekly budget (many small transactions)"
	msgStrictLimit   = "High spending category - set a strict monthly limit"
	msgSuggestLimitF = "Suggested monthly budget: %s"
)

var (
	ErrBudgetNotFound    = errors.New("budget not found")
	ErrInvalidBudget     = errors.New("invalid budget")
	ErrNoSpendingHistory = errors.New("not enough spending data for this category")
)

type budgetService struct {
	budgetRepo      repositories.BudgetRepositoryInterface
	transactionRepo repositories.TransactionRepositoryInterface
	categoryService CategoryServiceInterface
	logger          *slog.Logger
	now             func() time.Time
}

func NewBudgetService(
	budgetRepo repositories.BudgetRepositoryInterface,
	transactionRepo repositories.TransactionRepositoryInterface,
	categoryService CategoryServiceInterface,
	logger *slog.Logger,
) BudgetServiceInterface {
	return &budgetService{
		budgetRepo:      budgetRepo,
		transactionRepo: transactionRepo,
		categoryService: categoryService,
		logger:          logger,
		now:             time.Now,
	}
}

// SetBudget creates the budget or overwrites the one already set for the
// category.
func (s *budgetService) SetBudget(userID uuid.UUID, req *dto.BudgetRequest) (*models.Budget, error) {
	category, err := s.categoryService.GetCategory(userID, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if category.Type != models.TransactionTypeExpense {
		return nil, fmt.Errorf("%w: budgets apply to expense categories only", ErrInvalidBudget)
	}

	limit, err := decimal.NewFromString(strings.TrimSpace(req.MonthlyLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: limit %q is not a number", ErrInvalidBudget, req.MonthlyLimit)
	}

	period := strings.ToLower(strings.TrimSpace(req.Period))
	if period == "" {
		period = models.BudgetPeriodMonthly
	}

	budget := &models.Budget{
		UserID:       userID,
		CategoryID:   category.ID,
		MonthlyLimit: limit.Round(2),
		Period:       period,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	}
	if err := budget.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBudget, err)
	}
	if budget.StartDate != nil && budget.EndDate != nil && budget.EndDate.Before(*budget.StartDate) {
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidBudget)
	}

	if err := s.budgetRepo.Upsert(budget); err != nil {
		return nil, fmt.Errorf("failed to set budget: %w", err)
	}
	budget.Category = category

	s.logger.Info("budget set",
		slog.String("user_id", userID.String()),
		slog.String("category", category.Name),
		slog.String("limit", budget.MonthlyLimit.StringFixed(2)))
	return budget, nil
}

func (s *budgetService) ListBudgets(userID uuid.UUID) ([]models.Budget, error) {
	budgets, err := s.budgetRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, nil
}

// GetBudgetSummary measures every expense budget against the month's
// spending in its category.
func (s *budgetService) GetBudgetSummary(userID uuid.UUID, year int, month time.Month) ([]models.BudgetStatus, error) {
	budgets, err := s.budgetRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	start, end := monthRange(year, month)
	statuses := make([]models.BudgetStatus, 0, len(budgets))
	for _, budget := range budgets {
		if budget.Category == nil || budget.Category.Type != models.TransactionTypeExpense {
			continue
		}
		spent, err := s.transactionRepo.SumByCategory(userID, budget.CategoryID, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to get budget spending: %w", err)
		}
		statuses = append(statuses, models.NewBudgetStatus(budget.ID, budget.CategoryID, budget.Category.Name, budget.MonthlyLimit, spent))
	}
	return statuses, nil
}

// SuggestLimit averages the category's monthly expense totals over the last
// three months and adds a 10% buffer.
func (s *budgetService) SuggestLimit(userID, categoryID uuid.UUID) (decimal.Decimal, error) {
	category, err := s.categoryService.GetCategory(userID, categoryID)
	if err != nil {
		return decimal.Zero, err
	}

	now := s.now().UTC()
	transactions, err := s.transactionRepo.GetByDateRange(userID, models.TransactionTypeExpense, now.AddDate(0, -suggestLimitMonths, 0), now.Add(time.Second))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load spending history: %w", err)
	}

	monthly := make(map[string]decimal.Decimal)
	for _, t := range transactions {
		if t.CategoryID == nil || *t.CategoryID != category.ID {
			continue
		}
		key := t.TransactionDate.UTC().Format("2006-01")
		monthly[key] = monthly[key].Add(t.Amount)
	}
	if len(monthly) == 0 {
		return decimal.Zero, ErrNoSpendingHistory
	}

	total := decimal.Zero
	for _, sum := range monthly {
		total = total.Add(sum)
	}
	average := total.Div(decimal.NewFromInt(int64(len(monthly))))
	return average.Mul(suggestLimitBuffer).Round(2), nil
}

// GetSuggestions looks at six months of expenses per category and advises
// on the ones with spending this month.
func (s *budgetService) GetSuggestions(userID uuid.UUID) ([]models.BudgetSuggestion, error) {
	categories, err := s.categoryService.ListCategories(userID, models.TransactionTypeExpense)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	transactions, err := s.transactionRepo.GetByDateRange(userID, models.TransactionTypeExpense, now.AddDate(0, -budgetSuggestionMonths, 0), now.Add(time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to load spending history: %w", err)
	}

	type stats struct {
		current decimal.Decimal
		total   decimal.Decimal
		count   int64
	}
	byCategory := make(map[uuid.UUID]*stats)
	for _, t := range transactions {
		if t.CategoryID == nil {
			continue
		}
		st, ok := byCategory[*t.CategoryID]
		if !ok {
			st = &stats{}
			byCategory[*t.CategoryID] = st
		}
		st.total = st.total.Add(t.Amount)
		st.count++
		date := t.TransactionDate.UTC()
		if date.Year() == now.Year() && date.Month() == now.Month() {
			st.current = st.current.Add(t.Amount)
		}
	}

	suggestions := make([]models.BudgetSuggestion, 0)
	for _, category := range categories {
		st, ok := byCategory[category.ID]
		if !ok || !st.current.IsPositive() {
			continue
		}

		suggestion := models.BudgetSuggestion{
			CategoryID:     category.ID,
			CategoryName:   category.Name,
			CurrentSpent:   st.current.Round(2),
			AverageAmount:  st.total.Div(decimal.NewFromInt(st.count)).Round(2),
			SuggestedLimit: decimal.Zero,
		}
		switch {
		case suggestion.AverageAmount.LessThan(decimal.NewFromInt(smallTransactionAverage)):
			suggestion.Message = msgWeeklyBudget
		case st.current.GreaterThan(decimal.NewFromInt(highSpendingThreshold)):
			suggestion.Message = msgStrictLimit
		default:
			suggestion.SuggestedLimit = st.current.Mul(budgetSuggestionBuffer).Round(0)
			suggestion.Message = fmt.Sprintf(msgSuggestLimitF, suggestion.SuggestedLimit.StringFixed(0))
		}
		suggestions = append(suggestions, suggestion)
	}
	return suggestions, nil
}

func (s *budgetService) DeleteBudget(userID, budgetID uuid.UUID) error {
	budget, err := s.budgetRepo.GetByID(budgetID)
	if err != nil {
		if errors.Is(err, repositories.ErrBudgetNotFound) {
			return ErrBudgetNotFound
		}
		return fmt.Errorf("failed to get budget: %w", err)
	}
	if budget.UserID != userID {
		return ErrBudgetNotFound
	}

	if err := s.budgetRepo.Delete(budgetID); err != nil {
		if errors.Is(err, repositories.ErrBudgetNotFound) {
			return ErrBudgetNotFound
		}
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return nil
}

// monthRange returns [first day of month, first day of next month) in UTC.
func monthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
