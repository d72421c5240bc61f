package services

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	recentTransactionsLimit = 5
	maxTrendMonths          = 24
	defaultTrendMonths      = 6

	// UncategorizedLabel names the bucket for transactions without a category.
	UncategorizedLabel = "Uncategorized"

	achievementMonthlySaver = "monthly_saver"
)

var ErrInvalidPeriod = errors.New("invalid report period")

type reportService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	logger          *slog.Logger
	now             func() time.Time
}

func NewReportService(transactionRepo repositories.TransactionRepositoryInterface, logger *slog.Logger) ReportServiceInterface {
	return &reportService{
		transactionRepo: transactionRepo,
		logger:          logger,
		now:             time.Now,
	}
}

func validPeriod(year int, month time.Month) error {
	if year < 1970 || year > 9999 || month < time.January || month > time.December {
		return fmt.Errorf("%w: %d-%02d", ErrInvalidPeriod, year, int(month))
	}
	return nil
}

func (s *reportService) GetDashboard(userID uuid.UUID, year int, month time.Month) (*models.Dashboard, error) {
	if err := validPeriod(year, month); err != nil {
		return nil, err
	}
	start, end := monthRange(year, month)

	totals, err := s.transactionRepo.GetTotalsByType(userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get totals: %w", err)
	}
	categories, err := s.categoryAmounts(userID, start, end)
	if err != nil {
		return nil, err
	}
	recent, err := s.transactionRepo.GetRecent(userID, recentTransactionsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent transactions: %w", err)
	}

	return &models.Dashboard{
		Month:              int(month),
		Year:               year,
		Income:             totals.Income,
		Expense:            totals.Expense,
		Balance:            totals.Balance(),
		SavingsRate:        savingsRate(totals),
		CategoryExpenses:   categories,
		RecentTransactions: recent,
	}, nil
}

// savingsRate is (income - expense) / income * 100, or 0 without income.
func savingsRate(totals models.TypeTotals) float64 {
	if !totals.Income.IsPositive() {
		return 0
	}
	return totals.Balance().Div(totals.Income).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

// categoryAmounts returns expense totals per category, largest first.
func (s *reportService) categoryAmounts(userID uuid.UUID, start, end time.Time) ([]models.CategoryAmount, error) {
	summaries, err := s.transactionRepo.GetCategorySummary(userID, models.TransactionTypeExpense, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get category breakdown: %w", err)
	}

	amounts := make([]models.CategoryAmount, 0, len(summaries))
	for _, summary := range summaries {
		name := summary.CategoryName
		if name == "" {
			name = UncategorizedLabel
		}
		amounts = append(amounts, models.CategoryAmount{CategoryName: name, Amount: summary.TotalAmount})
	}
	sort.SliceStable(amounts, func(i, j int) bool {
		return amounts[i].Amount.GreaterThan(amounts[j].Amount)
	})
	return amounts, nil
}

// GetMonthlyTrend returns one row per month, oldest first, ending with the
// current month.
func (s *reportService) GetMonthlyTrend(userID uuid.UUID, months int) ([]models.MonthlyTotal, error) {
	if months <= 0 {
		months = defaultTrendMonths
	}
	if months > maxTrendMonths {
		months = maxTrendMonths
	}

	now := s.now().UTC()
	current, _ := monthRange(now.Year(), now.Month())

	trend := make([]models.MonthlyTotal, 0, months)
	for i := months - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		totals, err := s.transactionRepo.GetTotalsByType(userID, start, start.AddDate(0, 1, 0))
		if err != nil {
			return nil, fmt.Errorf("failed to get monthly totals: %w", err)
		}
		trend = append(trend, models.MonthlyTotal{
			Year:    start.Year(),
			Month:   int(start.Month()),
			Income:  totals.Income,
			Expense: totals.Expense,
		})
	}
	return trend, nil
}

// GetHeatmap returns every day of the month with its expense total and
// colour bucket.
func (s *reportService) GetHeatmap(userID uuid.UUID, year int, month time.Month) ([]models.HeatmapDay, error) {
	if err := validPeriod(year, month); err != nil {
		return nil, err
	}
	start, end := monthRange(year, month)

	transactions, err := s.transactionRepo.GetByDateRange(userID, models.TransactionTypeExpense, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	daily := make(map[int]decimal.Decimal)
	for _, t := range transactions {
		day := t.TransactionDate.UTC().Day()
		daily[day] = daily[day].Add(t.Amount)
	}

	days := make([]models.HeatmapDay, 0, 31)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		amount := daily[d.Day()]
		days = append(days, models.HeatmapDay{
			Date:   d.Format("2006-01-02"),
			Amount: amount,
			Color:  models.HeatmapColor(amount),
		})
	}
	return days, nil
}

func (s *reportService) GetAchievements(userID uuid.UUID, year int, month time.Month) ([]models.Achievement, error) {
	if err := validPeriod(year, month); err != nil {
		return nil, err
	}
	start, end := monthRange(year, month)

	totals, err := s.transactionRepo.GetTotalsByType(userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get totals: %w", err)
	}

	achievements := make([]models.Achievement, 0, 1)
	if totals.Balance().GreaterThanOrEqual(models.AchievementSavingsThreshold) {
		achievements = append(achievements, models.Achievement{
			Code:        achievementMonthlySaver,
			Title:       fmt.Sprintf("Saved %s in one month!", models.AchievementSavingsThreshold.String()),
			Description: fmt.Sprintf("You saved %s in %s %d.", totals.Balance().StringFixed(2), month, year),
			EarnedAt:    end.Add(-time.Second),
		})
	}
	return achievements, nil
}

func (s *reportService) GetPaymentMethodStats(userID uuid.UUID) (*models.PaymentMethodStats, error) {
	counts, err := s.transactionRepo.GetPaymentMethodCounts(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment method counts: %w", err)
	}

	stats := &models.PaymentMethodStats{Counts: counts, MostUsed: models.PaymentMethodUnknown}
	var best int64
	for method, count := range counts {
		// Ties go to the alphabetically first method so the answer is stable.
		if count > best || (count == best && method < stats.MostUsed) {
			best = count
			stats.MostUsed = method
		}
	}
	return stats, nil
}

// PredictSpending projects next month per category as this month's totals.
func (s *reportService) PredictSpending(userID uuid.UUID) (*models.SpendingPrediction, error) {
	now := s.now().UTC()
	start, end := monthRange(now.Year(), now.Month())

	categories, err := s.categoryAmounts(userID, start, end)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, c := range categories {
		total = total.Add(c.Amount)
	}
	return &models.SpendingPrediction{
		Year:       end.Year(),
		Month:      int(end.Month()),
		Categories: categories,
		Total:      total,
	}, nil
}

func (s *reportService) GetMonthlySummary(userID uuid.UUID, year int, month time.Month) (*models.MonthlySummary, error) {
	if err := validPeriod(year, month); err != nil {
		return nil, err
	}
	start, end := monthRange(year, month)

	totals, err := s.transactionRepo.GetTotalsByType(userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get totals: %w", err)
	}
	categories, err := s.categoryAmounts(userID, start, end)
	if err != nil {
		return nil, err
	}

	return &models.MonthlySummary{
		Month:      int(month),
		Year:       year,
		Income:     totals.Income,
		Expense:    totals.Expense,
		Balance:    totals.Balance(),
		Categories: categories,
	}, nil
}
