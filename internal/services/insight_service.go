package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInsightNotFound = errors.New("insight not found")

var (
	anomalyRatio      = decimal.RequireFromString("1.5")
	anomalyHighChange = 100.0
)

// seasonalCategories lists the categories that usually rise in a month.
var seasonalCategories = map[time.Month][]string{
	time.January:  {models.CategoryHealthcare, "Fitness"},
	time.April:    {models.CategoryShopping, "Travel"},
	time.October:  {models.CategoryShopping, models.CategoryEntertainment},
	time.December: {models.CategoryShopping, models.CategoryEntertainment},
}

type insightService struct {
	insightRepo     repositories.InsightRepositoryInterface
	transactionRepo repositories.TransactionRepositoryInterface
	userRepo        repositories.UserRepositoryInterface
	budgetService   BudgetServiceInterface
	auditLogger     AuditLoggerInterface
	logger          *slog.Logger
	now             func() time.Time
}

func NewInsightService(
	insightRepo repositories.InsightRepositoryInterface,
	transactionRepo repositories.TransactionRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	budgetService BudgetServiceInterface,
	auditLogger AuditLoggerInterface,
	logger *slog.Logger,
) InsightServiceInterface {
	return &insightService{
		insightRepo:     insightRepo,
		transactionRepo: transactionRepo,
		userRepo:        userRepo,
		budgetService:   budgetService,
		auditLogger:     auditLogger,
		logger:          logger,
		now:             time.Now,
	}
}

// GenerateInsights recomputes the user's insights for the current month and
// replaces the unread ones. Read insights are kept until they expire.
func (s *insightService) GenerateInsights(userID uuid.UUID) ([]models.FinancialInsight, error) {
	now := s.now().UTC()

	anomalies, err := s.detectAnomalies(userID, now)
	if err != nil {
		return nil, err
	}
	warnings, err := s.budgetWarnings(userID, now)
	if err != nil {
		return nil, err
	}

	insights := make([]models.FinancialInsight, 0, len(anomalies)+len(warnings)+2)
	insights = append(insights, anomalies...)
	insights = append(insights, warnings...)
	insights = append(insights, seasonalTrends(now)...)

	expires := now.Add(models.InsightTTL)
	for i := range insights {
		insights[i].UserID = userID
		insights[i].CreatedAt = now
		insights[i].ExpiresAt = &expires
		insights[i].PriorityRank = models.PriorityRank(insights[i].Priority)
	}

	if err := s.insightRepo.ReplaceGenerated(userID, insights); err != nil {
		return nil, fmt.Errorf("failed to store insights: %w", err)
	}
	if s.auditLogger != nil {
		s.auditLogger.LogInsightsGenerated(context.Background(), userID, len(insights))
	}
	return insights, nil
}

// detectAnomalies flags expense categories whose spending this month is more
// than 1.5x last month's.
func (s *insightService) detectAnomalies(userID uuid.UUID, now time.Time) ([]models.FinancialInsight, error) {
	curStart, curEnd := monthRange(now.Year(), now.Month())
	prevStart := curStart.AddDate(0, -1, 0)

	current, err := s.transactionRepo.GetCategorySummary(userID, models.TransactionTypeExpense, curStart, curEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise current month: %w", err)
	}
	previous, err := s.transactionRepo.GetCategorySummary(userID, models.TransactionTypeExpense, prevStart, curStart)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise previous month: %w", err)
	}

	prevByName := make(map[string]decimal.Decimal, len(previous))
	for _, p := range previous {
		if p.CategoryName != "" {
			prevByName[p.CategoryName] = p.TotalAmount
		}
	}

	var insights []models.FinancialInsight
	for _, c := range current {
		prev, ok := prevByName[c.CategoryName]
		if c.CategoryName == "" || !ok || !prev.IsPositive() {
			continue
		}
		if !c.TotalAmount.GreaterThan(prev.Mul(anomalyRatio)) {
			continue
		}

		pct := c.TotalAmount.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).InexactFloat64()
		priority := models.PriorityMedium
		if pct > anomalyHighChange {
			priority = models.PriorityHigh
		}
		insights = append(insights, models.FinancialInsight{
			InsightType: models.InsightTypeAnomaly,
			Title:       fmt.Sprintf("High %s Spending", c.CategoryName),
			Description: fmt.Sprintf("Your %s spending is %.0f%% higher than last month (%.0f vs %.0f)",
				c.CategoryName, pct, c.TotalAmount.InexactFloat64(), prev.InexactFloat64()),
			Priority: priority,
			Data: models.JSONBMap{
				"category": c.CategoryName,
				"current":  c.TotalAmount.StringFixed(2),
				"previous": prev.StringFixed(2),
			},
		})
	}
	return insights, nil
}

func (s *insightService) budgetWarnings(userID uuid.UUID, now time.Time) ([]models.FinancialInsight, error) {
	statuses, err := s.budgetService.GetBudgetSummary(userID, now.Year(), now.Month())
	if err != nil {
		return nil, fmt.Errorf("failed to get budget summary: %w", err)
	}

	var insights []models.FinancialInsight
	for _, st := range statuses {
		data := models.JSONBMap{
			"category":   st.CategoryName,
			"limit":      st.Limit.StringFixed(2),
			"spent":      st.Spent.StringFixed(2),
			"percentage": st.Percentage,
		}
		switch {
		case st.IsExceeded():
			insights = append(insights, models.FinancialInsight{
				InsightType: models.InsightTypeAnomaly,
				Title:       fmt.Sprintf("Budget Exceeded: %s", st.CategoryName),
				Description: fmt.Sprintf("You've exceeded your %s budget by %s", st.CategoryName, st.Spent.Sub(st.Limit).StringFixed(2)),
				Priority:    models.PriorityHigh,
				Data:        data,
			})
		case st.IsNearLimit():
			insights = append(insights, models.FinancialInsight{
				InsightType: models.InsightTypeSuggestion,
				Title:       fmt.Sprintf("Budget Warning: %s", st.CategoryName),
				Description: fmt.Sprintf("You've used %.0f%% of your %s budget", st.Percentage, st.CategoryName),
				Priority:    models.PriorityMedium,
				Data:        data,
			})
		}
	}
	return insights, nil
}

func seasonalTrends(now time.Time) []models.FinancialInsight {
	categories := seasonalCategories[now.Month()]
	insights := make([]models.FinancialInsight, 0, len(categories))
	for _, category := range categories {
		insights = append(insights, models.FinancialInsight{
			InsightType: models.InsightTypeTrend,
			Title:       fmt.Sprintf("Seasonal Trend: %s", category),
			Description: fmt.Sprintf("%s spending typically increases this month. Consider budgeting extra.", category),
			Priority:    models.PriorityLow,
		})
	}
	return insights
}

func (s *insightService) ListInsights(userID uuid.UUID) ([]models.FinancialInsight, error) {
	insights, err := s.insightRepo.ListActive(userID, s.now().UTC(), models.InsightListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	return insights, nil
}

func (s *insightService) MarkRead(userID, insightID uuid.UUID) error {
	if err := s.insightRepo.MarkRead(userID, insightID); err != nil {
		if errors.Is(err, repositories.ErrInsightNotFound) {
			return ErrInsightNotFound
		}
		return fmt.Errorf("failed to mark insight read: %w", err)
	}
	return nil
}

// RefreshAll regenerates insights for every user. A failing user is logged
// and skipped.
func (s *insightService) RefreshAll(ctx context.Context) (int, error) {
	userIDs, err := s.userRepo.ListIDs()
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	refreshed := 0
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		if _, err := s.GenerateInsights(userID); err != nil {
			s.logger.Warn("failed to refresh insights",
				slog.Any("error", err),
				slog.String("user_id", userID.String()))
			continue
		}
		refreshed++
	}

	s.logger.Info("insights refreshed",
		slog.Int("users", len(userIDs)),
		slog.Int("refreshed", refreshed))
	return refreshed, nil
}

func (s *insightService) PurgeExpired() (int64, error) {
	deleted, err := s.insightRepo.DeleteExpired(s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge insights: %w", err)
	}
	return deleted, nil
}
