package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"walletwhiz/internal/config"
	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"
)

const (
	demoSeedIP        = "127.0.0.1"
	demoSeedUserAgent = "walletwhiz-seed"
)

// DemoSeeder creates the demo account with generated history. It is a
// no-op once the demo user exists.
type DemoSeeder struct {
	userRepo        repositories.UserRepositoryInterface
	categoryRepo    repositories.CategoryRepositoryInterface
	transactionRepo repositories.TransactionRepositoryInterface
	authService     AuthServiceInterface
	insightService  InsightServiceInterface
	generator       DemoDataGeneratorInterface
	logger          *slog.Logger
	now             func() time.Time
}

func NewDemoSeeder(
	userRepo repositories.UserRepositoryInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	transactionRepo repositories.TransactionRepositoryInterface,
	authService AuthServiceInterface,
	insightService InsightServiceInterface,
	generator DemoDataGeneratorInterface,
	logger *slog.Logger,
) *DemoSeeder {
	return &DemoSeeder{
		userRepo:        userRepo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
		authService:     authService,
		insightService:  insightService,
		generator:       generator,
		logger:          logger,
		now:             time.Now,
	}
}

// Seed returns the number of transactions written.
func (s *DemoSeeder) Seed(cfg config.DemoConfig) (int, error) {
	existing, err := s.userRepo.GetByUsername(cfg.Username)
	if err == nil && existing != nil {
		s.logger.Info("demo user already present, skipping seed", slog.String("username", cfg.Username))
		return 0, nil
	}
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return 0, fmt.Errorf("failed to look up demo user: %w", err)
	}

	user, err := s.authService.Register(&dto.RegisterRequest{
		Username:  cfg.Username,
		Email:     cfg.Email,
		Password:  cfg.Password,
		FirstName: "Demo",
		LastName:  "User",
	}, demoSeedIP, demoSeedUserAgent)
	if err != nil {
		return 0, fmt.Errorf("failed to register demo user: %w", err)
	}

	categories, err := s.categoryRepo.ListByUser(user.ID, "")
	if err != nil {
		return 0, fmt.Errorf("failed to load demo categories: %w", err)
	}

	end := s.now().UTC()
	start := end.AddDate(0, 0, -cfg.Days)

	var spending []models.Category
	var salary *models.Category
	for i := range categories {
		switch {
		case categories[i].Type == models.TransactionTypeExpense:
			spending = append(spending, categories[i])
		case categories[i].Name == models.CategorySalary:
			salary = &categories[i]
		}
	}

	transactions := s.generator.GenerateTransactions(user.ID, spending, start, end, cfg.Transactions)
	transactions = append(transactions, s.generator.GenerateSalaryTransactions(user.ID, salary, start, end)...)
	sortTransactionsByDate(transactions)

	if len(transactions) > 0 {
		if err := s.transactionRepo.CreateBatch(transactions); err != nil {
			return 0, fmt.Errorf("failed to store demo transactions: %w", err)
		}
	}

	if _, err := s.insightService.GenerateInsights(user.ID); err != nil {
		s.logger.Warn("failed to generate demo insights", slog.Any("error", err))
	}

	s.logger.Info("seeded demo account",
		slog.String("username", cfg.Username),
		slog.Int("transactions", len(transactions)),
	)
	return len(transactions), nil
}
