package server

import (
	"context"
	"log/slog"

	"walletwhiz/internal/config"
	"walletwhiz/internal/database"
	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"
	"walletwhiz/internal/services"

	"github.com/prometheus/client_golang/prometheus"
)

// Repositories groups the gorm stores.
type Repositories struct {
	Users            repositories.UserRepositoryInterface
	RefreshTokens    repositories.RefreshTokenRepositoryInterface
	BlacklistedToken repositories.BlacklistedTokenRepositoryInterface
	AuditLogs        repositories.AuditLogRepositoryInterface
	Currencies       repositories.CurrencyRepositoryInterface
	Categories       repositories.CategoryRepositoryInterface
	Transactions     repositories.TransactionRepositoryInterface
	Budgets          repositories.BudgetRepositoryInterface
	Goals            repositories.SavingsGoalRepositoryInterface
	Templates        repositories.TemplateRepositoryInterface
	Insights         repositories.InsightRepositoryInterface
	Lending          repositories.LendingRepositoryInterface
	Recurring        repositories.RecurringPaymentRepositoryInterface
	Backups          repositories.BackupRepositoryInterface
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Users:            repositories.NewUserRepository(db.DB),
		RefreshTokens:    repositories.NewRefreshTokenRepository(db.DB),
		BlacklistedToken: repositories.NewBlacklistedTokenRepository(db.DB),
		AuditLogs:        repositories.NewAuditLogRepository(db.DB),
		Currencies:       repositories.NewCurrencyRepository(db.DB),
		Categories:       repositories.NewCategoryRepository(db.DB),
		Transactions:     repositories.NewTransactionRepository(db.DB),
		Budgets:          repositories.NewBudgetRepository(db.DB),
		Goals:            repositories.NewSavingsGoalRepository(db.DB),
		Templates:        repositories.NewTemplateRepository(db.DB),
		Insights:         repositories.NewInsightRepository(db.DB),
		Lending:          repositories.NewLendingRepository(db.DB),
		Recurring:        repositories.NewRecurringPaymentRepository(db.DB),
		Backups:          repositories.NewBackupRepository(db.DB),
	}
}

// Services is the application layer shared by the API and the worker.
type Services struct {
	Metrics     services.MetricsRecorderInterface
	AuditLogger services.AuditLoggerInterface
	Audit       services.AuditServiceInterface
	Token       services.TokenServiceInterface
	Password    services.PasswordServiceInterface
	Auth        services.AuthServiceInterface
	Settings    services.SettingsServiceInterface
	Category    services.CategoryServiceInterface
	Categorizer services.CategorizerInterface
	Tag         services.TagServiceInterface
	Transaction services.TransactionServiceInterface
	Budget      services.BudgetServiceInterface
	Goal        services.GoalServiceInterface
	Template    services.TemplateServiceInterface
	Insight     services.InsightServiceInterface
	Report      services.ReportServiceInterface
	Import      services.ImportServiceInterface
	Export      services.ExportServiceInterface
	Backup      services.BackupServiceInterface
	Lending     services.LendingServiceInterface
	Recurring   services.RecurringServiceInterface
	Processor   services.RecurringProcessorInterface
}

// Dependencies are the optional collaborators that live outside the
// database. Nil values disable the matching feature.
type Dependencies struct {
	Publisher  services.TransactionEventPublisher
	BackupSink services.BackupSink
	Registerer prometheus.Registerer
}

func NewServices(cfg *config.Config, repos *Repositories, deps Dependencies, logger *slog.Logger) *Services {
	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	s := &Services{}
	s.Metrics = services.NewPrometheusMetrics(registerer)
	s.AuditLogger = services.NewAuditLogger(logger)
	s.Audit = services.NewAuditService(repos.AuditLogs, logger)
	s.Token = services.NewTokenService(&cfg.JWT)
	s.Password = services.NewPasswordService(repos.Users, cfg.Security.BCryptCost)
	s.Settings = services.NewSettingsService(repos.Users, repos.Currencies, logger)
	s.Category = services.NewCategoryService(repos.Categories, logger)
	s.Categorizer = services.NewCategorizer(repos.Categories)
	s.Tag = services.NewTagService(repos.Transactions)
	s.Auth = services.NewAuthService(repos.Users, repos.RefreshTokens, repos.AuditLogs, repos.BlacklistedToken,
		s.Password, s.Token, s.Category, cfg.Security.LockoutDuration, logger)

	s.Budget = services.NewBudgetService(repos.Budgets, repos.Transactions, s.Category, logger)
	s.Insight = services.NewInsightService(repos.Insights, repos.Transactions, repos.Users, s.Budget, s.AuditLogger, logger)
	s.Transaction = services.NewTransactionService(repos.Transactions, s.Category, s.Categorizer, s.Insight,
		deps.Publisher, s.AuditLogger, logger)
	s.Goal = services.NewGoalService(repos.Goals, logger)
	s.Template = services.NewTemplateService(repos.Templates, s.Category, s.Transaction, logger)
	s.Report = services.NewReportService(repos.Transactions, logger)
	s.Import = services.NewImportService(repos.Transactions, s.Transaction, s.Category, s.Categorizer, s.Insight,
		s.AuditLogger, logger)
	s.Export = services.NewExportService(repos.Transactions, repos.Lending, s.Report, logger)
	s.Lending = services.NewLendingService(repos.Lending, logger)
	s.Recurring = services.NewRecurringService(repos.Recurring, s.Category, logger)
	s.Processor = services.NewRecurringProcessor(repos.Recurring, s.Transaction, s.AuditLogger, s.Metrics,
		cfg.Worker.RecurringInterval, cfg.Worker.MaxConcurrent, logger)

	breakerConfig := services.DefaultCircuitBreakerConfig("cloud_backup")
	breakerConfig.OnStateChange = s.onBreakerStateChange
	s.Backup = services.NewBackupService(services.BackupStores{
		Categories:   repos.Categories,
		Transactions: repos.Transactions,
		Budgets:      repos.Budgets,
		Goals:        repos.Goals,
		Templates:    repos.Templates,
		Lending:      repos.Lending,
		Recurring:    repos.Recurring,
		Backups:      repos.Backups,
	}, deps.BackupSink, services.NewCircuitBreaker(breakerConfig), logger)

	return s
}

func (s *Services) onBreakerStateChange(name string, from, to models.CircuitBreakerState) {
	s.AuditLogger.LogCircuitBreakerStateChange(context.Background(), name, from.String(), to.String())
	s.Metrics.RecordGauge(services.MetricCircuitBreakerState, float64(to), map[string]string{"service": name})
}
