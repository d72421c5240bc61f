package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories/repository_mocks"
	"walletwhiz/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BackupServiceTestSuite struct {
	suite.Suite
	ctrl            *gomock.Controller
	categoryRepo    *repository_mocks.MockCategoryRepositoryInterface
	transactionRepo *repository_mocks.MockTransactionRepositoryInterface
	budgetRepo      *repository_mocks.MockBudgetRepositoryInterface
	goalRepo        *repository_mocks.MockSavingsGoalRepositoryInterface
	templateRepo    *repository_mocks.MockTemplateRepositoryInterface
	lendingRepo     *repository_mocks.MockLendingRepositoryInterface
	recurringRepo   *repository_mocks.MockRecurringPaymentRepositoryInterface
	backupRepo      *repository_mocks.MockBackupRepositoryInterface
	sink            *service_mocks.MockBackupSink
	breaker         CircuitBreakerInterface
	service         *backupService
	userID          uuid.UUID
}

func TestBackupServiceSuite(t *testing.T) {
	suite.Run(t, new(BackupServiceTestSuite))
}

func (s *BackupServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.categoryRepo = repository_mocks.NewMockCategoryRepositoryInterface(s.ctrl)
	s.transactionRepo = repository_mocks.NewMockTransactionRepositoryInterface(s.ctrl)
	s.budgetRepo = repository_mocks.NewMockBudgetRepositoryInterface(s.ctrl)
	s.goalRepo = repository_mocks.NewMockSavingsGoalRepositoryInterface(s.ctrl)
	s.templateRepo = repository_mocks.NewMockTemplateRepositoryInterface(s.ctrl)
	s.lendingRepo = repository_mocks.NewMockLendingRepositoryInterface(s.ctrl)
	s.recurringRepo = repository_mocks.NewMockRecurringPaymentRepositoryInterface(s.ctrl)
	s.backupRepo = repository_mocks.NewMockBackupRepositoryInterface(s.ctrl)
	s.sink = service_mocks.NewMockBackupSink(s.ctrl)
	s.breaker = NewCircuitBreaker(CircuitBreakerConfig{Name: "test", MaxFailures: 2, ResetTimeout: time.Hour})

	stores := BackupStores{
		Categories:   s.categoryRepo,
		Transactions: s.transactionRepo,
		Budgets:      s.budgetRepo,
		Goals:        s.goalRepo,
		Templates:    s.templateRepo,
		Lending:      s.lendingRepo,
		Recurring:    s.recurringRepo,
		Backups:      s.backupRepo,
	}
	s.service = NewBackupService(stores, s.sink, s.breaker, slog.Default()).(*backupService)
	s.userID = uuid.New()
}

func (s *BackupServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *BackupServiceTestSuite) TestCreateBackup() {
	food := models.Category{ID: uuid.New(), UserID: s.userID, Name: models.CategoryFoodDining, Type: models.TransactionTypeExpense}
	exportedAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.service.now = func() time.Time { return exportedAt }

	s.categoryRepo.EXPECT().ListByUser(s.userID, "").Return([]models.Category{food}, nil)
	s.transactionRepo.EXPECT().GetWithFilters(models.TransactionFilters{UserID: s.userID}).
		Return([]models.Transaction{{Description: "Lunch", CategoryID: &food.ID, Category: &food}}, int64(1), nil)
	s.budgetRepo.EXPECT().ListByUser(s.userID).Return([]models.Budget{{CategoryID: food.ID, Category: &food}}, nil)
	s.goalRepo.EXPECT().ListByUser(s.userID).Return(nil, nil)
	s.templateRepo.EXPECT().ListByUser(s.userID).Return(nil, nil)
	s.lendingRepo.EXPECT().ListByUser(s.userID).Return([]models.LendingRecord{{Person: "Asha"}}, nil)
	s.recurringRepo.EXPECT().ListByUser(s.userID).Return(nil, nil)

	backup, err := s.service.CreateBackup(s.userID)
	s.Require().NoError(err)
	s.Equal(backupVersion, backup.Version)
	s.Equal(exportedAt, backup.ExportedAt)
	s.Require().Len(backup.Transactions, 1)
	s.Nil(backup.Transactions[0].Category)
	s.Nil(backup.Budgets[0].Category)
	s.Len(backup.LendingRecords, 1)
}

func (s *BackupServiceTestSuite) TestRestoreBackup_RemapsCategories() {
	existingFood := models.Category{ID: uuid.New(), UserID: s.userID, Name: models.CategoryFoodDining, Type: models.TransactionTypeExpense}
	oldFood, oldGym := uuid.New(), uuid.New()
	backup := &models.Backup{
		Version: backupVersion,
		Categories: []models.Category{
			{ID: oldFood, Name: "food & dining", Type: models.TransactionTypeExpense},
			{ID: oldGym, Name: "Fitness", Type: models.TransactionTypeExpense},
		},
		Transactions: []models.Transaction{
			{ID: uuid.New(), Description: "Lunch", CategoryID: &oldFood, Amount: decimal.NewFromInt(250)},
			{ID: uuid.New(), Description: "Gym", CategoryID: &oldGym, Amount: decimal.NewFromInt(800)},
		},
		Budgets: []models.Budget{
			{CategoryID: oldFood, MonthlyLimit: decimal.NewFromInt(5000)},
			{CategoryID: uuid.New(), MonthlyLimit: decimal.NewFromInt(100)},
		},
		LendingRecords: []models.LendingRecord{{Person: "Asha", Amount: decimal.NewFromInt(10)}},
	}

	s.transactionRepo.EXPECT().CountByUser(s.userID).Return(int64(0), nil)
	s.categoryRepo.EXPECT().ListByUser(s.userID, "").Return([]models.Category{existingFood}, nil)

	var written *models.Backup
	s.backupRepo.EXPECT().Restore(gomock.Any()).DoAndReturn(func(b *models.Backup) error {
		written = b
		return nil
	})

	result, err := s.service.RestoreBackup(s.userID, backup)
	s.Require().NoError(err)
	s.Equal(1, result.Categories)
	s.Equal(2, result.Transactions)
	s.Equal(1, result.Budgets)
	s.Equal(1, result.LendingRecords)

	s.Require().Len(written.Categories, 1)
	gym := written.Categories[0]
	s.Equal("Fitness", gym.Name)
	s.NotEqual(oldGym, gym.ID)
	s.Equal(s.userID, gym.UserID)

	s.Equal(existingFood.ID, *written.Transactions[0].CategoryID)
	s.Equal(gym.ID, *written.Transactions[1].CategoryID)
	s.Equal(s.userID, written.Transactions[1].UserID)
	s.NotEqual(backup.Transactions[0].ID, written.Transactions[0].ID)
	s.Equal(existingFood.ID, written.Budgets[0].CategoryID)
	s.Equal(s.userID, written.LendingRecords[0].UserID)
}

func (s *BackupServiceTestSuite) TestRestoreBackup_RemapsRecurringBookings() {
	rentID, goneID := uuid.New(), uuid.New()
	due := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	backup := &models.Backup{
		Version:           backupVersion,
		RecurringPayments: []models.RecurringPayment{{ID: rentID, Name: "Rent", Amount: decimal.NewFromInt(15000)}},
		Transactions: []models.Transaction{
			{ID: uuid.New(), Description: "Rent", Amount: decimal.NewFromInt(15000), TransactionDate: due, RecurringPaymentID: &rentID},
			{ID: uuid.New(), Description: "Gym", Amount: decimal.NewFromInt(800), TransactionDate: due, RecurringPaymentID: &goneID},
		},
	}

	s.transactionRepo.EXPECT().CountByUser(s.userID).Return(int64(0), nil)
	s.categoryRepo.EXPECT().ListByUser(s.userID, "").Return(nil, nil)

	var written *models.Backup
	s.backupRepo.EXPECT().Restore(gomock.Any()).DoAndReturn(func(b *models.Backup) error {
		written = b
		return nil
	})

	_, err := s.service.RestoreBackup(s.userID, backup)
	s.Require().NoError(err)

	s.Require().Len(written.RecurringPayments, 1)
	rent := written.RecurringPayments[0]
	s.NotEqual(rentID, rent.ID)
	s.Require().NotNil(written.Transactions[0].RecurringPaymentID)
	s.Equal(rent.ID, *written.Transactions[0].RecurringPaymentID)
	s.Nil(written.Transactions[1].RecurringPaymentID)
}

func (s *BackupServiceTestSuite) TestRestoreBackup_Rejected() {
	_, err := s.service.RestoreBackup(s.userID, nil)
	s.ErrorIs(err, ErrInvalidBackup)

	_, err = s.service.RestoreBackup(s.userID, &models.Backup{Version: 99})
	s.ErrorIs(err, ErrInvalidBackup)

	s.transactionRepo.EXPECT().CountByUser(s.userID).Return(int64(3), nil)
	_, err = s.service.RestoreBackup(s.userID, &models.Backup{Version: backupVersion})
	s.ErrorIs(err, ErrAccountNotEmpty)
}

func (s *BackupServiceTestSuite) TestBackupToCloud() {
	transactions := []models.Transaction{{Description: "Lunch"}, {Description: "Cab"}}
	s.transactionRepo.EXPECT().GetWithFilters(models.TransactionFilters{UserID: s.userID}).Return(transactions, int64(2), nil)
	s.sink.EXPECT().AppendTransactions(gomock.Any(), s.userID, transactions).Return(2, nil)

	rows, err := s.service.BackupToCloud(context.Background(), s.userID)
	s.NoError(err)
	s.Equal(2, rows)
	s.Equal(models.CircuitClosed, s.breaker.GetState())
}

func (s *BackupServiceTestSuite) TestBackupToCloud_OpensBreaker() {
	transactions := []models.Transaction{{Description: "Lunch"}}
	s.transactionRepo.EXPECT().GetWithFilters(gomock.Any()).Return(transactions, int64(1), nil).Times(2)
	s.sink.EXPECT().AppendTransactions(gomock.Any(), s.userID, gomock.Any()).Return(0, errors.New("quota exceeded")).Times(2)

	for i := 0; i < 2; i++ {
		_, err := s.service.BackupToCloud(context.Background(), s.userID)
		s.Error(err)
	}
	s.Equal(models.CircuitOpen, s.breaker.GetState())

	_, err := s.service.BackupToCloud(context.Background(), s.userID)
	s.ErrorIs(err, ErrCircuitBreakerOpen)
}

func (s *BackupServiceTestSuite) TestBackupToCloud_Disabled() {
	s.service.sink = nil
	_, err := s.service.BackupToCloud(context.Background(), s.userID)
	s.ErrorIs(err, ErrCloudBackupDisabled)
}
