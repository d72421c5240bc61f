package repositories

import (
	"testing"
	"time"

	"walletwhiz/internal/database"
	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestBackupRepository(t *testing.T) {
	suite.Run(t, new(BackupRepositorySuite))
}

type BackupRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo BackupRepositoryInterface
	user *models.User
}

func (s *BackupRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewBackupRepository(s.db.DB)
	s.user = database.CreateTestUser(s.T(), s.db, "restorer")
}

func (s *BackupRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *BackupRepositorySuite) TestBackupRepository_Restore() {
	existing := database.CreateTestCategories(s.T(), s.db, s.user.ID)[models.CategoryFoodDining]
	fitness := models.Category{ID: uuid.New(), UserID: s.user.ID, Name: "Fitness", Type: models.TransactionTypeExpense}

	backup := &models.Backup{
		Version:    1,
		Categories: []models.Category{fitness},
		Transactions: []models.Transaction{
			{ID: uuid.New(), UserID: s.user.ID, Type: models.TransactionTypeExpense, Amount: decimal.NewFromInt(800),
				CategoryID: &fitness.ID, Description: "Gym", TransactionDate: time.Now().UTC()},
		},
		Budgets: []models.Budget{
			{ID: uuid.New(), UserID: s.user.ID, CategoryID: existing.ID, MonthlyLimit: decimal.NewFromInt(5000), Period: models.BudgetPeriodMonthly},
		},
		LendingRecords: []models.LendingRecord{
			{ID: uuid.New(), UserID: s.user.ID, Person: "Meera", Amount: decimal.NewFromInt(300)},
		},
	}
	s.Require().NoError(s.repo.Restore(backup))

	var categories, transactions, budgets, lending int64
	s.db.Model(&models.Category{}).Where("user_id = ?", s.user.ID).Count(&categories)
	s.db.Model(&models.Transaction{}).Where("user_id = ?", s.user.ID).Count(&transactions)
	s.db.Model(&models.Budget{}).Where("user_id = ?", s.user.ID).Count(&budgets)
	s.db.Model(&models.LendingRecord{}).Where("user_id = ?", s.user.ID).Count(&lending)
	s.Equal(int64(len(models.DefaultCategories(s.user.ID))+1), categories)
	s.Equal(int64(1), transactions)
	s.Equal(int64(1), budgets)
	s.Equal(int64(1), lending)
}

func (s *BackupRepositorySuite) TestBackupRepository_RestoreRollsBack() {
	backup := &models.Backup{
		Version: 1,
		Transactions: []models.Transaction{
			{ID: uuid.New(), UserID: s.user.ID, Type: models.TransactionTypeExpense, Amount: decimal.NewFromInt(10),
				Description: "ok", TransactionDate: time.Now().UTC()},
		},
		LendingRecords: []models.LendingRecord{
			{ID: uuid.New(), UserID: s.user.ID, Amount: decimal.NewFromInt(300)},
		},
	}
	s.Error(s.repo.Restore(backup))

	var transactions int64
	s.db.Model(&models.Transaction{}).Where("user_id = ?", s.user.ID).Count(&transactions)
	s.Zero(transactions)
}
