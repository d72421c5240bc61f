package repositories

import (
	"testing"

	"walletwhiz/internal/database"
	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestBudgetRepository(t *testing.T) {
	suite.Run(t, new(BudgetRepositorySuite))
}

type BudgetRepositorySuite struct {
	suite.Suite
	db         *database.DB
	repo       BudgetRepositoryInterface
	user       *models.User
	categories map[string]models.Category
}

func (s *BudgetRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewBudgetRepository(s.db.DB)
	s.user = database.CreateTestUser(s.T(), s.db, "budgeter")
	s.categories = database.CreateTestCategories(s.T(), s.db, s.user.ID)
}

func (s *BudgetRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *BudgetRepositorySuite) TestBudgetRepository_UpsertReplacesLimit() {
	food := s.categories[models.CategoryFoodDining]

	first := &models.Budget{UserID: s.user.ID, CategoryID: food.ID, MonthlyLimit: decimal.NewFromInt(5000)}
	s.NoError(s.repo.Upsert(first))
	s.NotEqual(uuid.Nil, first.ID)

	second := &models.Budget{UserID: s.user.ID, CategoryID: food.ID, MonthlyLimit: decimal.NewFromInt(7000), Period: models.BudgetPeriodWeekly}
	s.NoError(s.repo.Upsert(second))
	s.Equal(first.ID, second.ID)

	budgets, err := s.repo.ListByUser(s.user.ID)
	s.NoError(err)
	s.Require().Len(budgets, 1)
	s.True(decimal.NewFromInt(7000).Equal(budgets[0].MonthlyLimit))
	s.Equal(models.BudgetPeriodWeekly, budgets[0].Period)
	s.Require().NotNil(budgets[0].Category)
	s.Equal(models.CategoryFoodDining, budgets[0].Category.Name)
}

func (s *BudgetRepositorySuite) TestBudgetRepository_GetAndDelete() {
	shopping := s.categories[models.CategoryShopping]
	budget := &models.Budget{UserID: s.user.ID, CategoryID: shopping.ID, MonthlyLimit: decimal.NewFromInt(3000)}
	s.Require().NoError(s.repo.Upsert(budget))

	found, err := s.repo.GetByID(budget.ID)
	s.NoError(err)
	s.Equal(shopping.ID, found.CategoryID)

	s.NoError(s.repo.Delete(budget.ID))
	_, err = s.repo.GetByID(budget.ID)
	s.ErrorIs(err, ErrBudgetNotFound)
	s.ErrorIs(s.repo.Delete(budget.ID), ErrBudgetNotFound)
}

func (s *BudgetRepositorySuite) TestBudgetRepository_RejectsInvalidPeriod() {
	budget := &models.Budget{
		UserID:       s.user.ID,
		CategoryID:   s.categories[models.CategoryHealthcare].ID,
		MonthlyLimit: decimal.NewFromInt(100),
		Period:       "daily",
	}
	s.Error(s.repo.Upsert(budget))
}
