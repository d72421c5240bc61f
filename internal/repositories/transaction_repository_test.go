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

func TestTransactionRepository(t *testing.T) {
	suite.Run(t, new(TransactionRepositorySuite))
}

type TransactionRepositorySuite struct {
	suite.Suite
	db         *database.DB
	repo       TransactionRepositoryInterface
	user       *models.User
	categories map[string]models.Category
}

func (s *TransactionRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewTransactionRepository(s.db.DB)
	s.user = database.CreateTestUser(s.T(), s.db, "spender")
	s.categories = database.CreateTestCategories(s.T(), s.db, s.user.ID)
}

func (s *TransactionRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *TransactionRepositorySuite) add(txType, amount, description, category string, date time.Time, tags ...string) *models.Transaction {
	txn := &models.Transaction{
		UserID:          s.user.ID,
		Type:            txType,
		Amount:          decimal.RequireFromString(amount),
		Description:     description,
		TransactionDate: date,
		Tags:            tags,
	}
	if category != "" {
		c := s.categories[category]
		txn.CategoryID = &c.ID
	}
	s.Require().NoError(s.repo.Create(txn))
	return txn
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}

func (s *TransactionRepositorySuite) TestTransactionRepository_CreateAndGet() {
	txn := s.add(models.TransactionTypeExpense, "250.50", "Lunch at cafe", models.CategoryFoodDining, day(2026, 3, 10), "#Work", "work")

	found, err := s.repo.GetByID(txn.ID)
	s.NoError(err)
	s.True(decimal.RequireFromString("250.50").Equal(found.Amount))
	s.Equal(models.StringList{"work"}, found.Tags)
	s.Require().NotNil(found.Category)
	s.Equal(models.CategoryFoodDining, found.Category.Name)

	_, err = s.repo.GetByID(uuid.New())
	s.ErrorIs(err, ErrTransactionNotFound)
}

func (s *TransactionRepositorySuite) TestTransactionRepository_UpdateAndDelete() {
	txn := s.add(models.TransactionTypeExpense, "100", "Taxi", "", day(2026, 3, 1))

	txn.Amount = decimal.NewFromInt(120)
	txn.Notes = "airport"
	s.NoError(s.repo.Update(txn))

	found, err := s.repo.GetByID(txn.ID)
	s.NoError(err)
	s.True(decimal.NewFromInt(120).Equal(found.Amount))
	s.Equal("airport", found.Notes)

	s.NoError(s.repo.Delete(txn.ID))
	s.ErrorIs(s.repo.Delete(txn.ID), ErrTransactionNotFound)
}

func (s *TransactionRepositorySuite) TestTransactionRepository_RecurringOccurrence() {
	paymentID := uuid.New()
	due := day(2026, 3, 31)

	_, err := s.repo.GetRecurringOccurrence(paymentID, due)
	s.ErrorIs(err, ErrTransactionNotFound)

	rent := &models.Transaction{
		UserID:             s.user.ID,
		Type:               models.TransactionTypeExpense,
		Amount:             decimal.NewFromInt(15000),
		Description:        "Rent",
		TransactionDate:    due,
		RecurringPaymentID: &paymentID,
	}
	s.Require().NoError(s.repo.Create(rent))

	found, err := s.repo.GetRecurringOccurrence(paymentID, due)
	s.Require().NoError(err)
	s.Equal(rent.ID, found.ID)

	_, err = s.repo.GetRecurringOccurrence(paymentID, day(2026, 4, 30))
	s.ErrorIs(err, ErrTransactionNotFound)

	again := &models.Transaction{
		UserID:             s.user.ID,
		Type:               models.TransactionTypeExpense,
		Amount:             decimal.NewFromInt(15000),
		Description:        "Rent",
		TransactionDate:    due,
		RecurringPaymentID: &paymentID,
	}
	s.Error(s.repo.Create(again))

	// manual entries carry no payment id and never collide
	s.add(models.TransactionTypeExpense, "15000", "Rent", "", due)
	s.add(models.TransactionTypeExpense, "15000", "Rent", "", due)
}

func (s *TransactionRepositorySuite) TestTransactionRepository_GetWithFilters() {
	s.add(models.TransactionTypeExpense, "500", "Swiggy dinner", models.CategoryFoodDining, day(2026, 3, 2), "food")
	s.add(models.TransactionTypeExpense, "40", "Metro card", models.CategoryTransportation, day(2026, 3, 5))
	s.add(models.TransactionTypeIncome, "50000", "March salary", models.CategorySalary, day(2026, 3, 1))
	s.add(models.TransactionTypeExpense, "300", "Pizza 100%_off", models.CategoryFoodDining, day(2026, 2, 20))

	start := day(2026, 3, 1).Add(-12 * time.Hour)
	end := day(2026, 3, 31)
	min := decimal.NewFromInt(100)

	tests := []struct {
		name    string
		filters models.TransactionFilters
		want    int64
	}{
		{"all", models.TransactionFilters{}, 4},
		{"date range", models.TransactionFilters{StartDate: &start, EndDate: &end}, 3},
		{"type", models.TransactionFilters{Type: models.TransactionTypeExpense}, 3},
		{"min amount", models.TransactionFilters{Type: models.TransactionTypeExpense, MinAmount: &min}, 2},
		{"search", models.TransactionFilters{Search: "SWIGGY"}, 1},
		{"search escapes wildcards", models.TransactionFilters{Search: "100%_"}, 1},
		{"tag", models.TransactionFilters{Tag: "#food"}, 1},
		{"tag prefix does not match", models.TransactionFilters{Tag: "foo"}, 0},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			tt.filters.UserID = s.user.ID
			tt.filters.Limit = 20
			txns, total, err := s.repo.GetWithFilters(tt.filters)
			s.NoError(err)
			s.Equal(tt.want, total)
			s.Len(txns, int(tt.want))
		})
	}
}

func (s *TransactionRepositorySuite) TestTransactionRepository_GetPage() {
	for i := 1; i <= 5; i++ {
		s.add(models.TransactionTypeExpense, "10", "Coffee", "", day(2026, 3, i))
	}
	filters := models.TransactionFilters{UserID: s.user.ID}

	first, err := s.repo.GetPage(filters, nil, 2)
	s.NoError(err)
	s.Require().Len(first, 2)
	s.Equal(5, first[0].TransactionDate.Day())

	last := first[len(first)-1]
	second, err := s.repo.GetPage(filters, &TransactionCursor{Date: last.TransactionDate, ID: last.ID}, 10)
	s.NoError(err)
	s.Len(second, 3)
	s.Equal(3, second[0].TransactionDate.Day())
}

func (s *TransactionRepositorySuite) TestTransactionRepository_FindPotentialDuplicates() {
	at := day(2026, 3, 10)
	s.add(models.TransactionTypeExpense, "199.99", "Amazon order for headphones", "", at)

	tests := []struct {
		name   string
		amount string
		date   time.Time
		prefix string
		want   int
	}{
		{"exact", "199.99", at.Add(time.Hour), "amazon order", 1},
		{"amount within tolerance", "199.995", at, "amazon", 1},
		{"amount too far", "200.00", at, "amazon", 0},
		{"outside window", "199.99", at.Add(3 * time.Hour), "amazon", 0},
		{"different description", "199.99", at, "flipkart", 0},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			found, err := s.repo.FindPotentialDuplicates(s.user.ID, decimal.RequireFromString(tt.amount), tt.date, 2*time.Hour, tt.prefix)
			s.NoError(err)
			s.Len(found, tt.want)
		})
	}
}

func (s *TransactionRepositorySuite) TestTransactionRepository_Aggregations() {
	s.add(models.TransactionTypeIncome, "1000.10", "Salary", models.CategorySalary, day(2026, 3, 1))
	s.add(models.TransactionTypeExpense, "100.20", "Dinner", models.CategoryFoodDining, day(2026, 3, 2))
	s.add(models.TransactionTypeExpense, "0.10", "Candy", models.CategoryFoodDining, day(2026, 3, 3))
	s.add(models.TransactionTypeExpense, "50", "Misc", "", day(2026, 3, 4))
	s.add(models.TransactionTypeExpense, "999", "Old", models.CategoryFoodDining, day(2026, 2, 1))

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	totals, err := s.repo.GetTotalsByType(s.user.ID, start, end)
	s.NoError(err)
	s.Equal("1000.1", totals.Income.String())
	s.Equal("150.3", totals.Expense.String())
	s.Equal("849.8", totals.Balance().String())

	summary, err := s.repo.GetCategorySummary(s.user.ID, models.TransactionTypeExpense, start, end)
	s.NoError(err)
	s.Require().Len(summary, 2)
	s.Equal(models.CategoryFoodDining, summary[0].CategoryName)
	s.Equal(int64(2), summary[0].TransactionCount)
	s.Equal("100.3", summary[0].TotalAmount.String())
	s.Equal("", summary[1].CategoryName)
	s.Nil(summary[1].CategoryID)

	food := s.categories[models.CategoryFoodDining]
	sum, err := s.repo.SumByCategory(s.user.ID, food.ID, start, end)
	s.NoError(err)
	s.Equal("100.3", sum.String())
}

func (s *TransactionRepositorySuite) TestTransactionRepository_PaymentMethodsAndTags() {
	cash := s.add(models.TransactionTypeExpense, "10", "Tea", "", day(2026, 3, 1), "chai")
	cash.PaymentMethod = "Cash"
	s.Require().NoError(s.repo.Update(cash))
	s.add(models.TransactionTypeExpense, "20", "Snacks", "", day(2026, 3, 2), "chai", "evening")

	counts, err := s.repo.GetPaymentMethodCounts(s.user.ID)
	s.NoError(err)
	s.Equal(int64(1), counts["Cash"])
	s.Equal(int64(1), counts[models.PaymentMethodUnknown])

	tags, err := s.repo.ListTags(s.user.ID)
	s.NoError(err)
	s.Len(tags, 2)

	count, err := s.repo.CountByUser(s.user.ID)
	s.NoError(err)
	s.Equal(int64(2), count)
}
