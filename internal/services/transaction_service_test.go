package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"
	"walletwhiz/internal/repositories/repository_mocks"
	"walletwhiz/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	ctrl            *gomock.Controller
	transactionRepo *repository_mocks.MockTransactionRepositoryInterface
	categoryService *service_mocks.MockCategoryServiceInterface
	categorizer     *service_mocks.MockCategorizerInterface
	insightService  *service_mocks.MockInsightServiceInterface
	publisher       *service_mocks.MockTransactionEventPublisher
	auditLogger     *service_mocks.MockAuditLoggerInterface
	service         *TransactionService
	userID          uuid.UUID
	now             time.Time
}

func TestTransactionServiceSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.transactionRepo = repository_mocks.NewMockTransactionRepositoryInterface(s.ctrl)
	s.categoryService = service_mocks.NewMockCategoryServiceInterface(s.ctrl)
	s.categorizer = service_mocks.NewMockCategorizerInterface(s.ctrl)
	s.insightService = service_mocks.NewMockInsightServiceInterface(s.ctrl)
	s.publisher = service_mocks.NewMockTransactionEventPublisher(s.ctrl)
	s.auditLogger = service_mocks.NewMockAuditLoggerInterface(s.ctrl)

	s.service = NewTransactionService(s.transactionRepo, s.categoryService, s.categorizer,
		s.insightService, s.publisher, s.auditLogger, slog.Default()).(*TransactionService)
	s.now = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	s.service.now = func() time.Time { return s.now }
	s.userID = uuid.New()
}

func (s *TransactionServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *TransactionServiceTestSuite) expectSideEffects() {
	s.publisher.EXPECT().PublishTransactionCreated(gomock.Any(), gomock.Any()).Return(nil)
	s.insightService.EXPECT().GenerateInsights(s.userID).Return(nil, nil)
}

func (s *TransactionServiceTestSuite) TestAddTransaction_AutoCategorized() {
	food := &models.Category{ID: uuid.New(), UserID: s.userID, Name: models.CategoryFoodDining, Type: models.TransactionTypeExpense}

	s.transactionRepo.EXPECT().
		FindPotentialDuplicates(s.userID, gomock.Any(), s.now, DuplicateWindow, "swiggy dinner #frida").
		Return(nil, nil)
	s.categorizer.EXPECT().Categorize(s.userID, "Swiggy dinner #friday", models.TransactionTypeExpense).
		Return(&models.CategorizationResult{Category: food, Method: models.CategorizationMethodKeyword}, nil)
	s.transactionRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(tx *models.Transaction) error {
		s.Nil(tx.Category)
		tx.ID = uuid.New()
		return nil
	})
	s.expectSideEffects()

	tx, err := s.service.AddTransaction(context.Background(), s.userID, &dto.CreateTransactionRequest{
		Type:        "Expense",
		Amount:      "450",
		Description: "Swiggy dinner #friday",
		Notes:       "with #team",
		Tags:        []string{"Food"},
	})
	s.Require().NoError(err)
	s.Equal(food.ID, *tx.CategoryID)
	s.Equal(food, tx.Category)
	s.Equal(s.now, tx.TransactionDate)
	s.Equal(models.StringList{"food", "friday", "team"}, tx.Tags)
	s.True(decimal.RequireFromString("450").Equal(tx.Amount))
}

func (s *TransactionServiceTestSuite) TestAddTransaction_DuplicateRejected() {
	date := s.now.Add(-time.Hour)
	existing := models.Transaction{ID: uuid.New(), UserID: s.userID, Description: "Uber ride to airport", Amount: decimal.NewFromInt(300)}

	s.transactionRepo.EXPECT().
		FindPotentialDuplicates(s.userID, gomock.Any(), date, DuplicateWindow, "uber ride to airport").
		Return([]models.Transaction{existing}, nil)
	s.auditLogger.EXPECT().LogDuplicateRejected(gomock.Any(), s.userID, 1)

	_, err := s.service.AddTransaction(context.Background(), s.userID, &dto.CreateTransactionRequest{
		Type:            "expense",
		Amount:          "300.00",
		Description:     "Uber ride to airport",
		TransactionDate: &date,
	})
	s.ErrorIs(err, ErrDuplicateTransaction)

	var dupErr *DuplicateTransactionError
	s.Require().ErrorAs(err, &dupErr)
	s.Len(dupErr.Candidates, 1)
	s.Equal(existing.ID, dupErr.Candidates[0].ID)
}

func (s *TransactionServiceTestSuite) TestAddTransaction_ForceSkipsDuplicateCheck() {
	salary := &models.Category{ID: uuid.New(), UserID: s.userID, Name: models.CategorySalary, Type: models.TransactionTypeIncome}

	s.categoryService.EXPECT().GetCategory(s.userID, salary.ID).Return(salary, nil)
	s.transactionRepo.EXPECT().Create(gomock.Any()).Return(nil)
	s.expectSideEffects()

	tx, err := s.service.AddTransaction(context.Background(), s.userID, &dto.CreateTransactionRequest{
		Type:        "income",
		Amount:      "50000",
		CategoryID:  &salary.ID,
		Description: "March salary",
		Force:       true,
	})
	s.NoError(err)
	s.Equal(salary.ID, *tx.CategoryID)
}

func (s *TransactionServiceTestSuite) TestAddTransaction_RecurringOccurrenceAlreadyBooked() {
	paymentID := uuid.New()
	due := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	existing := &models.Transaction{ID: uuid.New(), UserID: s.userID, RecurringPaymentID: &paymentID, TransactionDate: due}

	s.transactionRepo.EXPECT().GetRecurringOccurrence(paymentID, due).Return(existing, nil)

	tx, err := s.service.AddTransaction(context.Background(), s.userID, &dto.CreateTransactionRequest{
		Type:               "expense",
		Amount:             "15000.00",
		Description:        "Rent",
		TransactionDate:    &due,
		Force:              true,
		RecurringPaymentID: &paymentID,
	})
	s.Require().NoError(err)
	s.Same(existing, tx)
}

func (s *TransactionServiceTestSuite) TestAddTransaction_RecurringOccurrenceBooked() {
	paymentID := uuid.New()
	due := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	s.transactionRepo.EXPECT().GetRecurringOccurrence(paymentID, due).Return(nil, repositories.ErrTransactionNotFound)
	s.categorizer.EXPECT().Categorize(s.userID, "Rent", models.TransactionTypeExpense).
		Return(&models.CategorizationResult{Method: models.CategorizationMethodFallback}, nil)
	s.transactionRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(tx *models.Transaction) error {
		s.Require().NotNil(tx.RecurringPaymentID)
		s.Equal(paymentID, *tx.RecurringPaymentID)
		s.Equal(due, tx.TransactionDate)
		return nil
	})
	s.expectSideEffects()

	_, err := s.service.AddTransaction(context.Background(), s.userID, &dto.CreateTransactionRequest{
		Type:               "expense",
		Amount:             "15000.00",
		Description:        "Rent",
		TransactionDate:    &due,
		Force:              true,
		RecurringPaymentID: &paymentID,
	})
	s.NoError(err)
}

func (s *TransactionServiceTestSuite) TestAddTransaction_RecurringLookupFails() {
	paymentID := uuid.New()
	s.transactionRepo.EXPECT().GetRecurringOccurrence(paymentID, gomock.Any()).Return(nil, errors.New("db down"))

	_, err := s.service.AddTransaction(context.Background(), s.userID, &dto.CreateTransactionRequest{
		Type: "expense", Amount: "10", Description: "Rent", Force: true, RecurringPaymentID: &paymentID,
	})
	s.Error(err)
}

func (s *TransactionServiceTestSuite) TestAddTransaction_CategoryTypeMismatch() {
	salary := &models.Category{ID: uuid.New(), UserID: s.userID, Name: models.CategorySalary, Type: models.TransactionTypeIncome}
	s.categoryService.EXPECT().GetCategory(s.userID, salary.ID).Return(salary, nil)

	_, err := s.service.AddTransaction(context.Background(), s.userID, &dto.CreateTransactionRequest{
		Type: "expense", Amount: "10", CategoryID: &salary.ID, Description: "coffee", Force: true,
	})
	s.ErrorIs(err, ErrCategoryTypeMismatch)
}

func (s *TransactionServiceTestSuite) TestAddTransaction_Uncategorized() {
	s.categorizer.EXPECT().Categorize(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&models.CategorizationResult{Method: models.CategorizationMethodFallback}, nil)
	s.transactionRepo.EXPECT().Create(gomock.Any()).Return(nil)
	s.expectSideEffects()

	tx, err := s.service.AddTransaction(context.Background(), s.userID, &dto.CreateTransactionRequest{
		Type: "expense", Amount: "99.5", Description: "Bank transfer", Force: true,
	})
	s.NoError(err)
	s.Nil(tx.CategoryID)
}

func (s *TransactionServiceTestSuite) TestAddTransaction_SideEffectFailuresAreLogged() {
	s.categorizer.EXPECT().Categorize(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db gone"))
	s.transactionRepo.EXPECT().Create(gomock.Any()).Return(nil)
	s.publisher.EXPECT().PublishTransactionCreated(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
	s.insightService.EXPECT().GenerateInsights(s.userID).Return(nil, errors.New("insights failed"))

	_, err := s.service.AddTransaction(context.Background(), s.userID, &dto.CreateTransactionRequest{
		Type: "expense", Amount: "20", Description: "Snacks", Force: true,
	})
	s.NoError(err)
}

func (s *TransactionServiceTestSuite) TestAddTransaction_InvalidInput() {
	tests := []struct {
		name string
		req  dto.CreateTransactionRequest
	}{
		{"bad type", dto.CreateTransactionRequest{Type: "transfer", Amount: "10", Description: "x", Force: true}},
		{"zero amount", dto.CreateTransactionRequest{Type: "expense", Amount: "0", Description: "x", Force: true}},
		{"negative amount", dto.CreateTransactionRequest{Type: "expense", Amount: "-5", Description: "x", Force: true}},
		{"not a number", dto.CreateTransactionRequest{Type: "expense", Amount: "ten", Description: "x", Force: true}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.AddTransaction(context.Background(), s.userID, &tt.req)
			s.ErrorIs(err, ErrInvalidTransaction)
		})
	}
}

func (s *TransactionServiceTestSuite) TestAddTransaction_BlankDescriptionRejected() {
	_, err := s.service.AddTransaction(context.Background(), s.userID, &dto.CreateTransactionRequest{
		Type: "expense", Amount: "5", Description: "   ",
	})
	s.ErrorIs(err, ErrInvalidTransaction)
}

func (s *TransactionServiceTestSuite) TestGetTransaction_Ownership() {
	foreign := &models.Transaction{ID: uuid.New(), UserID: uuid.New()}
	s.transactionRepo.EXPECT().GetByID(foreign.ID).Return(foreign, nil)

	_, err := s.service.GetTransaction(s.userID, foreign.ID)
	s.ErrorIs(err, ErrTransactionNotFound)

	missing := uuid.New()
	s.transactionRepo.EXPECT().GetByID(missing).Return(nil, repositories.ErrTransactionNotFound)
	_, err = s.service.GetTransaction(s.userID, missing)
	s.ErrorIs(err, ErrTransactionNotFound)
}

func (s *TransactionServiceTestSuite) TestUpdateTransaction() {
	existing := &models.Transaction{
		ID: uuid.New(), UserID: s.userID, Type: models.TransactionTypeExpense,
		Amount: decimal.NewFromInt(100), Description: "Lunch", TransactionDate: s.now,
	}
	shopping := &models.Category{ID: uuid.New(), UserID: s.userID, Name: models.CategoryShopping, Type: models.TransactionTypeExpense}
	amount := "120.456"
	notes := "split #office"

	s.transactionRepo.EXPECT().GetByID(existing.ID).Return(existing, nil)
	s.categoryService.EXPECT().GetCategory(s.userID, shopping.ID).Return(shopping, nil)
	s.transactionRepo.EXPECT().Update(existing).Return(nil)

	tx, err := s.service.UpdateTransaction(s.userID, existing.ID, &dto.UpdateTransactionRequest{
		Amount:     &amount,
		Notes:      &notes,
		CategoryID: &shopping.ID,
		Tags:       []string{},
	})
	s.NoError(err)
	s.Equal("120.46", tx.Amount.StringFixed(2))
	s.Equal(shopping.ID, *tx.CategoryID)
	s.Equal(models.StringList{"office"}, tx.Tags)
}

func (s *TransactionServiceTestSuite) TestUpdateTransaction_TypeChangeConflictsWithCategory() {
	food := &models.Category{ID: uuid.New(), Name: models.CategoryFoodDining, Type: models.TransactionTypeExpense}
	existing := &models.Transaction{
		ID: uuid.New(), UserID: s.userID, Type: models.TransactionTypeExpense, Amount: decimal.NewFromInt(5),
		Description: "Tea", TransactionDate: s.now, CategoryID: &food.ID, Category: food,
	}
	income := "income"

	s.transactionRepo.EXPECT().GetByID(existing.ID).Return(existing, nil)

	_, err := s.service.UpdateTransaction(s.userID, existing.ID, &dto.UpdateTransactionRequest{Type: &income})
	s.ErrorIs(err, ErrCategoryTypeMismatch)
}

func (s *TransactionServiceTestSuite) TestUpdateTransaction_ClearCategory() {
	food := &models.Category{ID: uuid.New(), Name: models.CategoryFoodDining, Type: models.TransactionTypeExpense}
	existing := &models.Transaction{
		ID: uuid.New(), UserID: s.userID, Type: models.TransactionTypeExpense, Amount: decimal.NewFromInt(5),
		Description: "Tea", TransactionDate: s.now, CategoryID: &food.ID, Category: food,
	}

	s.transactionRepo.EXPECT().GetByID(existing.ID).Return(existing, nil)
	s.transactionRepo.EXPECT().Update(existing).Return(nil)

	tx, err := s.service.UpdateTransaction(s.userID, existing.ID, &dto.UpdateTransactionRequest{ClearCategory: true})
	s.NoError(err)
	s.Nil(tx.CategoryID)
}

func (s *TransactionServiceTestSuite) TestDeleteTransaction() {
	existing := &models.Transaction{ID: uuid.New(), UserID: s.userID}
	s.transactionRepo.EXPECT().GetByID(existing.ID).Return(existing, nil)
	s.transactionRepo.EXPECT().Delete(existing.ID).Return(nil)

	s.NoError(s.service.DeleteTransaction(s.userID, existing.ID))
}

func (s *TransactionServiceTestSuite) TestListTransactions_Paging() {
	page := make([]models.Transaction, 3)
	for i := range page {
		page[i] = models.Transaction{ID: uuid.New(), UserID: s.userID, TransactionDate: s.now.Add(-time.Duration(i) * time.Hour)}
	}

	s.transactionRepo.EXPECT().GetPage(gomock.Any(), nil, 3).
		DoAndReturn(func(f models.TransactionFilters, _ *repositories.TransactionCursor, _ int) ([]models.Transaction, error) {
			s.Equal(s.userID, f.UserID)
			s.Equal(models.TransactionTypeExpense, f.Type)
			return page, nil
		})

	got, next, err := s.service.ListTransactions(s.userID, models.TransactionFilters{Type: models.TransactionTypeExpense}, "", 2)
	s.NoError(err)
	s.Len(got, 2)
	s.NotEmpty(next)

	s.transactionRepo.EXPECT().GetPage(gomock.Any(), gomock.Any(), 3).
		DoAndReturn(func(_ models.TransactionFilters, c *repositories.TransactionCursor, _ int) ([]models.Transaction, error) {
			s.Require().NotNil(c)
			s.Equal(page[1].ID, c.ID)
			s.True(page[1].TransactionDate.Equal(c.Date))
			return page[2:], nil
		})

	got, next, err = s.service.ListTransactions(s.userID, models.TransactionFilters{}, next, 2)
	s.NoError(err)
	s.Len(got, 1)
	s.Empty(next)
}

func (s *TransactionServiceTestSuite) TestListTransactions_LimitsAndBadCursor() {
	s.transactionRepo.EXPECT().GetPage(gomock.Any(), nil, DefaultPageSize+1).Return(nil, nil)
	_, _, err := s.service.ListTransactions(s.userID, models.TransactionFilters{}, "", 0)
	s.NoError(err)

	s.transactionRepo.EXPECT().GetPage(gomock.Any(), nil, MaxPageSize+1).Return(nil, nil)
	_, _, err = s.service.ListTransactions(s.userID, models.TransactionFilters{}, "", 1000)
	s.NoError(err)

	_, _, err = s.service.ListTransactions(s.userID, models.TransactionFilters{}, "not-base64!!", 10)
	s.ErrorIs(err, ErrInvalidCursor)
}

func (s *TransactionServiceTestSuite) TestDuplicatePrefix() {
	s.Equal("amazon order 1234567", duplicatePrefix("  Amazon Order 12345678901234"))
	s.Equal("chai", duplicatePrefix("Chai"))
	s.Equal("धन्यवाद", duplicatePrefix("धन्यवाद"))
}
