package services

import (
	"bytes"
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

type ExportServiceTestSuite struct {
	suite.Suite
	ctrl            *gomock.Controller
	transactionRepo *repository_mocks.MockTransactionRepositoryInterface
	lendingRepo     *repository_mocks.MockLendingRepositoryInterface
	reportService   *service_mocks.MockReportServiceInterface
	service         ExportServiceInterface
	userID          uuid.UUID
}

func TestExportServiceSuite(t *testing.T) {
	suite.Run(t, new(ExportServiceTestSuite))
}

func (s *ExportServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.transactionRepo = repository_mocks.NewMockTransactionRepositoryInterface(s.ctrl)
	s.lendingRepo = repository_mocks.NewMockLendingRepositoryInterface(s.ctrl)
	s.reportService = service_mocks.NewMockReportServiceInterface(s.ctrl)
	s.service = NewExportService(s.transactionRepo, s.lendingRepo, s.reportService, slog.Default())
	s.userID = uuid.New()
}

func (s *ExportServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ExportServiceTestSuite) TestWriteTransactionsCSV() {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	s.transactionRepo.EXPECT().GetByDateRange(s.userID, "", start, end).Return([]models.Transaction{
		{
			Type:            models.TransactionTypeExpense,
			Amount:          decimal.RequireFromString("450.5"),
			Description:     "Dinner, with team",
			TransactionDate: time.Date(2025, 3, 7, 20, 0, 0, 0, time.UTC),
			Tags:            models.StringList{"food", "team"},
			PaymentMethod:   "UPI",
			Category:        &models.Category{Name: models.CategoryFoodDining},
		},
		{
			Type:            models.TransactionTypeIncome,
			Amount:          decimal.NewFromInt(50000),
			Description:     "Salary",
			TransactionDate: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		},
	}, nil)

	var buf bytes.Buffer
	s.Require().NoError(s.service.WriteTransactionsCSV(&buf, s.userID, start, end))
	s.Equal(
		"Date,Type,Amount,Category,Description,Notes,Tags,Payment Method,Location\n"+
			"2025-03-07,expense,450.50,Food & Dining,\"Dinner, with team\",,\"food,team\",UPI,\n"+
			"2025-03-01,income,50000.00,,Salary,,,,\n",
		buf.String())
}

func (s *ExportServiceTestSuite) TestWriteTransactionsCSV_InvalidRange() {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	s.ErrorIs(s.service.WriteTransactionsCSV(&buf, s.userID, day, day), ErrInvalidPeriod)
	s.Zero(buf.Len())
}

func (s *ExportServiceTestSuite) TestWriteMonthlySummaryCSV() {
	s.reportService.EXPECT().GetMonthlySummary(s.userID, 2025, time.March).Return(&models.MonthlySummary{
		Month:   3,
		Year:    2025,
		Income:  decimal.NewFromInt(1000),
		Expense: decimal.NewFromInt(400),
		Balance: decimal.NewFromInt(600),
		Categories: []models.CategoryAmount{
			{CategoryName: models.CategoryShopping, Amount: decimal.NewFromInt(300)},
			{CategoryName: models.CategoryFoodDining, Amount: decimal.NewFromInt(100)},
		},
	}, nil)

	var buf bytes.Buffer
	s.Require().NoError(s.service.WriteMonthlySummaryCSV(&buf, s.userID, 2025, time.March))
	s.Equal(
		"Monthly Financial Summary\n"+
			"Month/Year,3/2025\n"+
			"\n"+
			"Summary\n"+
			"Income,1000.00\n"+
			"Expenses,400.00\n"+
			"Balance,600.00\n"+
			"\n"+
			"Category Breakdown\n"+
			"Category,Amount\n"+
			"Shopping,300.00\n"+
			"Food & Dining,100.00\n",
		buf.String())
}

func (s *ExportServiceTestSuite) TestWriteLendingCSV() {
	due := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	s.lendingRepo.EXPECT().ListByUser(s.userID).Return([]models.LendingRecord{
		{Person: "Asha", Amount: decimal.NewFromInt(500), Reason: "Tickets", DueDate: &due},
		{Person: "Ravi", Amount: decimal.RequireFromString("120.5"), Paid: true},
	}, nil)

	var buf bytes.Buffer
	s.Require().NoError(s.service.WriteLendingCSV(&buf, s.userID))
	s.Equal(
		"Amount,Person,Reason,Due Date,Paid\n"+
			"500.00,Asha,Tickets,2025-05-01,false\n"+
			"120.50,Ravi,,,true\n",
		buf.String())
}
