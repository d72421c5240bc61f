package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/services"
	"walletwhiz/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ResourceHandlerSuite covers categories, lending, recurring payments and
// reports.
type ResourceHandlerSuite struct {
	suite.Suite
	ctrl             *gomock.Controller
	e                *echo.Echo
	userID           uuid.UUID
	categoryService  *service_mocks.MockCategoryServiceInterface
	lendingService   *service_mocks.MockLendingServiceInterface
	settingsService  *service_mocks.MockSettingsServiceInterface
	recurringService *service_mocks.MockRecurringServiceInterface
	processor        *service_mocks.MockRecurringProcessorInterface
	reportService    *service_mocks.MockReportServiceInterface
	categories       *CategoryHandler
	lending          *LendingHandler
	recurring        *RecurringHandler
	reports          *ReportHandler
}

func TestResourceHandlerSuite(t *testing.T) {
	suite.Run(t, new(ResourceHandlerSuite))
}

func (s *ResourceHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.e = newTestEcho()
	s.userID = uuid.New()
	s.categoryService = service_mocks.NewMockCategoryServiceInterface(s.ctrl)
	s.lendingService = service_mocks.NewMockLendingServiceInterface(s.ctrl)
	s.settingsService = service_mocks.NewMockSettingsServiceInterface(s.ctrl)
	s.recurringService = service_mocks.NewMockRecurringServiceInterface(s.ctrl)
	s.processor = service_mocks.NewMockRecurringProcessorInterface(s.ctrl)
	s.reportService = service_mocks.NewMockReportServiceInterface(s.ctrl)
	s.categories = NewCategoryHandler(s.categoryService)
	s.lending = NewLendingHandler(s.lendingService, s.settingsService)
	s.recurring = NewRecurringHandler(s.recurringService, s.processor)
	s.reports = NewReportHandler(s.reportService)
	s.reports.now = func() time.Time { return time.Date(2025, 6, 20, 8, 0, 0, 0, time.UTC) }
}

func (s *ResourceHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ResourceHandlerSuite) TestListCategories() {
	s.categoryService.EXPECT().ListCategories(s.userID, "income").Return([]models.Category{{Name: models.CategorySalary}}, nil)

	c, rec := newJSONContext(s.e, http.MethodGet, "/categories?type=Income", nil, s.userID)
	s.Require().NoError(s.categories.ListCategories(c))
	s.Equal(http.StatusOK, rec.Code)

	c, rec = newJSONContext(s.e, http.MethodGet, "/categories?type=transfer", nil, s.userID)
	s.Require().NoError(s.categories.ListCategories(c))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ResourceHandlerSuite) TestDeleteCategory_InUse() {
	id := uuid.New()
	s.categoryService.EXPECT().DeleteCategory(s.userID, id).Return(services.ErrCategoryInUse)

	c, rec := newJSONContext(s.e, http.MethodDelete, "/categories/"+id.String(), nil, s.userID)
	s.Require().NoError(s.categories.DeleteCategory(withID(c, "id", id.String())))
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *ResourceHandlerSuite) TestCreateCategory_Exists() {
	s.categoryService.EXPECT().CreateCategory(s.userID, gomock.Any()).Return(nil, services.ErrCategoryExists)

	c, rec := newJSONContext(s.e, http.MethodPost, "/categories", map[string]string{
		"name": "Pets",
		"type": "expense",
	}, s.userID)
	s.Require().NoError(s.categories.CreateCategory(c))
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *ResourceHandlerSuite) TestLendingBalance() {
	balance := models.LendingBalance{Owed: decimal.NewFromInt(1500), Paid: decimal.NewFromInt(500)}
	s.lendingService.EXPECT().GetBalance(s.userID).Return(balance, nil)
	s.settingsService.EXPECT().FormatAmount(s.userID, balance.Owed).Return("₹1500.00", nil)
	s.settingsService.EXPECT().FormatAmount(s.userID, balance.Paid).Return("₹500.00", nil)

	c, rec := newJSONContext(s.e, http.MethodGet, "/lending/balance", nil, s.userID)
	s.Require().NoError(s.lending.GetBalance(c))
	s.Equal(http.StatusOK, rec.Code)

	var response struct {
		Data dto.LendingBalanceResponse `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Equal("You owe ₹1500.00, Paid: ₹500.00", response.Data.Summary)
}

func (s *ResourceHandlerSuite) TestLendingMarkPaid_NotFound() {
	id := uuid.New()
	s.lendingService.EXPECT().MarkPaid(s.userID, id).Return(nil, services.ErrLendingRecordNotFound)

	c, rec := newJSONContext(s.e, http.MethodPost, "/lending/"+id.String()+"/paid", nil, s.userID)
	s.Require().NoError(s.lending.MarkPaid(withID(c, "id", id.String())))
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ResourceHandlerSuite) TestCreateLendingRecord() {
	s.lendingService.EXPECT().CreateRecord(s.userID, gomock.Any()).
		DoAndReturn(func(_ uuid.UUID, req *dto.LendingRequest) (*models.LendingRecord, error) {
			s.Equal("Ravi", req.Person)
			return &models.LendingRecord{ID: uuid.New(), Person: req.Person}, nil
		})

	c, rec := newJSONContext(s.e, http.MethodPost, "/lending", map[string]string{
		"person": "Ravi",
		"amount": "1200",
		"reason": "Concert tickets",
	}, s.userID)
	s.Require().NoError(s.lending.CreateRecord(c))
	s.Equal(http.StatusCreated, rec.Code)
}

func (s *ResourceHandlerSuite) TestCreateRecurringPayment_InvalidFrequency() {
	c, _ := newJSONContext(s.e, http.MethodPost, "/recurring", map[string]interface{}{
		"name":      "Rent",
		"amount":    "15000",
		"frequency": "fortnightly",
		"startDate": time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}, s.userID)
	s.Error(s.recurring.CreatePayment(c))
}

func (s *ResourceHandlerSuite) TestSetRecurringActive() {
	id := uuid.New()
	s.recurringService.EXPECT().SetActive(s.userID, id, false).Return(&models.RecurringPayment{ID: id}, nil)

	c, rec := newJSONContext(s.e, http.MethodPut, "/recurring/"+id.String()+"/active", map[string]bool{"active": false}, s.userID)
	s.Require().NoError(s.recurring.SetActive(withID(c, "id", id.String())))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *ResourceHandlerSuite) TestRunDue() {
	s.Run("scoped to the caller", func() {
		s.processor.EXPECT().RunDue(gomock.Any(), &s.userID).
			DoAndReturn(func(_ context.Context, userID *uuid.UUID) (*dto.RecurringRunResult, error) {
				s.Equal(s.userID, *userID)
				return &dto.RecurringRunResult{Checked: 2, Booked: 2}, nil
			})

		c, rec := newJSONContext(s.e, http.MethodPost, "/recurring/run", nil, s.userID)
		s.Require().NoError(s.recurring.RunDue(c))
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"booked":2`)
	})

	s.Run("run already in progress", func() {
		s.processor.EXPECT().RunDue(gomock.Any(), gomock.Any()).Return(nil, services.ErrRecurringRunInProgress)

		c, rec := newJSONContext(s.e, http.MethodPost, "/recurring/run", nil, s.userID)
		s.Require().NoError(s.recurring.RunDue(c))
		s.Equal(http.StatusServiceUnavailable, rec.Code)
	})
}

func (s *ResourceHandlerSuite) TestDashboard_DefaultsToCurrentMonth() {
	s.reportService.EXPECT().GetDashboard(s.userID, 2025, time.June).Return(&models.Dashboard{Year: 2025, Month: 6}, nil)

	c, rec := newJSONContext(s.e, http.MethodGet, "/reports/dashboard", nil, s.userID)
	s.Require().NoError(s.reports.GetDashboard(c))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *ResourceHandlerSuite) TestMonthlyTrend() {
	s.reportService.EXPECT().GetMonthlyTrend(s.userID, defaultTrendMonths).Return([]models.MonthlyTotal{}, nil)
	c, rec := newJSONContext(s.e, http.MethodGet, "/reports/trend", nil, s.userID)
	s.Require().NoError(s.reports.GetMonthlyTrend(c))
	s.Equal(http.StatusOK, rec.Code)

	c, rec = newJSONContext(s.e, http.MethodGet, "/reports/trend?months=60", nil, s.userID)
	s.Require().NoError(s.reports.GetMonthlyTrend(c))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ResourceHandlerSuite) TestHeatmap() {
	s.reportService.EXPECT().GetHeatmap(s.userID, 2024, time.February).
		Return([]models.HeatmapDay{{Date: "2024-02-29", Amount: decimal.NewFromInt(900), Color: models.HeatmapColorModerate}}, nil)

	c, rec := newJSONContext(s.e, http.MethodGet, "/reports/heatmap?year=2024&month=2", nil, s.userID)
	s.Require().NoError(s.reports.GetHeatmap(c))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "2024-02-29")
}

func (s *ResourceHandlerSuite) TestHealthCheck() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	s.Require().NoError(err)
	handler := NewHealthHandler(db)

	c, rec := newJSONContext(s.e, http.MethodGet, "/health", nil, uuid.Nil)
	s.Require().NoError(handler.Check(c))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "healthy")
	s.Contains(rec.Body.String(), `"database":"up"`)

	sqlDB, err := db.DB()
	s.Require().NoError(err)
	s.Require().NoError(sqlDB.Close())

	c, rec = newJSONContext(s.e, http.MethodGet, "/health", nil, uuid.Nil)
	s.Require().NoError(handler.Check(c))
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}
