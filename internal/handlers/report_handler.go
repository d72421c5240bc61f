package handlers

import (
	"net/http"
	"time"

	"walletwhiz/internal/errors"
	"walletwhiz/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	defaultTrendMonths = 6
	maxTrendMonths     = 24
)

// ReportHandler serves the aggregates the dashboard charts are drawn from.
type ReportHandler struct {
	reportService services.ReportServiceInterface
	now           func() time.Time
}

func NewReportHandler(reportService services.ReportServiceInterface) *ReportHandler {
	return &ReportHandler{reportService: reportService, now: time.Now}
}

// GetDashboard returns the month's totals, category split and recent rows
// @Summary Dashboard
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param year query int false "Year"
// @Param month query int false "Month 1-12"
// @Success 200 {object} SuccessResponse{data=models.Dashboard}
// @Router /reports/dashboard [get]
func (h *ReportHandler) GetDashboard(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}
	year, month, err := parseMonthQuery(c, h.now().UTC())
	if err != nil {
		return SendError(c, errors.ValidationOutOfRange, errors.WithDetails(err.Error()))
	}

	dashboard, err := h.reportService.GetDashboard(userID, year, month)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: dashboard})
}

// GetMonthlyTrend returns income and expense per month
// @Summary Monthly trend
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param months query int false "Months back, including this one (max 24)" default(6)
// @Success 200 {object} SuccessResponse{data=[]models.MonthlyTotal}
// @Router /reports/trend [get]
func (h *ReportHandler) GetMonthlyTrend(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	months := getIntParam(c, "months", defaultTrendMonths)
	if months < 1 || months > maxTrendMonths {
		return SendError(c, errors.ValidationOutOfRange, errors.WithDetails("months must be between 1 and 24"))
	}

	trend, err := h.reportService.GetMonthlyTrend(userID, months)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: trend})
}

// GetHeatmap returns daily expense totals with a colour per day
// @Summary Spending heatmap
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param year query int false "Year"
// @Param month query int false "Month 1-12"
// @Success 200 {object} SuccessResponse{data=[]models.HeatmapDay}
// @Router /reports/heatmap [get]
func (h *ReportHandler) GetHeatmap(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}
	year, month, err := parseMonthQuery(c, h.now().UTC())
	if err != nil {
		return SendError(c, errors.ValidationOutOfRange, errors.WithDetails(err.Error()))
	}

	days, err := h.reportService.GetHeatmap(userID, year, month)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: days})
}

// GetAchievements returns the month's unlocked achievements
// @Summary Achievements
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param year query int false "Year"
// @Param month query int false "Month 1-12"
// @Success 200 {object} SuccessResponse{data=[]models.Achievement}
// @Router /reports/achievements [get]
func (h *ReportHandler) GetAchievements(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}
	year, month, err := parseMonthQuery(c, h.now().UTC())
	if err != nil {
		return SendError(c, errors.ValidationOutOfRange, errors.WithDetails(err.Error()))
	}

	achievements, err := h.reportService.GetAchievements(userID, year, month)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: achievements})
}

// GetPaymentMethods returns how often each payment method is used
// @Summary Payment method stats
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=models.PaymentMethodStats}
// @Router /reports/payment-methods [get]
func (h *ReportHandler) GetPaymentMethods(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	stats, err := h.reportService.GetPaymentMethodStats(userID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: stats})
}

// PredictSpending projects next month's spending per category
// @Summary Spending prediction
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=models.SpendingPrediction}
// @Router /reports/prediction [get]
func (h *ReportHandler) PredictSpending(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	prediction, err := h.reportService.PredictSpending(userID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: prediction})
}

// GetMonthlySummary returns the month's totals and category breakdown
// @Summary Monthly summary
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param year query int false "Year"
// @Param month query int false "Month 1-12"
// @Success 200 {object} SuccessResponse{data=models.MonthlySummary}
// @Router /reports/monthly-summary [get]
func (h *ReportHandler) GetMonthlySummary(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}
	year, month, err := parseMonthQuery(c, h.now().UTC())
	if err != nil {
		return SendError(c, errors.ValidationOutOfRange, errors.WithDetails(err.Error()))
	}

	summary, err := h.reportService.GetMonthlySummary(userID, year, month)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: summary})
}
