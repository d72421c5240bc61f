package handlers

import (
	"net/http"

	"walletwhiz/internal/errors"
	"walletwhiz/internal/services"

	"github.com/labstack/echo/v4"
)

type InsightHandler struct {
	insightService services.InsightServiceInterface
}

func NewInsightHandler(insightService services.InsightServiceInterface) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

// ListInsights returns up to ten unexpired insights
// @Summary List insights
// @Tags Insights
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.FinancialInsight}
// @Router /insights [get]
func (h *InsightHandler) ListInsights(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	insights, err := h.insightService.ListInsights(userID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: insights})
}

// GenerateInsights recomputes the user's insights now
// @Summary Regenerate insights
// @Tags Insights
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.FinancialInsight}
// @Router /insights/generate [post]
func (h *InsightHandler) GenerateInsights(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	insights, err := h.insightService.GenerateInsights(userID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{
		Data: insights,
		Meta: map[string]int{"count": len(insights)},
	})
}

// MarkRead flags an insight as read
// @Summary Mark insight read
// @Tags Insights
// @Security BearerAuth
// @Param id path string true "Insight ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse "INSIGHT_001 - Insight not found"
// @Router /insights/{id}/read [post]
func (h *InsightHandler) MarkRead(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	insightID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid insight ID"))
	}

	if err := h.insightService.MarkRead(userID, insightID); err != nil {
		return sendServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
