package handlers

import (
	"net/http"
	"time"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/errors"
	"walletwhiz/internal/services"

	"github.com/labstack/echo/v4"
)

type BudgetHandler struct {
	budgetService services.BudgetServiceInterface
}

func NewBudgetHandler(budgetService services.BudgetServiceInterface) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// SetBudget creates or replaces the budget of an expense category
// @Summary Set budget
// @Tags Budgets
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.BudgetRequest true "Budget"
// @Success 200 {object} SuccessResponse{data=models.Budget}
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid limit, period or dates"
// @Failure 404 {object} errors.ErrorResponse "CATEGORY_001 - Category not found"
// @Router /budgets [put]
func (h *BudgetHandler) SetBudget(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.BudgetRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	budget, err := h.budgetService.SetBudget(userID, &req)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: budget, Message: "Budget saved"})
}

// ListBudgets returns the user's budgets
// @Summary List budgets
// @Tags Budgets
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.Budget}
// @Router /budgets [get]
func (h *BudgetHandler) ListBudgets(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	budgets, err := h.budgetService.ListBudgets(userID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: budgets})
}

// GetSummary compares each budget with the month's spending
// @Summary Budget summary
// @Tags Budgets
// @Security BearerAuth
// @Produce json
// @Param year query int false "Year, defaults to the current year"
// @Param month query int false "Month 1-12, defaults to the current month"
// @Success 200 {object} SuccessResponse{data=[]models.BudgetStatus}
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_004 - Month out of range"
// @Router /budgets/summary [get]
func (h *BudgetHandler) GetSummary(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	year, month, err := parseMonthQuery(c, time.Now().UTC())
	if err != nil {
		return SendError(c, errors.ValidationOutOfRange, errors.WithDetails(err.Error()))
	}

	summary, err := h.budgetService.GetBudgetSummary(userID, year, month)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: summary})
}

// SuggestLimit proposes a monthly limit from the last three months
// @Summary Suggest a limit
// @Tags Budgets
// @Security BearerAuth
// @Produce json
// @Param categoryId path string true "Category ID"
// @Success 200 {object} SuccessResponse{data=dto.BudgetSuggestionResponse}
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_004 - No spending history for the category"
// @Router /budgets/suggest/{categoryId} [get]
func (h *BudgetHandler) SuggestLimit(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	categoryID, err := parseUUIDParam(c, "categoryId")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid category ID"))
	}

	limit, err := h.budgetService.SuggestLimit(userID, categoryID)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: dto.BudgetSuggestionResponse{
		CategoryID:     categoryID,
		SuggestedLimit: limit.StringFixed(2),
	}})
}

// GetSuggestions returns budgeting advice per spending category
// @Summary Budget suggestions
// @Tags Budgets
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.BudgetSuggestion}
// @Router /budgets/suggestions [get]
func (h *BudgetHandler) GetSuggestions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	suggestions, err := h.budgetService.GetSuggestions(userID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: suggestions})
}

// DeleteBudget removes a budget
// @Summary Delete budget
// @Tags Budgets
// @Security BearerAuth
// @Param id path string true "Budget ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse "BUDGET_001 - Budget not found"
// @Router /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid budget ID"))
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		return sendServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
