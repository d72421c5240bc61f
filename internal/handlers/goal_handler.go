package handlers

import (
	"net/http"
	"strings"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/errors"
	"walletwhiz/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type GoalHandler struct {
	goalService services.GoalServiceInterface
}

func NewGoalHandler(goalService services.GoalServiceInterface) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// CreateGoal adds a savings goal
// @Summary Create savings goal
// @Tags Goals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.GoalRequest true "Goal"
// @Success 201 {object} SuccessResponse{data=models.SavingsGoal}
// @Router /goals [post]
func (h *GoalHandler) CreateGoal(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.GoalRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	goal, err := h.goalService.CreateGoal(userID, &req)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, SuccessResponse{Data: goal, Message: "Savings goal created"})
}

// ListGoals returns active goals with their progress
// @Summary List active goals
// @Description Ordered by priority (high first), then nearest target date
// @Tags Goals
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.GoalProgress}
// @Router /goals [get]
func (h *GoalHandler) ListGoals(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	goals, err := h.goalService.ListActiveGoals(userID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: goals})
}

// AddProgress records a contribution
// @Summary Add to a goal
// @Tags Goals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Goal ID"
// @Param request body dto.GoalProgressRequest true "Contribution"
// @Success 200 {object} SuccessResponse{data=models.GoalProgress}
// @Failure 404 {object} errors.ErrorResponse "GOAL_001 - Goal not found"
// @Failure 422 {object} errors.ErrorResponse "GOAL_002 - Goal is inactive"
// @Router /goals/{id}/progress [post]
func (h *GoalHandler) AddProgress(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	goalID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid goal ID"))
	}

	var req dto.GoalProgressRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return SendError(c, errors.TransactionInvalidAmount)
	}

	progress, err := h.goalService.AddProgress(userID, goalID, amount)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: progress})
}

// UpdateGoal changes the fields present in the body
// @Summary Update goal
// @Tags Goals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Goal ID"
// @Param request body dto.UpdateGoalRequest true "Fields to change"
// @Success 200 {object} SuccessResponse{data=models.SavingsGoal}
// @Router /goals/{id} [patch]
func (h *GoalHandler) UpdateGoal(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	goalID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid goal ID"))
	}

	var req dto.UpdateGoalRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	goal, err := h.goalService.UpdateGoal(userID, goalID, &req)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: goal, Message: "Savings goal updated"})
}

// DeactivateGoal hides a goal from the active list without deleting it
// @Summary Deactivate goal
// @Tags Goals
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Success 204
// @Router /goals/{id}/deactivate [post]
func (h *GoalHandler) DeactivateGoal(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	goalID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid goal ID"))
	}

	if err := h.goalService.DeactivateGoal(userID, goalID); err != nil {
		return sendServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteGoal removes a goal
// @Summary Delete goal
// @Tags Goals
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Success 204
// @Router /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	goalID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid goal ID"))
	}

	if err := h.goalService.DeleteGoal(userID, goalID); err != nil {
		return sendServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
