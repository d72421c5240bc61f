package handlers

import (
	"net/http"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/errors"
	"walletwhiz/internal/services"

	"github.com/labstack/echo/v4"
)

type RecurringHandler struct {
	recurringService services.RecurringServiceInterface
	processor        services.RecurringProcessorInterface
}

func NewRecurringHandler(recurringService services.RecurringServiceInterface, processor services.RecurringProcessorInterface) *RecurringHandler {
	return &RecurringHandler{
		recurringService: recurringService,
		processor:        processor,
	}
}

// CreatePayment schedules a recurring payment
// @Summary Create recurring payment
// @Tags Recurring
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.RecurringPaymentRequest true "Payment"
// @Success 201 {object} SuccessResponse{data=models.RecurringPayment}
// @Router /recurring [post]
func (h *RecurringHandler) CreatePayment(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.RecurringPaymentRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	payment, err := h.recurringService.CreatePayment(userID, &req)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, SuccessResponse{Data: payment, Message: "Recurring payment created"})
}

// ListPayments returns every recurring payment
// @Summary List recurring payments
// @Tags Recurring
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.RecurringPayment}
// @Router /recurring [get]
func (h *RecurringHandler) ListPayments(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	payments, err := h.recurringService.ListPayments(userID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: payments})
}

// ListDue returns active payments whose due date has passed
// @Summary List due payments
// @Tags Recurring
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.RecurringPayment}
// @Router /recurring/due [get]
func (h *RecurringHandler) ListDue(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	payments, err := h.recurringService.ListDue(userID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: payments})
}

// SetActive pauses or resumes a payment
// @Summary Pause or resume
// @Tags Recurring
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param request body dto.SetActiveRequest true "State"
// @Success 200 {object} SuccessResponse{data=models.RecurringPayment}
// @Router /recurring/{id}/active [put]
func (h *RecurringHandler) SetActive(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	paymentID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid payment ID"))
	}

	var req dto.SetActiveRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	payment, err := h.recurringService.SetActive(userID, paymentID, req.Active)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: payment})
}

// DeletePayment removes a recurring payment
// @Summary Delete recurring payment
// @Tags Recurring
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 204
// @Router /recurring/{id} [delete]
func (h *RecurringHandler) DeletePayment(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	paymentID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid payment ID"))
	}

	if err := h.recurringService.DeletePayment(userID, paymentID); err != nil {
		return sendServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RunDue books the caller's due payments now
// @Summary Process due payments
// @Tags Recurring
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=dto.RecurringRunResult}
// @Failure 503 {object} errors.ErrorResponse "SYSTEM_003 - A run is already in progress"
// @Router /recurring/run [post]
func (h *RecurringHandler) RunDue(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	result, err := h.processor.RunDue(c.Request().Context(), &userID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: result})
}
