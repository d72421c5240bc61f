package handlers

import (
	"net/http"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/errors"
	"walletwhiz/internal/services"

	"github.com/labstack/echo/v4"
)

type LendingHandler struct {
	lendingService  services.LendingServiceInterface
	settingsService services.SettingsServiceInterface
}

func NewLendingHandler(lendingService services.LendingServiceInterface, settingsService services.SettingsServiceInterface) *LendingHandler {
	return &LendingHandler{
		lendingService:  lendingService,
		settingsService: settingsService,
	}
}

// CreateRecord logs money borrowed from someone
// @Summary Add lending record
// @Tags Lending
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.LendingRequest true "Record"
// @Success 201 {object} SuccessResponse{data=models.LendingRecord}
// @Router /lending [post]
func (h *LendingHandler) CreateRecord(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.LendingRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	record, err := h.lendingService.CreateRecord(userID, &req)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, SuccessResponse{Data: record, Message: "Record added"})
}

// ListRecords returns unpaid records first
// @Summary List lending records
// @Tags Lending
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.LendingRecord}
// @Router /lending [get]
func (h *LendingHandler) ListRecords(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	records, err := h.lendingService.ListRecords(userID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: records})
}

// MarkPaid settles a record
// @Summary Mark record paid
// @Tags Lending
// @Security BearerAuth
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} SuccessResponse{data=models.LendingRecord}
// @Failure 404 {object} errors.ErrorResponse "LENDING_001 - Record not found"
// @Router /lending/{id}/paid [post]
func (h *LendingHandler) MarkPaid(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	recordID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid record ID"))
	}

	record, err := h.lendingService.MarkPaid(userID, recordID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: record, Message: "Marked as paid"})
}

// DeleteRecord removes a record
// @Summary Delete lending record
// @Tags Lending
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 204
// @Router /lending/{id} [delete]
func (h *LendingHandler) DeleteRecord(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	recordID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid record ID"))
	}

	if err := h.lendingService.DeleteRecord(userID, recordID); err != nil {
		return sendServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetBalance returns the outstanding and repaid totals
// @Summary Lending balance
// @Tags Lending
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=dto.LendingBalanceResponse}
// @Router /lending/balance [get]
func (h *LendingHandler) GetBalance(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	balance, err := h.lendingService.GetBalance(userID)
	if err != nil {
		return sendServiceError(c, err)
	}

	owed, err := h.settingsService.FormatAmount(userID, balance.Owed)
	if err != nil {
		return sendServiceError(c, err)
	}
	paid, err := h.settingsService.FormatAmount(userID, balance.Paid)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: dto.LendingBalanceResponse{
		Owed:    owed,
		Paid:    paid,
		Summary: "You owe " + owed + ", Paid: " + paid,
	}})
}
