package handlers

import (
	"net/http"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/errors"
	"walletwhiz/internal/services"

	"github.com/labstack/echo/v4"
)

type TemplateHandler struct {
	templateService services.TemplateServiceInterface
}

func NewTemplateHandler(templateService services.TemplateServiceInterface) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// CreateTemplate saves a reusable transaction
// @Summary Create template
// @Tags Templates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.TemplateRequest true "Template"
// @Success 201 {object} SuccessResponse{data=models.TransactionTemplate}
// @Router /templates [post]
func (h *TemplateHandler) CreateTemplate(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.TemplateRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	template, err := h.templateService.CreateTemplate(userID, &req)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, SuccessResponse{Data: template, Message: "Template created"})
}

// ListTemplates returns templates, most used first
// @Summary List templates
// @Tags Templates
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.TransactionTemplate}
// @Router /templates [get]
func (h *TemplateHandler) ListTemplates(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	templates, err := h.templateService.ListTemplates(userID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: templates})
}

// UseTemplate books a transaction from a template
// @Summary Use template
// @Description Creates a transaction from the template, dated today unless transactionDate is given
// @Tags Templates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param request body dto.UseTemplateRequest false "Optional date"
// @Success 201 {object} SuccessResponse{data=dto.TransactionResponse}
// @Failure 404 {object} errors.ErrorResponse "TEMPLATE_001 - Template not found"
// @Router /templates/{id}/use [post]
func (h *TemplateHandler) UseTemplate(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	templateID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid template ID"))
	}

	var req dto.UseTemplateRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
		}
	}

	transaction, err := h.templateService.UseTemplate(c.Request().Context(), userID, templateID, req.TransactionDate)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:    toTransactionResponse(transaction, nil),
		Message: "Transaction added from template",
	})
}

// DeleteTemplate removes a template
// @Summary Delete template
// @Tags Templates
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 204
// @Router /templates/{id} [delete]
func (h *TemplateHandler) DeleteTemplate(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	templateID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid template ID"))
	}

	if err := h.templateService.DeleteTemplate(userID, templateID); err != nil {
		return sendServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
