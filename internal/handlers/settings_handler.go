package handlers

import (
	"net/http"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/errors"
	"walletwhiz/internal/models"
	"walletwhiz/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// SettingsHandler serves the signed-in user's profile, preferences and
// account activity.
type SettingsHandler struct {
	settingsService services.SettingsServiceInterface
	passwordService services.PasswordServiceInterface
	auditService    services.AuditServiceInterface
}

func NewSettingsHandler(
	settingsService services.SettingsServiceInterface,
	passwordService services.PasswordServiceInterface,
	auditService services.AuditServiceInterface,
) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		passwordService: passwordService,
		auditService:    auditService,
	}
}

// GetProfile returns the authenticated user
// @Summary Get profile
// @Tags Settings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=dto.UserProfileResponse}
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 404 {object} errors.ErrorResponse "USER_001 - User not found"
// @Router /me [get]
func (h *SettingsHandler) GetProfile(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	user, err := h.settingsService.GetProfile(userID)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: toUserProfileResponse(user)})
}

// GetSettings returns theme and preferred currency
// @Summary Get settings
// @Tags Settings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=dto.SettingsResponse}
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Router /me/settings [get]
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	settings, err := h.settingsService.GetSettings(userID)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: toSettingsResponse(settings)})
}

// UpdateSettings changes theme and/or currency
// @Summary Update settings
// @Tags Settings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateSettingsRequest true "Fields to change"
// @Success 200 {object} SuccessResponse{data=dto.SettingsResponse}
// @Failure 400 {object} errors.ErrorResponse "USER_003 or USER_004 - Unknown currency or theme"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Router /me/settings [patch]
func (h *SettingsHandler) UpdateSettings(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	settings, err := h.settingsService.UpdateSettings(userID, &req)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    toSettingsResponse(settings),
		Message: "Settings updated",
	})
}

// ListCurrencies returns the currencies a user can choose from
// @Summary List currencies
// @Tags Settings
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]dto.CurrencyResponse}
// @Router /currencies [get]
func (h *SettingsHandler) ListCurrencies(c echo.Context) error {
	currencies, err := h.settingsService.ListCurrencies()
	if err != nil {
		return SendSystemError(c, err)
	}

	response := make([]dto.CurrencyResponse, 0, len(currencies))
	for i := range currencies {
		response = append(response, toCurrencyResponse(&currencies[i]))
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: response})
}

// ChangePassword replaces the user's password
// @Summary Change password
// @Tags Settings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_006 - New password too weak"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Current password is wrong"
// @Router /me/password [post]
func (h *SettingsHandler) ChangePassword(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	if err := h.passwordService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		return sendServiceError(c, err)
	}

	h.auditService.Record(&userID, models.AuditActionPasswordChanged, "user", userID.String(),
		getClientIP(c), c.Request().UserAgent(), nil)

	return c.JSON(http.StatusOK, SuccessResponse{Message: "Password changed"})
}

// GetActivity lists the user's audit log, newest first
// @Summary Account activity
// @Tags Settings
// @Security BearerAuth
// @Produce json
// @Param offset query int false "Rows to skip" default(0)
// @Param limit query int false "Rows to return (max 100)" default(20)
// @Success 200 {object} SuccessResponse{data=[]models.AuditLog}
// @Router /me/activity [get]
func (h *SettingsHandler) GetActivity(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	offset := getIntParam(c, "offset", 0)
	limit := getIntParam(c, "limit", defaultActivityLimit)
	if offset < 0 || limit < 1 || limit > maxActivityLimit {
		return SendError(c, errors.ValidationOutOfRange, errors.WithDetails("offset must be >= 0 and limit between 1 and 100"))
	}

	logs, total, err := h.auditService.GetUserActivity(userID, offset, limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: logs,
		Meta: map[string]interface{}{"offset": offset, "limit": limit, "total": total},
	})
}

func toCurrencyResponse(currency *models.Currency) dto.CurrencyResponse {
	if currency == nil {
		return dto.CurrencyResponse{}
	}
	return dto.CurrencyResponse{Code: currency.Code, Name: currency.Name, Symbol: currency.Symbol}
}

func toSettingsResponse(settings *models.UserSettings) dto.SettingsResponse {
	return dto.SettingsResponse{
		Theme:    settings.Theme,
		Currency: toCurrencyResponse(settings.Currency),
	}
}
