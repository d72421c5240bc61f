package handlers

import (
	"net/http"
	"strings"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/errors"
	"walletwhiz/internal/models"
	"walletwhiz/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandler serves the public /auth endpoints.
type AuthHandler struct {
	authService services.AuthServiceInterface
}

func NewAuthHandler(authService services.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates an account
// @Summary Register a new user
// @Description Create a user account. The default income and expense categories are created with it.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} SuccessResponse{data=dto.UserProfileResponse} "User created successfully"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 or VALIDATION_006 - Invalid body or weak password"
// @Failure 409 {object} errors.ErrorResponse "USER_002 - Username or email already taken"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	user, err := h.authService.Register(&req, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:    toUserProfileResponse(user),
		Message: "User registered successfully",
	})
}

// Login exchanges credentials for a token pair
// @Summary Login user
// @Description Authenticate with username or email and receive JWT access and refresh tokens. Three failed attempts lock the account.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.TokenResponse "Login successful with JWT tokens"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Invalid credentials"
// @Failure 403 {object} errors.ErrorResponse "AUTH_006 - Account locked"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	return h.exchange(c, &req, func(ip, ua string) (*dto.TokenResponse, error) {
		return h.authService.Login(&req, ip, ua)
	})
}

// RefreshToken rotates the refresh token
// @Summary Refresh access token
// @Description Exchange a refresh token for a new token pair. The old refresh token is revoked.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.TokenResponse "Token refreshed successfully"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body"
// @Failure 401 {object} errors.ErrorResponse "AUTH_004 - Invalid or expired refresh token"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req dto.RefreshTokenRequest
	return h.exchange(c, &req, func(ip, ua string) (*dto.TokenResponse, error) {
		return h.authService.RefreshTokens(req.RefreshToken, ip, ua)
	})
}

// Logout ends the session of the presented access token
// @Summary Logout user
// @Description Blacklist the access token and revoke the user's refresh tokens.
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse "Logout successful"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 or AUTH_004 - Missing or malformed token"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return SendError(c, errors.AuthMissingToken)
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return SendError(c, errors.AuthInvalidTokenFormat)
	}

	// The service logs its own failures; the client is always logged out.
	_ = h.authService.Logout(token, getClientIP(c), c.Request().UserAgent())

	return c.JSON(http.StatusOK, SuccessResponse{Message: "Logout successful"})
}

// exchange binds and validates req, then answers with the token pair issue
// returns.
func (h *AuthHandler) exchange(c echo.Context, req interface{}, issue func(ip, userAgent string) (*dto.TokenResponse, error)) error {
	if err := c.Bind(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	tokens, err := issue(getClientIP(c), c.Request().UserAgent())
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

func toUserProfileResponse(user *models.User) dto.UserProfileResponse {
	return dto.UserProfileResponse{
		ID:           user.ID.String(),
		Username:     user.Username,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Theme:        user.Theme,
		CurrencyCode: user.CurrencyCode,
		LastLoginAt:  user.LastLoginAt,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}
