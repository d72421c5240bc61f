package middleware

import (
	stderrors "errors"
	"log/slog"

	"walletwhiz/internal/errors"
	"walletwhiz/internal/handlers"
	"walletwhiz/internal/repositories"
	"walletwhiz/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys RequireAuth fills for the handlers behind it.
const (
	UserIDContextKey   = "user_id"
	UsernameContextKey = "username"
	TokenJTIContextKey = "token_jti"
)

// RequireAuth accepts requests carrying a valid, unrevoked access token.
func RequireAuth(tokenService services.TokenServiceInterface, blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return handlers.SendError(c, errors.AuthMissingToken)
			}

			token, err := tokenService.ExtractTokenFromHeader(authHeader)
			if err != nil {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat)
			}

			claims, err := tokenService.ValidateAccessToken(token)
			if err != nil {
				if stderrors.Is(err, services.ErrExpiredToken) {
					return handlers.SendError(c, errors.AuthExpiredToken)
				}
				return handlers.SendError(c, errors.AuthInvalidTokenFormat)
			}

			revoked, err := blacklistedTokenRepo.IsBlacklisted(claims.ID)
			if err != nil {
				slog.Error("failed to check token blacklist",
					slog.String("trace_id", GetTraceID(c)),
					slog.Any("error", err),
				)
				return handlers.SendError(c, errors.SystemServiceUnavailable)
			}
			if revoked {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat, errors.WithDetails("Token has been revoked"))
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat, errors.WithDetails("Invalid user ID in token"))
			}

			c.Set(UserIDContextKey, userID)
			c.Set(UsernameContextKey, claims.Username)
			c.Set(TokenJTIContextKey, claims.ID)

			return next(c)
		}
	}
}
