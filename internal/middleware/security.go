package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets the browser hardening headers. Responses default to
// no-store; handlers that allow caching override Cache-Control themselves.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Response().Header()
			header.Set("X-Content-Type-Options", "nosniff")
			header.Set("X-Frame-Options", "DENY")
			header.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			header.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			header.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			header.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

			// Financial data must not sit in shared caches.
			header.Set("Cache-Control", "no-store")
			header.Set("Pragma", "no-cache")

			return next(c)
		}
	}
}
