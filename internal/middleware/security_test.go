package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	handler := SecurityHeaders()(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	rec := httptest.NewRecorder()
	err := handler(e.NewContext(httptest.NewRequest(http.MethodGet, "/reports/dashboard", nil), rec))
	assert.NoError(t, err)

	headers := rec.Header()
	assert.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", headers.Get("X-Frame-Options"))
	assert.Contains(t, headers.Get("Strict-Transport-Security"), "max-age=31536000")
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", headers.Get("Content-Security-Policy"))
	assert.Equal(t, "no-store", headers.Get("Cache-Control"))
}

func TestSecurityHeaders_HandlerMayAllowCaching(t *testing.T) {
	e := echo.New()
	handler := SecurityHeaders()(func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", "private, max-age=60")
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	assert.NoError(t, handler(e.NewContext(httptest.NewRequest(http.MethodGet, "/transactions", nil), rec)))
	assert.Equal(t, "private, max-age=60", rec.Header().Get("Cache-Control"))
}
