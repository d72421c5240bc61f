package handlers

import (
	"context"
	"net/http"
	"time"

	"walletwhiz/internal/errors"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const healthPingTimeout = 2 * time.Second

// HealthHandler serves the unauthenticated liveness check.
type HealthHandler struct {
	ping func(ctx context.Context) error
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{ping: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

// Check reports whether the database answers within two seconds
// @Summary Health check
// @Description Reports API status and database reachability
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,database=string,latency_ms=int,time=string} "Service is healthy"
// @Failure 503 {object} errors.ErrorResponse "SYSTEM_003 - Database unreachable"
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
	defer cancel()

	started := time.Now()
	if err := h.ping(ctx); err != nil {
		return SendError(c, errors.SystemServiceUnavailable, errors.WithDetails("Database unreachable"))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"database":   "up",
		"latency_ms": time.Since(started).Milliseconds(),
		"time":       time.Now().UTC().Format(time.RFC3339),
	})
}
