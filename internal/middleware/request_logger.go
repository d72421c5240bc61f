package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "walletwhiz_http_request_duration_seconds",
		Help:    "HTTP request latency by route, method and status",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "method", "status"},
)

// RequestLogger writes one access log line per request and records its
// latency. It must run after RequestID.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final.
				c.Error(err)
			}

			status := c.Response().Status
			elapsed := time.Since(start)
			requestDuration.WithLabelValues(c.Path(), c.Request().Method, strconv.Itoa(status)).Observe(elapsed.Seconds())

			attrs := []any{
				slog.String("trace_id", GetTraceID(c)),
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", elapsed),
			}
			if userID := c.Get(UserIDContextKey); userID != nil {
				attrs = append(attrs, slog.Any("user_id", userID))
			}
			logger.Info("request", attrs...)
			return nil
		}
	}
}
