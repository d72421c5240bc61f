package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"walletwhiz/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var panicsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "walletwhiz_panics_total",
		Help: "Handler panics recovered, by route",
	},
	[]string{"endpoint"},
)

// PanicRecovery turns a handler panic into a SYSTEM_001 response.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				traceID := GetTraceID(c)
				if traceID == "" {
					traceID = "unknown"
				}

				slog.Error("panic recovered",
					slog.String("trace_id", traceID),
					slog.String("panic", fmt.Sprintf("%v", r)),
					slog.String("stack_trace", string(debug.Stack())),
					slog.String("path", c.Request().URL.Path),
					slog.String("method", c.Request().Method),
				)
				panicsTotal.WithLabelValues(c.Path()).Inc()

				if c.Response().Committed {
					return
				}
				if sendErr := c.JSON(http.StatusInternalServerError, errors.NewErrorResponse(errors.SystemInternalError, traceID)); sendErr != nil {
					slog.Error("failed to send panic recovery response",
						slog.String("trace_id", traceID),
						slog.Any("error", sendErr),
					)
				}
				err = nil
			}()

			return next(c)
		}
	}
}
