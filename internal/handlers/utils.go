package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"walletwhiz/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

// ErrUnauthorized is returned when user context is invalid
var ErrUnauthorized = fmt.Errorf("unauthorized")

// getUserIDFromContext reads the id RequireAuth stored on the context.
func getUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.UUID{}, ErrUnauthorized
	}
	return userID, nil
}

func getIntParam(c echo.Context, name string, defaultValue int) int {
	param := c.QueryParam(name)
	if param == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(param)
	if err != nil {
		return defaultValue
	}
	return value
}

func getBoolParam(c echo.Context, name string) bool {
	value, err := strconv.ParseBool(c.QueryParam(name))
	return err == nil && value
}

func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

// parseDateQuery accepts YYYY-MM-DD or RFC3339. A missing parameter is nil.
func parseDateQuery(c echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(dateLayout, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD or RFC3339", name)
	}
	t = t.UTC()
	return &t, nil
}

// parseMonthQuery reads ?year=&month=, defaulting to the current month.
func parseMonthQuery(c echo.Context, now time.Time) (int, time.Month, error) {
	year := getIntParam(c, "year", now.Year())
	month := getIntParam(c, "month", int(now.Month()))
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month must be between 1 and 12")
	}
	if year < 1970 || year > 9999 {
		return 0, 0, fmt.Errorf("year %d is out of range", year)
	}
	return year, time.Month(month), nil
}

func getClientIP(c echo.Context) string {
	xff := c.Request().Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := c.Request().Header.Get("X-Real-IP")
	if xri != "" {
		return xri
	}

	return c.Request().RemoteAddr
}

type echoValidator struct {
	v *validator.Validate
}

// NewValidator adapts the shared rule set (money_amount, transaction_type,
// frequency and friends) to echo's Validator.
func NewValidator() echo.Validator {
	return echoValidator{v: validation.GetValidator().GetValidate()}
}

func (ev echoValidator) Validate(i interface{}) error {
	return ev.v.Struct(i)
}
