package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"walletwhiz/internal/errors"
	"walletwhiz/internal/services"

	"github.com/labstack/echo/v4"
)

// Handlers report failures through SendError (client and business errors,
// 4xx) or SendSystemError (500, internal detail hidden behind the trace id).
// sendServiceError picks between the two for errors coming out of the
// service layer.

const (
	// TraceIDContextKey is the context key for storing the trace ID
	TraceIDContextKey = "trace_id"
)

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty" swaggertype:"object"`
	Message string      `json:"message,omitempty"`
	Meta    interface{} `json:"meta,omitempty" swaggertype:"object"`
}

type ErrorResponse = errors.ErrorResponse

func getTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// SendError sends a standardized error response with trace ID from context
func SendError(c echo.Context, code errors.ErrorCode, opts ...errors.ErrorOption) error {
	traceID := getTraceID(c)
	errorResponse := errors.NewErrorResponse(code, traceID, opts...)
	return c.JSON(errorResponse.GetHTTPStatus(), errorResponse)
}

// SendSystemError logs err and answers with a generic SYSTEM_001.
func SendSystemError(c echo.Context, err error) error {
	traceID := getTraceID(c)
	errorResponse, internal := errors.WrapSystemError(err, traceID)
	slog.Error("request failed",
		slog.String("trace_id", traceID),
		slog.String("path", c.Request().URL.Path),
		slog.Any("error", internal),
	)
	return c.JSON(http.StatusInternalServerError, errorResponse)
}

var serviceErrorCodes = []struct {
	err  error
	code errors.ErrorCode
}{
	{services.ErrInvalidCredentials, errors.AuthInvalidCredentials},
	{services.ErrAccountLocked, errors.AuthAccountLocked},
	{services.ErrInvalidRefreshToken, errors.AuthInvalidTokenFormat},
	{services.ErrUserAlreadyExists, errors.UserAlreadyExists},
	{services.ErrUserNotFound, errors.UserNotFound},
	{services.ErrCurrencyNotFound, errors.UserInvalidCurrency},
	{services.ErrInvalidTheme, errors.UserInvalidTheme},
	{services.ErrCurrentPasswordWrong, errors.AuthInvalidCredentials},
	{services.ErrSamePassword, errors.ValidationWeakPassword},
	{services.ErrPasswordEmpty, errors.ValidationWeakPassword},
	{services.ErrPasswordTooShort, errors.ValidationWeakPassword},
	{services.ErrPasswordTooLong, errors.ValidationWeakPassword},
	{services.ErrPasswordNoUppercase, errors.ValidationWeakPassword},
	{services.ErrPasswordNoLowercase, errors.ValidationWeakPassword},
	{services.ErrPasswordNoNumber, errors.ValidationWeakPassword},
	{services.ErrPasswordNoSpecial, errors.ValidationWeakPassword},

	{services.ErrCategoryNotFound, errors.CategoryNotFound},
	{services.ErrCategoryExists, errors.CategoryAlreadyExists},
	{services.ErrCategoryInUse, errors.CategoryInUse},
	{services.ErrInvalidCategory, errors.ValidationGeneral},
	{services.ErrCategoryTypeMismatch, errors.CategoryTypeMismatch},

	{services.ErrTransactionNotFound, errors.TransactionNotFound},
	{services.ErrInvalidTransaction, errors.TransactionValidationFailed},
	{services.ErrInvalidCursor, errors.ValidationInvalidFormat},

	{services.ErrBudgetNotFound, errors.BudgetNotFound},
	{services.ErrInvalidBudget, errors.ValidationGeneral},
	{services.ErrNoSpendingHistory, errors.ValidationOutOfRange},

	{services.ErrGoalNotFound, errors.GoalNotFound},
	{services.ErrGoalInactive, errors.GoalInactive},
	{services.ErrInvalidGoal, errors.ValidationGeneral},

	{services.ErrTemplateNotFound, errors.TemplateNotFound},
	{services.ErrInvalidTemplate, errors.ValidationGeneral},
	{services.ErrInsightNotFound, errors.InsightNotFound},

	{services.ErrLendingRecordNotFound, errors.LendingNotFound},
	{services.ErrInvalidLendingRecord, errors.ValidationGeneral},

	{services.ErrRecurringPaymentNotFound, errors.RecurringNotFound},
	{services.ErrInvalidRecurringPayment, errors.ValidationGeneral},
	{services.ErrRecurringRunInProgress, errors.SystemServiceUnavailable},

	{services.ErrInvalidPeriod, errors.ValidationInvalidDate},
	{services.ErrInvalidImportFile, errors.ImportInvalidFile},
	{services.ErrInvalidBackup, errors.ImportInvalidFile},
	{services.ErrAccountNotEmpty, errors.ImportAccountNotEmpty},
	{services.ErrCloudBackupDisabled, errors.ImportBackupDisabled},
	{services.ErrCircuitBreakerOpen, errors.SystemServiceUnavailable},
}

// sendServiceError maps known service sentinels to their error code and
// passes the rest to SendSystemError. A wrapped sentinel carries the full
// message as a detail.
func sendServiceError(c echo.Context, err error) error {
	for _, entry := range serviceErrorCodes {
		if stderrors.Is(err, entry.err) {
			if err.Error() != entry.err.Error() {
				return SendError(c, entry.code, errors.WithDetails(err.Error()))
			}
			return SendError(c, entry.code)
		}
	}
	return SendSystemError(c, err)
}
