package errors

import (
	"fmt"
	"net/http"
	"sort"
)

// ErrorResponse is the envelope every failed request returns.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details []string    `json:"details,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	TraceID string      `json:"trace_id"`
}

type ErrorOption func(*ErrorResponse)

func WithDetails(details ...string) ErrorOption {
	return func(er *ErrorResponse) {
		er.Error.Details = details
	}
}

func WithMessage(message string) ErrorOption {
	return func(er *ErrorResponse) {
		er.Error.Message = message
	}
}

// WithData attaches a machine-readable payload, e.g. the transactions a
// duplicate check matched.
func WithData(data interface{}) ErrorOption {
	return func(er *ErrorResponse) {
		er.Error.Data = data
	}
}

func NewErrorResponse(code ErrorCode, traceID string, opts ...ErrorOption) *ErrorResponse {
	response := &ErrorResponse{
		Error: ErrorDetail{
			Code:    string(code),
			Message: GetErrorMessage(code),
			TraceID: traceID,
			Details: []string{},
		},
	}

	for _, opt := range opts {
		opt(response)
	}

	return response
}

// NewValidationError renders field errors as "field: message", sorted by
// field so responses are stable.
func NewValidationError(fieldErrors map[string]string, traceID string) *ErrorResponse {
	fields := make([]string, 0, len(fieldErrors))
	for field := range fieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	details := make([]string, 0, len(fields))
	for _, field := range fields {
		details = append(details, fmt.Sprintf("%s: %s", field, fieldErrors[field]))
	}

	return NewErrorResponse(ValidationGeneral, traceID, WithDetails(details...))
}

// WrapSystemError hides err from the client behind SYSTEM_001 and hands it
// back for server-side logging.
func WrapSystemError(err error, traceID string) (*ErrorResponse, error) {
	return NewErrorResponse(SystemInternalError, traceID), err
}

func WrapDatabaseError(err error, traceID string) (*ErrorResponse, error) {
	return NewErrorResponse(SystemDatabaseError, traceID), err
}

func GetHTTPStatus(code ErrorCode) int {
	switch code {
	case ValidationGeneral, ValidationRequiredField, ValidationInvalidFormat,
		ValidationOutOfRange, ValidationInvalidEmail, ValidationWeakPassword,
		ValidationInvalidDate, TransactionInvalidAmount, TransactionInvalidType,
		BudgetInvalidPeriod, RecurringInvalidFrequency, ImportInvalidFile, ImportNoRows,
		UserInvalidCurrency, UserInvalidTheme:
		return http.StatusBadRequest

	case AuthInvalidCredentials, AuthMissingToken, AuthExpiredToken, AuthInvalidTokenFormat:
		return http.StatusUnauthorized

	case AuthForbidden, AuthAccountLocked:
		return http.StatusForbidden

	case UserNotFound, CategoryNotFound, TransactionNotFound, BudgetNotFound,
		GoalNotFound, TemplateNotFound, InsightNotFound, LendingNotFound, RecurringNotFound,
		SystemRouteNotFound:
		return http.StatusNotFound

	case UserAlreadyExists, CategoryAlreadyExists, CategoryInUse,
		TransactionDuplicate, LendingAlreadyPaid, ImportAccountNotEmpty:
		return http.StatusConflict

	case TransactionValidationFailed, CategoryTypeMismatch, BudgetIncomeCategory, GoalInactive:
		return http.StatusUnprocessableEntity

	case SystemRateLimitExceeded:
		return http.StatusTooManyRequests

	case SystemServiceUnavailable, ImportBackupDisabled:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

func (er *ErrorResponse) GetHTTPStatus() int {
	return GetHTTPStatus(ErrorCode(er.Error.Code))
}

func (er *ErrorResponse) IsClientError() bool {
	status := er.GetHTTPStatus()
	return status >= 400 && status < 500
}

func (er *ErrorResponse) IsServerError() bool {
	return er.GetHTTPStatus() >= 500
}

func (er *ErrorResponse) String() string {
	return fmt.Sprintf("[%s] %s (trace: %s)", er.Error.Code, er.Error.Message, er.Error.TraceID)
}
