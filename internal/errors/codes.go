package errors

// ErrorCode is the stable, machine-readable identifier sent to clients.
type ErrorCode string

// Authentication (AUTH_*)
const (
	AuthInvalidCredentials ErrorCode = "AUTH_001"
	AuthMissingToken       ErrorCode = "AUTH_002"
	AuthExpiredToken       ErrorCode = "AUTH_003"
	AuthInvalidTokenFormat ErrorCode = "AUTH_004"
	AuthForbidden          ErrorCode = "AUTH_005"
	AuthAccountLocked      ErrorCode = "AUTH_006"
)

// Validation (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationInvalidEmail  ErrorCode = "VALIDATION_005"
	ValidationWeakPassword  ErrorCode = "VALIDATION_006"
	ValidationInvalidDate   ErrorCode = "VALIDATION_007"
)

// Users and settings (USER_*)
const (
	UserNotFound        ErrorCode = "USER_001"
	UserAlreadyExists   ErrorCode = "USER_002"
	UserInvalidCurrency ErrorCode = "USER_003"
	UserInvalidTheme    ErrorCode = "USER_004"
)

// Categories (CATEGORY_*)
const (
	CategoryNotFound      ErrorCode = "CATEGORY_001"
	CategoryAlreadyExists ErrorCode = "CATEGORY_002"
	CategoryInUse         ErrorCode = "CATEGORY_003"
	CategoryTypeMismatch  ErrorCode = "CATEGORY_004"
)

// Transactions (TRANSACTION_*)
const (
	TransactionNotFound         ErrorCode = "TRANSACTION_001"
	TransactionInvalidAmount    ErrorCode = "TRANSACTION_002"
	TransactionInvalidType      ErrorCode = "TRANSACTION_003"
	TransactionDuplicate        ErrorCode = "TRANSACTION_004"
	TransactionValidationFailed ErrorCode = "TRANSACTION_005"
)

// Budgets (BUDGET_*)
const (
	BudgetNotFound       ErrorCode = "BUDGET_001"
	BudgetInvalidPeriod  ErrorCode = "BUDGET_002"
	BudgetIncomeCategory ErrorCode = "BUDGET_003"
)

// Savings goals (GOAL_*)
const (
	GoalNotFound ErrorCode = "GOAL_001"
	GoalInactive ErrorCode = "GOAL_002"
)

// Templates (TEMPLATE_*)
const (
	TemplateNotFound ErrorCode = "TEMPLATE_001"
)

// Insights (INSIGHT_*)
const (
	InsightNotFound ErrorCode = "INSIGHT_001"
)

// Lending records (LENDING_*)
const (
	LendingNotFound    ErrorCode = "LENDING_001"
	LendingAlreadyPaid ErrorCode = "LENDING_002"
)

// Recurring payments (RECURRING_*)
const (
	RecurringNotFound         ErrorCode = "RECURRING_001"
	RecurringInvalidFrequency ErrorCode = "RECURRING_002"
)

// Import, export and backup (IMPORT_*)
const (
	ImportInvalidFile     ErrorCode = "IMPORT_001"
	ImportNoRows          ErrorCode = "IMPORT_002"
	ImportAccountNotEmpty ErrorCode = "IMPORT_003"
	ImportBackupDisabled  ErrorCode = "IMPORT_004"
)

// System (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
	SystemUnexpectedError    ErrorCode = "SYSTEM_005"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_006"
	SystemRouteNotFound      ErrorCode = "SYSTEM_007"
)

var errorMessages = map[ErrorCode]string{
	AuthInvalidCredentials: "Invalid username or password",
	AuthMissingToken:       "Authorization token is required",
	AuthExpiredToken:       "Authorization token has expired",
	AuthInvalidTokenFormat: "Invalid authorization token format",
	AuthForbidden:          "You do not have access to this resource",
	AuthAccountLocked:      "Account is locked after too many failed logins",

	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationOutOfRange:    "Field value is out of allowed range",
	ValidationInvalidEmail:  "Invalid email address format",
	ValidationWeakPassword:  "Password does not meet the security requirements",
	ValidationInvalidDate:   "Invalid date format or range",

	UserNotFound:        "User not found",
	UserAlreadyExists:   "A user with this username or email already exists",
	UserInvalidCurrency: "Unknown currency code",
	UserInvalidTheme:    "Unknown theme",

	CategoryNotFound:      "Category not found",
	CategoryAlreadyExists: "A category with this name and type already exists",
	CategoryInUse:         "Category still has transactions",
	CategoryTypeMismatch:  "Category type does not match the transaction type",

	TransactionNotFound:         "Transaction not found",
	TransactionInvalidAmount:    "Transaction amount must be positive",
	TransactionInvalidType:      "Transaction type must be income or expense",
	TransactionDuplicate:        "A similar transaction already exists. Resubmit with force to add it anyway",
	TransactionValidationFailed: "Transaction validation failed",

	BudgetNotFound:       "Budget not found",
	BudgetInvalidPeriod:  "Budget period must be weekly, monthly or yearly",
	BudgetIncomeCategory: "Budgets can only be set on expense categories",

	GoalNotFound: "Savings goal not found",
	GoalInactive: "Savings goal is no longer active",

	TemplateNotFound: "Template not found",

	InsightNotFound: "Insight not found",

	LendingNotFound:    "Lending record not found",
	LendingAlreadyPaid: "Lending record is already marked paid",

	RecurringNotFound:         "Recurring payment not found",
	RecurringInvalidFrequency: "Frequency must be daily, weekly, monthly or yearly",

	ImportInvalidFile:     "The uploaded file could not be read",
	ImportNoRows:          "The uploaded file contains no data rows",
	ImportAccountNotEmpty: "Backups can only be restored into an empty account",
	ImportBackupDisabled:  "Cloud backup is not configured",

	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemConfigurationError: "System configuration error",
	SystemUnexpectedError:    "An unexpected error occurred",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
	SystemRouteNotFound:      "Resource not found",
}

// GetErrorMessage falls back to a generic message for unknown codes.
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
