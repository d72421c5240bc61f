package handlers

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/errors"
	"walletwhiz/internal/models"
	"walletwhiz/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	defaultTagLimit  = 10
	cacheTTL         = time.Minute
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService services.TransactionServiceInterface
	tagService         services.TagServiceInterface
	settingsService    services.SettingsServiceInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(
	transactionService services.TransactionServiceInterface,
	tagService services.TagServiceInterface,
	settingsService services.SettingsServiceInterface,
) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		tagService:         tagService,
		settingsService:    settingsService,
	}
}

// CreateTransaction adds an income or expense
// @Summary Add transaction
// @Description Store a transaction. Without a category it is auto-categorised from the description; #hashtags in description and notes become tags. A likely duplicate is rejected with 409 and the matching rows unless force is true.
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateTransactionRequest true "Transaction"
// @Success 201 {object} SuccessResponse{data=dto.TransactionResponse}
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body"
// @Failure 404 {object} errors.ErrorResponse "CATEGORY_001 - Category not found"
// @Failure 409 {object} errors.ErrorResponse "TRANSACTION_004 - Possible duplicate, data holds the candidates"
// @Failure 422 {object} errors.ErrorResponse "CATEGORY_004 - Category type does not match"
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	transaction, err := h.transactionService.AddTransaction(c.Request().Context(), userID, &req)
	if err != nil {
		var duplicate *services.DuplicateTransactionError
		if stderrors.As(err, &duplicate) {
			return SendError(c, errors.TransactionDuplicate,
				errors.WithData(h.toResponses(userID, duplicate.Candidates)))
		}
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:    h.toResponse(userID, transaction),
		Message: "Transaction added",
	})
}

// ListTransactions returns one page of the user's transactions
// @Summary List transactions
// @Description Newest first, cursor paginated and filtered
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param cursor query string false "Cursor from the previous page"
// @Param limit query int false "Page size (max 100)" default(20)
// @Param start_date query string false "From date (YYYY-MM-DD)"
// @Param end_date query string false "To date, inclusive (YYYY-MM-DD)"
// @Param type query string false "Transaction type" Enums(income, expense)
// @Param category_id query string false "Category ID"
// @Param min_amount query string false "Minimum amount"
// @Param max_amount query string false "Maximum amount"
// @Param search query string false "Text in description or notes"
// @Param tag query string false "Tag"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid filter or cursor"
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	filters, err := parseTransactionFilters(c)
	if err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	pagination, err := parsePaginationParams(c)
	if err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	transactions, nextCursor, err := h.transactionService.ListTransactions(userID, filters, pagination.Cursor, pagination.Limit)
	if err != nil {
		return sendServiceError(c, err)
	}

	c.Response().Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d", int(cacheTTL.Seconds())))

	return c.JSON(http.StatusOK, dto.ListTransactionsResponse{
		Transactions: h.toResponses(userID, transactions),
		Pagination: dto.PaginationInfo{
			HasMore:    nextCursor != "",
			NextCursor: nextCursor,
			Limit:      pagination.Limit,
		},
	})
}

// GetTransaction returns one transaction
// @Summary Get transaction
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} SuccessResponse{data=dto.TransactionResponse}
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001 - Transaction not found"
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	transactionID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Transaction ID must be a valid UUID"))
	}

	transaction, err := h.transactionService.GetTransaction(userID, transactionID)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: h.toResponse(userID, transaction)})
}

// UpdateTransaction changes the fields present in the body
// @Summary Update transaction
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body dto.UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} SuccessResponse{data=dto.TransactionResponse}
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001 - Transaction not found"
// @Router /transactions/{id} [patch]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	transactionID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Transaction ID must be a valid UUID"))
	}

	var req dto.UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, transactionID, &req)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    h.toResponse(userID, transaction),
		Message: "Transaction updated",
	})
}

// DeleteTransaction removes a transaction
// @Summary Delete transaction
// @Tags Transactions
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001 - Transaction not found"
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	transactionID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Transaction ID must be a valid UUID"))
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		return sendServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CheckDuplicates runs the duplicate check without storing anything
// @Summary Check for duplicates
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.DuplicateCheckRequest true "Candidate transaction"
// @Success 200 {object} SuccessResponse{data=dto.DuplicateCheckResponse}
// @Router /transactions/check-duplicates [post]
func (h *TransactionHandler) CheckDuplicates(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.DuplicateCheckRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return SendError(c, errors.TransactionInvalidAmount)
	}

	candidates, err := h.transactionService.CheckDuplicates(userID, amount, req.Description, req.TransactionDate)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: dto.DuplicateCheckResponse{
		IsDuplicate: len(candidates) > 0,
		Candidates:  h.toResponses(userID, candidates),
	}})
}

// ListTags returns every tag the user has used
// @Summary List tags
// @Tags Tags
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=dto.TagSuggestionsResponse}
// @Router /tags [get]
func (h *TransactionHandler) ListTags(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	tags, err := h.tagService.ListTags(userID)
	if err != nil {
		return SendSystemError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: dto.TagSuggestionsResponse{Tags: tags}})
}

// SuggestTags completes a tag prefix from the user's history
// @Summary Suggest tags
// @Tags Tags
// @Security BearerAuth
// @Produce json
// @Param prefix query string true "Tag prefix, with or without #"
// @Param limit query int false "Maximum suggestions" default(10)
// @Success 200 {object} SuccessResponse{data=dto.TagSuggestionsResponse}
// @Router /tags/suggest [get]
func (h *TransactionHandler) SuggestTags(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	limit := getIntParam(c, "limit", defaultTagLimit)
	if limit < 1 || limit > maxPageLimit {
		limit = defaultTagLimit
	}

	tags, err := h.tagService.SuggestTags(userID, c.QueryParam("prefix"), limit)
	if err != nil {
		return SendSystemError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: dto.TagSuggestionsResponse{Tags: tags}})
}

// parseTransactionFilters parses and validates transaction filter parameters
func parseTransactionFilters(c echo.Context) (models.TransactionFilters, error) {
	var filters models.TransactionFilters

	startDate, err := parseDateQuery(c, "start_date")
	if err != nil {
		return filters, err
	}
	filters.StartDate = startDate

	endDate, err := parseDateQuery(c, "end_date")
	if err != nil {
		return filters, err
	}
	if endDate != nil {
		// Inclusive of the whole end day.
		endOfDay := endDate.Add(24*time.Hour - time.Nanosecond)
		filters.EndDate = &endOfDay
	}
	if filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Before(*filters.StartDate) {
		return filters, fmt.Errorf("end_date must not be before start_date")
	}

	if txnType := strings.ToLower(c.QueryParam("type")); txnType != "" {
		if !models.IsValidTransactionType(txnType) {
			return filters, fmt.Errorf("invalid type, must be 'income' or 'expense'")
		}
		filters.Type = txnType
	}

	if categoryID := c.QueryParam("category_id"); categoryID != "" {
		id, err := uuid.Parse(categoryID)
		if err != nil {
			return filters, fmt.Errorf("invalid category_id")
		}
		filters.CategoryID = &id
	}

	if minAmountStr := c.QueryParam("min_amount"); minAmountStr != "" {
		minAmount, err := decimal.NewFromString(minAmountStr)
		if err != nil {
			return filters, fmt.Errorf("invalid min_amount format")
		}
		filters.MinAmount = &minAmount
	}

	if maxAmountStr := c.QueryParam("max_amount"); maxAmountStr != "" {
		maxAmount, err := decimal.NewFromString(maxAmountStr)
		if err != nil {
			return filters, fmt.Errorf("invalid max_amount format")
		}
		filters.MaxAmount = &maxAmount
	}

	filters.Search = strings.TrimSpace(c.QueryParam("search"))
	filters.Tag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.QueryParam("tag")), "#"))

	return filters, nil
}

// parsePaginationParams parses pagination parameters from query string
func parsePaginationParams(c echo.Context) (dto.PaginationParams, error) {
	params := dto.PaginationParams{
		Cursor: c.QueryParam("cursor"),
		Limit:  defaultPageLimit,
	}

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return params, fmt.Errorf("invalid limit parameter")
		}

		if limit < 1 {
			return params, fmt.Errorf("limit must be at least 1")
		}

		if limit > maxPageLimit {
			limit = maxPageLimit
		}

		params.Limit = limit
	}

	return params, nil
}

// currency looks up the user's display currency. Formatting is best
// effort, a failed lookup leaves FormattedAmount empty.
func (h *TransactionHandler) currency(userID uuid.UUID) *models.Currency {
	settings, err := h.settingsService.GetSettings(userID)
	if err != nil {
		slog.Warn("failed to load currency for formatting",
			slog.String("user_id", userID.String()),
			slog.Any("error", err),
		)
		return nil
	}
	return settings.Currency
}

func (h *TransactionHandler) toResponse(userID uuid.UUID, transaction *models.Transaction) dto.TransactionResponse {
	return toTransactionResponse(transaction, h.currency(userID))
}

func (h *TransactionHandler) toResponses(userID uuid.UUID, transactions []models.Transaction) []dto.TransactionResponse {
	response := make([]dto.TransactionResponse, 0, len(transactions))
	if len(transactions) == 0 {
		return response
	}

	currency := h.currency(userID)
	for i := range transactions {
		response = append(response, toTransactionResponse(&transactions[i], currency))
	}
	return response
}

func toTransactionResponse(txn *models.Transaction, currency *models.Currency) dto.TransactionResponse {
	response := dto.TransactionResponse{
		ID:              txn.ID,
		Type:            txn.Type,
		Amount:          txn.Amount.StringFixed(2),
		CategoryID:      txn.CategoryID,
		Description:     txn.Description,
		TransactionDate: txn.TransactionDate,
		Notes:           txn.Notes,
		Tags:            []string(txn.Tags),
		Location:        txn.Location,
		PaymentMethod:   txn.PaymentMethod,
		CreatedAt:       txn.CreatedAt,
	}
	if response.Tags == nil {
		response.Tags = []string{}
	}
	if txn.Category != nil {
		response.Category = txn.Category.Name
	}
	if currency != nil {
		response.FormattedAmount = currency.Format(txn.Amount.InexactFloat64())
	}
	return response
}
