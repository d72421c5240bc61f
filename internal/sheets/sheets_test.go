package sheets

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"walletwhiz/internal/config"
	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	return NewWithService(svc, config.SheetsConfig{SpreadsheetID: "sheet-123"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sampleTransactions() []models.Transaction {
	return []models.Transaction{
		{
			ID:              uuid.New(),
			Type:            models.TransactionTypeExpense,
			Amount:          decimal.RequireFromString("12.5"),
			Description:     "Coffee #work",
			TransactionDate: time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC),
			Tags:            models.StringList{"work"},
			PaymentMethod:   "Card",
			Category:        &models.Category{Name: "Food"},
		},
		{
			ID:              uuid.New(),
			Type:            models.TransactionTypeIncome,
			Amount:          decimal.NewFromInt(3000),
			Description:     "Salary",
			TransactionDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestAppendTransactions(t *testing.T) {
	userID := uuid.New()
	var body gsheet.ValueRange
	var path, query string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		query = r.URL.RawQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"updates":{"updatedRows":2}}`))
	})

	rows, err := client.AppendTransactions(context.Background(), userID, sampleTransactions())
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	assert.Contains(t, path, "/spreadsheets/sheet-123/values/")
	assert.True(t, strings.HasSuffix(path, ":append"))
	assert.Contains(t, query, "valueInputOption=USER_ENTERED")
	assert.Contains(t, query, "insertDataOption=INSERT_ROWS")

	require.Len(t, body.Values, 2)
	first := body.Values[0]
	assert.Equal(t, userID.String(), first[1])
	assert.Equal(t, "2025-03-04", first[2])
	assert.Equal(t, "12.50", first[4])
	assert.Equal(t, "Food", first[5])
	assert.Equal(t, "work", first[7])
	assert.Equal(t, "", body.Values[1][5])
}

func TestAppendTransactions_Empty(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	rows, err := client.AppendTransactions(context.Background(), uuid.New(), nil)
	assert.NoError(t, err)
	assert.Zero(t, rows)
	assert.False(t, called)
}

func TestAppendTransactions_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"no access"}}`))
	})

	_, err := client.AppendTransactions(context.Background(), uuid.New(), sampleTransactions())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "append rows")
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), config.SheetsConfig{SpreadsheetID: "x"}, slog.Default())
	assert.EqualError(t, err, "missing service account credentials")
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), config.SheetsConfig{SpreadsheetID: "x", CredentialsFile: "/does/not/exist.json"}, slog.Default())
	assert.ErrorContains(t, err, "read service account file")
}

func TestNewWithService_DefaultSheetName(t *testing.T) {
	client := NewWithService(nil, config.SheetsConfig{SpreadsheetID: "x"}, slog.Default())
	assert.Equal(t, "Transactions", client.sheetName)
}
