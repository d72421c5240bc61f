// Package sheets copies transactions into a Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"walletwhiz/internal/config"
	"walletwhiz/internal/models"
	"walletwhiz/internal/services"

	"github.com/google/uuid"
	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const dateLayout = "2006-01-02"

var _ services.BackupSink = (*Client)(nil)

// Client appends rows to one sheet of a spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *slog.Logger
}

// New authenticates with the service account named in cfg.
func New(ctx context.Context, cfg config.SheetsConfig, logger *slog.Logger) (*Client, error) {
	credentials, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		option.WithCredentialsJSON(credentials),
		option.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, cfg, logger), nil
}

// NewWithService wraps an already configured service.
func NewWithService(svc *gsheet.Service, cfg config.SheetsConfig, logger *slog.Logger) *Client {
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
	}
}

func loadCredentials(cfg config.SheetsConfig) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials")
	}
}

// AppendTransactions writes one row per transaction below the existing data
// and returns how many rows the API reports as written.
func (c *Client) AppendTransactions(ctx context.Context, userID uuid.UUID, transactions []models.Transaction) (int, error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	values := make([][]interface{}, 0, len(transactions))
	for i := range transactions {
		values = append(values, Row(userID, &transactions[i]))
	}

	resp, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.sheetName+"!A:J", &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("append rows: %w", err)
	}

	written := len(values)
	if resp.Updates != nil {
		written = int(resp.Updates.UpdatedRows)
	}
	c.logger.InfoContext(ctx, "transactions appended to sheet",
		slog.String("user_id", userID.String()),
		slog.String("sheet", c.sheetName),
		slog.Int("rows", written))
	return written, nil
}

// Row is the column layout of the backup sheet.
func Row(userID uuid.UUID, t *models.Transaction) []interface{} {
	category := ""
	if t.Category != nil {
		category = t.Category.Name
	}
	return []interface{}{
		t.ID.String(),
		userID.String(),
		t.TransactionDate.Format(dateLayout),
		t.Type,
		t.Amount.StringFixed(2),
		category,
		t.Description,
		strings.Join(t.Tags, " "),
		t.PaymentMethod,
		t.Location,
	}
}
