package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/errors"
	"walletwhiz/internal/models"
	"walletwhiz/internal/services"

	"github.com/labstack/echo/v4"
)

const maxImportFileSize = 5 << 20

// DataHandler moves user data in and out: CSV import and export, JSON
// backups and the spreadsheet copy.
type DataHandler struct {
	importService services.ImportServiceInterface
	exportService services.ExportServiceInterface
	backupService services.BackupServiceInterface
	auditService  services.AuditServiceInterface
	now           func() time.Time
}

func NewDataHandler(
	importService services.ImportServiceInterface,
	exportService services.ExportServiceInterface,
	backupService services.BackupServiceInterface,
	auditService services.AuditServiceInterface,
) *DataHandler {
	return &DataHandler{
		importService: importService,
		exportService: exportService,
		backupService: backupService,
		auditService:  auditService,
		now:           time.Now,
	}
}

// ImportCSV imports a bank statement
// @Summary Import bank CSV
// @Description Columns date, description and amount are required. mappingRules is a JSON object of description substring to category name.
// @Tags Data
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Param force formData bool false "Import rows that look like duplicates"
// @Param mappingRules formData string false "JSON mapping rules"
// @Success 200 {object} SuccessResponse{data=models.ImportResult}
// @Failure 400 {object} errors.ErrorResponse "IMPORT_001 - Invalid file"
// @Router /data/import [post]
func (h *DataHandler) ImportCSV(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return SendError(c, errors.ImportInvalidFile, errors.WithDetails("file is required"))
	}
	if fileHeader.Size > maxImportFileSize {
		return SendError(c, errors.ImportInvalidFile, errors.WithDetails("file exceeds 5MB"))
	}

	opts := dto.ImportOptions{Force: getBoolParam(c, "force")}
	if value := c.FormValue("force"); value != "" {
		force, err := strconv.ParseBool(value)
		if err != nil {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("force must be a boolean"))
		}
		opts.Force = force
	}
	if rules := c.FormValue("mappingRules"); rules != "" {
		if err := json.Unmarshal([]byte(rules), &opts.MappingRules); err != nil {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("mappingRules must be a JSON object"))
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return SendError(c, errors.ImportInvalidFile)
	}
	defer file.Close()

	result, err := h.importService.ImportBankCSV(c.Request().Context(), userID, file, opts)
	if err != nil {
		return sendServiceError(c, err)
	}

	h.auditService.Record(&userID, models.AuditActionImport, "transaction", "",
		getClientIP(c), c.Request().UserAgent(), map[string]interface{}{
			"imported":   result.Imported,
			"duplicates": result.Duplicates,
		})

	return c.JSON(http.StatusOK, SuccessResponse{Data: result})
}

// ExportTransactionsCSV streams transactions in a date range
// @Summary Export transactions
// @Tags Data
// @Security BearerAuth
// @Produce text/csv
// @Param start_date query string false "YYYY-MM-DD, defaults to the first of this month"
// @Param end_date query string false "YYYY-MM-DD, inclusive, defaults to today"
// @Success 200 {file} file
// @Router /data/export/transactions [get]
func (h *DataHandler) ExportTransactionsCSV(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	now := h.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	from, err := parseDateQuery(c, "start_date")
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	}
	if from != nil {
		start = *from
	}
	to, err := parseDateQuery(c, "end_date")
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	}
	if to != nil {
		end = to.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails("end_date must not be before start_date"))
	}

	filename := fmt.Sprintf("transactions_%s_%s.csv", start.Format(dateLayout), end.AddDate(0, 0, -1).Format(dateLayout))
	setCSVHeaders(c, filename)
	return h.exportService.WriteTransactionsCSV(c.Response(), userID, start, end)
}

// ExportMonthlySummaryCSV streams one month's category breakdown
// @Summary Export monthly summary
// @Tags Data
// @Security BearerAuth
// @Produce text/csv
// @Param year query int false "Year"
// @Param month query int false "Month 1-12"
// @Success 200 {file} file
// @Router /data/export/monthly-summary [get]
func (h *DataHandler) ExportMonthlySummaryCSV(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}
	year, month, err := parseMonthQuery(c, h.now().UTC())
	if err != nil {
		return SendError(c, errors.ValidationOutOfRange, errors.WithDetails(err.Error()))
	}

	setCSVHeaders(c, fmt.Sprintf("summary_%d_%02d.csv", year, int(month)))
	return h.exportService.WriteMonthlySummaryCSV(c.Response(), userID, year, month)
}

// ExportLendingCSV streams every lending record
// @Summary Export lending records
// @Tags Data
// @Security BearerAuth
// @Produce text/csv
// @Success 200 {file} file
// @Router /data/export/lending [get]
func (h *DataHandler) ExportLendingCSV(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	setCSVHeaders(c, "lending.csv")
	return h.exportService.WriteLendingCSV(c.Response(), userID)
}

// Backup downloads everything the user owns as JSON
// @Summary Download backup
// @Tags Data
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Backup
// @Router /data/backup [get]
func (h *DataHandler) Backup(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	backup, err := h.backupService.CreateBackup(userID)
	if err != nil {
		return sendServiceError(c, err)
	}

	h.auditService.Record(&userID, models.AuditActionBackupExported, "user", userID.String(),
		getClientIP(c), c.Request().UserAgent(), map[string]interface{}{
			"transactions": len(backup.Transactions),
		})

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="walletwhiz_backup_%s.json"`, backup.ExportedAt.Format(dateLayout)))
	return c.JSON(http.StatusOK, backup)
}

// Restore loads a backup into an empty account
// @Summary Restore backup
// @Tags Data
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.Backup true "Backup document"
// @Success 200 {object} SuccessResponse{data=dto.RestoreResult}
// @Failure 409 {object} errors.ErrorResponse "IMPORT_003 - Account not empty"
// @Router /data/restore [post]
func (h *DataHandler) Restore(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var backup models.Backup
	if err := c.Bind(&backup); err != nil {
		return SendError(c, errors.ImportInvalidFile, errors.WithDetails("Invalid backup document"))
	}

	result, err := h.backupService.RestoreBackup(userID, &backup)
	if err != nil {
		return sendServiceError(c, err)
	}

	h.auditService.Record(&userID, models.AuditActionBackupRestored, "user", userID.String(),
		getClientIP(c), c.Request().UserAgent(), map[string]interface{}{
			"transactions": result.Transactions,
		})

	return c.JSON(http.StatusOK, SuccessResponse{Data: result, Message: "Backup restored"})
}

// CloudBackup appends the user's transactions to the configured spreadsheet
// @Summary Back up to Google Sheets
// @Tags Data
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=dto.CloudBackupResponse}
// @Failure 503 {object} errors.ErrorResponse "IMPORT_004 - Cloud backup not configured"
// @Router /data/cloud-backup [post]
func (h *DataHandler) CloudBackup(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	rows, err := h.backupService.BackupToCloud(c.Request().Context(), userID)
	if err != nil {
		return sendServiceError(c, err)
	}

	h.auditService.Record(&userID, models.AuditActionCloudBackup, "user", userID.String(),
		getClientIP(c), c.Request().UserAgent(), map[string]interface{}{"rows": rows})

	return c.JSON(http.StatusOK, SuccessResponse{Data: dto.CloudBackupResponse{Rows: rows}})
}

func setCSVHeaders(c echo.Context, filename string) {
	header := c.Response().Header()
	header.Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	header.Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Response().WriteHeader(http.StatusOK)
}
