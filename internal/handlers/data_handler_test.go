package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/services"
	"walletwhiz/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type DataHandlerSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	e             *echo.Echo
	userID        uuid.UUID
	importService *service_mocks.MockImportServiceInterface
	exportService *service_mocks.MockExportServiceInterface
	backupService *service_mocks.MockBackupServiceInterface
	auditService  *service_mocks.MockAuditServiceInterface
	handler       *DataHandler
}

func TestDataHandlerSuite(t *testing.T) {
	suite.Run(t, new(DataHandlerSuite))
}

func (s *DataHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.e = newTestEcho()
	s.userID = uuid.New()
	s.importService = service_mocks.NewMockImportServiceInterface(s.ctrl)
	s.exportService = service_mocks.NewMockExportServiceInterface(s.ctrl)
	s.backupService = service_mocks.NewMockBackupServiceInterface(s.ctrl)
	s.auditService = service_mocks.NewMockAuditServiceInterface(s.ctrl)
	s.handler = NewDataHandler(s.importService, s.exportService, s.backupService, s.auditService)
	s.handler.now = func() time.Time { return time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC) }
}

func (s *DataHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *DataHandlerSuite) multipartContext(fields map[string]string, csv string) (echo.Context, *httptest.ResponseRecorder) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		s.Require().NoError(writer.WriteField(name, value))
	}
	if csv != "" {
		part, err := writer.CreateFormFile("file", "statement.csv")
		s.Require().NoError(err)
		_, err = part.Write([]byte(csv))
		s.Require().NoError(err)
	}
	s.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/data/import", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.Set("user_id", s.userID)
	return c, rec
}

func (s *DataHandlerSuite) TestImportCSV() {
	csv := "Date,Description,Amount\n2025-03-01,SWIGGY,-450.00\n"
	s.importService.EXPECT().ImportBankCSV(gomock.Any(), s.userID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, r io.Reader, opts dto.ImportOptions) (*models.ImportResult, error) {
			content, err := io.ReadAll(r)
			s.Require().NoError(err)
			s.Equal(csv, string(content))
			s.True(opts.Force)
			s.Equal(map[string]string{"SWIGGY": "Food & Dining"}, opts.MappingRules)
			return &models.ImportResult{Imported: 1}, nil
		})
	s.auditService.EXPECT().Record(&s.userID, models.AuditActionImport, "transaction", "", gomock.Any(), gomock.Any(), gomock.Any())

	c, rec := s.multipartContext(map[string]string{
		"force":        "true",
		"mappingRules": `{"SWIGGY":"Food & Dining"}`,
	}, csv)
	s.Require().NoError(s.handler.ImportCSV(c))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"imported":1`)
}

func (s *DataHandlerSuite) TestImportCSV_MissingFile() {
	c, rec := s.multipartContext(nil, "")
	s.Require().NoError(s.handler.ImportCSV(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("IMPORT_001", decodeError(rec).Error.Code)
}

func (s *DataHandlerSuite) TestImportCSV_BadMappingRules() {
	c, rec := s.multipartContext(map[string]string{"mappingRules": "not json"}, "Date,Description,Amount\n")
	s.Require().NoError(s.handler.ImportCSV(c))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *DataHandlerSuite) TestImportCSV_InvalidFile() {
	s.importService.EXPECT().ImportBankCSV(gomock.Any(), s.userID, gomock.Any(), gomock.Any()).
		Return(nil, services.ErrInvalidImportFile)

	c, rec := s.multipartContext(nil, "just,some\n")
	s.Require().NoError(s.handler.ImportCSV(c))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *DataHandlerSuite) TestExportTransactionsCSV() {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	s.exportService.EXPECT().WriteTransactionsCSV(gomock.Any(), s.userID, start, end).
		DoAndReturn(func(w io.Writer, _ uuid.UUID, _, _ time.Time) error {
			_, err := io.WriteString(w, "Date,Type,Category,Description,Amount\n")
			return err
		})

	c, rec := newJSONContext(s.e, http.MethodGet, "/data/export/transactions?start_date=2025-03-01&end_date=2025-03-10", nil, s.userID)
	s.Require().NoError(s.handler.ExportTransactionsCSV(c))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("text/csv; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	s.Contains(rec.Header().Get(echo.HeaderContentDisposition), "transactions_2025-03-01_2025-03-10.csv")
	s.Contains(rec.Body.String(), "Description")
}

func (s *DataHandlerSuite) TestExportTransactionsCSV_DefaultsToCurrentMonth() {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
	s.exportService.EXPECT().WriteTransactionsCSV(gomock.Any(), s.userID, start, end).Return(nil)

	c, rec := newJSONContext(s.e, http.MethodGet, "/data/export/transactions", nil, s.userID)
	s.Require().NoError(s.handler.ExportTransactionsCSV(c))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *DataHandlerSuite) TestExportTransactionsCSV_ReversedRange() {
	c, rec := newJSONContext(s.e, http.MethodGet, "/data/export/transactions?start_date=2025-03-10&end_date=2025-03-01", nil, s.userID)
	s.Require().NoError(s.handler.ExportTransactionsCSV(c))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *DataHandlerSuite) TestExportMonthlySummaryCSV() {
	s.exportService.EXPECT().WriteMonthlySummaryCSV(gomock.Any(), s.userID, 2025, time.January).Return(nil)

	c, rec := newJSONContext(s.e, http.MethodGet, "/data/export/monthly-summary?year=2025&month=1", nil, s.userID)
	s.Require().NoError(s.handler.ExportMonthlySummaryCSV(c))
	s.Contains(rec.Header().Get(echo.HeaderContentDisposition), "summary_2025_01.csv")
}

func (s *DataHandlerSuite) TestBackup() {
	backup := &models.Backup{Version: 1, ExportedAt: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)}
	s.backupService.EXPECT().CreateBackup(s.userID).Return(backup, nil)
	s.auditService.EXPECT().Record(&s.userID, models.AuditActionBackupExported, "user", s.userID.String(), gomock.Any(), gomock.Any(), gomock.Any())

	c, rec := newJSONContext(s.e, http.MethodGet, "/data/backup", nil, s.userID)
	s.Require().NoError(s.handler.Backup(c))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Header().Get(echo.HeaderContentDisposition), "walletwhiz_backup_2025-03-15.json")
}

func (s *DataHandlerSuite) TestRestore_AccountNotEmpty() {
	s.backupService.EXPECT().RestoreBackup(s.userID, gomock.Any()).Return(nil, services.ErrAccountNotEmpty)

	c, rec := newJSONContext(s.e, http.MethodPost, "/data/restore", models.Backup{Version: 1}, s.userID)
	s.Require().NoError(s.handler.Restore(c))
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *DataHandlerSuite) TestRestore() {
	s.backupService.EXPECT().RestoreBackup(s.userID, gomock.Any()).Return(&dto.RestoreResult{Transactions: 3}, nil)
	s.auditService.EXPECT().Record(&s.userID, models.AuditActionBackupRestored, "user", s.userID.String(), gomock.Any(), gomock.Any(), gomock.Any())

	c, rec := newJSONContext(s.e, http.MethodPost, "/data/restore", models.Backup{Version: 1}, s.userID)
	s.Require().NoError(s.handler.Restore(c))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *DataHandlerSuite) TestCloudBackup() {
	s.Run("disabled", func() {
		s.backupService.EXPECT().BackupToCloud(gomock.Any(), s.userID).Return(0, services.ErrCloudBackupDisabled)

		c, rec := newJSONContext(s.e, http.MethodPost, "/data/cloud-backup", nil, s.userID)
		s.Require().NoError(s.handler.CloudBackup(c))
		s.Equal(http.StatusServiceUnavailable, rec.Code)
	})

	s.Run("appends rows", func() {
		s.backupService.EXPECT().BackupToCloud(gomock.Any(), s.userID).Return(12, nil)
		s.auditService.EXPECT().Record(&s.userID, models.AuditActionCloudBackup, "user", s.userID.String(), gomock.Any(), gomock.Any(), gomock.Any())

		c, rec := newJSONContext(s.e, http.MethodPost, "/data/cloud-backup", nil, s.userID)
		s.Require().NoError(s.handler.CloudBackup(c))
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"rows":12`)
	})
}
