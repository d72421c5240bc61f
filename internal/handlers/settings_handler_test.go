package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/services"
	"walletwhiz/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type SettingsHandlerSuite struct {
	suite.Suite
	ctrl            *gomock.Controller
	e               *echo.Echo
	userID          uuid.UUID
	settingsService *service_mocks.MockSettingsServiceInterface
	passwordService *service_mocks.MockPasswordServiceInterface
	auditService    *service_mocks.MockAuditServiceInterface
	handler         *SettingsHandler
}

func TestSettingsHandlerSuite(t *testing.T) {
	suite.Run(t, new(SettingsHandlerSuite))
}

func (s *SettingsHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.e = newTestEcho()
	s.userID = uuid.New()
	s.settingsService = service_mocks.NewMockSettingsServiceInterface(s.ctrl)
	s.passwordService = service_mocks.NewMockPasswordServiceInterface(s.ctrl)
	s.auditService = service_mocks.NewMockAuditServiceInterface(s.ctrl)
	s.handler = NewSettingsHandler(s.settingsService, s.passwordService, s.auditService)
}

func (s *SettingsHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *SettingsHandlerSuite) TestGetSettings() {
	s.settingsService.EXPECT().GetSettings(s.userID).Return(&models.UserSettings{
		Theme:    models.ThemeDark,
		Currency: &models.Currency{Code: "USD", Name: "US Dollar", Symbol: "$"},
	}, nil)

	c, rec := newJSONContext(s.e, http.MethodGet, "/me/settings", nil, s.userID)
	s.Require().NoError(s.handler.GetSettings(c))
	s.Equal(http.StatusOK, rec.Code)

	var response struct {
		Data dto.SettingsResponse `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Equal("dark", response.Data.Theme)
	s.Equal("$", response.Data.Currency.Symbol)
}

func (s *SettingsHandlerSuite) TestUpdateSettings() {
	s.Run("unknown currency", func() {
		s.settingsService.EXPECT().UpdateSettings(s.userID, gomock.Any()).Return(nil, services.ErrCurrencyNotFound)

		c, rec := newJSONContext(s.e, http.MethodPatch, "/me/settings", map[string]string{"currencyCode": "XYZ"}, s.userID)
		s.Require().NoError(s.handler.UpdateSettings(c))
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("invalid theme rejected by validation", func() {
		c, _ := newJSONContext(s.e, http.MethodPatch, "/me/settings", map[string]string{"theme": "neon"}, s.userID)
		s.Error(s.handler.UpdateSettings(c))
	})

	s.Run("theme changed", func() {
		s.settingsService.EXPECT().UpdateSettings(s.userID, gomock.Any()).
			DoAndReturn(func(_ uuid.UUID, req *dto.UpdateSettingsRequest) (*models.UserSettings, error) {
				s.Require().NotNil(req.Theme)
				s.Nil(req.CurrencyCode)
				return &models.UserSettings{Theme: *req.Theme}, nil
			})

		c, rec := newJSONContext(s.e, http.MethodPatch, "/me/settings", map[string]string{"theme": "dark"}, s.userID)
		s.Require().NoError(s.handler.UpdateSettings(c))
		s.Equal(http.StatusOK, rec.Code)
	})
}

func (s *SettingsHandlerSuite) TestChangePassword() {
	s.Run("recorded in audit log", func() {
		s.passwordService.EXPECT().ChangePassword(s.userID, "Old@Passw0rd1", "New@Passw0rd22").Return(nil)
		s.auditService.EXPECT().Record(&s.userID, models.AuditActionPasswordChanged, "user", s.userID.String(),
			gomock.Any(), gomock.Any(), nil)

		c, rec := newJSONContext(s.e, http.MethodPost, "/me/password", map[string]string{
			"currentPassword": "Old@Passw0rd1",
			"newPassword":     "New@Passw0rd22",
		}, s.userID)
		s.Require().NoError(s.handler.ChangePassword(c))
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("wrong current password", func() {
		s.passwordService.EXPECT().ChangePassword(s.userID, gomock.Any(), gomock.Any()).Return(services.ErrCurrentPasswordWrong)

		c, rec := newJSONContext(s.e, http.MethodPost, "/me/password", map[string]string{
			"currentPassword": "nope",
			"newPassword":     "New@Passw0rd22",
		}, s.userID)
		s.Require().NoError(s.handler.ChangePassword(c))
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *SettingsHandlerSuite) TestGetActivity() {
	s.auditService.EXPECT().GetUserActivity(s.userID, 20, 10).Return([]*models.AuditLog{}, int64(25), nil)

	c, rec := newJSONContext(s.e, http.MethodGet, "/me/activity?offset=20&limit=10", nil, s.userID)
	s.Require().NoError(s.handler.GetActivity(c))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"total":25`)
}

func (s *SettingsHandlerSuite) TestGetActivity_LimitOutOfRange() {
	c, rec := newJSONContext(s.e, http.MethodGet, "/me/activity?limit=500", nil, s.userID)
	s.Require().NoError(s.handler.GetActivity(c))
	s.Equal(http.StatusBadRequest, rec.Code)
}
