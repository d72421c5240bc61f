package repositories

import (
	"testing"
	"time"

	"walletwhiz/internal/database"
	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

func TestAuditLogRepository(t *testing.T) {
	suite.Run(t, new(AuditLogRepositorySuite))
}

type AuditLogRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo AuditLogRepositoryInterface
}

func (s *AuditLogRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewAuditLogRepository(s.db.DB)
}

func (s *AuditLogRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *AuditLogRepositorySuite) TestAuditLogRepository_Create() {
	userID := uuid.New()
	log := &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionLogin,
		Resource:   "user",
		ResourceID: userID.String(),
		IPAddress:  "192.168.1.1",
		UserAgent:  "Mozilla/5.0",
	}
	log.SetMetadata("method", "password")

	s.NoError(s.repo.Create(log))
	s.NotEqual(uuid.Nil, log.ID)
	s.NotZero(log.CreatedAt)

	s.Error(s.repo.Create(nil))
}

func (s *AuditLogRepositorySuite) TestAuditLogRepository_GetByUserID() {
	userID := uuid.New()
	otherID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	actions := []string{models.AuditActionRegister, models.AuditActionLogin, models.AuditActionLogout}
	for i, action := range actions {
		s.Require().NoError(s.repo.Create(&models.AuditLog{
			UserID:    &userID,
			Action:    action,
			Resource:  "user",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	s.Require().NoError(s.repo.Create(&models.AuditLog{UserID: &otherID, Action: models.AuditActionLogin, Resource: "user"}))

	logs, total, err := s.repo.GetByUserID(userID, 0, 2)
	s.NoError(err)
	s.Equal(int64(3), total)
	s.Len(logs, 2)
	s.Equal(models.AuditActionLogout, logs[0].Action)

	logs, _, err = s.repo.GetByUserID(userID, 2, 2)
	s.NoError(err)
	s.Len(logs, 1)
	s.Equal(models.AuditActionRegister, logs[0].Action)
}
