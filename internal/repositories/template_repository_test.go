package repositories

import (
	"testing"

	"walletwhiz/internal/database"
	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestTemplateRepository(t *testing.T) {
	suite.Run(t, new(TemplateRepositorySuite))
}

type TemplateRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo TemplateRepositoryInterface
	user *models.User
}

func (s *TemplateRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewTemplateRepository(s.db.DB)
	s.user = database.CreateTestUser(s.T(), s.db, "templater")
}

func (s *TemplateRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *TemplateRepositorySuite) create(name string) *models.TransactionTemplate {
	tpl := &models.TransactionTemplate{
		UserID: s.user.ID,
		Name:   name,
		Type:   models.TransactionTypeExpense,
		Amount: decimal.NewFromInt(99),
	}
	s.Require().NoError(s.repo.Create(tpl))
	return tpl
}

func (s *TemplateRepositorySuite) TestTemplateRepository_ListByUsage() {
	coffee := s.create("Coffee")
	s.create("Auto rickshaw")
	s.create("Bread")

	s.NoError(s.repo.IncrementUsage(coffee.ID))
	s.NoError(s.repo.IncrementUsage(coffee.ID))

	templates, err := s.repo.ListByUser(s.user.ID)
	s.NoError(err)
	s.Require().Len(templates, 3)
	s.Equal("Coffee", templates[0].Name)
	s.Equal(2, templates[0].UsageCount)
	s.Equal("Auto rickshaw", templates[1].Name)
	s.Equal("Bread", templates[2].Name)
}

func (s *TemplateRepositorySuite) TestTemplateRepository_NotFound() {
	_, err := s.repo.GetByID(uuid.New())
	s.ErrorIs(err, ErrTemplateNotFound)
	s.ErrorIs(s.repo.IncrementUsage(uuid.New()), ErrTemplateNotFound)

	tpl := s.create("Rent")
	s.NoError(s.repo.Delete(tpl.ID))
	s.ErrorIs(s.repo.Delete(tpl.ID), ErrTemplateNotFound)
}

func (s *TemplateRepositorySuite) TestTemplateRepository_RejectsNonPositiveAmount() {
	tpl := &models.TransactionTemplate{UserID: s.user.ID, Name: "Free", Type: models.TransactionTypeExpense}
	s.Error(s.repo.Create(tpl))
}
