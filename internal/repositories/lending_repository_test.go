package repositories

import (
	"testing"

	"walletwhiz/internal/database"
	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestLendingRepository(t *testing.T) {
	suite.Run(t, new(LendingRepositorySuite))
}

type LendingRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo LendingRepositoryInterface
	user *models.User
}

func (s *LendingRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewLendingRepository(s.db.DB)
	s.user = database.CreateTestUser(s.T(), s.db, "lender")
}

func (s *LendingRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *LendingRepositorySuite) TestLendingRepository_Balance() {
	amounts := []string{"1500.50", "250", "99.50"}
	records := make([]*models.LendingRecord, 0, len(amounts))
	for _, amount := range amounts {
		record := &models.LendingRecord{UserID: s.user.ID, Person: "Arjun", Amount: decimal.RequireFromString(amount)}
		s.Require().NoError(s.repo.Create(record))
		records = append(records, record)
	}

	records[1].MarkPaid()
	s.NoError(s.repo.Update(records[1]))

	balance, err := s.repo.GetBalance(s.user.ID)
	s.NoError(err)
	s.Equal("1600", balance.Owed.String())
	s.Equal("250", balance.Paid.String())
	s.Equal("You owe 1600.00, Paid: 250.00", balance.Summary())

	listed, err := s.repo.ListByUser(s.user.ID)
	s.NoError(err)
	s.Require().Len(listed, 3)
	s.True(listed[2].Paid)
}

func (s *LendingRepositorySuite) TestLendingRepository_EmptyBalance() {
	balance, err := s.repo.GetBalance(uuid.New())
	s.NoError(err)
	s.True(balance.Owed.IsZero())
	s.True(balance.Paid.IsZero())
}

func (s *LendingRepositorySuite) TestLendingRepository_GetAndDelete() {
	record := &models.LendingRecord{UserID: s.user.ID, Person: "Kavya", Amount: decimal.NewFromInt(500), Reason: "Concert tickets"}
	s.Require().NoError(s.repo.Create(record))

	found, err := s.repo.GetByID(record.ID)
	s.NoError(err)
	s.Equal("Concert tickets", found.Reason)

	s.NoError(s.repo.Delete(record.ID))
	_, err = s.repo.GetByID(record.ID)
	s.ErrorIs(err, ErrLendingRecordNotFound)
}
