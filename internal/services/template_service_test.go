package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"
	"walletwhiz/internal/repositories/repository_mocks"
	"walletwhiz/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TemplateServiceTestSuite struct {
	suite.Suite
	ctrl               *gomock.Controller
	templateRepo       *repository_mocks.MockTemplateRepositoryInterface
	categoryService    *service_mocks.MockCategoryServiceInterface
	transactionService *service_mocks.MockTransactionServiceInterface
	service            TemplateServiceInterface
	userID             uuid.UUID
}

func TestTemplateServiceSuite(t *testing.T) {
	suite.Run(t, new(TemplateServiceTestSuite))
}

func (s *TemplateServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.templateRepo = repository_mocks.NewMockTemplateRepositoryInterface(s.ctrl)
	s.categoryService = service_mocks.NewMockCategoryServiceInterface(s.ctrl)
	s.transactionService = service_mocks.NewMockTransactionServiceInterface(s.ctrl)
	s.service = NewTemplateService(s.templateRepo, s.categoryService, s.transactionService, slog.Default())
	s.userID = uuid.New()
}

func (s *TemplateServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *TemplateServiceTestSuite) TestCreateTemplate() {
	bills := &models.Category{ID: uuid.New(), UserID: s.userID, Name: models.CategoryBillsUtilities, Type: models.TransactionTypeExpense}
	s.categoryService.EXPECT().GetCategory(s.userID, bills.ID).Return(bills, nil)
	s.templateRepo.EXPECT().Create(gomock.Any()).Return(nil)

	template, err := s.service.CreateTemplate(s.userID, &dto.TemplateRequest{
		Name: "Internet", Type: "expense", Amount: "999", CategoryID: &bills.ID, Description: "Broadband bill",
	})
	s.NoError(err)
	s.Equal(bills.ID, *template.CategoryID)
	s.Equal("999.00", template.Amount.StringFixed(2))
}

func (s *TemplateServiceTestSuite) TestCreateTemplate_Invalid() {
	_, err := s.service.CreateTemplate(s.userID, &dto.TemplateRequest{Name: "x", Type: "gift", Amount: "1"})
	s.ErrorIs(err, ErrInvalidTemplate)

	_, err = s.service.CreateTemplate(s.userID, &dto.TemplateRequest{Name: "x", Type: "expense", Amount: "0"})
	s.ErrorIs(err, ErrInvalidTemplate)

	salary := &models.Category{ID: uuid.New(), Type: models.TransactionTypeIncome}
	s.categoryService.EXPECT().GetCategory(s.userID, salary.ID).Return(salary, nil)
	_, err = s.service.CreateTemplate(s.userID, &dto.TemplateRequest{Name: "x", Type: "expense", Amount: "1", CategoryID: &salary.ID})
	s.ErrorIs(err, ErrCategoryTypeMismatch)
}

func (s *TemplateServiceTestSuite) TestUseTemplate() {
	categoryID := uuid.New()
	template := &models.TransactionTemplate{
		ID: uuid.New(), UserID: s.userID, Name: "Rent", Type: models.TransactionTypeExpense,
		Amount: decimal.NewFromInt(15000), CategoryID: &categoryID, Notes: "#home",
	}
	date := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	booked := &models.Transaction{ID: uuid.New(), UserID: s.userID}

	s.templateRepo.EXPECT().GetByID(template.ID).Return(template, nil)
	s.transactionService.EXPECT().AddTransaction(gomock.Any(), s.userID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, req *dto.CreateTransactionRequest) (*models.Transaction, error) {
			s.True(req.Force)
			s.Equal("Rent", req.Description)
			s.Equal("15000.00", req.Amount)
			s.Equal(&categoryID, req.CategoryID)
			s.Equal(&date, req.TransactionDate)
			return booked, nil
		})
	s.templateRepo.EXPECT().IncrementUsage(template.ID).Return(nil)

	tx, err := s.service.UseTemplate(context.Background(), s.userID, template.ID, &date)
	s.NoError(err)
	s.Equal(booked.ID, tx.ID)
}

func (s *TemplateServiceTestSuite) TestUseTemplate_AddFailsNoUsageBump() {
	template := &models.TransactionTemplate{ID: uuid.New(), UserID: s.userID, Name: "Gym", Type: models.TransactionTypeExpense, Amount: decimal.NewFromInt(1)}
	s.templateRepo.EXPECT().GetByID(template.ID).Return(template, nil)
	s.transactionService.EXPECT().AddTransaction(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	_, err := s.service.UseTemplate(context.Background(), s.userID, template.ID, nil)
	s.Error(err)
}

func (s *TemplateServiceTestSuite) TestDeleteTemplate() {
	template := &models.TransactionTemplate{ID: uuid.New(), UserID: s.userID}
	s.templateRepo.EXPECT().GetByID(template.ID).Return(template, nil)
	s.templateRepo.EXPECT().Delete(template.ID).Return(nil)
	s.NoError(s.service.DeleteTemplate(s.userID, template.ID))

	missing := uuid.New()
	s.templateRepo.EXPECT().GetByID(missing).Return(nil, repositories.ErrTemplateNotFound)
	s.ErrorIs(s.service.DeleteTemplate(s.userID, missing), ErrTemplateNotFound)

	foreign := &models.TransactionTemplate{ID: uuid.New(), UserID: uuid.New()}
	s.templateRepo.EXPECT().GetByID(foreign.ID).Return(foreign, nil)
	s.ErrorIs(s.service.DeleteTemplate(s.userID, foreign.ID), ErrTemplateNotFound)
}

func (s *TemplateServiceTestSuite) TestListTemplates() {
	s.templateRepo.EXPECT().ListByUser(s.userID).Return([]models.TransactionTemplate{{Name: "Rent"}, {Name: "Gym"}}, nil)
	templates, err := s.service.ListTemplates(s.userID)
	s.NoError(err)
	s.Len(templates, 2)
}
