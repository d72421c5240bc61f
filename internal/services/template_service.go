package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrTemplateNotFound = errors.New("transaction template not found")
	ErrInvalidTemplate  = errors.New("invalid transaction template")
)

type templateService struct {
	templateRepo       repositories.TemplateRepositoryInterface
	categoryService    CategoryServiceInterface
	transactionService TransactionServiceInterface
	logger             *slog.Logger
}

func NewTemplateService(
	templateRepo repositories.TemplateRepositoryInterface,
	categoryService CategoryServiceInterface,
	transactionService TransactionServiceInterface,
	logger *slog.Logger,
) TemplateServiceInterface {
	return &templateService{
		templateRepo:       templateRepo,
		categoryService:    categoryService,
		transactionService: transactionService,
		logger:             logger,
	}
}

func (s *templateService) CreateTemplate(userID uuid.UUID, req *dto.TemplateRequest) (*models.TransactionTemplate, error) {
	transactionType := strings.ToLower(strings.TrimSpace(req.Type))
	if !models.IsValidTransactionType(transactionType) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, models.ErrInvalidTransactionType)
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidTemplate)
	}

	template := &models.TransactionTemplate{
		UserID:      userID,
		Name:        name,
		Type:        transactionType,
		Amount:      amount,
		Description: strings.TrimSpace(req.Description),
		Notes:       req.Notes,
	}

	if req.CategoryID != nil {
		category, err := s.categoryService.GetCategory(userID, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		if category.Type != transactionType {
			return nil, ErrCategoryTypeMismatch
		}
		template.CategoryID = &category.ID
	}

	if err := s.templateRepo.Create(template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return template, nil
}

func (s *templateService) ListTemplates(userID uuid.UUID) ([]models.TransactionTemplate, error) {
	templates, err := s.templateRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// UseTemplate books the template through the normal add path. Templates
// are repeated on purpose, so the duplicate check is skipped.
func (s *templateService) UseTemplate(ctx context.Context, userID, templateID uuid.UUID, date *time.Time) (*models.Transaction, error) {
	template, err := s.getOwned(userID, templateID)
	if err != nil {
		return nil, err
	}

	transaction, err := s.transactionService.AddTransaction(ctx, userID, &dto.CreateTransactionRequest{
		Type:            template.Type,
		Amount:          template.Amount.StringFixed(2),
		CategoryID:      template.CategoryID,
		Description:     template.TransactionDescription(),
		TransactionDate: date,
		Notes:           template.Notes,
		Force:           true,
	})
	if err != nil {
		return nil, err
	}

	if err := s.templateRepo.IncrementUsage(template.ID); err != nil {
		s.logger.Warn("failed to increment template usage",
			slog.Any("error", err),
			slog.String("template_id", template.ID.String()))
	}
	return transaction, nil
}

func (s *templateService) DeleteTemplate(userID, templateID uuid.UUID) error {
	if _, err := s.getOwned(userID, templateID); err != nil {
		return err
	}
	if err := s.templateRepo.Delete(templateID); err != nil {
		if errors.Is(err, repositories.ErrTemplateNotFound) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

func (s *templateService) getOwned(userID, templateID uuid.UUID) (*models.TransactionTemplate, error) {
	template, err := s.templateRepo.GetByID(templateID)
	if err != nil {
		if errors.Is(err, repositories.ErrTemplateNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if template.UserID != userID {
		return nil, ErrTemplateNotFound
	}
	return template, nil
}
