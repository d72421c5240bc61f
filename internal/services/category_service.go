package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category with this name and type already exists")
	ErrCategoryInUse    = errors.New("category is referenced by transactions")
	ErrInvalidCategory  = errors.New("invalid category")
)

type categoryService struct {
	categoryRepo repositories.CategoryRepositoryInterface
	logger       *slog.Logger
}

func NewCategoryService(categoryRepo repositories.CategoryRepositoryInterface, logger *slog.Logger) CategoryServiceInterface {
	return &categoryService{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

func (s *categoryService) ListCategories(userID uuid.UUID, categoryType string) ([]models.Category, error) {
	categoryType = strings.ToLower(categoryType)
	if categoryType != "" && !models.IsValidTransactionType(categoryType) {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidCategory, categoryType)
	}

	categories, err := s.categoryRepo.ListByUser(userID, categoryType)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategory hides categories of other users behind ErrCategoryNotFound.
func (s *categoryService) GetCategory(userID, categoryID uuid.UUID) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category.UserID != userID {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (s *categoryService) CreateCategory(userID uuid.UUID, req *dto.CategoryRequest) (*models.Category, error) {
	category := &models.Category{
		UserID: userID,
		Name:   strings.TrimSpace(req.Name),
		Type:   strings.ToLower(req.Type),
		Icon:   req.Icon,
		Color:  req.Color,
	}
	if err := category.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCategory, err)
	}

	if err := s.ensureNameFree(userID, category.Name, category.Type, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Create(category); err != nil {
		if errors.Is(err, repositories.ErrCategoryAlreadyExists) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

func (s *categoryService) UpdateCategory(userID, categoryID uuid.UUID, req *dto.CategoryRequest) (*models.Category, error) {
	category, err := s.GetCategory(userID, categoryID)
	if err != nil {
		return nil, err
	}

	category.Name = strings.TrimSpace(req.Name)
	category.Type = strings.ToLower(req.Type)
	category.Icon = req.Icon
	category.Color = req.Color
	if err := category.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCategory, err)
	}

	if err := s.ensureNameFree(userID, category.Name, category.Type, category.ID); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Update(category); err != nil {
		if errors.Is(err, repositories.ErrCategoryAlreadyExists) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

// DeleteCategory refuses while any transaction still points at the category.
func (s *categoryService) DeleteCategory(userID, categoryID uuid.UUID) error {
	if _, err := s.GetCategory(userID, categoryID); err != nil {
		return err
	}

	count, err := s.categoryRepo.CountTransactions(categoryID)
	if err != nil {
		return fmt.Errorf("failed to count category transactions: %w", err)
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(categoryID); err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *categoryService) CreateDefaultCategories(userID uuid.UUID) error {
	if err := s.categoryRepo.CreateBatch(models.DefaultCategories(userID)); err != nil {
		return fmt.Errorf("failed to create default categories: %w", err)
	}
	s.logger.Info("default categories created", slog.String("user_id", userID.String()))
	return nil
}

func (s *categoryService) GetOrCreateCategory(userID uuid.UUID, name, categoryType string) (*models.Category, error) {
	category, err := s.categoryRepo.GetByName(userID, name, categoryType)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, repositories.ErrCategoryNotFound) {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	category = &models.Category{UserID: userID, Name: name, Type: categoryType}
	if err := s.categoryRepo.Create(category); err != nil {
		// Lost a race with a concurrent create; the row exists now.
		if errors.Is(err, repositories.ErrCategoryAlreadyExists) {
			return s.categoryRepo.GetByName(userID, name, categoryType)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *categoryService) ensureNameFree(userID uuid.UUID, name, categoryType string, self uuid.UUID) error {
	existing, err := s.categoryRepo.GetByName(userID, name, categoryType)
	switch {
	case err == nil:
		if existing.ID != self {
			return ErrCategoryExists
		}
		return nil
	case errors.Is(err, repositories.ErrCategoryNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check category name: %w", err)
	}
}
