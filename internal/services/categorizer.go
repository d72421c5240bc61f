package services

import (
	"errors"
	"fmt"
	"strings"

	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"

	"github.com/google/uuid"
)

const keywordConfidence = 0.8

type keywordPattern struct {
	keywords []string
	category string
}

// keywordCategorizer matches descriptions against an ordered keyword table.
// Earlier rows win, so "uber eats dinner" lands in Food & Dining.
type keywordCategorizer struct {
	categoryRepo repositories.CategoryRepositoryInterface
	patterns     []keywordPattern
}

func NewCategorizer(categoryRepo repositories.CategoryRepositoryInterface) CategorizerInterface {
	return &keywordCategorizer{
		categoryRepo: categoryRepo,
		patterns:     initKeywordPatterns(),
	}
}

func initKeywordPatterns() []keywordPattern {
	return []keywordPattern{
		{
			category: models.CategoryFoodDining,
			keywords: []string{"swiggy", "zomato", "mcdonalds", "kfc", "dominos", "pizza", "restaurant", "cafe", "food", "lunch", "dinner"},
		},
		{
			category: models.CategoryTransportation,
			keywords: []string{"uber", "ola", "metro", "bus", "taxi", "fuel", "petrol", "diesel", "parking"},
		},
		{
			category: models.CategoryShopping,
			keywords: []string{"amazon", "flipkart", "myntra", "ajio", "mall", "store", "shopping"},
		},
		{
			category: models.CategoryEntertainment,
			keywords: []string{"netflix", "spotify", "prime", "movie", "cinema", "game"},
		},
		{
			category: models.CategoryBillsUtilities,
			keywords: []string{"electricity", "water", "gas", "internet", "mobile", "phone", "broadband"},
		},
		{
			category: models.CategoryHealthcare,
			keywords: []string{"hospital", "doctor", "pharmacy", "medicine", "clinic"},
		},
	}
}

func (p keywordPattern) match(normalized string) string {
	for _, keyword := range p.keywords {
		if strings.Contains(normalized, keyword) {
			return keyword
		}
	}
	return ""
}

func (c *keywordCategorizer) MatchKeyword(description string) (string, string, float64) {
	normalized := strings.ToLower(strings.TrimSpace(description))
	if normalized == "" {
		return "", "", 0
	}

	for _, pattern := range c.patterns {
		if keyword := pattern.match(normalized); keyword != "" {
			return pattern.category, keyword, keywordConfidence
		}
	}
	return "", "", 0
}

// Categorize walks the keyword table in order and returns the first match
// the user has a category of the given type for. When every match lacks one,
// the result is a fallback carrying the first suggested name and no Category.
func (c *keywordCategorizer) Categorize(userID uuid.UUID, description, transactionType string) (*models.CategorizationResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(description))
	fallback := &models.CategorizationResult{Method: models.CategorizationMethodFallback}
	if normalized == "" {
		return fallback, nil
	}

	for _, pattern := range c.patterns {
		keyword := pattern.match(normalized)
		if keyword == "" {
			continue
		}

		category, err := c.categoryRepo.GetByName(userID, pattern.category, transactionType)
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			if fallback.CategoryName == "" {
				fallback.CategoryName = pattern.category
				fallback.MatchedPattern = keyword
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve category %q: %w", pattern.category, err)
		}

		return &models.CategorizationResult{
			Category:       category,
			CategoryName:   category.Name,
			Method:         models.CategorizationMethodKeyword,
			Confidence:     keywordConfidence,
			MatchedPattern: keyword,
		}, nil
	}
	return fallback, nil
}
