package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"

	"github.com/google/uuid"
)

const defaultTagSuggestionLimit = 10

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_-]+)`)

// ExtractTags returns the #hashtags in text, lowercased and without the
// leading '#', in order of first appearance.
func ExtractTags(text string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]struct{}, len(matches))
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// mergeTags combines explicit tags with hashtags found in the texts.
func mergeTags(explicit []string, texts ...string) models.StringList {
	all := append([]string{}, explicit...)
	for _, text := range texts {
		all = append(all, ExtractTags(text)...)
	}
	return models.StringList(all).Normalize()
}

type tagService struct {
	transactionRepo repositories.TransactionRepositoryInterface
}

func NewTagService(transactionRepo repositories.TransactionRepositoryInterface) TagServiceInterface {
	return &tagService{transactionRepo: transactionRepo}
}

func (s *tagService) ExtractTags(text string) []string {
	return ExtractTags(text)
}

// ListTags returns every tag the user has used, sorted.
func (s *tagService) ListTags(userID uuid.UUID) ([]string, error) {
	lists, err := s.transactionRepo.ListTags(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	var all models.StringList
	for _, l := range lists {
		all = append(all, l...)
	}
	return []string(all.Normalize()), nil
}

func (s *tagService) SuggestTags(userID uuid.UUID, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = defaultTagSuggestionLimit
	}
	prefix = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(prefix), "#"))

	tags, err := s.ListTags(userID)
	if err != nil {
		return nil, err
	}

	suggestions := make([]string, 0, limit)
	for _, tag := range tags {
		if strings.HasPrefix(tag, prefix) {
			suggestions = append(suggestions, tag)
		}
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return len(suggestions[i]) < len(suggestions[j])
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}
