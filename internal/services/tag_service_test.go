package services

import (
	"errors"
	"testing"

	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories/repository_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"none", "lunch with team", []string{}},
		{"single", "lunch #work", []string{"work"}},
		{"case and duplicates", "#Food then #food and #FOOD", []string{"food"}},
		{"punctuation ends a tag", "trip #goa, #beach!", []string{"goa", "beach"}},
		{"hyphen and underscore", "#road-trip #fuel_stop", []string{"road-trip", "fuel_stop"}},
		{"bare hash", "item # 4", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTags(tt.text))
		})
	}
}

func TestMergeTags(t *testing.T) {
	got := mergeTags([]string{"Travel", "#work"}, "cab to office #work", "notes #urgent")
	assert.Equal(t, models.StringList{"travel", "urgent", "work"}, got)
}

func TestTagService_ListAndSuggest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := repository_mocks.NewMockTransactionRepositoryInterface(ctrl)
	service := NewTagService(repo)
	userID := uuid.New()

	history := []models.StringList{{"food", "work"}, {"fuel", "food"}, {"football"}}
	repo.EXPECT().ListTags(userID).Return(history, nil).Times(3)

	tags, err := service.ListTags(userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"food", "football", "fuel", "work"}, tags)

	suggestions, err := service.SuggestTags(userID, "#Fo", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"food", "football"}, suggestions)

	suggestions, err = service.SuggestTags(userID, "f", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"food", "fuel"}, suggestions)
}

func TestTagService_ListTagsError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := repository_mocks.NewMockTransactionRepositoryInterface(ctrl)
	repo.EXPECT().ListTags(gomock.Any()).Return(nil, errors.New("boom"))

	_, err := NewTagService(repo).SuggestTags(uuid.New(), "f", 5)
	assert.Error(t, err)
}
