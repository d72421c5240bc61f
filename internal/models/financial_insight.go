package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InsightTypeAnomaly    = "anomaly"
	InsightTypeSuggestion = "suggestion"
	InsightTypeTrend      = "trend"

	InsightTTL = 30 * 24 * time.Hour
	// InsightListLimit caps how many insights a user sees at once.
	InsightListLimit = 10
)

type FinancialInsight struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	InsightType string     `gorm:"type:varchar(20);not null" json:"insight_type"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Priority    string     `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	// PriorityRank mirrors Priority as a number so listings sort high first
	// in SQL on every driver.
	PriorityRank int        `gorm:"not null;default:2" json:"-"`
	Data         JSONBMap   `gorm:"type:text" json:"data,omitempty"`
	IsRead       bool       `gorm:"not null;default:false" json:"is_read"`
	ExpiresAt    *time.Time `gorm:"index" json:"expires_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
}

func (i *FinancialInsight) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Priority == "" {
		i.Priority = PriorityMedium
	}
	i.PriorityRank = PriorityRank(i.Priority)
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now().UTC()
	}
	if i.ExpiresAt == nil {
		expires := i.CreatedAt.Add(InsightTTL)
		i.ExpiresAt = &expires
	}
	return nil
}

func (i *FinancialInsight) TableName() string {
	return "financial_insights"
}
