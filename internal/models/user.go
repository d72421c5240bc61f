package models

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"

	DefaultCurrencyCode = "INR"

	MaxFailedLoginAttempts = 3
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,50}$`)
)

type User struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Username            string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email               string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash        string         `gorm:"type:varchar(255);not null" json:"-"`
	FirstName           string         `gorm:"type:varchar(100)" json:"first_name,omitempty"`
	LastName            string         `gorm:"type:varchar(100)" json:"last_name,omitempty"`
	Theme               string         `gorm:"type:varchar(20);not null;default:'light'" json:"theme"`
	CurrencyCode        string         `gorm:"type:varchar(3);not null;default:'INR'" json:"currency_code"`
	FailedLoginAttempts int            `gorm:"default:0" json:"-"`
	LockedAt            *time.Time     `json:"locked_at,omitempty"`
	LastLoginAt         *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt           time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Theme == "" {
		u.Theme = ThemeLight
	}
	if u.CurrencyCode == "" {
		u.CurrencyCode = DefaultCurrencyCode
	}

	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}

	return u.Validate()
}

// BeforeUpdate skips validation for map-based updates, where the receiver
// is an empty struct carrying only the primary key.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Dest != nil {
		if _, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			return nil
		}
	}
	return u.Validate()
}

func (u *User) Validate() error {
	if u.Username == "" {
		return errors.New("username is required")
	}
	if !usernameRegex.MatchString(u.Username) {
		return errors.New("invalid username format")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if !emailRegex.MatchString(u.Email) {
		return errors.New("invalid email format")
	}
	if u.Theme != "" && !IsValidTheme(u.Theme) {
		return fmt.Errorf("invalid theme: %s", u.Theme)
	}
	return nil
}

func IsValidTheme(theme string) bool {
	switch theme {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	default:
		return false
	}
}

func (u *User) IsLocked() bool {
	return u.LockedAt != nil
}

// IsLockedAt reports whether a lock set within lockout of now still holds.
// A non-positive lockout never expires.
func (u *User) IsLockedAt(now time.Time, lockout time.Duration) bool {
	if u.LockedAt == nil {
		return false
	}
	return lockout <= 0 || now.Before(u.LockedAt.Add(lockout))
}

func (u *User) Lock() {
	now := time.Now().UTC()
	u.LockedAt = &now
	u.FailedLoginAttempts = MaxFailedLoginAttempts
}

func (u *User) Unlock() {
	u.LockedAt = nil
	u.FailedLoginAttempts = 0
}

func (u *User) IncrementFailedAttempts() {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= MaxFailedLoginAttempts {
		u.Lock()
	}
}

func (u *User) ResetFailedAttempts() {
	u.FailedLoginAttempts = 0
}

func (u *User) UpdateLastLogin() {
	now := time.Now().UTC()
	u.LastLoginAt = &now
}

// DisplayName falls back to the username when no real name was given.
func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}

func (u *User) TableName() string {
	return "users"
}

// UserSettings is the user-editable slice of the profile.
type UserSettings struct {
	Theme    string    `json:"theme"`
	Currency *Currency `json:"currency,omitempty"`
}
