package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"walletwhiz/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultBCryptCost = 12

	MinPasswordLength = 12
	// bcrypt ignores input past 72 bytes.
	MaxPasswordLength = 72

	specialCharacters = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

var (
	ErrPasswordEmpty        = errors.New("password cannot be empty")
	ErrPasswordTooShort     = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong      = fmt.Errorf("password must not exceed %d characters", MaxPasswordLength)
	ErrPasswordNoUppercase  = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoLowercase  = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoNumber     = errors.New("password must contain at least one number")
	ErrPasswordNoSpecial    = errors.New("password must contain at least one special character")
	ErrCurrentPasswordWrong = errors.New("current password is incorrect")
	ErrSamePassword         = errors.New("new password must be different from current password")
)

// characterClasses records which kinds of character a password contains.
type characterClasses struct {
	upper, lower, digit, special bool
	unique                       int
}

func classify(password string) characterClasses {
	var c characterClasses
	seen := make(map[rune]struct{}, len(password))
	for _, r := range password {
		seen[r] = struct{}{}
		switch {
		case unicode.IsUpper(r):
			c.upper = true
		case unicode.IsLower(r):
			c.lower = true
		case unicode.IsDigit(r):
			c.digit = true
		case strings.ContainsRune(specialCharacters, r):
			c.special = true
		}
	}
	c.unique = len(seen)
	return c
}

func (c characterClasses) count() int {
	n := 0
	for _, present := range []bool{c.upper, c.lower, c.digit, c.special} {
		if present {
			n++
		}
	}
	return n
}

type PasswordService struct {
	cost     int
	userRepo repositories.UserRepositoryInterface
}

// NewPasswordService falls back to DefaultBCryptCost when cost is outside
// bcrypt's range.
func NewPasswordService(userRepo repositories.UserRepositoryInterface, cost int) PasswordServiceInterface {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBCryptCost
	}
	return &PasswordService{
		cost:     cost,
		userRepo: userRepo,
	}
}

// ValidatePassword reports the first policy rule the password breaks.
func (ps *PasswordService) ValidatePassword(password string) error {
	switch {
	case password == "":
		return ErrPasswordEmpty
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordLength:
		return ErrPasswordTooLong
	}

	classes := classify(password)
	switch {
	case !classes.upper:
		return ErrPasswordNoUppercase
	case !classes.lower:
		return ErrPasswordNoLowercase
	case !classes.digit:
		return ErrPasswordNoNumber
	case !classes.special:
		return ErrPasswordNoSpecial
	}
	return nil
}

func (ps *PasswordService) HashPassword(password string) (string, error) {
	if err := ps.ValidatePassword(password); err != nil {
		return "", fmt.Errorf("password validation failed: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), ps.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (ps *PasswordService) ComparePassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// PasswordStrength scores a password from 0 to 100: up to 40 for length,
// 15 per character class and a bonus for few repeated characters. Any
// password that passes the policy scores at least 80.
func (ps *PasswordService) PasswordStrength(password string) int {
	if password == "" {
		return 0
	}

	score := 0
	for _, threshold := range []int{8, 12, 16, 20} {
		if len(password) >= threshold {
			score += 10
		}
	}

	classes := classify(password)
	score += 15 * classes.count()

	switch {
	case classes.unique > len(password)*3/4:
		score += 10
	case classes.unique > len(password)/2:
		score += 5
	}

	if ps.ValidatePassword(password) == nil {
		score = max(score, 80)
	}
	return min(score, 100)
}

// ChangePassword replaces the user's password after checking the current one.
func (ps *PasswordService) ChangePassword(userID uuid.UUID, currentPassword, newPassword string) error {
	switch {
	case userID == uuid.Nil:
		return ErrInvalidUserID
	case currentPassword == "":
		return errors.New("current password is required")
	case newPassword == "":
		return errors.New("new password is required")
	case currentPassword == newPassword:
		return ErrSamePassword
	}

	if err := ps.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := ps.userRepo.GetByID(userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	if !ps.ComparePassword(currentPassword, user.PasswordHash) {
		return ErrCurrentPasswordWrong
	}

	hashed, err := ps.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := ps.userRepo.UpdatePasswordHash(user.ID, hashed); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
