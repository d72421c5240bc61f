package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrGoalNotFound = errors.New("savings goal not found")
	ErrInvalidGoal  = errors.New("invalid savings goal")
	ErrGoalInactive = errors.New("savings goal is not active")
)

type goalService struct {
	goalRepo repositories.SavingsGoalRepositoryInterface
	logger   *slog.Logger
	now      func() time.Time
}

func NewGoalService(goalRepo repositories.SavingsGoalRepositoryInterface, logger *slog.Logger) GoalServiceInterface {
	return &goalService{
		goalRepo: goalRepo,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *goalService) CreateGoal(userID uuid.UUID, req *dto.GoalRequest) (*models.SavingsGoal, error) {
	target, err := parseGoalAmount(req.TargetAmount)
	if err != nil {
		return nil, err
	}

	priority := strings.ToLower(strings.TrimSpace(req.Priority))
	if priority == "" {
		priority = models.PriorityMedium
	}

	goal := &models.SavingsGoal{
		UserID:        userID,
		Name:          strings.TrimSpace(req.Name),
		TargetAmount:  target,
		CurrentAmount: decimal.Zero,
		TargetDate:    req.TargetDate,
		Priority:      priority,
		IsActive:      true,
	}
	if err := goal.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGoal, err)
	}

	if err := s.goalRepo.Create(goal); err != nil {
		return nil, fmt.Errorf("failed to create savings goal: %w", err)
	}
	return goal, nil
}

// ListActiveGoals keeps the repository order: priority, then target date.
func (s *goalService) ListActiveGoals(userID uuid.UUID) ([]models.GoalProgress, error) {
	goals, err := s.goalRepo.ListActive(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list savings goals: %w", err)
	}

	now := s.now()
	progress := make([]models.GoalProgress, 0, len(goals))
	for i := range goals {
		progress = append(progress, s.toProgress(&goals[i], now))
	}
	return progress, nil
}

// AddProgress adds a contribution; the goal is completed the first time
// the saved amount reaches the target.
func (s *goalService) AddProgress(userID, goalID uuid.UUID, amount decimal.Decimal) (*models.GoalProgress, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: contribution must be positive", ErrInvalidGoal)
	}

	goal, err := s.getOwned(userID, goalID)
	if err != nil {
		return nil, err
	}
	if !goal.IsActive {
		return nil, ErrGoalInactive
	}

	wasCompleted := goal.CompletedAt != nil
	goal.AddProgress(amount.Round(2))

	if err := s.update(goal); err != nil {
		return nil, err
	}

	if !wasCompleted && goal.CompletedAt != nil {
		s.logger.Info("savings goal completed",
			slog.String("user_id", userID.String()),
			slog.String("goal_id", goal.ID.String()),
			slog.String("name", goal.Name))
	}

	progress := s.toProgress(goal, s.now())
	return &progress, nil
}

func (s *goalService) UpdateGoal(userID, goalID uuid.UUID, req *dto.UpdateGoalRequest) (*models.SavingsGoal, error) {
	goal, err := s.getOwned(userID, goalID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		goal.Name = strings.TrimSpace(*req.Name)
	}
	if req.TargetAmount != nil {
		target, err := parseGoalAmount(*req.TargetAmount)
		if err != nil {
			return nil, err
		}
		goal.TargetAmount = target
		if goal.CurrentAmount.LessThan(target) {
			goal.CompletedAt = nil
		} else if goal.CompletedAt == nil {
			completed := s.now().UTC()
			goal.CompletedAt = &completed
		}
	}
	if req.TargetDate != nil {
		goal.TargetDate = req.TargetDate
	}
	if req.Priority != nil {
		goal.Priority = strings.ToLower(strings.TrimSpace(*req.Priority))
	}
	if req.IsActive != nil {
		goal.IsActive = *req.IsActive
	}

	if err := goal.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGoal, err)
	}
	if err := s.update(goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *goalService) DeactivateGoal(userID, goalID uuid.UUID) error {
	goal, err := s.getOwned(userID, goalID)
	if err != nil {
		return err
	}
	if !goal.IsActive {
		return nil
	}
	goal.IsActive = false
	return s.update(goal)
}

func (s *goalService) DeleteGoal(userID, goalID uuid.UUID) error {
	if _, err := s.getOwned(userID, goalID); err != nil {
		return err
	}
	if err := s.goalRepo.Delete(goalID); err != nil {
		if errors.Is(err, repositories.ErrGoalNotFound) {
			return ErrGoalNotFound
		}
		return fmt.Errorf("failed to delete savings goal: %w", err)
	}
	return nil
}

func (s *goalService) getOwned(userID, goalID uuid.UUID) (*models.SavingsGoal, error) {
	goal, err := s.goalRepo.GetByID(goalID)
	if err != nil {
		if errors.Is(err, repositories.ErrGoalNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to get savings goal: %w", err)
	}
	if goal.UserID != userID {
		return nil, ErrGoalNotFound
	}
	return goal, nil
}

func (s *goalService) update(goal *models.SavingsGoal) error {
	if err := s.goalRepo.Update(goal); err != nil {
		if errors.Is(err, repositories.ErrGoalNotFound) {
			return ErrGoalNotFound
		}
		return fmt.Errorf("failed to update savings goal: %w", err)
	}
	return nil
}

func (s *goalService) toProgress(goal *models.SavingsGoal, now time.Time) models.GoalProgress {
	return models.GoalProgress{
		SavingsGoal:        *goal,
		ProgressPercentage: goal.ProgressPercentage(),
		DaysRemaining:      goal.DaysRemaining(now),
	}
}

func parseGoalAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a number", ErrInvalidGoal, raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidGoal, models.ErrInvalidGoalTarget)
	}
	return amount.Round(2), nil
}
