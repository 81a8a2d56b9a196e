package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/storage"
)

const (
	DefaultWaterLiters = 3.0
	DefaultSleepHours  = 8.0
	DefaultExercise    = 4.0
)

type GoalRequest struct {
	Label string   `json:"label" validate:"required,max=100"`
	Value *float64 `json:"value" validate:"required,gte=0"`
	Unit  string   `json:"unit" validate:"required,max=40"`
}

// GoalUpdateRequest changes a goal. Defaults accept only Value.
type GoalUpdateRequest struct {
	Value *float64 `json:"value" validate:"required,gte=0"`
	Label *string  `json:"label,omitempty" validate:"omitempty,min=1,max=100"`
	Unit  *string  `json:"unit,omitempty" validate:"omitempty,min=1,max=40"`
}

// DefaultGoals builds the three goals every account starts with.
func DefaultGoals(userID string, now time.Time) []*internal.Goal {
	mk := func(t internal.GoalType, label string, value float64, unit string) *internal.Goal {
		return &internal.Goal{
			ID:        uuid.NewString(),
			UserID:    userID,
			Type:      t,
			Label:     label,
			Value:     value,
			Unit:      unit,
			IsDefault: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return []*internal.Goal{
		mk(internal.GoalExercise, "Exercise", DefaultExercise, "times/week"),
		mk(internal.GoalWater, "Water", DefaultWaterLiters, "L/day"),
		mk(internal.GoalSleep, "Sleep", DefaultSleepHours, "hours/night"),
	}
}

// EnsureDefaultGoals seeds defaults for users that have no goals yet. It is safe to call repeatedly.
func EnsureDefaultGoals(ctx context.Context, repo storage.GoalRepository, userID string, now time.Time) (bool, error) {
	return repo.SeedDefaultGoals(ctx, userID, DefaultGoals(userID, now))
}

func ListGoals(ctx context.Context, repo storage.GoalRepository, userID string) ([]internal.Goal, error) {
	return repo.ListGoals(ctx, userID)
}

// CreateCustomGoal always stores a non-default goal of type custom.
func CreateCustomGoal(ctx context.Context, repo storage.GoalRepository, userID string, req *GoalRequest, now time.Time) (*internal.Goal, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	goal := &internal.Goal{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      internal.GoalCustom,
		Label:     strings.TrimSpace(req.Label),
		Value:     *req.Value,
		Unit:      strings.TrimSpace(req.Unit),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// UpdateGoal is ownership-checked: another user's goal is reported as not found.
func UpdateGoal(ctx context.Context, repo storage.GoalRepository, userID, goalID string, req *GoalUpdateRequest, now time.Time) (*internal.Goal, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	goal, err := repo.GetGoal(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}
	if goal.IsDefault && (changes(req.Label, goal.Label) || changes(req.Unit, goal.Unit)) {
		return nil, internal.ErrDefaultGoalFields
	}

	goal.Value = *req.Value
	if req.Label != nil {
		goal.Label = strings.TrimSpace(*req.Label)
	}
	if req.Unit != nil {
		goal.Unit = strings.TrimSpace(*req.Unit)
	}
	goal.UpdatedAt = now
	if err := repo.UpdateGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func changes(v *string, current string) bool {
	return v != nil && strings.TrimSpace(*v) != current
}

// DeleteGoal refuses default goals with ErrDefaultGoalDelete.
func DeleteGoal(ctx context.Context, repo storage.GoalRepository, userID, goalID string) error {
	goal, err := repo.GetGoal(ctx, goalID, userID)
	if err != nil {
		return err
	}
	if goal.IsDefault {
		return internal.ErrDefaultGoalDelete
	}
	return repo.DeleteGoal(ctx, goalID, userID)
}

// goalValue returns the value of the first goal of type t, or fallback when absent.
func goalValue(goals []internal.Goal, t internal.GoalType, fallback float64) float64 {
	for _, g := range goals {
		if g.Type == t {
			return g.Value
		}
	}
	return fallback
}
