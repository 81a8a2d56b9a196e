package storage

import (
	"context"
	"time"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
)

type UserRepository interface {
	// CreateUserWithDefaults stores the user and its default goals atomically.
	// A taken email yields internal.ErrConflict.
	CreateUserWithDefaults(ctx context.Context, user *internal.User, goals []*internal.Goal) error
	GetUserByID(ctx context.Context, id string) (*internal.User, error)
	GetUserByEmail(ctx context.Context, email string) (*internal.User, error)
	UpdateUser(ctx context.Context, user *internal.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type GoalRepository interface {
	ListGoals(ctx context.Context, userID string) ([]internal.Goal, error)
	// GetGoal reports internal.ErrNotFound for missing goals and for goals of other users.
	GetGoal(ctx context.Context, goalID, userID string) (*internal.Goal, error)
	CreateGoal(ctx context.Context, goal *internal.Goal) error
	UpdateGoal(ctx context.Context, goal *internal.Goal) error
	// DeleteGoal never removes a default goal.
	DeleteGoal(ctx context.Context, goalID, userID string) error
	// SeedDefaultGoals inserts goals only when the user has none. It reports whether it inserted.
	SeedDefaultGoals(ctx context.Context, userID string, goals []*internal.Goal) (bool, error)
}

type WaterLogRepository interface {
	// AddWater increments the (user, day) record or creates it, as one atomic step.
	AddWater(ctx context.Context, userID string, day time.Time, amountML int) (*internal.WaterLog, error)
	FindWaterInRange(ctx context.Context, userID string, start, endExclusive time.Time) ([]internal.WaterLog, error)
}

type SleepEntryRepository interface {
	// UpsertSleepEntry replaces every field of the (user, day) entry or creates it.
	UpsertSleepEntry(ctx context.Context, entry *internal.SleepEntry) (*internal.SleepEntry, error)
	FindSleepInRange(ctx context.Context, userID string, start, endExclusive time.Time) ([]internal.SleepEntry, error)
}

// Store is every repository plus lifecycle.
type Store interface {
	UserRepository
	GoalRepository
	WaterLogRepository
	SleepEntryRepository
	Close() error
}
