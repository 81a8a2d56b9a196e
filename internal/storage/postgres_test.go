package storage

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
)

// setupPostgres needs a disposable database in TEST_POSTGRES_DSN.
func setupPostgres(t *testing.T) *PostgresStorage {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	logger := internal.NopLogger()
	require.NoError(t, MigrateUp(dsn, logger))

	ctx := context.Background()
	p, err := NewPostgresStorage(ctx, dsn, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func createPostgresUser(t *testing.T, p *PostgresStorage) *internal.User {
	t.Helper()
	u := &internal.User{
		ID:           uuid.NewString(),
		Name:         "Ada",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, p.CreateUserWithDefaults(context.Background(), u, []*internal.Goal{
		testGoal(u.ID, internal.GoalWater, 3, true),
	}))
	return u
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db", migrateURL("postgres://u:p@h:5432/db"))
	assert.Equal(t, "pgx5://u:p@h/db", migrateURL("postgresql://u:p@h/db"))
	assert.Equal(t, "pgx5://h/db", migrateURL("pgx5://h/db"))
}

func TestPostgresAddWaterConcurrent(t *testing.T) {
	p := setupPostgres(t)
	u := createPostgresUser(t, p)
	ctx := context.Background()
	day := time.Date(2024, 6, 12, 0, 0, 0, 0, time.Local)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.AddWater(ctx, u.ID, day, 50)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	logs, err := p.FindWaterInRange(ctx, u.ID, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 1000, logs[0].AmountML)
	assert.Equal(t, day, logs[0].Day)
}

func TestPostgresSleepUpsertAndGoals(t *testing.T) {
	p := setupPostgres(t)
	u := createPostgresUser(t, p)
	ctx := context.Background()
	day := time.Date(2024, 6, 12, 0, 0, 0, 0, time.Local)

	first, err := p.UpsertSleepEntry(ctx, &internal.SleepEntry{UserID: u.ID, Day: day, DurationMinutes: 400, RestedPercent: 50})
	require.NoError(t, err)
	second, err := p.UpsertSleepEntry(ctx, &internal.SleepEntry{UserID: u.ID, Day: day, DurationMinutes: 480, RestedPercent: 80})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 480, second.DurationMinutes)

	seeded, err := p.SeedDefaultGoals(ctx, u.ID, []*internal.Goal{testGoal(u.ID, internal.GoalSleep, 8, true)})
	require.NoError(t, err)
	assert.False(t, seeded)

	goals, err := p.ListGoals(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.ErrorIs(t, p.DeleteGoal(ctx, goals[0].ID, u.ID), internal.ErrDefaultGoalDelete)
	assert.ErrorIs(t, p.DeleteGoal(ctx, uuid.NewString(), u.ID), internal.ErrNotFound)

	dup := &internal.User{ID: uuid.NewString(), Name: "Dup", Email: u.Email, PasswordHash: "x", CreatedAt: time.Now()}
	assert.ErrorIs(t, p.CreateUserWithDefaults(ctx, dup, nil), internal.ErrConflict)
}
