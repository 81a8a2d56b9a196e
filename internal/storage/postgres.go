package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/calendar"
)

const uniqueViolation = "23505"

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(ctx context.Context, dsn string, logger internal.Logger) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, internal.NewStorageError("connect", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Errorf("failed to ping postgres: %v", err)
		return nil, internal.NewStorageError("ping", err)
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// wrap maps driver errors onto the domain taxonomy.
func (p *PostgresStorage) wrap(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, internal.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, internal.ErrConflict)
	}
	p.logger.Errorf("postgres %s failed: %v", op, err)
	return internal.NewStorageError(op, err)
}

// --- UserRepository ---
const userColumns = `id, name, email, password_hash, profile_image_url, created_at`

func scanUser(row pgx.Row) (*internal.User, error) {
	var u internal.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.ProfileImageURL, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *PostgresStorage) CreateUserWithDefaults(ctx context.Context, user *internal.User, goals []*internal.Goal) error {
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
			user.ID, user.Name, strings.ToLower(user.Email), user.PasswordHash, user.ProfileImageURL, user.CreatedAt)
		if err != nil {
			return err
		}
		return insertGoals(ctx, tx, user.ID, goals)
	})
	if err != nil {
		return p.wrap("create user", err)
	}
	return nil
}

func (p *PostgresStorage) GetUserByID(ctx context.Context, id string) (*internal.User, error) {
	u, err := scanUser(p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, p.wrap("get user "+id, err)
	}
	return u, nil
}

func (p *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	u, err := scanUser(p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
	if err != nil {
		return nil, p.wrap("get user by email", err)
	}
	return u, nil
}

func (p *PostgresStorage) UpdateUser(ctx context.Context, user *internal.User) error {
	tag, err := p.pool.Exec(ctx, `UPDATE users SET name = $2, profile_image_url = $3 WHERE id = $1`,
		user.ID, user.Name, user.ProfileImageURL)
	if err != nil {
		return p.wrap("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", user.ID, internal.ErrNotFound)
	}
	return nil
}

func (p *PostgresStorage) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	tag, err := p.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, passwordHash)
	if err != nil {
		return p.wrap("update password", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, internal.ErrNotFound)
	}
	return nil
}

// --- GoalRepository ---
const goalColumns = `id, user_id, type, label, value, unit, is_default, created_at, updated_at`

// Defaults first in their fixed order, then custom goals by creation.
const goalOrder = `ORDER BY CASE type WHEN 'exercise' THEN 0 WHEN 'water' THEN 1 WHEN 'sleep' THEN 2 ELSE 3 END, created_at, id`

func scanGoal(row pgx.Row) (internal.Goal, error) {
	var g internal.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Type, &g.Label, &g.Value, &g.Unit, &g.IsDefault, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func insertGoals(ctx context.Context, tx pgx.Tx, userID string, goals []*internal.Goal) error {
	if len(goals) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, g := range goals {
		batch.Queue(`INSERT INTO goals (`+goalColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			g.ID, userID, g.Type, g.Label, g.Value, g.Unit, g.IsDefault, g.CreatedAt, g.UpdatedAt)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func (p *PostgresStorage) ListGoals(ctx context.Context, userID string) ([]internal.Goal, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = $1 `+goalOrder, userID)
	if err != nil {
		return nil, p.wrap("list goals", err)
	}
	defer rows.Close()

	goals := []internal.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, p.wrap("scan goal", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, p.wrap("list goals", err)
	}
	return goals, nil
}

func (p *PostgresStorage) GetGoal(ctx context.Context, goalID, userID string) (*internal.Goal, error) {
	if _, err := uuid.Parse(goalID); err != nil {
		return nil, fmt.Errorf("goal %s: %w", goalID, internal.ErrNotFound)
	}
	g, err := scanGoal(p.pool.QueryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID))
	if err != nil {
		return nil, p.wrap("get goal "+goalID, err)
	}
	return &g, nil
}

func (p *PostgresStorage) CreateGoal(ctx context.Context, goal *internal.Goal) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO goals (`+goalColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		goal.ID, goal.UserID, goal.Type, goal.Label, goal.Value, goal.Unit, goal.IsDefault, goal.CreatedAt, goal.UpdatedAt)
	if err != nil {
		return p.wrap("create goal", err)
	}
	return nil
}

func (p *PostgresStorage) UpdateGoal(ctx context.Context, goal *internal.Goal) error {
	tag, err := p.pool.Exec(ctx, `UPDATE goals SET label = $3, value = $4, unit = $5, updated_at = $6 WHERE id = $1 AND user_id = $2`,
		goal.ID, goal.UserID, goal.Label, goal.Value, goal.Unit, goal.UpdatedAt)
	if err != nil {
		return p.wrap("update goal", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("goal %s: %w", goal.ID, internal.ErrNotFound)
	}
	return nil
}

func (p *PostgresStorage) DeleteGoal(ctx context.Context, goalID, userID string) error {
	if _, err := uuid.Parse(goalID); err != nil {
		return fmt.Errorf("goal %s: %w", goalID, internal.ErrNotFound)
	}
	tag, err := p.pool.Exec(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2 AND NOT is_default`, goalID, userID)
	if err != nil {
		return p.wrap("delete goal", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	// Nothing deleted: either absent or protected.
	if _, err := p.GetGoal(ctx, goalID, userID); err != nil {
		return err
	}
	return internal.ErrDefaultGoalDelete
}

func (p *PostgresStorage) SeedDefaultGoals(ctx context.Context, userID string, goals []*internal.Goal) (bool, error) {
	seeded := false
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		// Serializes concurrent seeding for the same user.
		var id string
		if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id); err != nil {
			return err
		}
		var count int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM goals WHERE user_id = $1`, userID).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		if err := insertGoals(ctx, tx, userID, goals); err != nil {
			return err
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, p.wrap("seed default goals", err)
	}
	return seeded, nil
}

// --- WaterLogRepository ---
func (p *PostgresStorage) AddWater(ctx context.Context, userID string, day time.Time, amountML int) (*internal.WaterLog, error) {
	now := time.Now()
	var l internal.WaterLog
	err := p.pool.QueryRow(ctx, `
		INSERT INTO water_logs (id, user_id, day, amount_ml, created_at, updated_at)
		VALUES ($1, $2, $3::date, $4, $5, $5)
		ON CONFLICT (user_id, day) DO UPDATE
		SET amount_ml = water_logs.amount_ml + EXCLUDED.amount_ml, updated_at = EXCLUDED.updated_at
		RETURNING id, user_id, day, amount_ml, created_at, updated_at`,
		uuid.NewString(), userID, calendar.DayStart(day), amountML, now,
	).Scan(&l.ID, &l.UserID, &l.Day, &l.AmountML, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, p.wrap("add water", err)
	}
	l.Day = calendar.Anchor(l.Day)
	return &l, nil
}

func (p *PostgresStorage) FindWaterInRange(ctx context.Context, userID string, start, endExclusive time.Time) ([]internal.WaterLog, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, user_id, day, amount_ml, created_at, updated_at
		FROM water_logs WHERE user_id = $1 AND day >= $2::date AND day < $3::date
		ORDER BY day`, userID, calendar.DayStart(start), calendar.DayStart(endExclusive))
	if err != nil {
		return nil, p.wrap("find water", err)
	}
	defer rows.Close()

	logs := []internal.WaterLog{}
	for rows.Next() {
		var l internal.WaterLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Day, &l.AmountML, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, p.wrap("scan water log", err)
		}
		l.Day = calendar.Anchor(l.Day)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, p.wrap("find water", err)
	}
	return logs, nil
}

// --- SleepEntryRepository ---
const sleepColumns = `id, user_id, day, duration_minutes, rested_percent, rem_percent, deep_sleep_percent, notes, created_at, updated_at`

func scanSleep(row pgx.Row) (internal.SleepEntry, error) {
	var e internal.SleepEntry
	err := row.Scan(&e.ID, &e.UserID, &e.Day, &e.DurationMinutes, &e.RestedPercent, &e.REMPercent,
		&e.DeepSleepPercent, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	e.Day = calendar.Anchor(e.Day)
	return e, err
}

func (p *PostgresStorage) UpsertSleepEntry(ctx context.Context, entry *internal.SleepEntry) (*internal.SleepEntry, error) {
	now := time.Now()
	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}
	e, err := scanSleep(p.pool.QueryRow(ctx, `
		INSERT INTO sleep_entries (`+sleepColumns+`)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (user_id, day) DO UPDATE
		SET duration_minutes = EXCLUDED.duration_minutes,
		    rested_percent = EXCLUDED.rested_percent,
		    rem_percent = EXCLUDED.rem_percent,
		    deep_sleep_percent = EXCLUDED.deep_sleep_percent,
		    notes = EXCLUDED.notes,
		    updated_at = EXCLUDED.updated_at
		RETURNING `+sleepColumns,
		id, entry.UserID, calendar.DayStart(entry.Day), entry.DurationMinutes, entry.RestedPercent,
		entry.REMPercent, entry.DeepSleepPercent, entry.Notes, now,
	))
	if err != nil {
		return nil, p.wrap("upsert sleep entry", err)
	}
	return &e, nil
}

func (p *PostgresStorage) FindSleepInRange(ctx context.Context, userID string, start, endExclusive time.Time) ([]internal.SleepEntry, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+sleepColumns+`
		FROM sleep_entries WHERE user_id = $1 AND day >= $2::date AND day < $3::date
		ORDER BY day`, userID, calendar.DayStart(start), calendar.DayStart(endExclusive))
	if err != nil {
		return nil, p.wrap("find sleep", err)
	}
	defer rows.Close()

	entries := []internal.SleepEntry{}
	for rows.Next() {
		e, err := scanSleep(rows)
		if err != nil {
			return nil, p.wrap("scan sleep entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, p.wrap("find sleep", err)
	}
	return entries, nil
}

// --- Compile-time assertions ---
var _ Store = (*PostgresStorage)(nil)
