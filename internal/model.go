package internal

import "time"

type GoalType string

const (
	GoalExercise GoalType = "exercise"
	GoalWater    GoalType = "water"
	GoalSleep    GoalType = "sleep"
	GoalCustom   GoalType = "custom"
)

type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type Goal struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      GoalType  `json:"type"`
	Label     string    `json:"label"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WaterLog is the accumulated intake of one user on one calendar day.
type WaterLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Day       time.Time `json:"day"`
	AmountML  int       `json:"amount_ml"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SleepEntry summarises one night. Quality percentages are independent of each other.
type SleepEntry struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Day              time.Time `json:"day"`
	DurationMinutes  int       `json:"duration_minutes"`
	RestedPercent    int       `json:"rested_percent"`
	REMPercent       int       `json:"rem_percent"`
	DeepSleepPercent int       `json:"deep_sleep_percent"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
