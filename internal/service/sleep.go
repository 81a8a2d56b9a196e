package service

import (
	"context"
	"time"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/calendar"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/storage"
)

type SleepRequest struct {
	Day              string `json:"day,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DurationMinutes  *int   `json:"duration_minutes" validate:"required,gte=0,lte=1440"`
	RestedPercent    *int   `json:"rested_percent" validate:"required,gte=0,lte=100"`
	REMPercent       *int   `json:"rem_percent" validate:"required,gte=0,lte=100"`
	DeepSleepPercent *int   `json:"deep_sleep_percent" validate:"required,gte=0,lte=100"`
	Notes            string `json:"notes,omitempty" validate:"max=1000"`
}

// RecordSleep creates or fully replaces the caller's entry for the day.
func RecordSleep(ctx context.Context, repo storage.SleepEntryRepository, userID string, req *SleepRequest, now time.Time) (*internal.SleepEntry, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	day, err := resolveDay("day", req.Day, now)
	if err != nil {
		return nil, err
	}
	return repo.UpsertSleepEntry(ctx, &internal.SleepEntry{
		UserID:           userID,
		Day:              day,
		DurationMinutes:  *req.DurationMinutes,
		RestedPercent:    *req.RestedPercent,
		REMPercent:       *req.REMPercent,
		DeepSleepPercent: *req.DeepSleepPercent,
		Notes:            req.Notes,
	})
}

func ListSleep(ctx context.Context, repo storage.SleepEntryRepository, userID string, from, to time.Time) ([]internal.SleepEntry, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	return repo.FindSleepInRange(ctx, userID, calendar.DayStart(from), calendar.DayStart(to).AddDate(0, 0, 1))
}
