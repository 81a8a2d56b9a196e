package service

import (
	"context"
	"time"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/calendar"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/storage"
)

type WaterRequest struct {
	AmountML *int   `json:"amount_ml" validate:"required,gte=0,lte=20000"`
	Day      string `json:"day,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// RecordWater adds the amount to the caller's total for the day (today when omitted).
func RecordWater(ctx context.Context, repo storage.WaterLogRepository, userID string, req *WaterRequest, now time.Time) (*internal.WaterLog, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	day, err := resolveDay("day", req.Day, now)
	if err != nil {
		return nil, err
	}
	return repo.AddWater(ctx, userID, day, *req.AmountML)
}

// ListWater returns logs for [from, to] inclusive, ascending by day.
func ListWater(ctx context.Context, repo storage.WaterLogRepository, userID string, from, to time.Time) ([]internal.WaterLog, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	return repo.FindWaterInRange(ctx, userID, calendar.DayStart(from), calendar.DayStart(to).AddDate(0, 0, 1))
}

// TodayWater returns today's log, or a zero-amount placeholder when nothing was logged.
func TodayWater(ctx context.Context, repo storage.WaterLogRepository, userID string, now time.Time) (*internal.WaterLog, error) {
	today := calendar.DayStart(now)
	logs, err := repo.FindWaterInRange(ctx, userID, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return &internal.WaterLog{UserID: userID, Day: today}, nil
	}
	return &logs[0], nil
}

// maxListDays bounds the listing endpoints.
const maxListDays = 366

func checkRange(from, to time.Time) error {
	if calendar.IsAfterDay(from, to) {
		return internal.NewValidationError("from", "must not be after to")
	}
	if calendar.DayStart(to).After(calendar.DayStart(from).AddDate(0, 0, maxListDays-1)) {
		return internal.NewValidationError("to", "range must not exceed 366 days")
	}
	return nil
}
