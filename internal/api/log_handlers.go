package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/calendar"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/service"
)

// listRange reads ?from&to (YYYY-MM-DD, inclusive). Defaults to the last seven days.
func listRange(c *gin.Context, now time.Time) (time.Time, time.Time, error) {
	to := calendar.DayStart(now)
	from := to.AddDate(0, 0, -6)
	var err error
	if v := c.Query("to"); v != "" {
		if to, err = calendar.ParseDay(v); err != nil {
			return time.Time{}, time.Time{}, internal.NewValidationError("to", "must be a date in YYYY-MM-DD format")
		}
		if c.Query("from") == "" {
			from = to.AddDate(0, 0, -6)
		}
	}
	if v := c.Query("from"); v != "" {
		if from, err = calendar.ParseDay(v); err != nil {
			return time.Time{}, time.Time{}, internal.NewValidationError("from", "must be a date in YYYY-MM-DD format")
		}
	}
	return from, to, nil
}

// weekStartParam reads ?week_start, defaulting to the start of the current week.
func weekStartParam(c *gin.Context, app App) (time.Time, error) {
	v := c.Query("week_start")
	if v == "" {
		return calendar.StartOfWeek(app.Now(), app.Config().WeekStart()), nil
	}
	d, err := calendar.ParseDay(v)
	if err != nil {
		return time.Time{}, internal.NewValidationError("week_start", "must be a date in YYYY-MM-DD format")
	}
	return calendar.StartOfWeek(d, app.Config().WeekStart()), nil
}

func PostWater(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.WaterRequest
		if !bindJSON(c, app, &req) {
			return
		}
		log, err := service.RecordWater(c.Request.Context(), app.WaterRepo(), userID(c), &req, app.Now())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to save water log")
			return
		}
		HandleSuccess(c, app.Logger(), log, nil)
	}
}

func GetWater(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, err := listRange(c, app.Now())
		if err != nil {
			HandleError(c, app.Logger(), err, "Invalid range")
			return
		}
		logs, err := service.ListWater(c.Request.Context(), app.WaterRepo(), userID(c), from, to)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch water logs")
			return
		}
		HandleSuccess(c, app.Logger(), logs, map[string]any{"from": calendar.DayKey(from), "to": calendar.DayKey(to)})
	}
}

func GetWaterToday(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		log, err := service.TodayWater(c.Request.Context(), app.WaterRepo(), userID(c), app.Now())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch today's water")
			return
		}
		HandleSuccess(c, app.Logger(), log, nil)
	}
}

func PostSleep(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.SleepRequest
		if !bindJSON(c, app, &req) {
			return
		}
		entry, err := service.RecordSleep(c.Request.Context(), app.SleepRepo(), userID(c), &req, app.Now())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to save sleep entry")
			return
		}
		HandleSuccess(c, app.Logger(), entry, nil)
	}
}

func GetSleep(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, err := listRange(c, app.Now())
		if err != nil {
			HandleError(c, app.Logger(), err, "Invalid range")
			return
		}
		entries, err := service.ListSleep(c.Request.Context(), app.SleepRepo(), userID(c), from, to)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch sleep entries")
			return
		}
		HandleSuccess(c, app.Logger(), entries, map[string]any{"from": calendar.DayKey(from), "to": calendar.DayKey(to)})
	}
}
