package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/service"
)

func GetSummary(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		rangeDays := service.DefaultRangeDays
		if v := c.Query("range_days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				HandleError(c, app.Logger(), internal.NewValidationError("range_days", "must be an integer"), "Invalid range")
				return
			}
			rangeDays = n
		}
		if rangeDays == 0 {
			HandleError(c, app.Logger(), internal.NewValidationError("range_days", "must be between 1 and 31"), "Invalid range")
			return
		}

		summary, err := service.Summarize(c.Request.Context(), storesOf(app), userID(c), service.SummaryOptions{
			RangeDays: rangeDays,
			WeekStart: app.Config().WeekStart(),
			Now:       app.Now(),
		})
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to build summary")
			return
		}
		HandleSuccess(c, app.Logger(), summary, map[string]any{"range_days": rangeDays})
	}
}

// GetWeekly serves the per-day goal report for one metric.
func GetWeekly(app App, metric service.Metric) gin.HandlerFunc {
	return func(c *gin.Context) {
		weekStart, err := weekStartParam(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Invalid week start")
			return
		}
		report, err := service.BuildWeeklyReport(c.Request.Context(), storesOf(app), userID(c), metric, weekStart, app.Now())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to build weekly report")
			return
		}
		HandleSuccess(c, app.Logger(), report, nil)
	}
}
