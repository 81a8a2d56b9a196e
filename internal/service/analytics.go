package service

import (
	"context"
	"math"
	"time"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/calendar"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/storage"
)

const (
	DefaultRangeDays = 7
	MaxRangeDays     = 31
)

// Stores is everything the aggregator reads.
type Stores interface {
	storage.GoalRepository
	LogStores
}

type SummaryOptions struct {
	RangeDays int
	WeekStart time.Weekday
	Now       time.Time
}

type SleepSummary struct {
	Days         []string  `json:"days"`
	Dates        []string  `json:"dates"`
	Hours        []float64 `json:"hours"`
	Average      float64   `json:"average"`
	GoalHours    float64   `json:"goal_hours"`
	GoalMetCount int       `json:"goal_met_count"`
}

type WaterSummary struct {
	Days            []string  `json:"days"`
	Dates           []string  `json:"dates"`
	Liters          []float64 `json:"liters"`
	DailyGoalLiters float64   `json:"daily_goal_liters"`
	GoalMetCount    int       `json:"goal_met_count"`
}

type GoalsSummary struct {
	TotalGoals                  int `json:"total_goals"`
	CompletedToday              int `json:"completed_today"`
	WeeklyCompletionRatePercent int `json:"weekly_completion_rate_percent"`
}

type AnalyticsSummary struct {
	Sleep SleepSummary `json:"sleep"`
	Water WaterSummary `json:"water"`
	Goals GoalsSummary `json:"goals"`
}

// Window returns the first day and length of the aggregation range.
// Seven days means the calendar week containing now; other lengths trail back from today.
func Window(rangeDays int, weekStart time.Weekday, now time.Time) (time.Time, int, error) {
	if rangeDays == 0 {
		rangeDays = DefaultRangeDays
	}
	if rangeDays < 1 || rangeDays > MaxRangeDays {
		return time.Time{}, 0, internal.NewValidationError("range_days", "must be between 1 and 31")
	}
	if rangeDays == DefaultRangeDays {
		return calendar.StartOfWeek(now, weekStart), rangeDays, nil
	}
	return calendar.DayStart(now).AddDate(0, 0, -(rangeDays - 1)), rangeDays, nil
}

// metricView is one metric reduced over a window.
type metricView struct {
	raw       Series
	display   Series
	threshold float64
	eval      Evaluation
}

func viewMetric(ctx context.Context, stores LogStores, userID string, start time.Time, n int, metric Metric, threshold float64, now time.Time) (*metricView, error) {
	raw, err := BuildSeries(ctx, stores, userID, start, n, metric)
	if err != nil {
		return nil, err
	}
	display := raw.Display(metric)
	return &metricView{
		raw:       raw,
		display:   display,
		threshold: threshold,
		eval:      EvaluateGoal(display, threshold, now),
	}, nil
}

// Summarize reduces the user's goals and logs over the window into the dashboard summary.
// It is a pure read; any failing fetch fails the whole call.
func Summarize(ctx context.Context, stores Stores, userID string, opts SummaryOptions) (*AnalyticsSummary, error) {
	start, n, err := Window(opts.RangeDays, opts.WeekStart, opts.Now)
	if err != nil {
		return nil, err
	}

	goals, err := stores.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	waterGoal := goalValue(goals, internal.GoalWater, DefaultWaterLiters)
	sleepGoal := goalValue(goals, internal.GoalSleep, DefaultSleepHours)

	water, err := viewMetric(ctx, stores, userID, start, n, MetricWater, waterGoal, opts.Now)
	if err != nil {
		return nil, err
	}
	sleep, err := viewMetric(ctx, stores, userID, start, n, MetricSleep, sleepGoal, opts.Now)
	if err != nil {
		return nil, err
	}

	waterShown := water.display.Through(opts.Now)
	sleepShown := sleep.display.Through(opts.Now)
	elapsed := len(waterShown)

	completedToday := 0
	if water.raw.valueOn(opts.Now) >= toRaw(MetricWater, waterGoal) {
		completedToday++
	}
	if sleep.raw.valueOn(opts.Now) >= toRaw(MetricSleep, sleepGoal) {
		completedToday++
	}

	return &AnalyticsSummary{
		Sleep: SleepSummary{
			Days:         sleepShown.Labels(),
			Dates:        sleepShown.Dates(),
			Hours:        sleepShown.Values(),
			Average:      nonZeroAverage(sleepShown.Values()),
			GoalHours:    sleepGoal,
			GoalMetCount: sleep.eval.MetCount,
		},
		Water: WaterSummary{
			Days:            waterShown.Labels(),
			Dates:           waterShown.Dates(),
			Liters:          waterShown.Values(),
			DailyGoalLiters: waterGoal,
			GoalMetCount:    water.eval.MetCount,
		},
		Goals: GoalsSummary{
			TotalGoals:                  len(goals),
			CompletedToday:              completedToday,
			WeeklyCompletionRatePercent: completionPercent(water.eval.MetCount+sleep.eval.MetCount, 2*elapsed),
		},
	}, nil
}

// nonZeroAverage averages the non-zero values, rounded to one decimal; 0 when there are none.
func nonZeroAverage(values []float64) float64 {
	var sum float64
	var count int
	for _, v := range values {
		if v > 0 {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return round1(sum / float64(count))
}

func completionPercent(met, possible int) int {
	if possible <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(met) / float64(possible)))
}

type ReportDay struct {
	Date     string  `json:"date"`
	Day      string  `json:"day"`
	RawValue float64 `json:"raw_value"`
	Value    float64 `json:"value"`
	Eligible bool    `json:"eligible"`
	GoalMet  bool    `json:"goal_met"`
}

type WeeklyReport struct {
	Metric        Metric      `json:"metric"`
	WeekStart     string      `json:"week_start"`
	Unit          string      `json:"unit"`
	Goal          float64     `json:"goal"`
	Days          []ReportDay `json:"days"`
	MetCount      int         `json:"met_count"`
	EligibleDays  int         `json:"eligible_days"`
	WeeklyGoalMet bool        `json:"weekly_goal_met"`
}

// BuildWeeklyReport evaluates one metric over the seven days from weekStart.
// Future days are listed but never eligible.
func BuildWeeklyReport(ctx context.Context, stores Stores, userID string, metric Metric, weekStart, now time.Time) (*WeeklyReport, error) {
	goals, err := stores.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	var threshold float64
	switch metric {
	case MetricWater:
		threshold = goalValue(goals, internal.GoalWater, DefaultWaterLiters)
	case MetricSleep:
		threshold = goalValue(goals, internal.GoalSleep, DefaultSleepHours)
	default:
		return nil, internal.NewValidationError("metric", "must be water or sleep")
	}

	view, err := viewMetric(ctx, stores, userID, weekStart, 7, metric, threshold, now)
	if err != nil {
		return nil, err
	}

	days := make([]ReportDay, len(view.display))
	for i, p := range view.display {
		days[i] = ReportDay{
			Date:     calendar.DayKey(p.Date),
			Day:      p.Label,
			RawValue: view.raw[i].Value,
			Value:    p.Value,
			Eligible: !calendar.IsAfterDay(p.Date, now),
			GoalMet:  view.eval.PerDayMet[i],
		}
	}
	return &WeeklyReport{
		Metric:        metric,
		WeekStart:     calendar.DayKey(calendar.DayStart(weekStart)),
		Unit:          metric.Unit(),
		Goal:          threshold,
		Days:          days,
		MetCount:      view.eval.MetCount,
		EligibleDays:  view.eval.EligibleDayCount,
		WeeklyGoalMet: view.eval.WeeklyGoalMet(),
	}, nil
}
