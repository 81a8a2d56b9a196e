package service

import (
	"time"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/calendar"
)

// Evaluation counts goal completion over the days that have already happened.
type Evaluation struct {
	PerDayMet        []bool
	MetCount         int
	EligibleDayCount int
}

// EvaluateGoal marks each day not after asOf as met when its value reaches threshold.
// Later days stay false and count toward neither total.
func EvaluateGoal(series Series, threshold float64, asOf time.Time) Evaluation {
	ev := Evaluation{PerDayMet: make([]bool, len(series))}
	for i, p := range series {
		if calendar.IsAfterDay(p.Date, asOf) {
			continue
		}
		ev.EligibleDayCount++
		if p.Value >= threshold {
			ev.PerDayMet[i] = true
			ev.MetCount++
		}
	}
	return ev
}

// WeeklyGoalMet holds when every eligible day met the goal and at least one day was eligible.
func (e Evaluation) WeeklyGoalMet() bool {
	return e.EligibleDayCount > 0 && e.MetCount == e.EligibleDayCount
}
