package service

import (
	"context"
	"math"
	"time"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/calendar"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/storage"
)

type Metric string

const (
	MetricWater Metric = "water"
	MetricSleep Metric = "sleep"
)

// Unit is the display unit after conversion.
func (m Metric) Unit() string {
	if m == MetricWater {
		return "L"
	}
	return "h"
}

// LogStores is what the series builder reads from.
type LogStores interface {
	storage.WaterLogRepository
	storage.SleepEntryRepository
}

type SeriesPoint struct {
	Date  time.Time
	Label string
	Value float64
}

// Series is gap-free: one point per calendar day, in day order.
type Series []SeriesPoint

// BuildWeek is BuildSeries over the seven days from weekStart.
func BuildWeek(ctx context.Context, stores LogStores, userID string, weekStart time.Time, metric Metric) (Series, error) {
	return BuildSeries(ctx, stores, userID, weekStart, 7, metric)
}

// BuildSeries returns raw stored units (ml or minutes) for n days from start; days without a record are 0.
func BuildSeries(ctx context.Context, stores LogStores, userID string, start time.Time, n int, metric Metric) (Series, error) {
	days := calendar.Days(start, n)
	if len(days) == 0 {
		return Series{}, nil
	}
	from, to := days[0], days[len(days)-1].AddDate(0, 0, 1)

	values := make(map[string]float64, len(days))
	switch metric {
	case MetricWater:
		logs, err := stores.FindWaterInRange(ctx, userID, from, to)
		if err != nil {
			return nil, err
		}
		for _, l := range logs {
			values[calendar.DayKey(l.Day)] = float64(l.AmountML)
		}
	case MetricSleep:
		entries, err := stores.FindSleepInRange(ctx, userID, from, to)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			values[calendar.DayKey(e.Day)] = float64(e.DurationMinutes)
		}
	default:
		return nil, internal.NewValidationError("metric", "must be water or sleep")
	}

	series := make(Series, len(days))
	for i, d := range days {
		series[i] = SeriesPoint{Date: d, Label: calendar.DayLabel(d), Value: values[calendar.DayKey(d)]}
	}
	return series, nil
}

// Display converts raw units to liters or hours rounded to one decimal.
func (s Series) Display(metric Metric) Series {
	out := make(Series, len(s))
	for i, p := range s {
		p.Value = toDisplay(metric, p.Value)
		out[i] = p
	}
	return out
}

// Through keeps the points whose calendar day is not after asOf.
func (s Series) Through(asOf time.Time) Series {
	for i, p := range s {
		if calendar.IsAfterDay(p.Date, asOf) {
			return s[:i]
		}
	}
	return s
}

func (s Series) Labels() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Label
	}
	return out
}

func (s Series) Dates() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = calendar.DayKey(p.Date)
	}
	return out
}

func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// valueOn returns the value for day's calendar day, 0 when the series does not cover it.
func (s Series) valueOn(day time.Time) float64 {
	key := calendar.DayKey(day)
	for _, p := range s {
		if calendar.DayKey(p.Date) == key {
			return p.Value
		}
	}
	return 0
}

func toDisplay(metric Metric, raw float64) float64 {
	if metric == MetricWater {
		return round1(raw / 1000)
	}
	return round1(raw / 60)
}

// toRaw converts a display-unit threshold back to stored units.
func toRaw(metric Metric, display float64) float64 {
	if metric == MetricWater {
		return display * 1000
	}
	return display * 60
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
