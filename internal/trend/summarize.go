// Package trend derives compact summary statistics over a weather snapshot.
package trend

import (
	"math"
	"time"

	"github.com/ayane-k/soracast/internal/models"
)

// DefaultPrecipThreshold is the precipitation rate above which a period
// counts as rain, in mm/h.
const DefaultPrecipThreshold = 0.1

// Thresholds for the extreme-temperature flag.
const (
	extremeHotC  = 33.0
	extremeColdC = 0.0
)

// Summarizer computes trends. The zero value is not usable; use New.
type Summarizer struct {
	PrecipThreshold float64
}

// New creates a summarizer with the given rain threshold. A non-positive
// threshold falls back to the default.
func New(precipThreshold float64) *Summarizer {
	if precipThreshold <= 0 {
		precipThreshold = DefaultPrecipThreshold
	}
	return &Summarizer{PrecipThreshold: precipThreshold}
}

// Summarize derives a Trend from a snapshot. Pure function: identical
// snapshots always produce identical trends.
func (s *Summarizer) Summarize(snap *models.Snapshot) models.Trend {
	t := models.Trend{Dominant: models.ConditionUnknown}
	if snap == nil || !snap.HasPeriods() {
		return t
	}

	minTemp := snap.Periods[0].TemperatureC
	maxTemp := snap.Periods[0].TemperatureC
	for _, p := range snap.Periods {
		if p.TemperatureC < minTemp {
			minTemp = p.TemperatureC
		}
		if p.TemperatureC > maxTemp {
			maxTemp = p.TemperatureC
		}
		if p.PrecipMMPerH > t.MaxPrecipitation {
			t.MaxPrecipitation = p.PrecipMMPerH
		}
		if p.PrecipMMPerH > s.PrecipThreshold {
			t.HasAnyRain = true
		}
		if p.TemperatureC >= extremeHotC || p.TemperatureC <= extremeColdC {
			t.HasExtremeTemp = true
		}
	}
	t.DailyTempDelta = maxTemp - minTemp
	t.HourlyTempDelta = hourlyDelta(snap.Periods)
	t.Dominant = dominantCondition(snap.Periods)
	return t
}

// hourlyDelta is the temperature change between any two periods 12 hours
// apart, when such a pair exists. Zero otherwise.
func hourlyDelta(periods []models.PeriodForecast) float64 {
	for i := 0; i < len(periods); i++ {
		for j := i + 1; j < len(periods); j++ {
			gap := periods[j].Timestamp.Sub(periods[i].Timestamp)
			if gap == 12*time.Hour {
				return math.Abs(periods[j].TemperatureC - periods[i].TemperatureC)
			}
		}
	}
	return 0
}

// dominantCondition returns the plurality condition, breaking ties in favor
// of the severest condition.
func dominantCondition(periods []models.PeriodForecast) models.Condition {
	counts := make(map[models.Condition]int)
	for _, p := range periods {
		counts[p.Condition]++
	}

	best := models.ConditionUnknown
	bestCount := -1
	for cond, n := range counts {
		if n > bestCount || (n == bestCount && cond.Severity() > best.Severity()) {
			best = cond
			bestCount = n
		}
	}
	return best
}
