package trend

import (
	"reflect"
	"testing"
	"time"

	"github.com/ayane-k/soracast/internal/models"
)

func period(hour int, temp, precip float64, cond models.Condition) models.PeriodForecast {
	return models.PeriodForecast{
		Timestamp:    time.Date(2026, 7, 10, hour, 0, 0, 0, time.UTC),
		TemperatureC: temp,
		PrecipMMPerH: precip,
		Condition:    cond,
	}
}

func TestSummarizeDeltas(t *testing.T) {
	s := New(0)
	snap := &models.Snapshot{Periods: []models.PeriodForecast{
		period(6, 18, 0, models.ConditionSunny),
		period(9, 22, 0, models.ConditionSunny),
		period(12, 27, 0, models.ConditionSunny),
		period(18, 24, 0, models.ConditionSunny),
	}}

	tr := s.Summarize(snap)
	if tr.DailyTempDelta != 9 {
		t.Errorf("DailyTempDelta = %v, want 9", tr.DailyTempDelta)
	}
	// 06:00 and 18:00 are 12h apart: |24-18| = 6.
	if tr.HourlyTempDelta != 6 {
		t.Errorf("HourlyTempDelta = %v, want 6", tr.HourlyTempDelta)
	}
	if tr.HasAnyRain {
		t.Error("HasAnyRain = true, want false")
	}
}

func TestSummarizeNoTwelveHourPair(t *testing.T) {
	s := New(0)
	snap := &models.Snapshot{Periods: []models.PeriodForecast{
		period(9, 20, 0, models.ConditionSunny),
		period(12, 25, 0, models.ConditionSunny),
		period(15, 26, 0, models.ConditionSunny),
		period(18, 23, 0, models.ConditionSunny),
	}}
	if tr := s.Summarize(snap); tr.HourlyTempDelta != 0 {
		t.Errorf("HourlyTempDelta = %v, want 0 when no 12h pair exists", tr.HourlyTempDelta)
	}
}

func TestSummarizeRainAcrossAllPeriods(t *testing.T) {
	s := New(0.1)
	// Rain only in the third period: must still set HasAnyRain.
	snap := &models.Snapshot{Periods: []models.PeriodForecast{
		period(9, 25, 0, models.ConditionSunny),
		period(12, 27, 0, models.ConditionSunny),
		period(15, 26, 1.0, models.ConditionRainy),
		period(18, 24, 0, models.ConditionSunny),
	}}

	tr := s.Summarize(snap)
	if !tr.HasAnyRain {
		t.Error("HasAnyRain = false, want true when a later period has rain")
	}
	if tr.MaxPrecipitation != 1.0 {
		t.Errorf("MaxPrecipitation = %v, want 1.0", tr.MaxPrecipitation)
	}
}

func TestSummarizeRainBelowThreshold(t *testing.T) {
	s := New(0.1)
	snap := &models.Snapshot{Periods: []models.PeriodForecast{
		period(9, 25, 0.05, models.ConditionCloudy),
		period(12, 27, 0.1, models.ConditionCloudy),
	}}
	if tr := s.Summarize(snap); tr.HasAnyRain {
		t.Error("HasAnyRain = true, want false at or below threshold")
	}
}

func TestDominantCondition(t *testing.T) {
	tests := []struct {
		name  string
		conds []models.Condition
		want  models.Condition
	}{
		{
			name:  "plurality wins",
			conds: []models.Condition{models.ConditionCloudy, models.ConditionCloudy, models.ConditionCloudy, models.ConditionRainy},
			want:  models.ConditionCloudy,
		},
		{
			name:  "tie broken by severity",
			conds: []models.Condition{models.ConditionSunny, models.ConditionSunny, models.ConditionRainy, models.ConditionRainy},
			want:  models.ConditionRainy,
		},
		{
			name:  "stormy tie beats rainy",
			conds: []models.Condition{models.ConditionStormy, models.ConditionStormy, models.ConditionRainy, models.ConditionRainy},
			want:  models.ConditionStormy,
		},
		{
			name:  "foggy tie beats sunny",
			conds: []models.Condition{models.ConditionFoggy, models.ConditionSunny},
			want:  models.ConditionFoggy,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			periods := make([]models.PeriodForecast, len(tt.conds))
			for i, c := range tt.conds {
				periods[i] = period(9+3*i, 20, 0, c)
			}
			tr := New(0).Summarize(&models.Snapshot{Periods: periods})
			if tr.Dominant != tt.want {
				t.Errorf("Dominant = %s, want %s", tr.Dominant, tt.want)
			}
		})
	}
}

func TestSummarizeExtremeTemp(t *testing.T) {
	s := New(0)
	hot := &models.Snapshot{Periods: []models.PeriodForecast{period(12, 35, 0, models.ConditionSunny)}}
	if tr := s.Summarize(hot); !tr.HasExtremeTemp {
		t.Error("HasExtremeTemp = false for 35°C, want true")
	}
	cold := &models.Snapshot{Periods: []models.PeriodForecast{period(12, -2, 0, models.ConditionSnowy)}}
	if tr := s.Summarize(cold); !tr.HasExtremeTemp {
		t.Error("HasExtremeTemp = false for -2°C, want true")
	}
	mild := &models.Snapshot{Periods: []models.PeriodForecast{period(12, 20, 0, models.ConditionSunny)}}
	if tr := s.Summarize(mild); tr.HasExtremeTemp {
		t.Error("HasExtremeTemp = true for 20°C, want false")
	}
}

func TestSummarizeIsIdempotent(t *testing.T) {
	s := New(0.1)
	snap := &models.Snapshot{Periods: []models.PeriodForecast{
		period(9, 25, 0, models.ConditionSunny),
		period(12, 27, 0.5, models.ConditionRainy),
		period(15, 26, 1.0, models.ConditionRainy),
		period(18, 24, 0, models.ConditionCloudy),
	}}
	first := s.Summarize(snap)
	second := s.Summarize(snap)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Summarize not idempotent: first %+v, second %+v", first, second)
	}
}

func TestSummarizeEmptySnapshot(t *testing.T) {
	tr := New(0).Summarize(&models.Snapshot{})
	if tr.Dominant != models.ConditionUnknown {
		t.Errorf("Dominant = %s, want unknown for empty snapshot", tr.Dominant)
	}
}
