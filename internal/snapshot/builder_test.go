package snapshot

import (
	"errors"
	"testing"
	"time"

	"github.com/ayane-k/soracast/internal/models"
	"github.com/ayane-k/soracast/internal/provider"
)

func testLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("load timezone: %v", err)
	}
	return loc
}

func hourPoints(loc *time.Location, day time.Time, hours ...int) []provider.HourPoint {
	var out []provider.HourPoint
	for _, h := range hours {
		out = append(out, provider.HourPoint{
			Time:         time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, loc),
			TemperatureC: 20 + float64(h)/10,
			WeatherCode:  0,
			HumidityPct:  60,
		})
	}
	return out
}

func TestBuildFullSnapshot(t *testing.T) {
	loc := testLocation(t)
	b := NewBuilder(loc)
	day := time.Date(2026, 7, 10, 0, 0, 0, 0, loc)

	snap, err := b.Build("東京", day, hourPoints(loc, day, 6, 9, 12, 15, 18, 21))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(snap.Periods) != 4 {
		t.Fatalf("len(Periods) = %d, want 4", len(snap.Periods))
	}
	for i, wantHour := range []int{9, 12, 15, 18} {
		if got := snap.Periods[i].Timestamp.Hour(); got != wantHour {
			t.Errorf("Periods[%d].Hour = %d, want %d", i, got, wantHour)
		}
	}
	// Timestamps strictly increasing.
	for i := 1; i < len(snap.Periods); i++ {
		if !snap.Periods[i].Timestamp.After(snap.Periods[i-1].Timestamp) {
			t.Errorf("Periods[%d] not after Periods[%d]", i, i-1)
		}
	}
}

func TestBuildMissingOffsetIsError(t *testing.T) {
	loc := testLocation(t)
	b := NewBuilder(loc)
	day := time.Date(2026, 7, 10, 0, 0, 0, 0, loc)

	snap, err := b.Build("東京", day, hourPoints(loc, day, 9, 12, 18))
	if snap != nil {
		t.Fatal("Build returned a partial snapshot, want nil")
	}
	var incomplete *models.IncompleteForecastError
	if !errors.As(err, &incomplete) {
		t.Fatalf("err = %v, want IncompleteForecastError", err)
	}
	if len(incomplete.MissingOffsets) != 1 || incomplete.MissingOffsets[0] != 15 {
		t.Errorf("MissingOffsets = %v, want [15]", incomplete.MissingOffsets)
	}
}

func TestBuildIgnoresOtherDays(t *testing.T) {
	loc := testLocation(t)
	b := NewBuilder(loc)
	day := time.Date(2026, 7, 10, 0, 0, 0, 0, loc)
	nextDay := day.AddDate(0, 0, 1)

	// All offsets present, but only on the wrong day.
	_, err := b.Build("東京", day, hourPoints(loc, nextDay, 9, 12, 15, 18))
	var incomplete *models.IncompleteForecastError
	if !errors.As(err, &incomplete) {
		t.Fatalf("err = %v, want IncompleteForecastError", err)
	}
	if len(incomplete.MissingOffsets) != 4 {
		t.Errorf("MissingOffsets = %v, want all 4 offsets", incomplete.MissingOffsets)
	}
}

func TestTargetDateBoundary(t *testing.T) {
	loc := testLocation(t)
	b := NewBuilder(loc)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before boundary stays on current day",
			now:  time.Date(2026, 7, 10, 5, 59, 0, 0, loc),
			want: time.Date(2026, 7, 10, 0, 0, 0, 0, loc),
		},
		{
			name: "at boundary rolls to next day",
			now:  time.Date(2026, 7, 10, 6, 0, 0, 0, loc),
			want: time.Date(2026, 7, 11, 0, 0, 0, 0, loc),
		},
		{
			name: "evening rolls to next day",
			now:  time.Date(2026, 7, 10, 22, 0, 0, 0, loc),
			want: time.Date(2026, 7, 11, 0, 0, 0, 0, loc),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.TargetDate(tt.now); !got.Equal(tt.want) {
				t.Errorf("TargetDate(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestConditionFromWMOCode(t *testing.T) {
	tests := []struct {
		code int
		want models.Condition
	}{
		{0, models.ConditionSunny},
		{1, models.ConditionSunny},
		{2, models.ConditionCloudy},
		{3, models.ConditionCloudy},
		{45, models.ConditionFoggy},
		{48, models.ConditionFoggy},
		{51, models.ConditionRainy},
		{61, models.ConditionRainy},
		{67, models.ConditionRainy},
		{71, models.ConditionSnowy},
		{77, models.ConditionSnowy},
		{80, models.ConditionRainy},
		{85, models.ConditionSnowy},
		{95, models.ConditionStormy},
		{99, models.ConditionStormy},
		{42, models.ConditionUnknown},
		{-1, models.ConditionUnknown},
	}
	for _, tt := range tests {
		if got := ConditionFromWMOCode(tt.code); got != tt.want {
			t.Errorf("ConditionFromWMOCode(%d) = %s, want %s", tt.code, got, tt.want)
		}
	}
}
