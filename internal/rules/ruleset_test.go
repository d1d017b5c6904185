package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefault(t *testing.T) {
	rs, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	if rs.Thresholds.PrecipMMPerH != 0.1 {
		t.Errorf("PrecipMMPerH = %v, want 0.1", rs.Thresholds.PrecipMMPerH)
	}
	if rs.Scoring.BaseScore != 100 {
		t.Errorf("BaseScore = %v, want 100", rs.Scoring.BaseScore)
	}
	if len(rs.Words.Rain) == 0 || len(rs.Words.Sunny) == 0 {
		t.Error("embedded rule set has empty word lists")
	}
}

func TestLoadFileInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed yaml", "thresholds: ["},
		{"missing window", `
thresholds: {precipitation_mm_per_h: 0.1}
time_windows:
  morning: {start: 5, end: 10}
scoring: {base_score: 100, popularity_divisor: 10, weather_candidates_limit: 50, advice_candidates_limit: 50}
`},
		{"zero base score", `
thresholds: {precipitation_mm_per_h: 0.1}
time_windows:
  morning: {start: 5, end: 10}
  day: {start: 10, end: 17}
  evening: {start: 17, end: 21}
  night: {start: 21, end: 5}
scoring: {base_score: 0, popularity_divisor: 10, weather_candidates_limit: 50, advice_candidates_limit: 50}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Error("LoadFile accepted an invalid rule set")
			}
		})
	}
}

func TestWindowContains(t *testing.T) {
	day := Window{Start: 10, End: 17}
	night := Window{Start: 21, End: 5}

	tests := []struct {
		w    Window
		hour int
		want bool
	}{
		{day, 10, true},
		{day, 16, true},
		{day, 17, false},
		{day, 9, false},
		{night, 21, true},
		{night, 23, true},
		{night, 0, true},
		{night, 4, true},
		{night, 5, false},
		{night, 12, false},
	}
	for _, tt := range tests {
		if got := tt.w.Contains(tt.hour); got != tt.want {
			t.Errorf("Window{%d,%d}.Contains(%d) = %v, want %v", tt.w.Start, tt.w.End, tt.hour, got, tt.want)
		}
	}
}

func TestWindowFor(t *testing.T) {
	rs := mustRules(t)
	tests := []struct {
		hour int
		want string
	}{
		{5, "morning"},
		{9, "morning"},
		{10, "day"},
		{16, "day"},
		{17, "evening"},
		{20, "evening"},
		{21, "night"},
		{2, "night"},
	}
	for _, tt := range tests {
		if got := rs.WindowFor(tt.hour); got != tt.want {
			t.Errorf("WindowFor(%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestDefaultComment(t *testing.T) {
	rs := mustRules(t)
	if got := rs.DefaultComment("weather", "rainy"); got == "" {
		t.Error("DefaultComment(weather, rainy) is empty")
	}
	// Unlisted conditions fall back to the unknown entry.
	unknown := rs.DefaultComment("advice", "unknown")
	if got := rs.DefaultComment("advice", "hail"); got != unknown {
		t.Errorf("DefaultComment(advice, hail) = %q, want unknown fallback %q", got, unknown)
	}
	if got := rs.DefaultComment("nonexistent", "sunny"); got != "" {
		t.Errorf("DefaultComment(nonexistent, sunny) = %q, want empty", got)
	}
}
