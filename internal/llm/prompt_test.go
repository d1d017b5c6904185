package llm

import (
	"strings"
	"testing"
	"time"

	"github.com/ayane-k/soracast/internal/models"
)

func TestBuildRefinePromptIncludesEveryPeriod(t *testing.T) {
	snap := &models.Snapshot{
		Location: "東京",
		Date:     time.Date(2026, 7, 11, 0, 0, 0, 0, time.UTC),
		Periods: []models.PeriodForecast{
			{Timestamp: time.Date(2026, 7, 11, 9, 0, 0, 0, time.UTC), TemperatureC: 24, Condition: models.ConditionSunny},
			{Timestamp: time.Date(2026, 7, 11, 12, 0, 0, 0, time.UTC), TemperatureC: 27, Condition: models.ConditionSunny},
			{Timestamp: time.Date(2026, 7, 11, 15, 0, 0, 0, time.UTC), TemperatureC: 26, PrecipMMPerH: 1.0, Condition: models.ConditionRainy},
			{Timestamp: time.Date(2026, 7, 11, 18, 0, 0, 0, time.UTC), TemperatureC: 24, Condition: models.ConditionSunny},
		},
	}
	tr := models.Trend{Dominant: models.ConditionSunny, HasAnyRain: true, MaxPrecipitation: 1.0, DailyTempDelta: 3}

	prompt := BuildRefinePrompt("日差しを楽しめそう", snap, tr)

	for _, want := range []string{"東京", "2026-07-11", "09:00", "12:00", "15:00", "18:00", "日差しを楽しめそう"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	// The 15:00 rain must be visible to the model.
	if !strings.Contains(prompt, "降水1.0mm/h") {
		t.Errorf("prompt does not surface the rain period:\n%s", prompt)
	}
}
