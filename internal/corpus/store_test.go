package corpus

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ayane-k/soracast/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	s := New(db)
	if err := s.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := testStore(t)
	if err := s.Migrate(); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestSeedDefault(t *testing.T) {
	s := testStore(t)

	n, err := s.SeedDefault()
	if err != nil {
		t.Fatalf("SeedDefault: %v", err)
	}
	if n == 0 {
		t.Fatal("SeedDefault inserted 0 rows")
	}

	// Reseeding fills no gaps and keeps existing rows untouched.
	again, err := s.SeedDefault()
	if err != nil {
		t.Fatalf("second SeedDefault: %v", err)
	}
	if again != 0 {
		t.Errorf("second SeedDefault inserted %d rows, want 0", again)
	}

	candidates, err := s.Candidates()
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(candidates) != n {
		t.Errorf("Candidates returned %d, want %d", len(candidates), n)
	}

	hasWeather, hasAdvice := false, false
	for _, c := range candidates {
		switch c.Category {
		case models.CategoryWeather:
			hasWeather = true
		case models.CategoryAdvice:
			hasAdvice = true
		default:
			t.Errorf("candidate %q has unexpected category %q", c.Text, c.Category)
		}
	}
	if !hasWeather || !hasAdvice {
		t.Error("seed corpus missing a category")
	}
}

func TestSeedFromCSV(t *testing.T) {
	s := testStore(t)
	csvData := `text,category,patterns,season,usage_count
テスト候補,weather,sunny|cloudy,all,3
助言の候補,advice,rainy,tsuyu,0
`
	n, err := s.SeedFromCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("SeedFromCSV: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted %d rows, want 2", n)
	}

	candidates, err := s.Candidates()
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("Candidates returned %d, want 2", len(candidates))
	}
	first := candidates[0]
	if first.Text != "テスト候補" || first.UsageCount != 3 {
		t.Errorf("first candidate = %+v", first)
	}
	want := []models.Condition{models.ConditionSunny, models.ConditionCloudy}
	if len(first.Patterns) != 2 || first.Patterns[0] != want[0] || first.Patterns[1] != want[1] {
		t.Errorf("patterns = %v, want %v", first.Patterns, want)
	}
}

func TestSeedFromCSVRejectsBadRecord(t *testing.T) {
	s := testStore(t)
	bad := `text,category,patterns,season,usage_count
壊れた行,weather,sunny,all,not_a_number
`
	if _, err := s.SeedFromCSV(strings.NewReader(bad)); err == nil {
		t.Error("SeedFromCSV accepted a non-numeric usage_count")
	}
}

func TestIncrementUsage(t *testing.T) {
	s := testStore(t)
	csvData := `text,category,patterns,season,usage_count
テスト候補,weather,sunny,all,0
`
	if _, err := s.SeedFromCSV(strings.NewReader(csvData)); err != nil {
		t.Fatalf("SeedFromCSV: %v", err)
	}
	candidates, err := s.Candidates()
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	id := candidates[0].ID

	if err := s.IncrementUsage(id); err != nil {
		t.Fatalf("IncrementUsage: %v", err)
	}
	if err := s.IncrementUsage(id); err != nil {
		t.Fatalf("IncrementUsage: %v", err)
	}

	candidates, err = s.Candidates()
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if candidates[0].UsageCount != 2 {
		t.Errorf("UsageCount = %d, want 2", candidates[0].UsageCount)
	}

	// ID 0 marks a fallback comment; it must be a no-op, not an error.
	if err := s.IncrementUsage(0); err != nil {
		t.Errorf("IncrementUsage(0) = %v, want nil", err)
	}
}

func TestGenerationHistory(t *testing.T) {
	s := testStore(t)

	for i := 0; i < 3; i++ {
		res := models.GenerationResult{
			Success:       true,
			Location:      "東京",
			Comment:       "晴れの一日になりそうです",
			AdviceComment: "紫外線対策をお忘れなく",
			Metadata: &models.ResultMetadata{
				Condition:   models.ConditionSunny,
				GeneratedAt: time.Date(2026, 7, 10, 9, 0, 0, 0, time.UTC),
			},
		}
		if err := s.InsertGeneration(res); err != nil {
			t.Fatalf("InsertGeneration: %v", err)
		}
	}
	failed := models.GenerationResult{
		Success:  false,
		Location: "大阪",
		Error:    "forecast incomplete",
	}
	if err := s.InsertGeneration(failed); err != nil {
		t.Fatalf("InsertGeneration failed result: %v", err)
	}

	recs, err := s.RecentGenerations(10)
	if err != nil {
		t.Fatalf("RecentGenerations: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("RecentGenerations returned %d, want 4", len(recs))
	}
	// Newest first.
	if recs[0].Location != "大阪" || recs[0].Success {
		t.Errorf("newest record = %+v, want the failed 大阪 entry", recs[0])
	}
	if recs[0].Metadata != nil {
		t.Error("failed record carries metadata, want nil")
	}
	if recs[1].Metadata == nil || recs[1].Metadata.Condition != models.ConditionSunny {
		t.Errorf("metadata round-trip lost: %+v", recs[1].Metadata)
	}

	if got, err := s.RecentGenerations(2); err != nil || len(got) != 2 {
		t.Errorf("RecentGenerations(2) = %d records, err %v; want 2, nil", len(got), err)
	}
}

func TestRecentGenerationsClampsLimit(t *testing.T) {
	s := testStore(t)
	for i := 0; i < 60; i++ {
		res := models.GenerationResult{Success: true, Location: "札幌", Comment: "雪が降りそうです"}
		if err := s.InsertGeneration(res); err != nil {
			t.Fatalf("InsertGeneration: %v", err)
		}
	}
	for _, limit := range []int{0, -5, 500} {
		recs, err := s.RecentGenerations(limit)
		if err != nil {
			t.Fatalf("RecentGenerations(%d): %v", limit, err)
		}
		if len(recs) != 50 {
			t.Errorf("RecentGenerations(%d) returned %d, want 50", limit, len(recs))
		}
	}
}

func TestParsePatterns(t *testing.T) {
	tests := []struct {
		in   string
		want []models.Condition
	}{
		{"", nil},
		{"sunny", []models.Condition{models.ConditionSunny}},
		{"rainy|stormy", []models.Condition{models.ConditionRainy, models.ConditionStormy}},
		{"rainy| |cloudy", []models.Condition{models.ConditionRainy, models.ConditionCloudy}},
		{"hail", []models.Condition{models.ConditionUnknown}},
	}
	for _, tt := range tests {
		got := parsePatterns(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("parsePatterns(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parsePatterns(%q)[%d] = %v, want %v", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
