package models

import (
	"time"
)

// Condition is the closed set of weather states a forecast period can carry.
// Provider output that cannot be classified maps to ConditionUnknown rather
// than passing through as free text.
type Condition string

const (
	ConditionSunny   Condition = "sunny"
	ConditionCloudy  Condition = "cloudy"
	ConditionRainy   Condition = "rainy"
	ConditionSnowy   Condition = "snowy"
	ConditionStormy  Condition = "stormy"
	ConditionFoggy   Condition = "foggy"
	ConditionUnknown Condition = "unknown"
)

// severityRank orders conditions for tie-breaking: severest first.
// Stormy beats rainy beats snowy beats cloudy beats foggy beats sunny.
var severityRank = map[Condition]int{
	ConditionStormy:  6,
	ConditionRainy:   5,
	ConditionSnowy:   4,
	ConditionCloudy:  3,
	ConditionFoggy:   2,
	ConditionSunny:   1,
	ConditionUnknown: 0,
}

// Severity returns the tie-break rank of the condition. Higher is severer.
func (c Condition) Severity() int {
	return severityRank[c]
}

// Valid reports whether c is a known condition value.
func (c Condition) Valid() bool {
	_, ok := severityRank[c]
	return ok
}

// Season tags a comment candidate with the part of the year it was written for.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
	SeasonTsuyu  Season = "tsuyu" // East-Asian rainy season (roughly June-July)
	SeasonAll    Season = "all"
)

// SeasonsForMonth maps a calendar month to the set of seasons it belongs to.
// Transitional months map to more than one season, so a candidate matches if
// its season appears anywhere in the returned set.
func SeasonsForMonth(m time.Month) []Season {
	switch m {
	case time.March:
		return []Season{SeasonWinter, SeasonSpring}
	case time.April, time.May:
		return []Season{SeasonSpring}
	case time.June:
		return []Season{SeasonSpring, SeasonSummer, SeasonTsuyu}
	case time.July:
		return []Season{SeasonSummer, SeasonTsuyu}
	case time.August:
		return []Season{SeasonSummer}
	case time.September:
		return []Season{SeasonSummer, SeasonAutumn}
	case time.October, time.November:
		return []Season{SeasonAutumn}
	case time.December:
		return []Season{SeasonAutumn, SeasonWinter}
	default: // January, February
		return []Season{SeasonWinter}
	}
}

// SeasonMatches reports whether a candidate tagged with s is in season for
// month m. SeasonAll matches every month.
func SeasonMatches(s Season, m time.Month) bool {
	if s == SeasonAll {
		return true
	}
	for _, ms := range SeasonsForMonth(m) {
		if ms == s {
			return true
		}
	}
	return false
}

// PeriodForecast is one normalized forecast period. Immutable once built.
type PeriodForecast struct {
	Timestamp     time.Time `json:"timestamp"`
	TemperatureC  float64   `json:"temperature_c"`
	PrecipMMPerH  float64   `json:"precipitation_mm_per_h"`
	Condition     Condition `json:"condition"`
	WindSpeedMS   float64   `json:"wind_speed_ms"`
	HumidityPct   int       `json:"humidity_pct"`
}

// Snapshot is the ordered set of period forecasts for one location and day.
// Timestamps are strictly increasing. The base period (earliest) is only a
// reference point; consumers that check the weather must always consider
// every period, not just the base one.
type Snapshot struct {
	Location string           `json:"location"`
	Date     time.Time        `json:"date"`
	Periods  []PeriodForecast `json:"periods"`
}

// Base returns the earliest period. The snapshot builder guarantees at least
// one period, but callers that may hold a zero value should check HasPeriods.
func (s *Snapshot) Base() PeriodForecast {
	return s.Periods[0]
}

// HasPeriods reports whether the snapshot contains any periods.
func (s *Snapshot) HasPeriods() bool {
	return len(s.Periods) > 0
}

// Conditions returns the condition of every period, in order.
func (s *Snapshot) Conditions() []Condition {
	out := make([]Condition, len(s.Periods))
	for i, p := range s.Periods {
		out[i] = p.Condition
	}
	return out
}

// Trend is a derived, read-only aggregate over a snapshot.
type Trend struct {
	DailyTempDelta   float64   `json:"daily_temp_delta"`
	HourlyTempDelta  float64   `json:"hourly_temp_delta"`
	MaxPrecipitation float64   `json:"max_precipitation"`
	Dominant         Condition `json:"dominant_condition"`
	HasAnyRain       bool      `json:"has_any_rain"`
	HasExtremeTemp   bool      `json:"has_any_extreme_temp"`
}

// Category separates the two comment pools.
type Category string

const (
	CategoryWeather Category = "weather"
	CategoryAdvice  Category = "advice"
)

// Candidate is a pre-authored comment eligible for selection. Immutable at
// generation time; the corpus is loaded once and shared without locks.
type Candidate struct {
	ID         int64       `json:"id"`
	Text       string      `json:"text"`
	Category   Category    `json:"category"`
	Patterns   []Condition `json:"patterns"`
	UsageCount int         `json:"usage_count"`
	Season     Season      `json:"season"`
}

// MatchesCondition reports whether any of the candidate's pattern tags equals c.
func (c Candidate) MatchesCondition(cond Condition) bool {
	for _, p := range c.Patterns {
		if p == cond {
			return true
		}
	}
	return false
}

// ViolationSeverity grades how bad a contradiction is. Errors exclude the
// candidate from selection; warnings only reduce its score.
type ViolationSeverity string

const (
	SeverityWarning ViolationSeverity = "warning"
	SeverityError   ViolationSeverity = "error"
)

// Violation is one detected contradiction between a candidate's text and the
// weather, time window, temperature, or tone context.
type Violation struct {
	Rule     string            `json:"rule"`
	Severity ViolationSeverity `json:"severity"`
	Message  string            `json:"message"`
}

// Adjustment records one applied bonus or penalty for selection rationale.
type Adjustment struct {
	Rule   string  `json:"rule"`
	Amount float64 `json:"amount"`
}

// ScoredCandidate pairs a candidate with its final score and the adjustments
// that produced it. Created per scoring pass, never persisted.
type ScoredCandidate struct {
	Candidate Candidate    `json:"candidate"`
	Score     float64      `json:"score"`
	Penalties []Adjustment `json:"penalties,omitempty"`
	Bonuses   []Adjustment `json:"bonuses,omitempty"`
}

// SelectionMetadata explains how the final comment pair was chosen.
type SelectionMetadata struct {
	Weather         *ScoredCandidate `json:"weather,omitempty"`
	Advice          *ScoredCandidate `json:"advice,omitempty"`
	WeatherFallback bool             `json:"weather_fallback"`
	AdviceFallback  bool             `json:"advice_fallback"`
	LLMRefined      bool             `json:"llm_refined"`
	LLMProvider     string           `json:"llm_provider,omitempty"`
	Warnings        []string         `json:"warnings,omitempty"`
}

// ResultMetadata carries the weather context alongside the chosen comments.
type ResultMetadata struct {
	Condition   Condition          `json:"weather_condition"`
	Temperature float64            `json:"temperature"`
	Humidity    int                `json:"humidity"`
	WindSpeed   float64            `json:"wind_speed"`
	GeneratedAt time.Time          `json:"generated_at"`
	Periods     []PeriodForecast   `json:"period_forecasts"`
	Trend       *Trend             `json:"weather_timeline,omitempty"`
	Selection   *SelectionMetadata `json:"selection_metadata,omitempty"`
}

// GenerationResult is the per-request outcome returned to callers. Fatal
// conditions produce Success=false with a human-readable Error; the comment
// fields are nil in that case.
type GenerationResult struct {
	Success       bool            `json:"success"`
	Location      string          `json:"location"`
	Comment       string          `json:"comment,omitempty"`
	AdviceComment string          `json:"advice_comment,omitempty"`
	Error         string          `json:"error,omitempty"`
	Metadata      *ResultMetadata `json:"metadata,omitempty"`
}
