// Package rules holds the validation rule set and the consistency checks
// that run candidate comments against a weather snapshot.
package rules

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// RuleSet is the full validation and scoring configuration. It is loaded once
// at process start and treated as read-only for the process lifetime; every
// component receives it explicitly rather than via package globals.
type RuleSet struct {
	Thresholds     Thresholds        `yaml:"thresholds"`
	TimeWindows    map[string]Window `yaml:"time_windows"`
	Words          WordLists         `yaml:"words"`
	RedundantPairs []RedundantPair   `yaml:"redundant_pairs"`
	Scoring        Scoring           `yaml:"scoring"`
	Fallback       Fallback          `yaml:"fallback"`
}

// Thresholds are the numeric cut-offs shared by the checks.
type Thresholds struct {
	PrecipMMPerH float64 `yaml:"precipitation_mm_per_h"`
	HotTempC     float64 `yaml:"hot_temp_c"`
	ColdTempC    float64 `yaml:"cold_temp_c"`
	MildMinC     float64 `yaml:"mild_min_c"`
	MildMaxC     float64 `yaml:"mild_max_c"`
}

// Window is an hour range [Start, End). A window with Start > End wraps past
// midnight (e.g. night 21-5).
type Window struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Contains reports whether hour falls inside the window.
func (w Window) Contains(hour int) bool {
	if w.Start <= w.End {
		return hour >= w.Start && hour < w.End
	}
	return hour >= w.Start || hour < w.End
}

// WordLists are the trigger word sets for the keyword checks.
type WordLists struct {
	Rain                []string            `yaml:"rain"`
	Sunny               []string            `yaml:"sunny"`
	Mild                []string            `yaml:"mild"`
	ContextExceptions   []string            `yaml:"context_exceptions"`
	WindowInappropriate map[string][]string `yaml:"window_inappropriate"`
	ColdProtection      []string            `yaml:"cold_protection"`
	HeatProtection      []string            `yaml:"heat_protection"`
	Extreme             []string            `yaml:"extreme"`
	PositiveTone        []string            `yaml:"positive_tone"`
	NegativeTone        []string            `yaml:"negative_tone"`
	NeutralConnectors   []string            `yaml:"neutral_connectors"`
}

// RedundantPair flags candidates that say the same thing twice. Unless words
// suppress the match (e.g. 日傘 must not count as the rain umbrella 傘).
type RedundantPair struct {
	A      string   `yaml:"a"`
	B      string   `yaml:"b"`
	Unless []string `yaml:"unless"`
}

// Scoring holds the selector weights. Penalty stacking is additive with the
// configured floor.
type Scoring struct {
	BaseScore              float64 `yaml:"base_score"`
	MildExpressionPenalty  float64 `yaml:"mild_expression_penalty"`
	StrongWarningBonus     float64 `yaml:"strong_warning_bonus"`
	SeasonMatchBonus       float64 `yaml:"season_match_bonus"`
	PopularityDivisor      float64 `yaml:"popularity_divisor"`
	PopularityMaxBonus     float64 `yaml:"popularity_max_bonus"`
	PenaltyFloor           float64 `yaml:"penalty_floor"`
	WeatherCandidatesLimit int     `yaml:"weather_candidates_limit"`
	AdviceCandidatesLimit  int     `yaml:"advice_candidates_limit"`
}

// Fallback maps category then condition to the default comment used when
// every candidate in a category has been eliminated.
type Fallback struct {
	DefaultComments map[string]map[string]string `yaml:"default_comments"`
}

// LoadDefault parses the embedded rule set.
func LoadDefault() (*RuleSet, error) {
	return parse(defaultRulesYAML)
}

// LoadFile parses a rule set from path.
func LoadFile(path string) (*RuleSet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return parse(b)
}

func parse(b []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(b, &rs); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if err := rs.validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

func (rs *RuleSet) validate() error {
	if rs.Thresholds.PrecipMMPerH <= 0 {
		return fmt.Errorf("thresholds.precipitation_mm_per_h must be positive")
	}
	if rs.Scoring.BaseScore <= 0 {
		return fmt.Errorf("scoring.base_score must be positive")
	}
	if rs.Scoring.PopularityDivisor <= 0 {
		return fmt.Errorf("scoring.popularity_divisor must be positive")
	}
	if rs.Scoring.WeatherCandidatesLimit <= 0 || rs.Scoring.AdviceCandidatesLimit <= 0 {
		return fmt.Errorf("scoring candidate limits must be positive")
	}
	for _, name := range []string{"morning", "day", "evening", "night"} {
		if _, ok := rs.TimeWindows[name]; !ok {
			return fmt.Errorf("time_windows.%s missing", name)
		}
	}
	for i, p := range rs.RedundantPairs {
		if p.A == "" || p.B == "" {
			return fmt.Errorf("redundant_pairs[%d]: both members required", i)
		}
	}
	return nil
}

// windowOrder fixes the iteration order so WindowFor is deterministic even if
// configured windows overlap.
var windowOrder = []string{"morning", "day", "evening", "night"}

// WindowFor returns the name of the display time window covering hour.
func (rs *RuleSet) WindowFor(hour int) string {
	for _, name := range windowOrder {
		if w, ok := rs.TimeWindows[name]; ok && w.Contains(hour) {
			return name
		}
	}
	return "day"
}

// DefaultComment returns the fallback comment for a category and condition,
// falling back to the unknown-condition entry.
func (rs *RuleSet) DefaultComment(category, condition string) string {
	byCond, ok := rs.Fallback.DefaultComments[category]
	if !ok {
		return ""
	}
	if text, ok := byCond[condition]; ok {
		return text
	}
	return byCond["unknown"]
}
