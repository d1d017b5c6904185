package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/ayane-k/soracast/internal/metrics"
	"github.com/ayane-k/soracast/internal/models"
)

// Rule names carried on violations.
const (
	RuleWeatherReality = "weather_reality"
	RuleMildExpression = "mild_expression"
	RuleTimeWindow     = "time_appropriateness"
	RuleTemperature    = "temperature_symptom"
	RuleTone           = "tone_consistency"
	RuleRedundancy     = "redundancy"
)

// Validator runs the consistency checks against a snapshot and trend. Checks
// are independent; all violations are collected, not short-circuited.
type Validator struct {
	rules *RuleSet
}

// NewValidator creates a validator over the given rule set.
func NewValidator(rs *RuleSet) *Validator {
	return &Validator{rules: rs}
}

// Validate inspects candidate text against the weather context. The at time
// determines the display window for the time-appropriateness check.
//
// Every check that looks at precipitation scans all snapshot periods. Rain
// appearing only in a later period must still contradict sunny wording; the
// base period alone is never enough.
func (v *Validator) Validate(text string, snap *models.Snapshot, tr models.Trend, at time.Time) []models.Violation {
	scanText := v.stripExceptions(text)

	var out []models.Violation
	out = append(out, v.checkWeatherReality(scanText, snap, tr)...)
	out = append(out, v.checkTimeWindow(scanText, at)...)
	out = append(out, v.checkTemperature(scanText, snap)...)
	out = append(out, v.checkTone(scanText)...)
	out = append(out, v.checkRedundancy(text)...)

	for _, viol := range out {
		metrics.ValidationViolations.WithLabelValues(viol.Rule, string(viol.Severity)).Inc()
	}
	return out
}

// HasError reports whether any violation carries error severity.
func HasError(violations []models.Violation) bool {
	for _, vi := range violations {
		if vi.Severity == models.SeverityError {
			return true
		}
	}
	return false
}

// stripExceptions removes context-exception substrings so that e.g. 日傘 does
// not register as the rain umbrella 傘.
func (v *Validator) stripExceptions(text string) string {
	for _, exc := range v.rules.Words.ContextExceptions {
		text = strings.ReplaceAll(text, exc, "")
	}
	return text
}

func (v *Validator) checkWeatherReality(text string, snap *models.Snapshot, tr models.Trend) []models.Violation {
	var out []models.Violation

	anyRain := false
	if snap != nil {
		for _, p := range snap.Periods {
			if p.PrecipMMPerH > v.rules.Thresholds.PrecipMMPerH {
				anyRain = true
				break
			}
		}
	}

	if w := containsAny(text, v.rules.Words.Rain); w != "" && !anyRain && !tr.HasAnyRain {
		out = append(out, models.Violation{
			Rule:     RuleWeatherReality,
			Severity: models.SeverityError,
			Message:  fmt.Sprintf("rain expression %q but no rain in any forecast period", w),
		})
	}
	if w := containsAny(text, v.rules.Words.Sunny); w != "" && anyRain {
		out = append(out, models.Violation{
			Rule:     RuleWeatherReality,
			Severity: models.SeverityError,
			Message:  fmt.Sprintf("sunny expression %q but rain is forecast in at least one period", w),
		})
	}

	severe := tr.Dominant == models.ConditionStormy ||
		(tr.Dominant == models.ConditionRainy && tr.MaxPrecipitation >= 1.0)
	if w := containsAny(text, v.rules.Words.Mild); w != "" && (severe || anyRain) {
		out = append(out, models.Violation{
			Rule:     RuleMildExpression,
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("mild expression %q under unsettled weather", w),
		})
	}
	return out
}

func (v *Validator) checkTimeWindow(text string, at time.Time) []models.Violation {
	window := v.rules.WindowFor(at.Hour())
	var out []models.Violation
	if w := containsAny(text, v.rules.Words.WindowInappropriate[window]); w != "" {
		out = append(out, models.Violation{
			Rule:     RuleTimeWindow,
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("%q is inappropriate for the %s window", w, window),
		})
	}
	return out
}

func (v *Validator) checkTemperature(text string, snap *models.Snapshot) []models.Violation {
	if snap == nil || !snap.HasPeriods() {
		return nil
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
	}

	th := v.rules.Thresholds
	var out []models.Violation
	if w := containsAny(text, v.rules.Words.ColdProtection); w != "" && maxTemp >= th.HotTempC {
		out = append(out, models.Violation{
			Rule:     RuleTemperature,
			Severity: models.SeverityError,
			Message:  fmt.Sprintf("cold-protection wording %q at %.1f°C", w, maxTemp),
		})
	}
	if w := containsAny(text, v.rules.Words.HeatProtection); w != "" && maxTemp <= th.ColdTempC {
		out = append(out, models.Violation{
			Rule:     RuleTemperature,
			Severity: models.SeverityError,
			Message:  fmt.Sprintf("heat-protection wording %q at %.1f°C", w, maxTemp),
		})
	}
	if w := containsAny(text, v.rules.Words.Extreme); w != "" &&
		minTemp >= th.MildMinC && maxTemp <= th.MildMaxC {
		out = append(out, models.Violation{
			Rule:     RuleTemperature,
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("extreme wording %q inside the mild range %.0f-%.0f°C", w, th.MildMinC, th.MildMaxC),
		})
	}
	return out
}

func (v *Validator) checkTone(text string) []models.Violation {
	pos := containsAny(text, v.rules.Words.PositiveTone)
	neg := containsAny(text, v.rules.Words.NegativeTone)
	if pos == "" || neg == "" {
		return nil
	}
	if containsAny(text, v.rules.Words.NeutralConnectors) != "" {
		return nil
	}
	return []models.Violation{{
		Rule:     RuleTone,
		Severity: models.SeverityWarning,
		Message:  fmt.Sprintf("mixes positive %q and negative %q tone without a connector", pos, neg),
	}}
}

func (v *Validator) checkRedundancy(text string) []models.Violation {
	var out []models.Violation
	for _, pair := range v.rules.RedundantPairs {
		scan := text
		for _, u := range pair.Unless {
			scan = strings.ReplaceAll(scan, u, "")
		}
		if strings.Contains(scan, pair.A) && strings.Contains(scan, pair.B) {
			out = append(out, models.Violation{
				Rule:     RuleRedundancy,
				Severity: models.SeverityWarning,
				Message:  fmt.Sprintf("redundant pair %q and %q", pair.A, pair.B),
			})
		}
	}
	return out
}

// containsAny returns the first listed word found in text, or "".
func containsAny(text string, words []string) string {
	for _, w := range words {
		if w != "" && strings.Contains(text, w) {
			return w
		}
	}
	return ""
}
