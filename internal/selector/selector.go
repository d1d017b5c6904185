// Package selector scores candidate comments against a weather snapshot and
// picks the top-ranked comment per category.
package selector

import (
	"sort"
	"time"

	"github.com/ayane-k/soracast/internal/metrics"
	"github.com/ayane-k/soracast/internal/models"
	"github.com/ayane-k/soracast/internal/rules"
)

// Selection is the outcome of one scoring pass over both category pools.
type Selection struct {
	Weather         models.ScoredCandidate
	Advice          models.ScoredCandidate
	WeatherFallback bool
	AdviceFallback  bool
	Warnings        []string
}

// Selector scores and ranks candidates. Stateless apart from the injected
// rule set; selection is fully deterministic for identical inputs.
type Selector struct {
	rules     *rules.RuleSet
	validator *rules.Validator
}

// New creates a selector over the given rule set.
func New(rs *rules.RuleSet) *Selector {
	return &Selector{rules: rs, validator: rules.NewValidator(rs)}
}

// Select picks the best weather and advice comment from the candidate pool.
// Candidates eliminated by error-severity violations never win, even with the
// highest pre-penalty score. If a whole category is eliminated, the
// configured default comment for the dominant condition is used and a
// NoEligibleCandidateWarning is recorded in Warnings.
func (s *Selector) Select(candidates []models.Candidate, snap *models.Snapshot, tr models.Trend, at time.Time) Selection {
	var sel Selection

	weatherPool := s.prefilter(filterCategory(candidates, models.CategoryWeather), snap, s.rules.Scoring.WeatherCandidatesLimit)
	advicePool := s.prefilter(filterCategory(candidates, models.CategoryAdvice), snap, s.rules.Scoring.AdviceCandidatesLimit)

	if best, ok := s.pickBest(weatherPool, snap, tr, at); ok {
		sel.Weather = best
	} else {
		sel.Weather = s.fallbackFor(models.CategoryWeather, tr)
		sel.WeatherFallback = true
		sel.Warnings = append(sel.Warnings, "no eligible weather candidate; default comment used")
		metrics.FallbackSelections.WithLabelValues(string(models.CategoryWeather)).Inc()
	}

	if best, ok := s.pickBest(advicePool, snap, tr, at); ok {
		sel.Advice = best
	} else {
		sel.Advice = s.fallbackFor(models.CategoryAdvice, tr)
		sel.AdviceFallback = true
		sel.Warnings = append(sel.Warnings, "no eligible advice candidate; default comment used")
		metrics.FallbackSelections.WithLabelValues(string(models.CategoryAdvice)).Inc()
	}

	return sel
}

// Score runs the scoring pass for a single candidate. The second return is
// false if the candidate is eliminated by an error-severity violation.
func (s *Selector) Score(c models.Candidate, snap *models.Snapshot, tr models.Trend, at time.Time) (models.ScoredCandidate, bool) {
	violations := s.validator.Validate(c.Text, snap, tr, at)
	if rules.HasError(violations) {
		return models.ScoredCandidate{}, false
	}

	sc := models.ScoredCandidate{Candidate: c, Score: s.rules.Scoring.BaseScore}

	for _, vi := range violations {
		sc.Penalties = append(sc.Penalties, models.Adjustment{Rule: vi.Rule, Amount: s.rules.Scoring.MildExpressionPenalty})
		sc.Score -= s.rules.Scoring.MildExpressionPenalty
	}
	if sc.Score < s.rules.Scoring.PenaltyFloor {
		sc.Score = s.rules.Scoring.PenaltyFloor
	}

	if severeCondition(tr) != models.ConditionUnknown && c.MatchesCondition(severeCondition(tr)) {
		sc.Bonuses = append(sc.Bonuses, models.Adjustment{Rule: "strong_warning", Amount: s.rules.Scoring.StrongWarningBonus})
		sc.Score += s.rules.Scoring.StrongWarningBonus
	}

	if models.SeasonMatches(c.Season, at.Month()) {
		sc.Bonuses = append(sc.Bonuses, models.Adjustment{Rule: "season_match", Amount: s.rules.Scoring.SeasonMatchBonus})
		sc.Score += s.rules.Scoring.SeasonMatchBonus
	}

	pop := float64(c.UsageCount) / s.rules.Scoring.PopularityDivisor
	if pop > s.rules.Scoring.PopularityMaxBonus {
		pop = s.rules.Scoring.PopularityMaxBonus
	}
	if pop > 0 {
		sc.Bonuses = append(sc.Bonuses, models.Adjustment{Rule: "popularity", Amount: pop})
		sc.Score += pop
	}

	return sc, true
}

func (s *Selector) pickBest(pool []models.Candidate, snap *models.Snapshot, tr models.Trend, at time.Time) (models.ScoredCandidate, bool) {
	scored := make([]models.ScoredCandidate, 0, len(pool))
	for _, c := range pool {
		if sc, ok := s.Score(c, snap, tr, at); ok {
			scored = append(scored, sc)
		}
	}
	if len(scored) == 0 {
		return models.ScoredCandidate{}, false
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Candidate.UsageCount != scored[j].Candidate.UsageCount {
			return scored[i].Candidate.UsageCount > scored[j].Candidate.UsageCount
		}
		return scored[i].Candidate.Text < scored[j].Candidate.Text
	})
	return scored[0], true
}

// prefilter bounds the scoring cost by keeping the candidates with the most
// condition-tag overlap with the snapshot. Ordering inside an overlap bucket
// is by text so truncation stays deterministic.
func (s *Selector) prefilter(pool []models.Candidate, snap *models.Snapshot, limit int) []models.Candidate {
	if limit <= 0 || len(pool) <= limit {
		return pool
	}

	conds := make(map[models.Condition]bool)
	if snap != nil {
		for _, c := range snap.Conditions() {
			conds[c] = true
		}
	}
	overlap := func(c models.Candidate) int {
		n := 0
		for _, p := range c.Patterns {
			if conds[p] {
				n++
			}
		}
		return n
	}

	sorted := make([]models.Candidate, len(pool))
	copy(sorted, pool)
	sort.Slice(sorted, func(i, j int) bool {
		oi, oj := overlap(sorted[i]), overlap(sorted[j])
		if oi != oj {
			return oi > oj
		}
		return sorted[i].Text < sorted[j].Text
	})
	return sorted[:limit]
}

func (s *Selector) fallbackFor(category models.Category, tr models.Trend) models.ScoredCandidate {
	text := s.rules.DefaultComment(string(category), string(tr.Dominant))
	return models.ScoredCandidate{
		Candidate: models.Candidate{
			Text:     text,
			Category: category,
			Patterns: []models.Condition{tr.Dominant},
			Season:   models.SeasonAll,
		},
	}
}

// severeCondition returns the trend's dominant condition when it warrants a
// strong-warning bonus: storms always, rain only above 1 mm/h.
func severeCondition(tr models.Trend) models.Condition {
	switch tr.Dominant {
	case models.ConditionStormy:
		return models.ConditionStormy
	case models.ConditionRainy:
		if tr.MaxPrecipitation >= 1.0 {
			return models.ConditionRainy
		}
	}
	if tr.HasAnyRain && tr.MaxPrecipitation >= 1.0 {
		return models.ConditionRainy
	}
	return models.ConditionUnknown
}

func filterCategory(candidates []models.Candidate, cat models.Category) []models.Candidate {
	var out []models.Candidate
	for _, c := range candidates {
		if c.Category == cat {
			out = append(out, c)
		}
	}
	return out
}
