// Package generate coordinates one location's pipeline from snapshot build
// through selection and optional LLM refinement.
package generate

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ayane-k/soracast/internal/gazetteer"
	"github.com/ayane-k/soracast/internal/llm"
	"github.com/ayane-k/soracast/internal/metrics"
	"github.com/ayane-k/soracast/internal/models"
	"github.com/ayane-k/soracast/internal/provider"
	"github.com/ayane-k/soracast/internal/rules"
	"github.com/ayane-k/soracast/internal/selector"
	"github.com/ayane-k/soracast/internal/snapshot"
	"github.com/ayane-k/soracast/internal/trend"
)

// State names the stages of the per-request pipeline. Stages execute strictly
// in order; there is no retry at this layer.
type State string

const (
	StateIdle             State = "idle"
	StateBuildingSnapshot State = "building_snapshot"
	StateScoring          State = "scoring"
	StateLLMRefine        State = "llm_refine"
	StateDone             State = "done"
	StateFailed           State = "failed"
)

// CandidateSource supplies the shared candidate pool and records outcomes.
type CandidateSource interface {
	Candidates() ([]models.Candidate, error)
	IncrementUsage(id int64) error
	InsertGeneration(res models.GenerationResult) error
}

// Orchestrator owns all request-scoped state; nothing here is shared between
// concurrent requests except the injected immutable collaborators.
type Orchestrator struct {
	weather  provider.Client
	builder  *snapshot.Builder
	summzr   *trend.Summarizer
	selector *selector.Selector
	rules    *rules.RuleSet
	source   CandidateSource
	chain    *llm.Chain
	log      *zap.Logger
	now      func() time.Time
}

// New wires an orchestrator. chain may be nil to disable LLM refinement.
func New(weather provider.Client, builder *snapshot.Builder, rs *rules.RuleSet, source CandidateSource, chain *llm.Chain, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		weather:  weather,
		builder:  builder,
		summzr:   trend.New(rs.Thresholds.PrecipMMPerH),
		selector: selector.New(rs),
		rules:    rs,
		source:   source,
		chain:    chain,
		log:      log,
		now:      time.Now,
	}
}

// SetClock overrides the time source, used by tests.
func (o *Orchestrator) SetClock(now func() time.Time) {
	o.now = now
}

// Generate runs the full pipeline for one location and always returns a
// result; fatal conditions surface as Success=false with a readable Error.
// No error escapes this boundary.
func (o *Orchestrator) Generate(ctx context.Context, loc gazetteer.Location) models.GenerationResult {
	start := o.now()
	log := o.log.With(zap.String("location", loc.Name))

	defer func() {
		metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	}()

	log.Debug("state transition", zap.String("state", string(StateBuildingSnapshot)))
	snap, err := o.buildSnapshot(ctx, loc)
	if err != nil {
		log.Warn("snapshot build failed", zap.String("state", string(StateFailed)), zap.Error(err))
		metrics.GenerationsTotal.WithLabelValues("failed").Inc()
		return o.record(log, models.GenerationResult{Success: false, Location: loc.Name, Error: err.Error()})
	}
	tr := o.summzr.Summarize(snap)

	log.Debug("state transition", zap.String("state", string(StateScoring)))
	candidates, err := o.source.Candidates()
	if err != nil {
		log.Error("load candidates failed", zap.String("state", string(StateFailed)), zap.Error(err))
		metrics.GenerationsTotal.WithLabelValues("failed").Inc()
		return o.record(log, models.GenerationResult{Success: false, Location: loc.Name, Error: "load candidates: " + err.Error()})
	}
	sel := o.selector.Select(candidates, snap, tr, start)

	selMeta := &models.SelectionMetadata{
		Weather:         &sel.Weather,
		Advice:          &sel.Advice,
		WeatherFallback: sel.WeatherFallback,
		AdviceFallback:  sel.AdviceFallback,
		Warnings:        sel.Warnings,
	}
	weatherText := sel.Weather.Candidate.Text

	if o.chain != nil && !o.chain.Empty() {
		log.Debug("state transition", zap.String("state", string(StateLLMRefine)))
		if refined, providerName, ok := o.refine(ctx, weatherText, snap, tr, start, log); ok {
			weatherText = refined
			selMeta.LLMRefined = true
			selMeta.LLMProvider = providerName
		}
	}

	log.Debug("state transition", zap.String("state", string(StateDone)))

	for _, id := range []int64{sel.Weather.Candidate.ID, sel.Advice.Candidate.ID} {
		if err := o.source.IncrementUsage(id); err != nil {
			log.Warn("increment usage failed", zap.Int64("candidate_id", id), zap.Error(err))
		}
	}

	base := snap.Base()
	metrics.GenerationsTotal.WithLabelValues("success").Inc()
	return o.record(log, models.GenerationResult{
		Success:       true,
		Location:      loc.Name,
		Comment:       weatherText,
		AdviceComment: sel.Advice.Candidate.Text,
		Metadata: &models.ResultMetadata{
			Condition:   tr.Dominant,
			Temperature: base.TemperatureC,
			Humidity:    base.HumidityPct,
			WindSpeed:   base.WindSpeedMS,
			GeneratedAt: start,
			Periods:     snap.Periods,
			Trend:       &tr,
			Selection:   selMeta,
		},
	})
}

// record persists the outcome for the history endpoint. Persistence failures
// are logged, never surfaced; history is observability, not the product.
func (o *Orchestrator) record(log *zap.Logger, res models.GenerationResult) models.GenerationResult {
	if err := o.source.InsertGeneration(res); err != nil {
		log.Warn("record generation failed", zap.Error(err))
	}
	return res
}

func (o *Orchestrator) buildSnapshot(ctx context.Context, loc gazetteer.Location) (*models.Snapshot, error) {
	date := o.builder.TargetDate(o.now())
	hours, err := o.weather.FetchHourly(ctx, loc.Latitude, loc.Longitude, date)
	if err != nil {
		return nil, err
	}
	return o.builder.Build(loc.Name, date, hours)
}

// refine asks the LLM chain to polish the weather comment. The output is
// validated with the same rule set before being accepted; on any provider
// failure or validation failure the pre-refinement text stands. Raw LLM text
// never reaches the caller unvalidated.
func (o *Orchestrator) refine(ctx context.Context, text string, snap *models.Snapshot, tr models.Trend, at time.Time, log *zap.Logger) (string, string, bool) {
	prompt := llm.BuildRefinePrompt(text, snap, tr)
	refined, providerName, err := o.chain.Complete(ctx, prompt)
	if err != nil {
		var provErr *models.LLMProviderError
		if errors.As(err, &provErr) {
			log.Warn("llm refinement failed, keeping selected comment", zap.Error(err))
		} else {
			log.Warn("llm refinement unavailable", zap.Error(err))
		}
		return "", "", false
	}

	refined = strings.TrimSpace(refined)
	if refined == "" || len([]rune(refined)) > 200 {
		log.Warn("llm output rejected by length check")
		return "", "", false
	}

	validator := rules.NewValidator(o.rules)
	if rules.HasError(validator.Validate(refined, snap, tr, at)) {
		log.Warn("llm output rejected by consistency validation", zap.String("provider", providerName))
		return "", "", false
	}
	return refined, providerName, true
}
