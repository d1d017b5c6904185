package generate

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ayane-k/soracast/internal/gazetteer"
	"github.com/ayane-k/soracast/internal/models"
)

// DefaultBatchConcurrency bounds how many location pipelines run at once.
const DefaultBatchConcurrency = 3

// DefaultBatchTimeout aborts a single location's pipeline; siblings keep
// running.
const DefaultBatchTimeout = 120 * time.Second

// GenerateBatch fans out one pipeline per location with bounded concurrency.
// Each location gets its own timeout and its own result slot; a failure in
// one never aborts the others, and results come back in input order.
func (o *Orchestrator) GenerateBatch(ctx context.Context, locs []gazetteer.Location, concurrency int, perLocationTimeout time.Duration) []models.GenerationResult {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	if perLocationTimeout <= 0 {
		perLocationTimeout = DefaultBatchTimeout
	}

	results := make([]models.GenerationResult, len(locs))
	sem := semaphore.NewWeighted(int64(concurrency))
	g, gCtx := errgroup.WithContext(ctx)

	for i, loc := range locs {
		i, loc := i, loc
		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				results[i] = models.GenerationResult{Success: false, Location: loc.Name, Error: err.Error()}
				return nil
			}
			defer sem.Release(1)

			locCtx, cancel := context.WithTimeout(gCtx, perLocationTimeout)
			defer cancel()

			// Generate never returns an error; failures land in the
			// result so siblings are unaffected.
			results[i] = o.Generate(locCtx, loc)
			return nil
		})
	}
	_ = g.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	o.log.Info("batch generation finished",
		zap.Int("locations", len(locs)),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", len(locs)-succeeded))
	return results
}
