package llm

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ayane-k/soracast/internal/metrics"
	"github.com/ayane-k/soracast/internal/models"
)

// ErrAllProvidersFailed is returned once every provider has exhausted its
// attempts. Callers fall back to the pre-refinement candidate.
var ErrAllProvidersFailed = errors.New("all llm providers failed")

// Chain walks an ordered list of providers, giving each a bounded number of
// attempts. It is an explicit attempt list rather than nested error handling
// so the fallback policy stays testable on its own.
type Chain struct {
	providers   []Provider
	maxAttempts int
	log         *zap.Logger
}

// NewChain creates a chain. maxAttempts is per provider; values below 1 are
// clamped to 1.
func NewChain(providers []Provider, maxAttempts int, log *zap.Logger) *Chain {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Chain{providers: providers, maxAttempts: maxAttempts, log: log}
}

// Empty reports whether the chain has no providers configured.
func (c *Chain) Empty() bool {
	return len(c.providers) == 0
}

// Complete tries each provider in order until one returns text. The second
// return value names the provider that succeeded.
func (c *Chain) Complete(ctx context.Context, prompt string) (string, string, error) {
	var lastErr error
	for _, p := range c.providers {
		for attempt := 1; attempt <= c.maxAttempts; attempt++ {
			if ctx.Err() != nil {
				return "", "", ctx.Err()
			}
			text, err := p.Complete(ctx, prompt)
			if err == nil && text != "" {
				metrics.LLMAttempts.WithLabelValues(p.Name(), "ok").Inc()
				return text, p.Name(), nil
			}
			if err == nil {
				err = errors.New("empty completion")
			}
			metrics.LLMAttempts.WithLabelValues(p.Name(), "error").Inc()
			lastErr = &models.LLMProviderError{Provider: p.Name(), Err: err}
			c.log.Warn("llm attempt failed",
				zap.String("provider", p.Name()),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
	}
	if lastErr == nil {
		lastErr = ErrAllProvidersFailed
	}
	return "", "", errors.Join(ErrAllProvidersFailed, lastErr)
}
