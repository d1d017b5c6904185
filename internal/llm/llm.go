// Package llm refines selected comments through chat-completion providers.
// Providers are interchangeable behind one interface; the orchestrator never
// depends on a concrete SDK.
package llm

import (
	"context"
)

// Provider is a single LLM backend. Complete returns the model's text for a
// prompt or an error; all provider errors are treated uniformly by the chain.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options are the shared generation settings applied to every provider.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

func (o Options) withDefaults(model string) Options {
	if o.Model == "" {
		o.Model = model
	}
	if o.Temperature <= 0 {
		o.Temperature = 0.7
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 256
	}
	return o
}
