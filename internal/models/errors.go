package models

import (
	"fmt"
	"strings"
)

// IncompleteForecastError reports that the provider payload is missing one or
// more of the fixed forecast offsets. A partial snapshot must never be scored,
// so this is fatal to the request it occurs in.
type IncompleteForecastError struct {
	Location       string
	MissingOffsets []int
}

func (e *IncompleteForecastError) Error() string {
	hours := make([]string, len(e.MissingOffsets))
	for i, h := range e.MissingOffsets {
		hours[i] = fmt.Sprintf("%02d:00", h)
	}
	return fmt.Sprintf("incomplete forecast for %s: missing offsets %s", e.Location, strings.Join(hours, ", "))
}

// LLMProviderError reports a failed refinement attempt against one provider.
// The orchestrator treats all provider failures uniformly for fallback.
type LLMProviderError struct {
	Provider string
	Err      error
}

func (e *LLMProviderError) Error() string {
	return fmt.Sprintf("llm provider %s: %v", e.Provider, e.Err)
}

func (e *LLMProviderError) Unwrap() error { return e.Err }
