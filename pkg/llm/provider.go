// Package llm provides interfaces for language model providers.
package llm

import (
	"context"
)

// Provider is an interface for LLM providers
type Provider interface {
	// Complete generates a completion for the given prompt
	Complete(ctx context.Context, prompt string) (string, error)

	// IsConfigured returns true if the provider is properly configured
	IsConfigured() bool
}

// NoopProvider is returned when no LLM is configured. Callers treat the
// empty completion as "no structured filters".
type NoopProvider struct{}

// Complete returns an empty completion.
func (NoopProvider) Complete(ctx context.Context, prompt string) (string, error) {
	return "", nil
}

// IsConfigured returns false.
func (NoopProvider) IsConfigured() bool {
	return false
}
