// Package llm talks to the locally served model endpoint.
package llm

import "context"

// GenerateOptions are the per-call inference parameters.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// Client is the minimal surface the inference strategies need: send a
// prompt, block until the full response text or a timeout.
type Client interface {
	// Generate sends a prompt and returns the raw response text.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Available probes the endpoint once, so an unreachable service is
	// surfaced to the operator before any bug is processed.
	Available(ctx context.Context) error
}
