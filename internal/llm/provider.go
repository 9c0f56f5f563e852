// Package llm provides the chat-completion collaborator used for field
// adjudication, recommendation generation and the clinical coherence
// check, with a deterministic mock for degraded mode.
package llm

import "context"

// Provider is the language-model collaborator interface
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one chat completion and returns the reply text
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is one chat completion call
type CompletionRequest struct {
	// System is the optional system message
	System string

	// Prompt is the user message
	Prompt string

	// Model overrides the provider's configured model when set
	Model string

	// Temperature for sampling; adjudication calls use 0
	Temperature float32

	// MaxTokens limits the response length; 0 means provider default
	MaxTokens int

	// Subject is the field value under evaluation. The mock provider
	// keys its canned replies off it; real providers ignore it.
	Subject string
}
