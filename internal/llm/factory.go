package llm

import (
	"fmt"
	"strings"

	"github.com/fmchealth/insuragent/internal/mode"
	"github.com/fmchealth/insuragent/internal/model"
)

// NewProvider creates the configured provider wrapped in the degraded-
// mode fallback. Unknown provider names are an error; "mock" forces the
// deterministic stand-in.
func NewProvider(cfg model.LLMConfig, rl model.RateLimitingConfig, state *mode.State) (Provider, error) {
	mock := NewMockProvider()

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		real, err := NewOpenAIProvider(cfg, rl)
		if err != nil {
			return nil, err
		}
		return NewFallbackProvider(real, mock, state), nil

	case "mock", "":
		state.Degrade()
		return NewFallbackProvider(nil, mock, state), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, mock)", cfg.Provider)
	}
}
