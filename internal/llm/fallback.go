package llm

import (
	"context"
	"strings"

	"github.com/fmchealth/insuragent/internal/mode"
)

// FallbackProvider wraps a real provider with the degraded-mode mock.
// Quota and availability errors flip the shared mode state and the call
// is answered by the mock; other errors propagate so the caller can
// apply its own Allowed-by-default handling.
type FallbackProvider struct {
	real  Provider
	mock  *MockProvider
	state *mode.State
}

// NewFallbackProvider wires a real provider to the mock stand-in
func NewFallbackProvider(real Provider, mock *MockProvider, state *mode.State) *FallbackProvider {
	return &FallbackProvider{real: real, mock: mock, state: state}
}

// Name returns the active provider's name
func (p *FallbackProvider) Name() string {
	if p.real == nil || p.state.Degraded() {
		return p.mock.Name()
	}
	return p.real.Name()
}

// Complete routes to the real provider unless the process is degraded
func (p *FallbackProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if p.real == nil || p.state.Degraded() {
		return p.mock.Complete(ctx, req)
	}

	reply, err := p.real.Complete(ctx, req)
	if err != nil {
		if isQuotaError(err) {
			p.state.Degrade()
			return p.mock.Complete(ctx, req)
		}
		return "", err
	}
	return reply, nil
}

// isQuotaError reports whether the error indicates exhausted quota or an
// unavailable API.
func isQuotaError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") ||
		strings.Contains(msg, "insufficient") ||
		strings.Contains(msg, "429")
}
