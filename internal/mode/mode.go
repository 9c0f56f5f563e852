// Package mode tracks whether the process has fallen back to local
// deterministic stand-ins for the embedding and language-model services.
package mode

import "sync/atomic"

// State is the degraded-mode flag shared by all external collaborators.
// It transitions one-way to degraded once a quota or availability error
// is observed, and only an explicit Reset clears it. A stale read costs
// at most one extra real-API attempt, so no locking beyond the atomic
// is needed.
type State struct {
	degraded atomic.Bool
}

// NewState returns a live (non-degraded) state
func NewState() *State {
	return &State{}
}

// NewDegraded returns a state already in degraded mode, for forcing
// mock collaborators up front.
func NewDegraded() *State {
	s := &State{}
	s.degraded.Store(true)
	return s
}

// Degraded reports whether mock stand-ins should be used
func (s *State) Degraded() bool {
	return s.degraded.Load()
}

// Degrade switches the process to mock stand-ins
func (s *State) Degrade() {
	s.degraded.Store(true)
}

// Reset clears the flag so the next call attempts the real API again
func (s *State) Reset() {
	s.degraded.Store(false)
}
