package totp

import "sync"

// ReplayGuard remembers the last accepted counter per user so that a code
// cannot be used twice inside its validity window.
type ReplayGuard struct {
	mu   sync.Mutex
	last map[string]uint64
}

// NewReplayGuard returns an empty guard.
func NewReplayGuard() *ReplayGuard {
	return &ReplayGuard{last: make(map[string]uint64)}
}

// Accept records counter for userID and reports whether it is newer than the
// previously accepted one. Counters at or below the watermark are rejected.
func (g *ReplayGuard) Accept(userID string, counter uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.last[userID]; ok && counter <= last {
		return false
	}
	g.last[userID] = counter
	return true
}

// Forget drops the watermark for userID, e.g. after the secret was reset.
func (g *ReplayGuard) Forget(userID string) {
	g.mu.Lock()
	delete(g.last, userID)
	g.mu.Unlock()
}
