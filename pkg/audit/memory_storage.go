package audit

import (
	"context"
	"slices"
	"sync"
)

// Filter selects events in MemoryStorage.Query. Zero fields match anything.
type Filter struct {
	UserID    string
	SessionID string
	Action    string
	Result    Result
	Limit     int
}

func (f Filter) match(e Event) bool {
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.SessionID != "" && e.SessionID != f.SessionID {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.Result != "" && e.Result != f.Result {
		return false
	}
	return true
}

// MemoryStorage keeps events in memory, oldest first. A positive capacity
// bounds the number of retained events by dropping the oldest ones.
type MemoryStorage struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
}

// NewMemoryStorage creates an in-memory event store.
func NewMemoryStorage(capacity int) *MemoryStorage {
	return &MemoryStorage{capacity: capacity}
}

// Store appends event.
func (m *MemoryStorage) Store(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.append(event)
	return nil
}

// StoreBatch appends events in order.
func (m *MemoryStorage) StoreBatch(_ context.Context, events []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range events {
		m.append(e)
	}
	return nil
}

func (m *MemoryStorage) append(e Event) {
	m.events = append(m.events, e)
	if m.capacity > 0 && len(m.events) > m.capacity {
		m.events = slices.Delete(m.events, 0, len(m.events)-m.capacity)
	}
}

// Events returns a copy of all retained events.
func (m *MemoryStorage) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.events)
}

// Query returns matching events, newest first.
func (m *MemoryStorage) Query(f Filter) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Event
	for i := len(m.events) - 1; i >= 0; i-- {
		if !f.match(m.events[i]) {
			continue
		}
		out = append(out, m.events[i])
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

// Len returns the number of retained events.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}
