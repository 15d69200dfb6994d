package audit

import "context"

// Storage persists audit events.
type Storage interface {
	Store(ctx context.Context, event Event) error
}

// BatchStorage persists several events at once. Implementations should
// treat a batch atomically where the backend allows it.
type BatchStorage interface {
	StoreBatch(ctx context.Context, events []Event) error
}
