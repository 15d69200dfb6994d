package audit

import (
	"context"
	"time"
)

// Option configures Logger behavior during initialization
type Option func(*Logger)

// Context extractors populate events from the request context. Values set
// explicitly through event options take precedence.

func WithUserIDExtractor(fn func(ctx context.Context) (string, bool)) Option {
	return func(l *Logger) {
		l.userIDExtractor = fn
	}
}

func WithSessionIDExtractor(fn func(ctx context.Context) (string, bool)) Option {
	return func(l *Logger) {
		l.sessionIDExtractor = fn
	}
}

func WithRequestIDExtractor(fn func(ctx context.Context) (string, bool)) Option {
	return func(l *Logger) {
		l.requestIDExtractor = fn
	}
}

func WithIPExtractor(fn func(ctx context.Context) (string, bool)) Option {
	return func(l *Logger) {
		l.ipExtractor = fn
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		if now != nil {
			l.now = now
		}
	}
}
