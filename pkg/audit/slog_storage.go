package audit

import (
	"context"
	"log/slog"
)

// SlogStorage writes events as structured log records.
// Successful events are logged at info level, failures at warn and
// errors at error. Events marked critical are always logged at error.
type SlogStorage struct {
	log *slog.Logger
}

// NewSlogStorage creates a storage that writes to log.
func NewSlogStorage(log *slog.Logger) *SlogStorage {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &SlogStorage{log: log.With(slog.String("component", "audit"))}
}

// Store logs a single event.
func (s *SlogStorage) Store(ctx context.Context, event Event) error {
	s.log.LogAttrs(ctx, level(event), event.Action, attrs(event)...)
	return nil
}

// StoreBatch logs events in order.
func (s *SlogStorage) StoreBatch(ctx context.Context, events []Event) error {
	for _, e := range events {
		if err := s.Store(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func level(e Event) slog.Level {
	if e.Severity == SeverityCritical {
		return slog.LevelError
	}
	switch e.Result {
	case ResultFailure:
		return slog.LevelWarn
	case ResultError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func attrs(e Event) []slog.Attr {
	out := []slog.Attr{
		slog.String("audit_id", e.ID),
		slog.String("result", string(e.Result)),
		slog.String("severity", string(e.Severity)),
		slog.Time("at", e.CreatedAt),
	}
	if e.UserID != "" {
		out = append(out, slog.String("user_id", e.UserID))
	}
	if e.SessionID != "" {
		out = append(out, slog.String("session_id", e.SessionID))
	}
	if e.Resource != "" {
		out = append(out, slog.String("resource", e.Resource), slog.String("resource_id", e.ResourceID))
	}
	if e.RequestID != "" {
		out = append(out, slog.String("request_id", e.RequestID))
	}
	if e.IP != "" {
		out = append(out, slog.String("ip", e.IP))
	}
	if e.Error != "" {
		out = append(out, slog.String("error", e.Error))
	}
	if len(e.Metadata) > 0 {
		meta := make([]any, 0, len(e.Metadata))
		for k, v := range e.Metadata {
			meta = append(meta, slog.Any(k, v))
		}
		out = append(out, slog.Group("metadata", meta...))
	}
	return out
}
