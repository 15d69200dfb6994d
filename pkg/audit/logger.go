package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// contextExtractor extracts string values from context.
// It returns (value, found) where found indicates if extraction succeeded.
type contextExtractor func(context.Context) (string, bool)

// Logger stamps and stores audit events. It is safe for concurrent use.
type Logger struct {
	storage            Storage
	userIDExtractor    contextExtractor
	sessionIDExtractor contextExtractor
	requestIDExtractor contextExtractor
	ipExtractor        contextExtractor
	now                func() time.Time
}

// NewLogger creates a new audit logger
func NewLogger(storage Storage, opts ...Option) *Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}

	l := &Logger{
		storage: storage,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Log records a successful action
func (l *Logger) Log(ctx context.Context, action string, opts ...EventOption) error {
	return l.store(ctx, action, ResultSuccess, "", opts)
}

// LogFailure records an action that was refused, such as a wrong code.
func (l *Logger) LogFailure(ctx context.Context, action, reason string, opts ...EventOption) error {
	return l.store(ctx, action, ResultFailure, reason, opts)
}

// LogError records an action that could not complete because of err.
func (l *Logger) LogError(ctx context.Context, action string, err error, opts ...EventOption) error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return l.store(ctx, action, ResultError, msg, opts)
}

func (l *Logger) store(ctx context.Context, action string, result Result, errMsg string, opts []EventOption) error {
	event := l.eventFromContext(ctx)
	event.ID = uuid.New().String()
	event.CreatedAt = l.now()
	event.Action = action
	event.Result = result
	event.Error = errMsg

	for _, opt := range opts {
		opt(&event)
	}

	if event.Severity == "" {
		event.Severity = defaultSeverity(event.Result)
	}

	if err := event.Validate(); err != nil {
		return err
	}

	return l.storage.Store(ctx, event)
}

func defaultSeverity(r Result) Severity {
	switch r {
	case ResultFailure:
		return SeverityWarning
	case ResultError:
		return SeverityCritical
	default:
		return SeverityInfo
	}
}

// eventFromContext extracts event data from context
func (l *Logger) eventFromContext(ctx context.Context) Event {
	event := Event{}

	if l.userIDExtractor != nil {
		if userID, ok := l.userIDExtractor(ctx); ok {
			event.UserID = userID
		}
	}

	if l.sessionIDExtractor != nil {
		if sessionID, ok := l.sessionIDExtractor(ctx); ok {
			event.SessionID = sessionID
		}
	}

	if l.requestIDExtractor != nil {
		if requestID, ok := l.requestIDExtractor(ctx); ok {
			event.RequestID = requestID
		}
	}

	if l.ipExtractor != nil {
		if ip, ok := l.ipExtractor(ctx); ok {
			event.IP = ip
		}
	}

	return event
}
