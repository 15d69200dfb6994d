package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpgate/pkg/audit"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Store(ctx context.Context, event audit.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		audit.NewLogger(nil)
	})
	assert.NotNil(t, audit.NewLogger(audit.NewMemoryStorage(0)))
}

func TestLogger_Log(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ms := &MockStorage{}
	ms.On("Store", mock.Anything, mock.MatchedBy(func(e audit.Event) bool {
		return e.Action == audit.ActionSessionCreated &&
			e.Result == audit.ResultSuccess &&
			e.Severity == audit.SeverityInfo &&
			e.UserID == "alice" &&
			e.SessionID == "s1" &&
			e.ID != "" &&
			e.CreatedAt.Equal(at) &&
			e.Metadata["timeout"] == "5m"
	})).Return(nil).Once()

	l := audit.NewLogger(ms, audit.WithClock(func() time.Time { return at }))
	err := l.Log(context.Background(), audit.ActionSessionCreated,
		audit.WithUserID("alice"),
		audit.WithSessionID("s1"),
		audit.WithMetadata("timeout", "5m"),
	)
	require.NoError(t, err)
	ms.AssertExpectations(t)
}

func TestLogger_LogFailureAndError(t *testing.T) {
	t.Parallel()

	store := audit.NewMemoryStorage(0)
	l := audit.NewLogger(store)
	ctx := context.Background()

	require.NoError(t, l.LogFailure(ctx, audit.ActionTOTPValidation, "code mismatch", audit.WithUserID("bob")))
	require.NoError(t, l.LogError(ctx, audit.ActionSystemError, errors.New("disk full")))
	require.NoError(t, l.LogFailure(ctx, audit.ActionSecurityViolation, "replay",
		audit.WithSeverity(audit.SeverityCritical)))

	events := store.Events()
	require.Len(t, events, 3)

	assert.Equal(t, audit.ResultFailure, events[0].Result)
	assert.Equal(t, audit.SeverityWarning, events[0].Severity)
	assert.Equal(t, "code mismatch", events[0].Error)

	assert.Equal(t, audit.ResultError, events[1].Result)
	assert.Equal(t, audit.SeverityCritical, events[1].Severity)
	assert.Equal(t, "disk full", events[1].Error)

	assert.Equal(t, audit.SeverityCritical, events[2].Severity)
}

func TestLogger_Validation(t *testing.T) {
	t.Parallel()

	ms := &MockStorage{}
	l := audit.NewLogger(ms)

	err := l.Log(context.Background(), "")
	assert.ErrorIs(t, err, audit.ErrEventValidation)

	err = l.Log(context.Background(), audit.ActionTOTPSetup, audit.WithResult("maybe"))
	assert.ErrorIs(t, err, audit.ErrEventValidation)

	ms.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
}

func TestLogger_StorageError(t *testing.T) {
	t.Parallel()

	ms := &MockStorage{}
	ms.On("Store", mock.Anything, mock.Anything).Return(audit.ErrStorageNotAvailable)

	l := audit.NewLogger(ms)
	err := l.Log(context.Background(), audit.ActionTOTPSetup)
	assert.ErrorIs(t, err, audit.ErrStorageNotAvailable)
}

type ctxKey string

func TestLogger_Extractors(t *testing.T) {
	t.Parallel()

	extract := func(key ctxKey) func(context.Context) (string, bool) {
		return func(ctx context.Context) (string, bool) {
			v, ok := ctx.Value(key).(string)
			return v, ok
		}
	}

	store := audit.NewMemoryStorage(0)
	l := audit.NewLogger(store,
		audit.WithUserIDExtractor(extract("user")),
		audit.WithSessionIDExtractor(extract("session")),
		audit.WithRequestIDExtractor(extract("request")),
		audit.WithIPExtractor(extract("ip")),
	)

	ctx := context.WithValue(context.Background(), ctxKey("user"), "ctx-user")
	ctx = context.WithValue(ctx, ctxKey("session"), "ctx-session")
	ctx = context.WithValue(ctx, ctxKey("request"), "req-1")
	ctx = context.WithValue(ctx, ctxKey("ip"), "10.0.0.1")

	require.NoError(t, l.Log(ctx, audit.ActionSessionValidated))
	require.NoError(t, l.Log(ctx, audit.ActionSessionValidated, audit.WithUserID("explicit")))

	events := store.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "ctx-user", events[0].UserID)
	assert.Equal(t, "ctx-session", events[0].SessionID)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, "10.0.0.1", events[0].IP)
	assert.Equal(t, "explicit", events[1].UserID)
}

func TestMemoryStorage_Query(t *testing.T) {
	t.Parallel()

	store := audit.NewMemoryStorage(3)
	ctx := context.Background()
	for _, e := range []audit.Event{
		{ID: "1", Action: audit.ActionTOTPSetup, UserID: "a", Result: audit.ResultSuccess},
		{ID: "2", Action: audit.ActionTOTPValidation, UserID: "a", Result: audit.ResultFailure},
		{ID: "3", Action: audit.ActionTOTPValidation, UserID: "b", Result: audit.ResultSuccess},
		{ID: "4", Action: audit.ActionTOTPValidation, UserID: "a", Result: audit.ResultSuccess},
	} {
		require.NoError(t, store.Store(ctx, e))
	}

	assert.Equal(t, 3, store.Len(), "oldest event dropped at capacity")

	got := store.Query(audit.Filter{UserID: "a"})
	require.Len(t, got, 2)
	assert.Equal(t, "4", got[0].ID)
	assert.Equal(t, "2", got[1].ID)

	got = store.Query(audit.Filter{Action: audit.ActionTOTPValidation, Limit: 1})
	require.Len(t, got, 1)
	assert.Equal(t, "4", got[0].ID)

	assert.Empty(t, store.Query(audit.Filter{Result: audit.ResultError}))
}

func TestSlogStorage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l := audit.NewLogger(audit.NewSlogStorage(log))

	require.NoError(t, l.LogFailure(context.Background(), audit.ActionTOTPValidation, "code mismatch",
		audit.WithUserID("alice"),
		audit.WithMetadata("window", 1),
	))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, audit.ActionTOTPValidation, rec["msg"])
	assert.Equal(t, "audit", rec["component"])
	assert.Equal(t, "alice", rec["user_id"])
	assert.Equal(t, "code mismatch", rec["error"])
	assert.Equal(t, map[string]any{"window": float64(1)}, rec["metadata"])
}
