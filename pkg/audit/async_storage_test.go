package audit_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpgate/pkg/audit"
)

type recordingBatch struct {
	mu      sync.Mutex
	batches [][]audit.Event
	err     error
}

func (r *recordingBatch) StoreBatch(_ context.Context, events []audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, append([]audit.Event(nil), events...))
	return r.err
}

func (r *recordingBatch) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.batches {
		n += len(b)
	}
	return n
}

func TestNewAsyncWriter_PanicsOnNil(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		audit.NewAsyncWriter(nil, audit.AsyncOptions{})
	})
}

func TestAsyncWriter_FlushesOnBatchSize(t *testing.T) {
	t.Parallel()

	bw := &recordingBatch{}
	aw, closeFn := audit.NewAsyncWriter(bw, audit.AsyncOptions{BatchSize: 5, BatchTimeout: time.Hour})
	defer closeFn(context.Background())

	for range 5 {
		require.NoError(t, aw.Store(context.Background(), audit.Event{Action: audit.ActionTOTPSetup}))
	}

	assert.Eventually(t, func() bool { return bw.total() == 5 }, time.Second, 5*time.Millisecond)
}

func TestAsyncWriter_FlushesOnTimeout(t *testing.T) {
	t.Parallel()

	bw := &recordingBatch{}
	aw, closeFn := audit.NewAsyncWriter(bw, audit.AsyncOptions{BatchSize: 100, BatchTimeout: 10 * time.Millisecond})
	defer closeFn(context.Background())

	require.NoError(t, aw.Store(context.Background(), audit.Event{Action: audit.ActionTOTPSetup}))
	assert.Eventually(t, func() bool { return bw.total() == 1 }, time.Second, 5*time.Millisecond)
}

func TestAsyncWriter_CloseDrainsQueue(t *testing.T) {
	t.Parallel()

	bw := &recordingBatch{}
	aw, closeFn := audit.NewAsyncWriter(bw, audit.AsyncOptions{BatchSize: 1000, BatchTimeout: time.Hour})

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				_ = aw.Store(context.Background(), audit.Event{Action: audit.ActionSessionCreated})
			}
		}()
	}
	wg.Wait()

	require.NoError(t, closeFn(context.Background()))
	assert.Equal(t, 100, bw.total())

	err := aw.Store(context.Background(), audit.Event{Action: audit.ActionSessionCreated})
	assert.ErrorIs(t, err, audit.ErrStorageNotAvailable)
	assert.NoError(t, aw.Close(context.Background()), "second close is a no-op")
}

func TestAsyncWriter_BatchErrorDoesNotBlock(t *testing.T) {
	t.Parallel()

	bw := &recordingBatch{err: errors.New("sink down")}
	aw, closeFn := audit.NewAsyncWriter(bw, audit.AsyncOptions{BatchSize: 1})

	require.NoError(t, aw.Store(context.Background(), audit.Event{Action: audit.ActionSystemError}))
	require.NoError(t, closeFn(context.Background()))
	assert.Equal(t, 1, bw.total())
}

func TestAsyncWriter_WithLogger(t *testing.T) {
	t.Parallel()

	store := audit.NewMemoryStorage(0)
	aw, closeFn := audit.NewAsyncWriter(store, audit.AsyncOptions{})
	l := audit.NewLogger(aw)

	require.NoError(t, l.Log(context.Background(), audit.ActionTOTPSetup, audit.WithUserID("alice")))
	require.NoError(t, closeFn(context.Background()))

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "alice", events[0].UserID)
}
