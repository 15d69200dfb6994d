package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AsyncOptions configures the batching and buffering behavior of AsyncWriter.
type AsyncOptions struct {
	BufferSize     int           // Max events queued in memory before falling back to sync writes
	BatchSize      int           // Target events per batch
	BatchTimeout   time.Duration // Max time a partial batch waits before it is flushed
	StorageTimeout time.Duration // Per-batch storage timeout
	Logger         *slog.Logger  // Receives batch write failures
}

// AsyncWriter queues events and writes them in batches from a background
// goroutine. Store returns as soon as the event is queued, so callers on the
// authentication path are never held up by the sink.
type AsyncWriter struct {
	batchWriter BatchStorage
	eventChan   chan Event
	done        chan struct{}
	wg          sync.WaitGroup
	options     AsyncOptions

	mu     sync.RWMutex
	closed bool
}

// NewAsyncWriter creates an async writer in front of bw and returns it along
// with its close function.
func NewAsyncWriter(bw BatchStorage, opts AsyncOptions) (*AsyncWriter, func(context.Context) error) {
	if bw == nil {
		panic("audit: batch writer cannot be nil")
	}

	if opts.BufferSize <= 0 {
		opts.BufferSize = 1000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.BatchTimeout <= 0 {
		opts.BatchTimeout = 100 * time.Millisecond
	}
	if opts.StorageTimeout <= 0 {
		opts.StorageTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	aw := &AsyncWriter{
		batchWriter: bw,
		eventChan:   make(chan Event, opts.BufferSize),
		done:        make(chan struct{}),
		options:     opts,
	}

	aw.wg.Add(1)
	go aw.worker()

	return aw, aw.Close
}

// Store queues event for the next batch. When the buffer is full the event is
// written synchronously so that it is not lost.
func (aw *AsyncWriter) Store(ctx context.Context, event Event) error {
	aw.mu.RLock()
	defer aw.mu.RUnlock()

	if aw.closed {
		return ErrStorageNotAvailable
	}

	select {
	case aw.eventChan <- event:
		return nil
	default:
		return aw.batchWriter.StoreBatch(ctx, []Event{event})
	}
}

func (aw *AsyncWriter) worker() {
	defer aw.wg.Done()

	batch := make([]Event, 0, aw.options.BatchSize)
	ticker := time.NewTicker(aw.options.BatchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		// Storage runs detached from any request context.
		ctx, cancel := context.WithTimeout(context.Background(), aw.options.StorageTimeout)
		defer cancel()

		if err := aw.batchWriter.StoreBatch(ctx, batch); err != nil {
			aw.options.Logger.Error("audit batch write failed",
				slog.Int("events", len(batch)),
				slog.String("error", err.Error()),
			)
		}

		clear(batch)
		batch = batch[:0]
	}

	for {
		select {
		case event := <-aw.eventChan:
			batch = append(batch, event)
			if len(batch) >= aw.options.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-aw.done:
			for {
				select {
				case event := <-aw.eventChan:
					batch = append(batch, event)
					if len(batch) >= aw.options.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// Close stops accepting events and flushes everything still queued.
// The context bounds how long Close waits for the flush. Calling Close more
// than once is safe.
func (aw *AsyncWriter) Close(ctx context.Context) error {
	aw.mu.Lock()
	if !aw.closed {
		aw.closed = true
		close(aw.done)
	}
	aw.mu.Unlock()

	doneChan := make(chan struct{})
	go func() {
		aw.wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
