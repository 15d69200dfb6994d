package periodic

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Job is the unit of work executed on every tick.
type Job func(ctx context.Context)

// Runner executes a Job every interval until stopped.
type Runner struct {
	name       string
	interval   time.Duration
	job        Job
	logger     *slog.Logger
	runOnStart bool

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a stopped Runner. A non-positive interval yields a runner whose
// Start is a no-op, which lets callers disable background work by config.
func New(name string, interval time.Duration, job Job, opts ...Option) *Runner {
	r := &Runner{
		name:     name,
		interval: interval,
		job:      job,
		logger:   slog.New(slog.DiscardHandler),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the loop. The loop exits when ctx is cancelled or Stop is called.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return ErrStopped
	}
	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true

	if r.interval <= 0 || r.job == nil {
		close(r.done)
		return nil
	}

	ctx, r.cancel = context.WithCancel(ctx)
	go r.loop(ctx)

	return nil
}

// Stop cancels the loop and waits for it to exit. It is safe to call more
// than once and on a runner that was never started.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.stopped = true
	if !r.started {
		close(r.done)
	}
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-r.done
}

// Running reports whether the loop is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started && !r.stopped && r.cancel != nil
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Debug("periodic job started",
		slog.String("job", r.name),
		slog.Duration("interval", r.interval))

	if r.runOnStart {
		r.run(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("periodic job stopped", slog.String("job", r.name))
			return
		case <-ticker.C:
			r.run(ctx)
		}
	}
}

func (r *Runner) run(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("periodic job panicked",
				slog.String("job", r.name),
				slog.String("error", fmt.Sprint(rec)))
		}
	}()
	r.job(ctx)
}
