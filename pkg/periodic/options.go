package periodic

import "log/slog"

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for job panics and lifecycle messages.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRunOnStart runs the job once immediately when the runner starts.
func WithRunOnStart() Option {
	return func(r *Runner) {
		r.runOnStart = true
	}
}
