// Package periodic runs a single job on a fixed interval in a background
// goroutine.
//
// A Runner is started once and stopped once. Stop cancels the job's context,
// stops the ticker and blocks until the loop has exited, so callers can
// release the resources the job touches right after Stop returns. A job that
// panics is recovered and logged; the loop keeps ticking.
//
//	r := periodic.New("vault.sweep", 5*time.Minute, func(ctx context.Context) {
//		v.Sweep()
//	}, periodic.WithLogger(log))
//	r.Start(ctx)
//	defer r.Stop()
package periodic
