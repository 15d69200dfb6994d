// Package httpserver runs an http.Handler with graceful shutdown.
//
// Run blocks until the context is cancelled, SIGINT or SIGTERM is received or
// the listener fails, then drains in-flight requests within the shutdown
// timeout. Settings come from Config (HTTP_* variables) or options.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    return err
//	}
//
// HealthCheckHandler serves liveness and readiness probes.
package httpserver
