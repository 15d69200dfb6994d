// Package redis connects to a Redis server for the secret store backend.
//
// Connect parses a redis:// URL, pings the server and retries on failure
// until the attempts or the connect timeout run out. Healthcheck returns a
// probe closure for the HTTP health endpoint.
//
//	cfg := redis.Config{ConnectionURL: "redis://localhost:6379/0", RetryAttempts: 3}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// Config fields are read from REDIS_* environment variables via
// github.com/caarlos0/env.
package redis
