// Package ratelimiter throttles repeated attempts with a token bucket.
//
// otpgate uses it in front of code verification so that a six-digit code
// cannot be brute-forced: each key (client address, optionally combined with
// the user id) may spend Capacity attempts in a burst, and RefillRate tokens
// come back every RefillInterval. Denied attempts do not consume tokens.
//
// Two stores are provided. MemoryStore keeps buckets in a sharded map and
// drops idle ones in the background. RedisStore runs the bucket update as a
// Lua script so several otpgate instances share one budget.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimiter.New(store, ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     1,
//		RefillInterval: 30 * time.Second,
//	})
//
//	res, err := limiter.Allow(ctx, "203.0.113.7:alice")
//	if err == nil && !res.Allowed() {
//		// wait res.RetryAfter()
//	}
//
// Middleware wires a Limiter into an http.Handler chain and sets the
// X-RateLimit-* and Retry-After headers.
package ratelimiter
