package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/otpgate/pkg/ratelimiter"
)

// CodeTooManyRequests is returned when a client exceeds its attempt budget.
const CodeTooManyRequests = "too_many_requests"

func clientKey(r *http.Request) string {
	ip, _ := ClientIP(r.Context())
	return ip
}

func userKey(r *http.Request) string {
	return chi.URLParam(r, "userID")
}

// throttle limits the route when a rate limiter is configured.
func (a *api) throttle(scope string, keys ...ratelimiter.KeyFunc) func(http.Handler) http.Handler {
	if a.limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	denied := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.logger.WarnContext(r.Context(), "attempt limit reached", "scope", scope)
		fail(w, http.StatusTooManyRequests, CodeTooManyRequests, "too many attempts, retry later")
	})
	errored := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.logger.ErrorContext(r.Context(), "rate limiter unavailable", "scope", scope)
		fail(w, http.StatusServiceUnavailable, "unavailable", "try again later")
	})

	return ratelimiter.Middleware(a.limiter, ratelimiter.Prefixed(scope, ratelimiter.Composite(keys...)), denied, errored)
}
