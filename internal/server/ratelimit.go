package server

import (
	"net/http"

	"golang.org/x/time/rate"
)

// rateLimit rejects requests above the configured sustained rate with 429.
// The calculator scores one submission at a time; the limiter keeps a burst
// of form resubmissions from queueing up behind the model.
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
