package http

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiterTransport is a custom http.RoundTripper that throttles outgoing
// requests to a shared per-host rate, so the source and secondary catalog
// clients never exceed the limits described in the concurrency model.
type RateLimiterTransport struct {
	next     http.RoundTripper
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimiterTransport creates and returns a new instance of RateLimiterTransport.
// Each distinct request host gets its own token bucket, refilled at ratePerSecond
// with the given burst size.
func NewRateLimiterTransport(next http.RoundTripper, ratePerSecond float64, burst int) http.RoundTripper {
	if burst <= 0 {
		burst = 1
	}

	return &RateLimiterTransport{
		next:     next,
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(ratePerSecond),
		burst:    burst,
	}
}

// RoundTrip executes a single HTTP transaction after waiting for the
// per-host limiter to admit it. It implements the http.RoundTripper interface.
func (t *RateLimiterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	limiter := t.limiterFor(req.URL.Host)

	if err := limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	return t.next.RoundTrip(req)
}

func (t *RateLimiterTransport) limiterFor(host string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	limiter, ok := t.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(t.limit, t.burst)
		t.limiters[host] = limiter
	}

	return limiter
}
