package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// rateLimitedTransport waits for a limiter token before every attempt,
// retries included.
type rateLimitedTransport struct {
	limiter *rate.Limiter
	next    http.RoundTripper
}

func newRateLimitedTransport(next http.RoundTripper, requestsPerSecond float64, burst int) *rateLimitedTransport {
	if next == nil {
		next = http.DefaultTransport
	}

	if burst < 1 {
		burst = 1
	}

	return &rateLimitedTransport{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		next:    next,
	}
}

// ErrRateLimitDeadline reports a limiter token that cannot arrive before the
// request deadline. It also matches context.DeadlineExceeded.
var ErrRateLimitDeadline = errors.New("rate limit token not available before deadline")

// RoundTrip waits for a token first.
func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	err := t.limiter.Wait(ctx)
	if err != nil {
		if _, hasDeadline := ctx.Deadline(); hasDeadline && ctx.Err() == nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w: %w: %w", ErrRateLimitDeadline, context.DeadlineExceeded, err)
		}

		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	return t.next.RoundTrip(req)
}
