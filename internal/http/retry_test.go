package http_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stripehttp "github.com/fivetwenty-io/stripe-client/internal/http"
)

func TestNewIdempotencyKey(t *testing.T) {
	t.Parallel()

	first, err := stripehttp.NewIdempotencyKey()
	require.NoError(t, err)

	second, err := stripehttp.NewIdempotencyKey()
	require.NoError(t, err)

	assert.Len(t, first, 32)
	assert.NotEqual(t, first, second)
	assert.NotContains(t, first, "+")
	assert.NotContains(t, first, "/")
}

func TestCheckRetry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		err    error
		retry  bool
	}{
		{name: "transport error", err: errors.New("connection reset"), retry: true},
		{name: "attempt timeout", err: fmt.Errorf("attempt: %w", context.DeadlineExceeded), retry: true},
		{name: "rate limit past deadline", err: fmt.Errorf("waiting for rate limiter: %w: %w", stripehttp.ErrRateLimitDeadline, context.DeadlineExceeded)},
		{name: "ok", status: http.StatusOK},
		{name: "bad request", status: http.StatusBadRequest},
		{name: "payment required", status: http.StatusPaymentRequired},
		{name: "not found", status: http.StatusNotFound},
		{name: "conflict", status: http.StatusConflict},
		{name: "too many requests", status: http.StatusTooManyRequests, retry: true},
		{name: "internal error", status: http.StatusInternalServerError, retry: true},
		{name: "bad gateway", status: http.StatusBadGateway, retry: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var resp *http.Response
			if tt.err == nil {
				resp = &http.Response{StatusCode: tt.status}
			}

			retry, err := stripehttp.CheckRetry(context.Background(), resp, tt.err)
			require.NoError(t, err)
			assert.Equal(t, tt.retry, retry)
		})
	}

	t.Run("done context stops", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		retry, err := stripehttp.CheckRetry(ctx, nil, errors.New("boom"))
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, retry)
	})
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	t.Run("bounded by the exponential ceiling", func(t *testing.T) {
		t.Parallel()

		for attempt := range 6 {
			ceiling := 10 * time.Millisecond << attempt
			if ceiling > 100*time.Millisecond {
				ceiling = 100 * time.Millisecond
			}

			for range 50 {
				wait := stripehttp.Backoff(10*time.Millisecond, 100*time.Millisecond, attempt, nil)
				assert.GreaterOrEqual(t, wait, time.Duration(0))
				assert.LessOrEqual(t, wait, ceiling)
			}
		}
	})

	t.Run("Retry-After seconds override", func(t *testing.T) {
		t.Parallel()

		resp := &http.Response{Header: http.Header{"Retry-After": []string{"2"}}}
		assert.Equal(t, 2*time.Second, stripehttp.Backoff(time.Millisecond, 10*time.Millisecond, 0, resp))
	})

	t.Run("unparseable Retry-After falls back", func(t *testing.T) {
		t.Parallel()

		resp := &http.Response{Header: http.Header{"Retry-After": []string{"soon"}}}
		assert.LessOrEqual(t, stripehttp.Backoff(time.Millisecond, 10*time.Millisecond, 0, resp), time.Millisecond)
	})
}

func TestRetryAfter(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  time.Duration
		ok    bool
	}{
		{name: "empty", value: ""},
		{name: "seconds", value: "3", want: 3 * time.Second, ok: true},
		{name: "zero", value: "0", ok: true},
		{name: "negative", value: "-1"},
		{name: "http date", value: now.Add(5 * time.Second).Format(http.TimeFormat), want: 5 * time.Second, ok: true},
		{name: "past date", value: now.Add(-time.Minute).Format(http.TimeFormat), ok: true},
		{name: "garbage", value: "later"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := stripehttp.RetryAfter(tt.value, now)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
