package http

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	mathrand "math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
)

// NewIdempotencyKey returns a fresh URL-safe key with 192 bits of entropy.
func NewIdempotencyKey() (string, error) {
	buf := make([]byte, constants.IdempotencyKeyBytes)

	_, err := rand.Read(buf)
	if err != nil {
		return "", fmt.Errorf("generating idempotency key: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// CheckRetry decides whether an attempt is retried. Transport failures, 429
// and 5xx are retried; 409 and every other status are terminal. A done
// context, or a rate limit wait that would pass the deadline, stops the
// loop.
func CheckRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}

	if err != nil {
		return !errors.Is(err, ErrRateLimitDeadline), nil
	}

	switch {
	case resp.StatusCode == http.StatusConflict:
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return true, nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return true, nil
	}

	return false, nil
}

// Backoff returns the wait before the next attempt. A parseable Retry-After
// header wins; otherwise the wait is drawn uniformly from
// [0, min(maxDelay, minDelay*2^attemptNum)].
func Backoff(minDelay, maxDelay time.Duration, attemptNum int, resp *http.Response) time.Duration {
	if resp != nil {
		if wait, ok := RetryAfter(resp.Header.Get(constants.HeaderRetryAfter), time.Now()); ok {
			return wait
		}
	}

	ceiling := backoffCeiling(minDelay, maxDelay, attemptNum)
	if ceiling <= 0 {
		return 0
	}

	return time.Duration(mathrand.Int64N(int64(ceiling) + 1))
}

func backoffCeiling(minDelay, maxDelay time.Duration, attemptNum int) time.Duration {
	if attemptNum < 0 {
		attemptNum = 0
	}

	ceiling := float64(minDelay) * math.Pow(constants.ExponentialBackoffBase, float64(attemptNum))
	if ceiling > float64(maxDelay) || math.IsInf(ceiling, 0) {
		return maxDelay
	}

	return time.Duration(ceiling)
}

// RetryAfter parses a Retry-After value given as delay seconds or as an
// HTTP date.
func RetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}

		return time.Duration(seconds) * time.Second, true
	}

	if at, err := http.ParseTime(value); err == nil {
		wait := at.Sub(now)
		if wait < 0 {
			wait = 0
		}

		return wait, true
	}

	return 0, false
}
