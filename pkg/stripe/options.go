package stripe

import (
	"net/http"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
)

// RequestOptions is the per-call overlay merged on top of the config
// defaults. Values set here win.
type RequestOptions struct {
	Headers            http.Header
	StripeAccount      string
	ClientID           string
	IdempotencyKey     string
	SkipIdempotencyKey bool
}

// RequestOption configures a single call.
type RequestOption func(*RequestOptions)

// NewRequestOptions applies opts in order.
func NewRequestOptions(opts ...RequestOption) *RequestOptions {
	options := &RequestOptions{Headers: make(http.Header)}

	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	return options
}

// WithStripeAccount overrides the connected account for one call.
func WithStripeAccount(account string) RequestOption {
	return func(o *RequestOptions) {
		o.StripeAccount = account
	}
}

// WithClientID overrides the client attribution for one call.
func WithClientID(clientID string) RequestOption {
	return func(o *RequestOptions) {
		o.ClientID = clientID
	}
}

// WithIdempotencyKey supplies the idempotency key instead of generating one.
func WithIdempotencyKey(key string) RequestOption {
	return func(o *RequestOptions) {
		o.IdempotencyKey = key
		o.SkipIdempotencyKey = false
	}
}

// WithoutIdempotencyKey opts a mutating call out of the idempotency key.
func WithoutIdempotencyKey() RequestOption {
	return func(o *RequestOptions) {
		o.IdempotencyKey = ""
		o.SkipIdempotencyKey = true
	}
}

// WithHeader sets an arbitrary header for one call.
func WithHeader(key, value string) RequestOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = make(http.Header)
		}

		o.Headers.Set(key, value)
	}
}

// HeaderOverlay renders the options as request-local headers.
func (o *RequestOptions) HeaderOverlay() http.Header {
	headers := make(http.Header)

	if o == nil {
		return headers
	}

	for key, values := range o.Headers {
		for _, value := range values {
			headers.Add(key, value)
		}
	}

	if o.StripeAccount != "" {
		headers.Set(constants.HeaderStripeAccount, o.StripeAccount)
	}

	if o.ClientID != "" {
		headers.Set(constants.HeaderClientID, o.ClientID)
	}

	if o.IdempotencyKey != "" {
		headers.Set(constants.HeaderIdempotencyKey, o.IdempotencyKey)
	}

	return headers
}
