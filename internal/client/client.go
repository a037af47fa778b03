package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
	"github.com/fivetwenty-io/stripe-client/internal/form"
	internalhttp "github.com/fivetwenty-io/stripe-client/internal/http"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// Client implements the stripe.Client interface.
type Client struct {
	httpClient *internalhttp.Client
	baseURL    string
	logger     stripe.Logger

	// Resource clients
	customers stripe.CustomersClient
	charges   stripe.ChargesClient
}

var _ stripe.Client = (*Client)(nil)

// createHTTPClientOptions builds executor options from a defaulted config.
func createHTTPClientOptions(config *stripe.Config) []internalhttp.Option {
	httpOpts := []internalhttp.Option{
		internalhttp.WithLogger(config.Logger),
		internalhttp.WithDebug(config.Debug),
		internalhttp.WithUserAgent(stripe.UserAgent(config.AppInfo)),
		internalhttp.WithRetryConfig(config.MaxAttempts, config.RetryBaseDelay, config.RetryMaxDelay),
		internalhttp.WithDefaultHeader(constants.HeaderStripeAccount, config.StripeAccount),
		internalhttp.WithDefaultHeader(constants.HeaderClientID, config.ClientID),
	}

	if config.HTTPClient != nil {
		httpOpts = append(httpOpts, internalhttp.WithHTTPClient(config.HTTPClient))
	} else {
		httpOpts = append(httpOpts, internalhttp.WithTimeout(config.HTTPTimeout))
	}

	if config.RequestsPerSecond > 0 {
		httpOpts = append(httpOpts, internalhttp.WithRateLimit(config.RequestsPerSecond, config.Burst))
	}

	if config.TracerProvider != nil {
		httpOpts = append(httpOpts, internalhttp.WithTracerProvider(config.TracerProvider))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, internalhttp.WithInterceptors(config.Interceptors))
	}

	return httpOpts
}

// New creates a new API client. The config is validated and every zero
// value replaced by its default; the caller's config is not modified.
func New(config *stripe.Config) (*Client, error) {
	err := config.Validate()
	if err != nil {
		return nil, err
	}

	resolved := config.WithDefaults()

	httpClient := internalhttp.NewClient(resolved.BaseURL, resolved.SecretKey, createHTTPClientOptions(&resolved)...)

	client := &Client{
		httpClient: httpClient,
		baseURL:    resolved.BaseURL,
		logger:     resolved.Logger,
	}

	client.initializeResourceClients()

	return client, nil
}

func (c *Client) initializeResourceClients() {
	c.customers = NewCustomersClient(c)
	c.charges = NewChargesClient(c)
}

// GetQuery implements stripe.Backend.GetQuery.
func (c *Client) GetQuery(ctx context.Context, path string, params interface{}, out interface{}, opts ...stripe.RequestOption) error {
	values, err := form.Encode(params)
	if err != nil {
		return &stripe.EncodeError{Kind: stripe.ErrQueryStringify, Err: err}
	}

	options := stripe.NewRequestOptions(opts...)

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method:  http.MethodGet,
		Path:    path,
		Query:   values.Encode(),
		Headers: options.HeaderOverlay(),
	})
	if err != nil {
		return err //nolint:wrapcheck // executor errors are already typed
	}

	return decodeResponse(resp.Body, out)
}

// SendForm implements stripe.Backend.SendForm.
func (c *Client) SendForm(ctx context.Context, method, path string, params interface{}, out interface{}, opts ...stripe.RequestOption) error {
	if method != http.MethodPost && method != http.MethodDelete {
		return fmt.Errorf("%w: %s", stripe.ErrInvalidMethod, method)
	}

	values, err := form.Encode(params)
	if err != nil {
		return &stripe.EncodeError{Kind: stripe.ErrBodyStringify, Err: err}
	}

	options := stripe.NewRequestOptions(opts...)

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method:             method,
		Path:               path,
		Body:               []byte(values.Encode()),
		Headers:            options.HeaderOverlay(),
		SkipIdempotencyKey: options.SkipIdempotencyKey,
	})
	if err != nil {
		return err //nolint:wrapcheck // executor errors are already typed
	}

	return decodeResponse(resp.Body, out)
}

// decodeResponse decodes a 2xx body into out.
func decodeResponse(body []byte, out interface{}) error {
	if out == nil {
		return nil
	}

	err := json.Unmarshal(body, out)
	if err == nil {
		return nil
	}

	detail := err.Error()

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		detail = fmt.Sprintf("field %q: %s", typeErr.Field, err)
	}

	return &stripe.SerializationError{TargetType: typeName(out), Detail: detail, Err: err}
}

func typeName(out interface{}) string {
	t := reflect.TypeOf(out)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return t.String()
}

// Resource client accessors

// Customers implements stripe.Client.Customers.
func (c *Client) Customers() stripe.CustomersClient {
	return c.customers
}

// Charges implements stripe.Client.Charges.
func (c *Client) Charges() stripe.ChargesClient {
	return c.charges
}
