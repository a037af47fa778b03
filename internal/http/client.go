// Package http executes prepared API requests: it merges headers, attaches
// idempotency keys, retries through go-retryablehttp and classifies the
// outcome into the stripe error model.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

const tracerName = "github.com/fivetwenty-io/stripe-client/internal/http"

// Request is a prepared request. Query is used for GET, Body for POST and
// DELETE. Headers are request-local and win over the client defaults.
type Request struct {
	Method             string
	Path               string
	Query              string
	Body               []byte
	Headers            http.Header
	SkipIdempotencyKey bool
}

// Response is a received HTTP response.
type Response struct {
	StatusCode     int
	Headers        http.Header
	Body           []byte
	Attempts       int
	IdempotencyKey string
	RequestID      string
}

// Client executes requests against the API.
type Client struct {
	baseURL        string
	secretKey      string
	userAgent      string
	defaultHeaders http.Header
	httpClient     *retryablehttp.Client
	logger         stripe.Logger
	debug          bool
	tracer         trace.Tracer
	interceptors   *stripe.InterceptorChain
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger stripe.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig sets the attempt bound and the backoff range.
func WithRetryConfig(maxAttempts int, baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		if maxAttempts < 1 {
			maxAttempts = 1
		}

		c.httpClient.RetryMax = maxAttempts - 1
		c.httpClient.RetryWaitMin = baseDelay
		c.httpClient.RetryWaitMax = maxDelay
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			clone := *httpClient
			c.httpClient.HTTPClient = &clone
		}
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithRateLimit limits attempts to requestsPerSecond.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			return
		}

		client := c.httpClient.HTTPClient
		client.Transport = newRateLimitedTransport(client.Transport, requestsPerSecond, burst)
	}
}

// WithTracerProvider enables one span per logical call.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(c *Client) {
		if provider != nil {
			c.tracer = provider.Tracer(tracerName)
		}
	}
}

// WithInterceptors runs chain around every logical call.
func WithInterceptors(chain *stripe.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithDefaultHeader sets a header sent on every request unless the request
// overrides it.
func WithDefaultHeader(key, value string) Option {
	return func(c *Client) {
		if value != "" {
			c.defaultHeaders.Set(key, value)
		}
	}
}

// NewClient creates an executor for baseURL authenticated with secretKey.
func NewClient(baseURL, secretKey string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.RetryMax = constants.DefaultMaxAttempts - 1
	retryClient.RetryWaitMin = constants.DefaultRetryBaseDelay
	retryClient.RetryWaitMax = constants.DefaultRetryMaxDelay
	retryClient.CheckRetry = CheckRetry
	retryClient.Backoff = Backoff
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		secretKey:      secretKey,
		userAgent:      stripe.UserAgent(nil),
		defaultHeaders: make(http.Header),
		httpClient:     retryClient,
		logger:         stripe.NoopLogger{},
		tracer:         noop.NewTracerProvider().Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(client)
	}

	retryClient.Logger = &leveledLogger{logger: client.logger, debug: client.debug}
	retryClient.RequestLogHook = client.logAttempt

	return client
}

type callStateKey struct{}

// callState follows one logical call through the retry loop.
type callState struct {
	requestID string
	attempts  int
}

func stateFrom(ctx context.Context) *callState {
	state, _ := ctx.Value(callStateKey{}).(*callState)

	return state
}

func (c *Client) logAttempt(_ retryablehttp.Logger, req *http.Request, attempt int) {
	state := stateFrom(req.Context())
	if state == nil {
		return
	}

	state.attempts = attempt + 1

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     req.Method,
			"url":        req.URL.String(),
			"attempt":    state.attempts,
			"request_id": state.requestID,
			"headers":    redactHeaders(req.Header),
		})
	}
}

// Get issues a GET with an encoded query string.
func (c *Client) Get(ctx context.Context, path, query string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post issues a POST with an encoded form body.
func (c *Client) Post(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Delete issues a DELETE with an encoded form body.
func (c *Client) Delete(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path, Body: body})
}

// Do executes req. On failure the returned error is one of the stripe error
// types; the response is returned alongside when one was received.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	switch req.Method {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
	default:
		return nil, fmt.Errorf("%w: %s", stripe.ErrInvalidMethod, req.Method)
	}

	headers, err := c.buildHeaders(req)
	if err != nil {
		return nil, err
	}

	state := &callState{requestID: uuid.NewString()}
	ctx = context.WithValue(ctx, callStateKey{}, state)

	ctx, span := c.tracer.Start(ctx, "stripe "+req.Method+" "+stripe.ResourceName(req.Path),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
			attribute.String("stripe.request_id", state.requestID),
		))
	defer span.End()

	intercepted := &stripe.Request{
		Method:    req.Method,
		Path:      req.Path,
		Query:     req.Query,
		Headers:   headers,
		Body:      req.Body,
		RequestID: state.requestID,
		Metadata:  make(map[string]interface{}),
	}

	start := time.Now()

	resp, err := c.intercept(ctx, intercepted, state)

	outcome := &stripe.Response{
		Attempts: state.attempts,
		Duration: time.Since(start),
		Error:    err,
	}

	if resp != nil {
		outcome.StatusCode = resp.StatusCode
		outcome.Headers = resp.Headers
		outcome.Body = resp.Body
	}

	c.finishSpan(span, outcome)

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      req.Method,
			"path":        req.Path,
			"status_code": outcome.StatusCode,
			"attempts":    outcome.Attempts,
			"duration_ms": outcome.Duration.Milliseconds(),
			"request_id":  state.requestID,
		})
	}

	interceptErr := c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, outcome)
	if err == nil && interceptErr != nil {
		return resp, interceptErr
	}

	return resp, err
}

func (c *Client) intercept(ctx context.Context, req *stripe.Request, state *callState) (*Response, error) {
	err := c.interceptors.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		return nil, err
	}

	return c.execute(ctx, req, state)
}

// buildHeaders merges the client defaults with the request-local headers and
// settles the idempotency key.
func (c *Client) buildHeaders(req *Request) (http.Header, error) {
	headers := make(http.Header)
	headers.Set(constants.HeaderAuthorization, "Bearer "+c.secretKey)
	headers.Set(constants.HeaderUserAgent, c.userAgent)
	headers.Set(constants.HeaderAccept, constants.ContentTypeJSON)

	for key, values := range c.defaultHeaders {
		headers[key] = append([]string(nil), values...)
	}

	for key, values := range req.Headers {
		headers[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	}

	headers.Set(constants.HeaderStripeVersion, constants.APIVersion)

	switch {
	case req.Method == http.MethodGet || req.SkipIdempotencyKey:
		headers.Del(constants.HeaderIdempotencyKey)
	case headers.Get(constants.HeaderIdempotencyKey) == "":
		key, err := NewIdempotencyKey()
		if err != nil {
			return nil, err
		}

		headers.Set(constants.HeaderIdempotencyKey, key)
	}

	if req.Method != http.MethodGet {
		headers.Set(constants.HeaderContentType, constants.ContentTypeForm)
	}

	return headers, nil
}

func (c *Client) buildURL(path, query string) string {
	target := c.baseURL + path
	if query == "" {
		return target
	}

	if strings.Contains(path, "?") {
		return target + "&" + query
	}

	return target + "?" + query
}

func (c *Client) execute(ctx context.Context, req *stripe.Request, state *callState) (*Response, error) {
	var body interface{}
	if req.Method != http.MethodGet {
		body = req.Body
		if req.Body == nil {
			body = []byte{}
		}
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, c.buildURL(req.Path, req.Query), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header = req.Headers.Clone()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if httpResp != nil && httpResp.Body != nil {
			_ = httpResp.Body.Close()
		}

		return nil, classifyTransportError(ctx, state.attempts, err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, classifyTransportError(ctx, state.attempts, err)
		}

		return nil, &stripe.ConnectionError{Attempts: state.attempts, Cause: fmt.Errorf("reading response body: %w", err)}
	}

	resp := &Response{
		StatusCode:     httpResp.StatusCode,
		Headers:        httpResp.Header,
		Body:           respBody,
		Attempts:       state.attempts,
		IdempotencyKey: req.Headers.Get(constants.HeaderIdempotencyKey),
		RequestID:      httpResp.Header.Get(constants.HeaderRequestID),
	}

	return resp, classifyResponse(resp)
}

func classifyTransportError(ctx context.Context, attempts int, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &stripe.TimeoutError{Attempts: attempts, Cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &stripe.TimeoutError{Attempts: attempts, Cause: err}
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled after %d attempt(s): %w", attempts, ctx.Err())
	}

	return &stripe.ConnectionError{Attempts: attempts, Cause: err}
}

// classifyResponse maps a final response onto the error model.
func classifyResponse(resp *Response) error {
	status := resp.StatusCode

	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}

	apiErr, parseErr := stripe.ParseErrorResponse(status, resp.Body, resp.RequestID)

	switch {
	case status == http.StatusConflict:
		if parseErr != nil {
			apiErr = &stripe.APIError{
				HTTPStatusCode: status,
				Type:           stripe.ErrorTypeIdempotency,
				RequestID:      resp.RequestID,
			}
		}

		return &stripe.IdempotencyError{APIError: apiErr}
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		if parseErr != nil {
			return &stripe.ConnectionError{Attempts: resp.Attempts, Cause: parseErr}
		}

		return apiErr
	case parseErr != nil:
		return parseErr
	}

	return apiErr
}

func (c *Client) finishSpan(span trace.Span, outcome *stripe.Response) {
	span.SetAttributes(attribute.Int("stripe.attempts", outcome.Attempts))

	if outcome.StatusCode > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", outcome.StatusCode))
	}

	if outcome.Error != nil {
		span.RecordError(outcome.Error)
		span.SetStatus(codes.Error, outcome.Error.Error())

		return
	}

	span.SetStatus(codes.Ok, "")
}
