package stripe

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType is the coarse category reported in an API error envelope.
type ErrorType string

// Known error types.
const (
	ErrorTypeAPI            ErrorType = "api_error"
	ErrorTypeAuthentication ErrorType = "authentication_error"
	ErrorTypeCard           ErrorType = "card_error"
	ErrorTypeIdempotency    ErrorType = "idempotency_error"
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error"
	ErrorTypeRateLimit      ErrorType = "rate_limit_error"
)

// IsUnknown reports whether the server sent a type this client does not know.
func (t ErrorType) IsUnknown() bool {
	switch t {
	case ErrorTypeAPI, ErrorTypeAuthentication, ErrorTypeCard,
		ErrorTypeIdempotency, ErrorTypeInvalidRequest, ErrorTypeRateLimit:
		return false
	}

	return true
}

// String returns the wire token.
func (t ErrorType) String() string {
	return string(t)
}

// ErrorCode is the machine-readable code of an API error.
type ErrorCode string

// Common error codes.
const (
	ErrorCodeCardDeclined         ErrorCode = "card_declined"
	ErrorCodeExpiredCard          ErrorCode = "expired_card"
	ErrorCodeIncorrectCVC         ErrorCode = "incorrect_cvc"
	ErrorCodeIdempotencyKeyInUse  ErrorCode = "idempotency_key_in_use"
	ErrorCodeParameterMissing     ErrorCode = "parameter_missing"
	ErrorCodeParameterInvalid     ErrorCode = "parameter_invalid_integer"
	ErrorCodeRateLimit            ErrorCode = "rate_limit"
	ErrorCodeResourceMissing      ErrorCode = "resource_missing"
	ErrorCodeLockTimeout          ErrorCode = "lock_timeout"
	ErrorCodeAPIKeyExpired        ErrorCode = "api_key_expired"
	ErrorCodeAmountTooSmall       ErrorCode = "amount_too_small"
	ErrorCodeChargeAlreadyCapture ErrorCode = "charge_already_captured"
)

// Static errors for err113 compliance.
var (
	ErrQueryStringify     = errors.New("failed to encode query string")
	ErrBodyStringify      = errors.New("failed to encode form body")
	ErrUnsupportedVersion = errors.New("pagination URL is not under the versioned API root")
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
	ErrNoMoreItems        = errors.New("no more items")
	ErrConfigRequired     = errors.New("config is required")
	ErrSecretKeyRequired  = errors.New("secret key is required")
	ErrInvalidBaseURL     = errors.New("invalid base URL")
	ErrInvalidMethod      = errors.New("form requests must use POST or DELETE")
	ErrInvalidRetryPolicy = errors.New("invalid retry policy")
	ErrConflictingCursors = errors.New("starting_after and ending_before cannot both be set")
	ErrConflictingRange   = errors.New("exact range value cannot be combined with comparators")
	ErrInvalidEnumValue   = errors.New("invalid enum value")
	ErrInvalidExpandable  = errors.New("expandable field must be a string, an object or null")
)

// APIError is a structured failure returned by the API.
type APIError struct {
	HTTPStatusCode int       `json:"status,omitempty"       yaml:"status,omitempty"`
	Type           ErrorType `json:"type"                   yaml:"type"`
	Code           ErrorCode `json:"code,omitempty"         yaml:"code,omitempty"`
	DeclineCode    string    `json:"decline_code,omitempty" yaml:"decline_code,omitempty"`
	Message        string    `json:"message,omitempty"      yaml:"message,omitempty"`
	Param          string    `json:"param,omitempty"        yaml:"param,omitempty"`
	DocURL         string    `json:"doc_url,omitempty"      yaml:"doc_url,omitempty"`
	RequestID      string    `json:"request_id,omitempty"   yaml:"request_id,omitempty"`
}

// Error renders the message first, then code and type, then the status.
func (e *APIError) Error() string {
	var builder strings.Builder

	switch {
	case e.Message != "":
		builder.WriteString(e.Message)
	case e.Code != "":
		builder.WriteString(string(e.Code))
	case e.Type != "":
		builder.WriteString(string(e.Type))
	default:
		builder.WriteString("API error")
	}

	details := make([]string, 0, 4)

	if e.Code != "" && e.Message != "" {
		details = append(details, "code: "+string(e.Code))
	}

	if e.Type != "" && (e.Message != "" || e.Code != "") {
		details = append(details, "type: "+string(e.Type))
	}

	if e.HTTPStatusCode != 0 {
		details = append(details, fmt.Sprintf("status: %d", e.HTTPStatusCode))
	}

	if e.RequestID != "" {
		details = append(details, "request: "+e.RequestID)
	}

	if len(details) > 0 {
		builder.WriteString(" (")
		builder.WriteString(strings.Join(details, ", "))
		builder.WriteString(")")
	}

	return builder.String()
}

// ErrorResponse is the error envelope returned by the API.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// ParseErrorResponse parses an error envelope. A body that is not a valid
// envelope yields a *MalformedErrorBodyError.
func ParseErrorResponse(statusCode int, body []byte, requestID string) (*APIError, error) {
	var envelope ErrorResponse

	err := json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, &MalformedErrorBodyError{StatusCode: statusCode, Body: body, Err: err}
	}

	if envelope.Error == nil {
		return nil, &MalformedErrorBodyError{StatusCode: statusCode, Body: body}
	}

	envelope.Error.HTTPStatusCode = statusCode
	if envelope.Error.RequestID == "" {
		envelope.Error.RequestID = requestID
	}

	return envelope.Error, nil
}

// MalformedErrorBodyError is returned when a non-2xx body is not a valid
// error envelope.
type MalformedErrorBodyError struct {
	StatusCode int
	Body       []byte
	Err        error
}

const maxBodyInError = 256

func (e *MalformedErrorBodyError) Error() string {
	body := string(e.Body)
	if len(body) > maxBodyInError {
		body = body[:maxBodyInError] + "..."
	}

	return fmt.Sprintf("malformed error body (status: %d): %q", e.StatusCode, body)
}

func (e *MalformedErrorBodyError) Unwrap() error {
	return e.Err
}

// SerializationError is returned when a 2xx body cannot be decoded into the
// requested type.
type SerializationError struct {
	TargetType string
	Detail     string
	Err        error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("decoding %s: %s", e.TargetType, e.Detail)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// EncodeError is returned when parameters cannot be encoded. Kind is
// ErrQueryStringify or ErrBodyStringify.
type EncodeError struct {
	Kind error
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *EncodeError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// ConnectionError is returned when the transport failed on every attempt.
type ConnectionError struct {
	Attempts int
	Cause    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error after %d attempt(s): %v", e.Attempts, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// TimeoutError is returned when the call deadline expired.
type TimeoutError struct {
	Attempts int
	Cause    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %d attempt(s): %v", e.Attempts, e.Cause)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// IdempotencyError is returned when the server rejects a replayed
// idempotency key (HTTP 409).
type IdempotencyError struct {
	*APIError
}

func (e *IdempotencyError) Error() string {
	if e.APIError == nil {
		return "idempotency error"
	}

	return "idempotency error: " + e.APIError.Error()
}

func (e *IdempotencyError) Unwrap() error {
	if e.APIError == nil {
		return nil
	}

	return e.APIError
}

// PaginationError reports a page that violates the pagination contract.
type PaginationError struct {
	URL    string
	Detail string
}

func (e *PaginationError) Error() string {
	return fmt.Sprintf("pagination error at %s: %s", e.URL, e.Detail)
}

// UnsupportedVersionError is returned when asked to paginate a URL outside
// the versioned API root.
type UnsupportedVersionError struct {
	URL string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnsupportedVersion, e.URL)
}

func (e *UnsupportedVersionError) Unwrap() error {
	return ErrUnsupportedVersion
}

// IsCardError checks if the error is a declined card.
func IsCardError(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Type == ErrorTypeCard
	}

	return false
}

// IsRateLimited checks if the error is a rate limit rejection.
func IsRateLimited(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.Type == ErrorTypeRateLimit
	}

	return false
}

// IsNotFound checks if the error is a missing resource.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusNotFound || apiErr.Code == ErrorCodeResourceMissing
	}

	return false
}

// IsUnauthorized checks if the error is an authentication failure.
func IsUnauthorized(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.Type == ErrorTypeAuthentication
	}

	return false
}

// IsRetryable reports whether the failure belongs to a category the executor
// retries: transport failures, 429 and 5xx.
func IsRetryable(err error) bool {
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return true
	}

	var idemErr *IdempotencyError
	if errors.As(err, &idemErr) {
		return false
	}

	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}

	return false
}
