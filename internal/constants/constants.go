package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// API endpoint and versioning.
const (
	// DefaultBaseURL is the canonical production endpoint.
	DefaultBaseURL = "https://api.stripe.com"

	// APIRoot is the versioned prefix every resource path starts with.
	APIRoot = "/v1/"

	// APIVersion is the pinned API version sent on every request.
	APIVersion = "2024-06-20"

	// ClientName is the product name used in the User-Agent header.
	ClientName = "stripe-client-go"

	// ClientVersion is the product version used in the User-Agent header.
	ClientVersion = "0.4.0"
)

// Header names.
const (
	HeaderAuthorization  = "Authorization"
	HeaderStripeVersion  = "Stripe-Version"
	HeaderStripeAccount  = "Stripe-Account"
	HeaderClientID       = "Client-Id"
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderUserAgent      = "User-Agent"
	HeaderContentType    = "Content-Type"
	HeaderAccept         = "Accept"
	HeaderRetryAfter     = "Retry-After"
	HeaderRequestID      = "Request-Id"
)

// Content types.
const (
	// ContentTypeForm is used for every request body.
	ContentTypeForm = "application/x-www-form-urlencoded"

	// ContentTypeJSON is accepted for every response body.
	ContentTypeJSON = "application/json"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for a single HTTP attempt.
	DefaultHTTPTimeout = 80 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry defaults.
const (
	// DefaultMaxAttempts is the default number of attempts for one logical call.
	DefaultMaxAttempts = 3

	// DefaultRetryBaseDelay is the base of the exponential backoff.
	DefaultRetryBaseDelay = 500 * time.Millisecond

	// DefaultRetryMaxDelay caps a single backoff sleep.
	DefaultRetryMaxDelay = 8 * time.Second

	// ExponentialBackoffBase is the base for exponential backoff.
	ExponentialBackoffBase = 2

	// IdempotencyKeyBytes is the entropy of a generated idempotency key.
	IdempotencyKeyBytes = 24
)

// Circuit breaker defaults.
const (
	// CircuitBreakerThreshold is the number of failed calls before the circuit opens.
	CircuitBreakerThreshold = 5

	// CircuitBreakerTimeout is how long an open circuit rejects calls.
	CircuitBreakerTimeout = 30 * time.Second

	// CircuitBreakerSuccessThreshold is the number of successes that closes a half-open circuit.
	CircuitBreakerSuccessThreshold = 2
)

// Pagination limits.
const (
	// DefaultPageSize is the page size used by the CLI when none is given.
	DefaultPageSize = 10

	// MaxPageSize is the largest page size the API accepts.
	MaxPageSize = 100
)

// Concurrency limits.
const (
	// DefaultConcurrencyLimit limits concurrent CLI fetches.
	DefaultConcurrencyLimit = 4
)

// State and status constants.
const (
	// StatusClosed indicates a closed circuit.
	StatusClosed = "closed"

	// StatusOpen indicates an open circuit.
	StatusOpen = "open"

	// StatusHalfOpen indicates a half-open circuit.
	StatusHalfOpen = "half-open"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// Display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// SecretVisiblePrefix is how many characters of a secret key are shown.
	SecretVisiblePrefix = 8
)

// Keychain constants.
const (
	// KeychainService is the service name used for the OS keychain.
	KeychainService = "stripe-client"

	// KeychainUser is the account name used for the stored secret key.
	KeychainUser = "secret_key"
)
