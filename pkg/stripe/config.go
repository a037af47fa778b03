package stripe

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
)

// APIVersion is the API version pinned by this client. It is sent on every
// request.
const APIVersion = constants.APIVersion

// AppInfo identifies the application embedding the client. It is appended to
// the User-Agent header.
type AppInfo struct {
	Name    string `json:"name"              yaml:"name"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	URL     string `json:"url,omitempty"     yaml:"url,omitempty"`
}

// String formats the app info as "name/version (url)".
func (a *AppInfo) String() string {
	if a == nil || a.Name == "" {
		return ""
	}

	out := a.Name
	if a.Version != "" {
		out += "/" + a.Version
	}

	if a.URL != "" {
		out += " (" + a.URL + ")"
	}

	return out
}

// UserAgent returns the User-Agent header value for appInfo.
func UserAgent(appInfo *AppInfo) string {
	agent := constants.ClientName + "/" + constants.ClientVersion
	if suffix := appInfo.String(); suffix != "" {
		agent += " " + suffix
	}

	return agent
}

// Config represents client configuration for building a stripe.Client.
//
// Only SecretKey is required; stripeclient.New fills every other zero value
// with its default. The config is read-only once handed to the client.
type Config struct {
	// SecretKey is sent as "Authorization: Bearer <key>".
	SecretKey string
	// BaseURL defaults to https://api.stripe.com. Tests point it at a fake server.
	BaseURL string
	// StripeAccount is the default connected account (Stripe-Account header).
	StripeAccount string
	// ClientID is the default client attribution (Client-Id header).
	ClientID string
	// AppInfo is appended to the User-Agent.
	AppInfo *AppInfo

	// MaxAttempts bounds the attempts of one logical call, first try included.
	MaxAttempts int
	// RetryBaseDelay is the backoff base; attempt n sleeps up to base*2^n.
	RetryBaseDelay time.Duration
	// RetryMaxDelay caps a single backoff sleep.
	RetryMaxDelay time.Duration

	// HTTPTimeout bounds a single attempt when HTTPClient is nil.
	HTTPTimeout time.Duration
	// HTTPClient replaces the default transport.
	HTTPClient *http.Client
	// RequestsPerSecond enables client-side rate limiting when positive.
	RequestsPerSecond float64
	// Burst is the limiter bucket size. Defaults to 1.
	Burst int

	// Debug enables "HTTP Request"/"HTTP Response" logging.
	Debug bool
	// Logger receives executor and interceptor logs.
	Logger Logger
	// TracerProvider creates one span per logical call. Nil disables tracing.
	TracerProvider trace.TracerProvider
	// Interceptors run around every logical call.
	Interceptors *InterceptorChain
}

// Validate checks the fields that have no default.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigRequired
	}

	if strings.TrimSpace(c.SecretKey) == "" {
		return ErrSecretKeyRequired
	}

	if c.BaseURL != "" {
		parsed, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
		}

		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%w: scheme must be http or https: %q", ErrInvalidBaseURL, c.BaseURL)
		}
	}

	if c.MaxAttempts < 0 || c.RetryBaseDelay < 0 || c.RetryMaxDelay < 0 {
		return ErrInvalidRetryPolicy
	}

	if c.RetryBaseDelay > 0 && c.RetryMaxDelay > 0 && c.RetryBaseDelay > c.RetryMaxDelay {
		return fmt.Errorf("%w: base delay %s exceeds max delay %s", ErrInvalidRetryPolicy, c.RetryBaseDelay, c.RetryMaxDelay)
	}

	return nil
}

// WithDefaults returns a copy with every zero value replaced by its default.
func (c Config) WithDefaults() Config {
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.BaseURL == "" {
		c.BaseURL = constants.DefaultBaseURL
	}

	if c.MaxAttempts == 0 {
		c.MaxAttempts = constants.DefaultMaxAttempts
	}

	if c.RetryBaseDelay == 0 {
		c.RetryBaseDelay = constants.DefaultRetryBaseDelay
	}

	if c.RetryMaxDelay == 0 {
		c.RetryMaxDelay = constants.DefaultRetryMaxDelay
	}

	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = constants.DefaultHTTPTimeout
	}

	if c.Burst <= 0 {
		c.Burst = 1
	}

	if c.Logger == nil {
		c.Logger = NoopLogger{}
	}

	return c
}
