package stripeclient

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/fivetwenty-io/stripe-client/internal/client"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvSecretKey     = "STRIPE_SECRET_KEY"
	EnvBaseURL       = "STRIPE_BASE_URL"
	EnvStripeAccount = "STRIPE_ACCOUNT"
	EnvMaxAttempts   = "STRIPE_MAX_ATTEMPTS"
	EnvDebug         = "STRIPE_DEBUG"
)

// New creates a new API client. Only config.SecretKey is required.
func New(config *stripe.Config) (stripe.Client, error) {
	if config == nil {
		return nil, stripe.ErrConfigRequired
	}

	c, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithSecretKey creates a client for the production API.
func NewWithSecretKey(secretKey string) (stripe.Client, error) {
	return New(&stripe.Config{SecretKey: secretKey})
}

// NewWithBaseURL creates a client for a non-default API host, such as a
// local mock server.
func NewWithBaseURL(baseURL, secretKey string) (stripe.Client, error) {
	return New(&stripe.Config{BaseURL: baseURL, SecretKey: secretKey})
}

// ConfigFromEnv builds a config from the process environment. The given
// dotenv files are loaded first; files that do not exist are skipped and
// variables already set are never overridden.
func ConfigFromEnv(files ...string) (*stripe.Config, error) {
	for _, file := range files {
		err := godotenv.Load(file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	config := &stripe.Config{
		SecretKey:     os.Getenv(EnvSecretKey),
		BaseURL:       os.Getenv(EnvBaseURL),
		StripeAccount: os.Getenv(EnvStripeAccount),
	}

	if raw := os.Getenv(EnvMaxAttempts); raw != "" {
		attempts, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", EnvMaxAttempts, err)
		}

		config.MaxAttempts = attempts
	}

	if raw := os.Getenv(EnvDebug); raw != "" {
		debug, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", EnvDebug, err)
		}

		config.Debug = debug
	}

	return config, nil
}
