package stripe_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *stripe.Config
		wantErr error
	}{
		{name: "nil", config: nil, wantErr: stripe.ErrConfigRequired},
		{name: "blank key", config: &stripe.Config{SecretKey: "  "}, wantErr: stripe.ErrSecretKeyRequired},
		{name: "bad scheme", config: &stripe.Config{SecretKey: "sk", BaseURL: "ftp://example.com"}, wantErr: stripe.ErrInvalidBaseURL},
		{name: "unparseable url", config: &stripe.Config{SecretKey: "sk", BaseURL: "http://[::1"}, wantErr: stripe.ErrInvalidBaseURL},
		{name: "negative delay", config: &stripe.Config{SecretKey: "sk", RetryBaseDelay: -time.Second}, wantErr: stripe.ErrInvalidRetryPolicy},
		{
			name:    "base above max",
			config:  &stripe.Config{SecretKey: "sk", RetryBaseDelay: time.Minute, RetryMaxDelay: time.Second},
			wantErr: stripe.ErrInvalidRetryPolicy,
		},
		{name: "minimal", config: &stripe.Config{SecretKey: "sk_test_1"}},
		{name: "local server", config: &stripe.Config{SecretKey: "sk_test_1", BaseURL: "http://127.0.0.1:12111"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.config.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	config := stripe.Config{SecretKey: "sk", BaseURL: "http://localhost:8080/"}.WithDefaults()

	assert.Equal(t, "http://localhost:8080", config.BaseURL)
	assert.Equal(t, 3, config.MaxAttempts)
	assert.Positive(t, config.RetryBaseDelay)
	assert.GreaterOrEqual(t, config.RetryMaxDelay, config.RetryBaseDelay)
	assert.Positive(t, config.HTTPTimeout)
	assert.Equal(t, 1, config.Burst)
	assert.NotNil(t, config.Logger)

	assert.Equal(t, "https://api.stripe.com", stripe.Config{}.WithDefaults().BaseURL)
}

func TestUserAgent(t *testing.T) {
	t.Parallel()

	assert.Regexp(t, `^stripe-client-go/\S+$`, stripe.UserAgent(nil))
	assert.Regexp(t, `^stripe-client-go/\S+ shop/1\.2 \(https://shop\.example\)$`,
		stripe.UserAgent(&stripe.AppInfo{Name: "shop", Version: "1.2", URL: "https://shop.example"}))
	assert.Empty(t, (&stripe.AppInfo{Version: "1"}).String())
}

func TestSlogLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := stripe.NewSlogLogger(slog.New(handler))

	logger.Debug("hidden", nil)
	logger.Info("HTTP Response", map[string]interface{}{"status": 200, "method": "GET"})

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"HTTP Response"`)
	assert.Contains(t, out, `"method":"GET","status":200`)

	var noop stripe.NoopLogger
	noop.Error("ignored", nil)
}
