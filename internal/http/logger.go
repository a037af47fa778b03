package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// leveledLogger adapts stripe.Logger to retryablehttp.LeveledLogger. The
// transport's own debug chatter is only forwarded in debug mode. Per-attempt
// failures are logged as warnings.
type leveledLogger struct {
	logger stripe.Logger
	debug  bool
}

var _ retryablehttp.LeveledLogger = (*leveledLogger)(nil)

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, kvFields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, kvFields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	if l.debug {
		l.logger.Debug(msg, kvFields(keysAndValues))
	}
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, kvFields(keysAndValues))
}

func kvFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2) //nolint:mnd

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	if len(keysAndValues)%2 == 1 {
		fields["extra"] = keysAndValues[len(keysAndValues)-1]
	}

	return fields
}

// redactHeaders flattens headers for logging, masking credentials.
func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))

	for key, values := range headers {
		value := strings.Join(values, ", ")
		if strings.EqualFold(key, constants.HeaderAuthorization) {
			value = redactAuthorization(value)
		}

		out[key] = value
	}

	return out
}

func redactAuthorization(value string) string {
	const bearer = "Bearer "

	secret := strings.TrimPrefix(value, bearer)
	if len(secret) <= constants.SecretVisiblePrefix {
		return bearer + constants.MaskedSecret
	}

	return bearer + secret[:constants.SecretVisiblePrefix] + constants.MaskedSecret
}
