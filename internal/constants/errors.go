package constants

import "errors"

// Configuration errors.
var (
	ErrNoSecretKey       = errors.New("no secret key configured, use 'stripe login' or set STRIPE_SECRET_KEY")
	ErrUnknownConfigKey  = errors.New("unknown configuration key")
	ErrInvalidOutput     = errors.New("invalid output format")
	ErrEmptySecretKey    = errors.New("secret key must not be empty")
	ErrKeychainSecretKey = errors.New("secret key could not be read from the keychain")
)

// Validation errors.
var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidMetadata  = errors.New("invalid metadata, expected KEY=VALUE")
	ErrCurrencyRequired = errors.New("--currency flag is required")
)
