package commands

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	// keychainService is the service name used for keychain entries.
	keychainService = "stripe-client"

	defaultProfile = "default"
)

// Keychain errors.
var (
	ErrNotLoggedIn     = errors.New("no secret key configured: run 'stripe login' or pass --api-key")
	ErrEmptySecretKey  = errors.New("secret key must not be empty")
	ErrInvalidKeyShape = errors.New("secret key must start with sk_ or rk_")
)

func profileOrDefault(profile string) string {
	if profile == "" {
		return defaultProfile
	}

	return profile
}

// loadSecretKey reads the secret key stored for profile.
func loadSecretKey(profile string) (string, error) {
	value, err := keyring.Get(keychainService, profileOrDefault(profile))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotLoggedIn
		}

		return "", fmt.Errorf("keychain error: %w", err)
	}

	return value, nil
}

// storeSecretKey saves the secret key for profile.
func storeSecretKey(profile, secretKey string) error {
	err := keyring.Set(keychainService, profileOrDefault(profile), secretKey)
	if err != nil {
		return fmt.Errorf("keychain error: %w", err)
	}

	return nil
}

// deleteSecretKey removes the secret key for profile. A missing entry is not
// an error.
func deleteSecretKey(profile string) (bool, error) {
	err := keyring.Delete(keychainService, profileOrDefault(profile))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return false, nil
		}

		return false, fmt.Errorf("keychain error: %w", err)
	}

	return true, nil
}
