package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
	"github.com/fivetwenty-io/stripe-client/pkg/stripeclient"
)

// NewLoginCommand creates the login command.
func NewLoginCommand(app *App) *cobra.Command {
	var skipVerify bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a secret key in the keychain",
		Long: `Store a secret API key in the system keychain.

The key is taken from --api-key or STRIPE_SECRET_KEY, or read from the
terminal without echo. Unless --skip-verify is set the key is checked with
one API call before it is stored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			secretKey := app.viper.GetString(keySecretKey)
			if secretKey == "" {
				prompted, err := app.promptSecretKey()
				if err != nil {
					return err
				}

				secretKey = prompted
			}

			secretKey = strings.TrimSpace(secretKey)
			if secretKey == "" {
				return ErrEmptySecretKey
			}

			if !strings.HasPrefix(secretKey, "sk_") && !strings.HasPrefix(secretKey, "rk_") {
				return ErrInvalidKeyShape
			}

			if !skipVerify {
				err := app.verifySecretKey(cmd.Context(), secretKey)
				if err != nil {
					return err
				}
			}

			profile := profileOrDefault(app.viper.GetString(keyProfile))

			err := storeSecretKey(profile, secretKey)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(app.out, "Secret key %s stored for profile '%s'\n", maskSecretKey(secretKey), profile)

			return err //nolint:wrapcheck
		},
	}

	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "store the key without calling the API")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored secret key",
		Long:  "Delete the secret key of the current profile from the system keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := profileOrDefault(app.viper.GetString(keyProfile))

			removed, err := deleteSecretKey(profile)
			if err != nil {
				return err
			}

			if !removed {
				_, err = fmt.Fprintf(app.out, "No secret key stored for profile '%s'\n", profile)

				return err //nolint:wrapcheck
			}

			_, err = fmt.Fprintln(app.out, "Successfully logged out")

			return err //nolint:wrapcheck
		},
	}
}

// promptSecretKey reads a key without echo from a terminal, or a single line
// from any other input.
func (a *App) promptSecretKey() (string, error) {
	if file, ok := a.in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		_, _ = fmt.Fprint(a.errOut, "Secret key: ")

		secret, err := term.ReadPassword(int(file.Fd()))

		_, _ = fmt.Fprintln(a.errOut)

		if err != nil {
			return "", fmt.Errorf("failed to read secret key: %w", err)
		}

		return string(secret), nil
	}

	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && line == "" {
		return "", ErrEmptySecretKey
	}

	return line, nil
}

func (a *App) verifySecretKey(ctx context.Context, secretKey string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := stripeclient.New(&stripe.Config{
		SecretKey: secretKey,
		BaseURL:   a.viper.GetString(keyBaseURL),
		AppInfo:   &stripe.AppInfo{Name: "stripe-cli"},
	})
	if err != nil {
		return err //nolint:wrapcheck
	}

	_, err = client.Customers().List(ctx, &stripe.CustomerListParams{ListParams: stripe.ListParams{Limit: stripe.Int64(1)}})
	if err != nil {
		return fmt.Errorf("verifying secret key: %w", err)
	}

	return nil
}

func maskSecretKey(secretKey string) string {
	const visible = 4

	prefix, _, found := strings.Cut(secretKey, "_")
	if !found || len(secretKey) <= visible {
		return Masked
	}

	rest := strings.TrimPrefix(secretKey, prefix+"_")
	if mode, _, ok := strings.Cut(rest, "_"); ok {
		prefix += "_" + mode
	}

	return prefix + "_" + Masked + secretKey[len(secretKey)-visible:]
}
