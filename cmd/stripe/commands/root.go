package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
	"github.com/fivetwenty-io/stripe-client/pkg/stripeclient"
)

const (
	configDirName  = ".stripe-client"
	configFileName = "config.yml"
	envPrefix      = "STRIPE"
)

// Viper keys. Each is also reachable as STRIPE_<KEY> in the environment.
const (
	keyConfig    = "config"
	keySecretKey = "secret_key"
	keyBaseURL   = "base_url"
	keyAccount   = "account"
	keyOutput    = "output"
	keyQuery     = "query"
	keyDebug     = "debug"
	keyEventsURL = "events_url"
	keyProfile   = "profile"
)

// App carries the state shared by every command of one CLI invocation.
type App struct {
	viper  *viper.Viper
	out    io.Writer
	errOut io.Writer
	in     io.Reader

	conn *nats.Conn
}

// NewApp creates an App writing to out and errOut.
func NewApp(out, errOut io.Writer, in io.Reader) *App {
	return &App{
		viper:  viper.New(),
		out:    out,
		errOut: errOut,
		in:     in,
	}
}

// NewRootCommand creates the stripe command tree.
func NewRootCommand(app *App, version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stripe",
		Short: "Payments API CLI",
		Long: `A command-line interface for the payments API.

Manage customers and charges, inspect API errors and script against the
API with JSON output and jq filters.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.initConfig(cmd)
		},
	}

	rootCmd.SetOut(app.out)
	rootCmd.SetErr(app.errOut)
	rootCmd.SetIn(app.in)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.stripe-client/config.yml)")
	flags.StringP("api-key", "k", "", "secret API key")
	flags.String("base-url", "", "API base URL")
	flags.String("account", "", "connected account (Stripe-Account header)")
	flags.StringP("output", "o", "table", "output format (table, json, yaml)")
	flags.StringP("query", "q", "", "jq expression applied to JSON output")
	flags.Bool("debug", false, "log HTTP requests and responses to stderr")
	flags.String("events-url", "", "NATS server receiving one event per API call")
	flags.String("profile", defaultProfile, "keychain profile holding the secret key")

	rootCmd.AddCommand(NewVersionCommand(app, version, commit, date))
	rootCmd.AddCommand(NewConfigCommand(app))
	rootCmd.AddCommand(NewLoginCommand(app))
	rootCmd.AddCommand(NewLogoutCommand(app))
	rootCmd.AddCommand(NewCustomersCommand(app))
	rootCmd.AddCommand(NewChargesCommand(app))

	return rootCmd
}

// bindFlags exposes every persistent flag to viper under its underscore key.
func (a *App) bindFlags(flags *pflag.FlagSet) error {
	var bindErr error

	flags.VisitAll(func(flag *pflag.Flag) {
		key := strings.ReplaceAll(flag.Name, "-", "_")
		if flag.Name == "api-key" {
			key = keySecretKey
		}

		err := a.viper.BindPFlag(key, flag)
		if err != nil && bindErr == nil {
			bindErr = fmt.Errorf("binding flag %s: %w", flag.Name, err)
		}
	})

	return bindErr
}

func (a *App) initConfig(cmd *cobra.Command) error {
	err := a.bindFlags(cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}

	err = godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	a.viper.SetEnvPrefix(envPrefix)
	a.viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.viper.AutomaticEnv()

	configFile, err := a.configFile()
	if err != nil {
		return err
	}

	a.viper.SetConfigFile(configFile)
	a.viper.SetConfigType("yml")

	err = a.viper.ReadInConfig()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config %s: %w", configFile, err)
		}
	}

	return nil
}

// configFile returns the config path from --config or the default location.
func (a *App) configFile() (string, error) {
	if cfgFile := a.viper.GetString(keyConfig); cfgFile != "" {
		return cfgFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}

	return filepath.Join(home, configDirName, configFileName), nil
}

// Client builds an API client from flags, environment, config file and the
// keychain, in that order of precedence.
func (a *App) Client() (stripe.Client, error) {
	secretKey := a.viper.GetString(keySecretKey)
	if secretKey == "" {
		stored, err := loadSecretKey(a.viper.GetString(keyProfile))
		if err != nil {
			return nil, err
		}

		secretKey = stored
	}

	config := &stripe.Config{
		SecretKey:     secretKey,
		BaseURL:       a.viper.GetString(keyBaseURL),
		StripeAccount: a.viper.GetString(keyAccount),
		Debug:         a.viper.GetBool(keyDebug),
		AppInfo:       &stripe.AppInfo{Name: "stripe-cli"},
	}

	if config.Debug {
		config.Logger = stripe.NewSlogLogger(slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if eventsURL := a.viper.GetString(keyEventsURL); eventsURL != "" {
		conn, err := stripe.ConnectNATS(eventsURL)
		if err != nil {
			return nil, err
		}

		a.conn = conn
		config.Interceptors = stripe.NewInterceptorChain()
		stripe.NewNATSEventPublisher(conn, "", config.Logger).Attach(config.Interceptors)
	}

	client, err := stripeclient.New(config)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return client, nil
}

// Execute runs rootCmd and closes the App afterwards, whether or not the
// command failed.
func (a *App) Execute(ctx context.Context, rootCmd *cobra.Command) error {
	defer a.Close()

	return rootCmd.ExecuteContext(ctx) //nolint:wrapcheck
}

// Close releases connections opened by Client.
func (a *App) Close() {
	if a.conn != nil {
		// Flush pending events before exit.
		_ = a.conn.Drain()
		a.conn = nil
	}
}
