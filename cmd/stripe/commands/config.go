package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ErrUnknownConfigKey is returned for keys the config file does not hold.
var ErrUnknownConfigKey = errors.New("unknown configuration key")

// configurableKeys lists the keys persisted in the config file. The secret
// key lives in the keychain.
var configurableKeys = []string{keyBaseURL, keyAccount, keyOutput, keyEventsURL, keyProfile}

// Config is the persisted CLI configuration.
type Config struct {
	BaseURL   string `json:"base_url,omitempty"   yaml:"base_url,omitempty"`
	Account   string `json:"account,omitempty"    yaml:"account,omitempty"`
	Output    string `json:"output,omitempty"     yaml:"output,omitempty"`
	EventsURL string `json:"events_url,omitempty" yaml:"events_url,omitempty"`
	Profile   string `json:"profile,omitempty"    yaml:"profile,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in the CLI config file",
	}

	cmd.AddCommand(newConfigShowCommand(app))
	cmd.AddCommand(newConfigGetCommand(app))
	cmd.AddCommand(newConfigSetCommand(app))
	cmd.AddCommand(newConfigUnsetCommand(app))

	return cmd
}

func newConfigShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration, flags and environment included",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := app.effectiveConfig()

			return app.render(config, func(table *tablewriter.Table) error {
				table.Header("Key", "Value")
				_ = table.Append(keyBaseURL, formatValue(config.BaseURL))
				_ = table.Append(keyAccount, formatValue(config.Account))
				_ = table.Append(keyOutput, formatValue(config.Output))
				_ = table.Append(keyEventsURL, formatValue(config.EventsURL))
				_ = table.Append(keyProfile, formatValue(config.Profile))

				return nil
			})
		},
	}
}

func newConfigGetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := normalizeConfigKey(args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(app.out, app.viper.GetString(key))

			return err //nolint:wrapcheck
		},
	}
}

func newConfigSetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := normalizeConfigKey(args[0])
			if err != nil {
				return err
			}

			if key == keyOutput && !slices.Contains([]string{OutputFormatTable, OutputFormatJSON, OutputFormatYAML}, args[1]) {
				return fmt.Errorf("%w: %q", ErrUnknownOutputFormat, args[1])
			}

			app.viper.Set(key, args[1])

			err = app.saveConfig()
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(app.out, "Set %s = %s\n", key, args[1])

			return err //nolint:wrapcheck
		},
	}
}

func newConfigUnsetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := normalizeConfigKey(args[0])
			if err != nil {
				return err
			}

			app.viper.Set(key, "")

			err = app.saveConfig()
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(app.out, "Unset %s\n", key)

			return err //nolint:wrapcheck
		},
	}
}

func normalizeConfigKey(key string) (string, error) {
	normalized := strings.ReplaceAll(strings.ToLower(key), "-", "_")
	if !slices.Contains(configurableKeys, normalized) {
		return "", fmt.Errorf("%w: %q (valid keys: %s)", ErrUnknownConfigKey, key, strings.Join(configurableKeys, ", "))
	}

	return normalized, nil
}

func (a *App) effectiveConfig() Config {
	return Config{
		BaseURL:   a.viper.GetString(keyBaseURL),
		Account:   a.viper.GetString(keyAccount),
		Output:    a.viper.GetString(keyOutput),
		EventsURL: a.viper.GetString(keyEventsURL),
		Profile:   a.viper.GetString(keyProfile),
	}
}

// saveConfig writes the configurable keys to the config file. Explicit flag
// and environment overrides of the current invocation are written too.
func (a *App) saveConfig() error {
	configFile, err := a.configFile()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), 0o700)
	if err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	persisted := make(map[string]interface{}, len(configurableKeys))

	for _, key := range configurableKeys {
		if !a.viper.IsSet(key) {
			continue
		}

		if value := a.viper.GetString(key); value != "" {
			persisted[key] = value
		}
	}

	data, err := yaml.Marshal(persisted)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	err = os.WriteFile(configFile, data, 0o600)
	if err != nil {
		return fmt.Errorf("writing config %s: %w", configFile, err)
	}

	return nil
}
