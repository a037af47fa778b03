package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"

	"github.com/fivetwenty-io/stripe-client/cmd/stripe/commands"
)

func TestMain(m *testing.M) {
	keyring.MockInit()

	os.Exit(m.Run())
}

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// cli runs one CLI invocation with an isolated config file.
type cli struct {
	configFile string
	stdin      string
}

func newCLI(t *testing.T) *cli {
	t.Helper()

	return &cli{configFile: filepath.Join(t.TempDir(), "config.yml")}
}

func (c *cli) run(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer

	app := commands.NewApp(&stdout, &stderr, strings.NewReader(c.stdin))
	rootCmd := commands.NewRootCommand(app, "1.2.3", "abc1234", "2026-01-02")
	rootCmd.SetArgs(append([]string{"--config", c.configFile}, args...))

	err := app.Execute(context.Background(), rootCmd)

	return stdout.String(), stderr.String(), err
}
