package commands_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/stripe-client/cmd/stripe/commands"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

func TestRootCommandStructure(t *testing.T) {
	t.Parallel()

	rootCmd := commands.NewRootCommand(commands.NewApp(&bytes.Buffer{}, &bytes.Buffer{}, strings.NewReader("")), "dev", "none", "unknown")

	assert.Equal(t, "stripe", rootCmd.Use)

	for _, flag := range []string{"config", "api-key", "base-url", "account", "output", "query", "debug", "events-url", "profile"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), "missing flag %s", flag)
	}

	tests := []struct {
		name        string
		aliases     []string
		subcommands []string
	}{
		{name: "customers", aliases: []string{"customer", "cus"}, subcommands: []string{"create", "get", "update", "delete", "list", "search"}},
		{name: "charges", aliases: []string{"charge", "ch"}, subcommands: []string{"create", "get", "update", "capture", "list", "search"}},
		{name: "config", subcommands: []string{"show", "get", "set", "unset"}},
		{name: "login"},
		{name: "logout"},
		{name: "version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := findSubcommand(rootCmd, tt.name)
			require.NotNil(t, cmd)

			for _, alias := range tt.aliases {
				assert.Contains(t, cmd.Aliases, alias)
			}

			for _, sub := range tt.subcommands {
				assert.NotNil(t, findSubcommand(cmd, sub), "missing subcommand %s %s", tt.name, sub)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	c := newCLI(t)

	stdout, _, err := c.run("version", "-o", "json")
	require.NoError(t, err)

	var info commands.VersionInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))

	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abc1234", info.Commit)
	assert.Equal(t, "2026-01-02", info.Built)
	assert.Equal(t, stripe.APIVersion, info.APIVersion)
	assert.Contains(t, info.UserAgent, "stripe-cli/1.2.3")

	stdout, _, err = c.run("version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1.2.3")
	assert.Contains(t, stdout, stripe.APIVersion)
}

func TestOutputFormats(t *testing.T) {
	t.Parallel()

	c := newCLI(t)

	stdout, _, err := c.run("version", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "version: 1.2.3\n")

	_, _, err = c.run("version", "-o", "xml")
	require.ErrorIs(t, err, commands.ErrUnknownOutputFormat)

	stdout, _, err = c.run("version", "-q", ".commit")
	require.NoError(t, err)
	assert.Equal(t, "\"abc1234\"\n", stdout)

	_, _, err = c.run("version", "-q", ".[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid query expression")
}
