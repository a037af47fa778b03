package commands_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/stripe-client/cmd/stripe/commands"
)

func TestConfigCommands(t *testing.T) { //nolint:funlen // Test functions can be longer for comprehensive testing
	t.Parallel()

	c := newCLI(t)

	t.Run("set persists only explicit keys", func(t *testing.T) {
		stdout, _, err := c.run("config", "set", "base-url", "http://localhost:12111")
		require.NoError(t, err)
		assert.Equal(t, "Set base_url = http://localhost:12111\n", stdout)

		data, err := os.ReadFile(c.configFile)
		require.NoError(t, err)

		var persisted map[string]string
		require.NoError(t, yaml.Unmarshal(data, &persisted))
		assert.Equal(t, map[string]string{"base_url": "http://localhost:12111"}, persisted)

		info, err := os.Stat(c.configFile)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("get", func(t *testing.T) {
		stdout, _, err := c.run("config", "get", "base_url")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:12111\n", stdout)
	})

	t.Run("set output", func(t *testing.T) {
		_, _, err := c.run("config", "set", "output", "xml")
		require.ErrorIs(t, err, commands.ErrUnknownOutputFormat)

		_, _, err = c.run("config", "set", "output", "json")
		require.NoError(t, err)

		stdout, _, err := c.run("config", "get", "output")
		require.NoError(t, err)
		assert.Equal(t, "json\n", stdout)
	})

	t.Run("show uses configured output", func(t *testing.T) {
		stdout, _, err := c.run("config", "show", "--account", "acct_123")
		require.NoError(t, err)

		var config commands.Config
		require.NoError(t, json.Unmarshal([]byte(stdout), &config))
		assert.Equal(t, "http://localhost:12111", config.BaseURL)
		assert.Equal(t, "acct_123", config.Account)
		assert.Equal(t, "json", config.Output)
		assert.Equal(t, "default", config.Profile)
	})

	t.Run("unset", func(t *testing.T) {
		_, _, err := c.run("config", "unset", "base_url")
		require.NoError(t, err)

		stdout, _, err := c.run("config", "get", "base_url")
		require.NoError(t, err)
		assert.Equal(t, "\n", stdout)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, _, err := c.run("config", "get", "secret_key")
		require.ErrorIs(t, err, commands.ErrUnknownConfigKey)
	})
}
