//go:build integration

package integration

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// TestCLIWorkflow_CustomerJourney drives a customer through the CLI binary.
func TestCLIWorkflow_CustomerJourney(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingBinary(t)

	runner := NewCommandRunner(config, t)
	name := GenerateTestName("cli-journey")

	stdout, stderr, err := runner.Run("-o", "json", "customers", "create",
		"--name", name, "--email", name+"@example.com", "--metadata", "source=cli")
	require.NoError(t, err, stderr)

	var customer stripe.Customer
	require.NoError(t, json.Unmarshal([]byte(stdout), &customer))

	defer runner.CleanupCustomer(customer.ID)

	t.Run("get", func(t *testing.T) {
		stdout, stderr, err := runner.Run("-o", "json", "-q", ".metadata.source", "customers", "get", customer.ID)
		require.NoError(t, err, stderr)
		assert.JSONEq(t, `"cli"`, stdout)
	})

	t.Run("table", func(t *testing.T) {
		stdout, stderr, err := runner.Run("customers", "get", customer.ID)
		require.NoError(t, err, stderr)
		assert.Contains(t, stdout, customer.ID)
	})

	t.Run("search", func(t *testing.T) {
		WaitForCondition(t, func() bool {
			stdout, _, err := runner.Run("-o", "json", "-q", "[.[].id]", "customers", "search", "email:'"+customer.Email+"'")
			if err != nil {
				return false
			}

			var ids []string

			return json.Unmarshal([]byte(stdout), &ids) == nil && len(ids) == 1 && ids[0] == customer.ID
		}, 90*time.Second, "customer becomes searchable")
	})
}

// TestCLIWorkflow_Charge creates and captures a charge through the CLI binary.
func TestCLIWorkflow_Charge(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingBinary(t)

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("-o", "json", "charges", "create",
		"--amount", "1000", "--currency", "usd", "--source", "tok_visa", "--capture=false")
	require.NoError(t, err, stderr)

	var charge stripe.Charge
	require.NoError(t, json.Unmarshal([]byte(stdout), &charge))
	assert.False(t, charge.Captured)

	stdout, stderr, err = runner.Run("-o", "yaml", "charges", "capture", charge.ID)
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "captured: true")
}

// TestCLIWorkflow_Config checks that config set survives between invocations.
func TestCLIWorkflow_Config(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingBinary(t)

	runner := NewCommandRunner(config, t)

	_, stderr, err := runner.Run("config", "set", "output", "yaml")
	require.NoError(t, err, stderr)

	stdout, stderr, err := runner.Run("version")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "api_version: ")
}
