package commands_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
	"github.com/fivetwenty-io/stripe-client/pkg/stripetest"
)

func decodeCharge(t *testing.T, stdout string) stripe.Charge {
	t.Helper()

	var charge stripe.Charge
	require.NoError(t, json.Unmarshal([]byte(stdout), &charge))

	return charge
}

func TestChargesCommands(t *testing.T) { //nolint:funlen // Test functions can be longer for comprehensive testing
	t.Parallel()

	server, c, global := newServerCLI(t)
	customer := server.AddCustomer(stripe.Customer{Email: "payer@example.com", Name: "Payer"})

	var uncaptured stripe.Charge

	t.Run("create uncaptured", func(t *testing.T) {
		stdout, _, err := c.run(append(global, "charges", "create",
			"--amount", "2000", "--currency", "usd", "--customer", customer.ID, "--capture=false", "--metadata", "order=42")...)
		require.NoError(t, err)

		uncaptured = decodeCharge(t, stdout)
		assert.Equal(t, int64(2000), uncaptured.Amount)
		assert.False(t, uncaptured.Captured)
		assert.Equal(t, customer.ID, uncaptured.Customer.ID())
		assert.Equal(t, "42", uncaptured.Metadata["order"])

		requests := server.RequestsTo("POST", "/v1/charges")
		require.Len(t, requests, 1)
		assert.Contains(t, requests[0].Body, "capture=false")
		assert.NotEmpty(t, requests[0].Headers.Get("Idempotency-Key"))
	})

	t.Run("create requires amount", func(t *testing.T) {
		_, _, err := c.run(append(global, "charges", "create", "--currency", "usd")...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "amount")
	})

	t.Run("declined card", func(t *testing.T) {
		_, _, err := c.run(append(global, "charges", "create",
			"--amount", "500", "--currency", "usd", "--source", stripetest.SourceDeclined)...)
		require.Error(t, err)
		assert.True(t, stripe.IsCardError(err))
	})

	t.Run("get expanded", func(t *testing.T) {
		stdout, _, err := c.run(append(global, "charges", "get", uncaptured.ID, "--expand", "customer")...)
		require.NoError(t, err)

		charge := decodeCharge(t, stdout)
		require.NotNil(t, charge.Customer)
		require.True(t, charge.Customer.IsExpanded())
		assert.Equal(t, "payer@example.com", charge.Customer.Object().Email)
	})

	t.Run("update", func(t *testing.T) {
		stdout, _, err := c.run(append(global, "charges", "update", uncaptured.ID, "--description", "Order 42")...)
		require.NoError(t, err)
		assert.Equal(t, "Order 42", decodeCharge(t, stdout).Description)
	})

	t.Run("partial capture", func(t *testing.T) {
		stdout, _, err := c.run(append(global, "charges", "capture", uncaptured.ID, "--amount", "1500")...)
		require.NoError(t, err)

		charge := decodeCharge(t, stdout)
		assert.True(t, charge.Captured)
		assert.Equal(t, int64(1500), charge.AmountCaptured)

		_, _, err = c.run(append(global, "charges", "capture", uncaptured.ID)...)
		require.Error(t, err)

		var apiErr *stripe.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, stripe.ErrorCodeChargeAlreadyCapture, apiErr.Code)
	})

	t.Run("list by customer", func(t *testing.T) {
		_, _, err := c.run(append(global, "charges", "create", "--amount", "700", "--currency", "eur")...)
		require.NoError(t, err)

		stdout, _, err := c.run(append(global, "charges", "list", "--customer", customer.ID, "--all")...)
		require.NoError(t, err)

		var charges []stripe.Charge
		require.NoError(t, json.Unmarshal([]byte(stdout), &charges))
		require.Len(t, charges, 1)
		assert.Equal(t, uncaptured.ID, charges[0].ID)
	})

	t.Run("table output", func(t *testing.T) {
		stdout, _, err := c.run("--api-key", server.SecretKey(), "--base-url", server.URL, "charges", "get", uncaptured.ID)
		require.NoError(t, err)
		assert.Contains(t, stdout, "20.00 usd")
		assert.Contains(t, stdout, customer.ID)
	})
}
