package commands_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
	"github.com/fivetwenty-io/stripe-client/pkg/stripetest"
)

func newServerCLI(t *testing.T) (*stripetest.Server, *cli, []string) {
	t.Helper()

	server := stripetest.NewServer("")
	t.Cleanup(server.Close)

	return server, newCLI(t), []string{"--api-key", server.SecretKey(), "--base-url", server.URL, "-o", "json"}
}

func TestCustomersCommands(t *testing.T) { //nolint:funlen // Test functions can be longer for comprehensive testing
	t.Parallel()

	server, c, global := newServerCLI(t)

	t.Run("create", func(t *testing.T) {
		stdout, _, err := c.run(append(global, "customers", "create",
			"--email", "ann@example.com", "--name", "Ann", "--tax-exempt", "exempt", "--metadata", "plan=pro")...)
		require.NoError(t, err)

		var customer stripe.Customer
		require.NoError(t, json.Unmarshal([]byte(stdout), &customer))

		assert.NotEmpty(t, customer.ID)
		assert.Equal(t, "ann@example.com", customer.Email)
		assert.Equal(t, stripe.CustomerTaxExemptExempt, customer.TaxExempt)
		assert.Equal(t, map[string]string{"plan": "pro"}, customer.Metadata)

		requests := server.RequestsTo("POST", "/v1/customers")
		require.Len(t, requests, 1)
		assert.Contains(t, requests[0].Body, "email=ann%40example.com")
		assert.Contains(t, requests[0].Body, "metadata[plan]=pro")
	})

	t.Run("create rejects unknown tax exemption", func(t *testing.T) {
		_, _, err := c.run(append(global, "customers", "create", "--tax-exempt", "sometimes")...)
		require.Error(t, err)
	})

	first := server.AddCustomer(stripe.Customer{Email: "bob@example.com", Name: "Bob"})
	second := server.AddCustomer(stripe.Customer{Email: "cy@example.org", Name: "Cy"})

	t.Run("get several", func(t *testing.T) {
		stdout, _, err := c.run(append(global, "customers", "get", first.ID, second.ID, "--concurrency", "2")...)
		require.NoError(t, err)

		var customers []stripe.Customer
		require.NoError(t, json.Unmarshal([]byte(stdout), &customers))
		require.Len(t, customers, 2)
		assert.Equal(t, first.ID, customers[0].ID)
		assert.Equal(t, second.ID, customers[1].ID)
	})

	t.Run("get missing", func(t *testing.T) {
		_, _, err := c.run(append(global, "customers", "get", "cus_missing")...)
		require.Error(t, err)
		assert.True(t, stripe.IsNotFound(err))
	})

	t.Run("update", func(t *testing.T) {
		stdout, _, err := c.run(append(global, "customers", "update", first.ID, "--name", "Robert")...)
		require.NoError(t, err)

		var customer stripe.Customer
		require.NoError(t, json.Unmarshal([]byte(stdout), &customer))
		assert.Equal(t, "Robert", customer.Name)
		assert.Equal(t, "bob@example.com", customer.Email)
	})

	t.Run("list with query", func(t *testing.T) {
		stdout, _, err := c.run(append(global, "customers", "list", "--all", "-q", "[.[].email]")...)
		require.NoError(t, err)

		var emails []string
		require.NoError(t, json.Unmarshal([]byte(stdout), &emails))
		assert.ElementsMatch(t, []string{"ann@example.com", "bob@example.com", "cy@example.org"}, emails)
	})

	t.Run("list first page", func(t *testing.T) {
		stdout, _, err := c.run(append(global, "customers", "list", "--limit", "1")...)
		require.NoError(t, err)

		var customers []stripe.Customer
		require.NoError(t, json.Unmarshal([]byte(stdout), &customers))
		assert.Len(t, customers, 1)
	})

	t.Run("list rejects both cursors", func(t *testing.T) {
		_, _, err := c.run(append(global, "customers", "list", "--starting-after", "a", "--ending-before", "b")...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "starting-after")
	})

	t.Run("search", func(t *testing.T) {
		stdout, _, err := c.run(append(global, "customers", "search", "email~'example.org'", "--all")...)
		require.NoError(t, err)

		var customers []stripe.Customer
		require.NoError(t, json.Unmarshal([]byte(stdout), &customers))
		require.Len(t, customers, 1)
		assert.Equal(t, second.ID, customers[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		stdout, _, err := c.run(append(global, "customers", "delete", second.ID)...)
		require.NoError(t, err)

		var deleted stripe.DeletedObject
		require.NoError(t, json.Unmarshal([]byte(stdout), &deleted))
		assert.True(t, deleted.Deleted)
		assert.Equal(t, second.ID, deleted.ID)
	})
}

func TestCustomersTableOutput(t *testing.T) {
	t.Parallel()

	server, c, _ := newServerCLI(t)
	global := []string{"--api-key", server.SecretKey(), "--base-url", server.URL}

	stdout, _, err := c.run(append(global, "customers", "list")...)
	require.NoError(t, err)
	assert.Equal(t, "No customers found\n", stdout)

	server.AddCustomer(stripe.Customer{Email: "dee@example.com"})
	server.AddCustomer(stripe.Customer{Email: "eve@example.com"})

	stdout, _, err = c.run(append(global, "customers", "list", "--limit", "1")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "@example.com")
	assert.Contains(t, stdout, "More results available")
}

func TestCustomersUnauthorized(t *testing.T) {
	t.Parallel()

	server := stripetest.NewServer("")
	defer server.Close()

	c := newCLI(t)

	_, _, err := c.run("--api-key", "sk_test_wrong", "--base-url", server.URL, "customers", "list")
	require.Error(t, err)
	assert.True(t, stripe.IsUnauthorized(err))
}
