package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
	"github.com/fivetwenty-io/stripe-client/pkg/stripetest"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestChargesClient(t *testing.T) {
	t.Parallel()

	client, server := newFakeClient(t)
	ctx := context.Background()

	customer := server.AddCustomer(stripe.Customer{Email: "payer@example.com"})

	t.Run("create, expand and capture", func(t *testing.T) {
		charge, err := client.Charges().Create(ctx, &stripe.ChargeParams{
			Amount:   stripe.Int64(2000),
			Currency: stripe.String("eur"),
			Customer: stripe.String(customer.ID),
			Capture:  stripe.Bool(false),
			Source:   stripe.String(stripetest.SourceVisa),
		})
		require.NoError(t, err)
		assert.False(t, charge.Captured)
		assert.Equal(t, stripe.ChargeStatusSucceeded, charge.Status)
		require.NotNil(t, charge.Customer)
		assert.Equal(t, customer.ID, charge.Customer.ID())
		assert.False(t, charge.Customer.IsExpanded())

		retrieve := &stripe.ChargeRetrieveParams{}
		retrieve.AddExpand("customer")

		expanded, err := client.Charges().Get(ctx, charge.ID, retrieve)
		require.NoError(t, err)
		require.True(t, expanded.Customer.IsExpanded())
		assert.Equal(t, "payer@example.com", expanded.Customer.Object().Email)

		captured, err := client.Charges().Capture(ctx, charge.ID, &stripe.ChargeCaptureParams{Amount: stripe.Int64(1500)})
		require.NoError(t, err)
		assert.True(t, captured.Captured)
		assert.Equal(t, int64(1500), captured.AmountCaptured)
		assert.Equal(t, int64(500), captured.AmountRefunded)

		_, err = client.Charges().Capture(ctx, charge.ID, nil)

		var apiErr *stripe.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, stripe.ErrorCodeChargeAlreadyCapture, apiErr.Code)
		assert.Contains(t, err.Error(), "capturing charge")
	})

	t.Run("update", func(t *testing.T) {
		charge := server.AddCharge(stripe.Charge{Amount: 500, Currency: "usd", Status: stripe.ChargeStatusSucceeded})

		update := &stripe.ChargeUpdateParams{Description: stripe.String("order 42")}
		update.AddMetadata("order", "42")

		updated, err := client.Charges().Update(ctx, charge.ID, update)
		require.NoError(t, err)
		assert.Equal(t, "order 42", updated.Description)
		assert.Equal(t, "42", updated.Metadata["order"])
	})

	t.Run("declined card", func(t *testing.T) {
		_, err := client.Charges().Create(ctx, &stripe.ChargeParams{
			Amount:   stripe.Int64(100),
			Currency: stripe.String("usd"),
			Source:   stripe.String(stripetest.SourceDeclined),
		})
		require.Error(t, err)
		assert.True(t, stripe.IsCardError(err))
		assert.False(t, stripe.IsRetryable(err))
	})

	t.Run("missing amount", func(t *testing.T) {
		_, err := client.Charges().Create(ctx, &stripe.ChargeParams{Currency: stripe.String("usd")})

		var apiErr *stripe.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatusCode)
		assert.Equal(t, "amount", apiErr.Param)
		assert.NotEmpty(t, apiErr.RequestID)
	})
}

func TestChargesClient_ListAndSearch(t *testing.T) {
	t.Parallel()

	client, server := newFakeClient(t)
	ctx := context.Background()

	first := server.AddCustomer(stripe.Customer{})
	second := server.AddCustomer(stripe.Customer{})

	for _, owner := range []*stripe.Customer{first, second, first} {
		ref := stripe.ExpandableID[stripe.Customer](owner.ID)
		server.AddCharge(stripe.Charge{Amount: 1000, Currency: "usd", Customer: &ref, Status: stripe.ChargeStatusSucceeded})
	}

	charges, err := client.Charges().ListAll(ctx, &stripe.ChargeListParams{Customer: stripe.String(first.ID)}).All()
	require.NoError(t, err)
	require.Len(t, charges, 2)

	for _, charge := range charges {
		assert.Equal(t, first.ID, charge.Customer.ID())
	}

	page, err := client.Charges().List(ctx, &stripe.ChargeListParams{ListParams: stripe.ListParams{Limit: stripe.Int64(2)}})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.True(t, page.HasMore)

	result, err := client.Charges().Search(ctx, &stripe.ChargeSearchParams{SearchParams: stripe.SearchParams{
		Query: "customer:'" + second.ID + "' AND status:'succeeded'",
	}})
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	require.NotNil(t, result.TotalCount)
	assert.Equal(t, uint64(1), *result.TotalCount)

	searched, err := client.Charges().SearchAll(ctx, &stripe.ChargeSearchParams{SearchParams: stripe.SearchParams{
		Query: "currency:'usd'",
		Limit: stripe.Int64(2),
	}}).All()
	require.NoError(t, err)
	assert.Len(t, searched, 3)
}
