package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestCustomersClient_CRUD(t *testing.T) {
	t.Parallel()

	client, _ := newFakeClient(t)
	ctx := context.Background()

	exempt := stripe.TaxExemptParamExempt
	params := &stripe.CustomerParams{
		Email:     stripe.String("jenny@example.com"),
		Name:      stripe.String("Jenny Rosen"),
		TaxExempt: &exempt,
		Address:   &stripe.AddressParams{City: stripe.String("Berlin"), Country: stripe.String("DE")},
	}
	params.AddMetadata("plan", "pro")

	created, err := client.Customers().Create(ctx, params)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "jenny@example.com", created.Email)
	assert.Equal(t, stripe.CustomerTaxExemptExempt, created.TaxExempt)
	require.NotNil(t, created.Address)
	assert.Equal(t, "Berlin", created.Address.City)
	assert.Equal(t, "pro", created.Metadata["plan"])

	fetched, err := client.Customers().Get(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)

	updated, err := client.Customers().Update(ctx, created.ID, &stripe.CustomerParams{Name: stripe.String("Jenny R.")})
	require.NoError(t, err)
	assert.Equal(t, "Jenny R.", updated.Name)
	assert.Equal(t, "jenny@example.com", updated.Email)

	deleted, err := client.Customers().Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = client.Customers().Get(ctx, created.ID, nil)
	require.Error(t, err)
	assert.True(t, stripe.IsNotFound(err))
	assert.Contains(t, err.Error(), "getting customer")
}

func TestCustomersClient_ListWithCursor(t *testing.T) {
	t.Parallel()

	client, server := newFakeClient(t)
	ctx := context.Background()

	server.AddCustomer(stripe.Customer{ID: "cus_1"})
	server.AddCustomer(stripe.Customer{ID: "cus_2"})

	page, err := client.Customers().List(ctx, &stripe.CustomerListParams{ListParams: stripe.ListParams{Limit: stripe.Int64(1)}})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "cus_1", page.Data[0].ID)
	assert.True(t, page.HasMore)

	ids := []string{}

	it := client.Customers().ListAll(ctx, &stripe.CustomerListParams{ListParams: stripe.ListParams{Limit: stripe.Int64(1)}})
	for customer, err := range it.Seq() {
		require.NoError(t, err)

		ids = append(ids, customer.ID)
	}

	assert.Equal(t, []string{"cus_1", "cus_2"}, ids)

	requests := server.RequestsTo(http.MethodGet, "/v1/customers")
	require.Len(t, requests, 3)
	assert.Equal(t, "limit=1&starting_after=cus_1", requests[2].Query)
}

func TestCustomersClient_ListReverse(t *testing.T) {
	t.Parallel()

	client, server := newFakeClient(t)

	for _, id := range []string{"cus_a", "cus_b", "cus_c", "cus_d"} {
		server.AddCustomer(stripe.Customer{ID: id})
	}

	params := &stripe.CustomerListParams{ListParams: stripe.ListParams{
		Limit:  stripe.Int64(2),
		Cursor: stripe.EndingBefore("cus_d"),
	}}

	all, err := client.Customers().ListAll(context.Background(), params).All()
	require.NoError(t, err)

	ids := make([]string, 0, len(all))
	for _, customer := range all {
		ids = append(ids, customer.ID)
	}

	assert.Equal(t, []string{"cus_b", "cus_c", "cus_a"}, ids)
	assert.Equal(t, "cus_b", params.Cursor.ID())
	assert.True(t, params.Cursor.Reverse())
}

func TestCustomersClient_Search(t *testing.T) {
	t.Parallel()

	client, server := newFakeClient(t)

	for _, email := range []string{"a@example.com", "b@example.com", "c@other.com"} {
		server.AddCustomer(stripe.Customer{Email: email})
	}

	params := &stripe.CustomerSearchParams{SearchParams: stripe.SearchParams{
		Query: "email~'example.com'",
		Limit: stripe.Int64(1),
	}}

	first, err := client.Customers().Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, first.Data, 1)
	assert.True(t, first.HasMore)
	require.NotNil(t, first.NextPage)

	all, err := client.Customers().SearchAll(context.Background(), &stripe.CustomerSearchParams{SearchParams: stripe.SearchParams{
		Query: "email~'example.com'",
		Limit: stripe.Int64(1),
	}}).All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a@example.com", all[0].Email)
	assert.Equal(t, "b@example.com", all[1].Email)
}
