package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

const customersPath = "/v1/customers"

// CustomersClient implements stripe.CustomersClient.
type CustomersClient struct {
	backend stripe.Backend
}

// NewCustomersClient creates a new customers client.
func NewCustomersClient(backend stripe.Backend) *CustomersClient {
	return &CustomersClient{
		backend: backend,
	}
}

func customerPath(id string) string {
	return customersPath + "/" + url.PathEscape(id)
}

// Create implements stripe.CustomersClient.Create.
func (c *CustomersClient) Create(ctx context.Context, params *stripe.CustomerParams, opts ...stripe.RequestOption) (*stripe.Customer, error) {
	var customer stripe.Customer

	err := c.backend.SendForm(ctx, http.MethodPost, customersPath, params, &customer, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating customer: %w", err)
	}

	return &customer, nil
}

// Get implements stripe.CustomersClient.Get.
func (c *CustomersClient) Get(ctx context.Context, id string, params *stripe.CustomerRetrieveParams, opts ...stripe.RequestOption) (*stripe.Customer, error) {
	var customer stripe.Customer

	err := c.backend.GetQuery(ctx, customerPath(id), params, &customer, opts...)
	if err != nil {
		return nil, fmt.Errorf("getting customer: %w", err)
	}

	return &customer, nil
}

// Update implements stripe.CustomersClient.Update.
func (c *CustomersClient) Update(ctx context.Context, id string, params *stripe.CustomerParams, opts ...stripe.RequestOption) (*stripe.Customer, error) {
	var customer stripe.Customer

	err := c.backend.SendForm(ctx, http.MethodPost, customerPath(id), params, &customer, opts...)
	if err != nil {
		return nil, fmt.Errorf("updating customer: %w", err)
	}

	return &customer, nil
}

// Delete implements stripe.CustomersClient.Delete.
func (c *CustomersClient) Delete(ctx context.Context, id string, opts ...stripe.RequestOption) (*stripe.DeletedObject, error) {
	var deleted stripe.DeletedObject

	err := c.backend.SendForm(ctx, http.MethodDelete, customerPath(id), nil, &deleted, opts...)
	if err != nil {
		return nil, fmt.Errorf("deleting customer: %w", err)
	}

	return &deleted, nil
}

// List implements stripe.CustomersClient.List.
func (c *CustomersClient) List(ctx context.Context, params *stripe.CustomerListParams, opts ...stripe.RequestOption) (*stripe.ListResponse[stripe.Customer], error) {
	var result stripe.ListResponse[stripe.Customer]

	err := c.backend.GetQuery(ctx, customersPath, params, &result, opts...)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}

	return &result, nil
}

// ListAll implements stripe.CustomersClient.ListAll.
func (c *CustomersClient) ListAll(ctx context.Context, params *stripe.CustomerListParams, opts ...stripe.RequestOption) *stripe.ListIterator[stripe.Customer] {
	if params == nil {
		params = &stripe.CustomerListParams{}
	}

	return stripe.NewListIterator[stripe.Customer](ctx, c.backend, customersPath, params, opts...)
}

// Search implements stripe.CustomersClient.Search.
func (c *CustomersClient) Search(ctx context.Context, params *stripe.CustomerSearchParams, opts ...stripe.RequestOption) (*stripe.SearchResult[stripe.Customer], error) {
	var result stripe.SearchResult[stripe.Customer]

	err := c.backend.GetQuery(ctx, customersPath+"/search", params, &result, opts...)
	if err != nil {
		return nil, fmt.Errorf("searching customers: %w", err)
	}

	return &result, nil
}

// SearchAll implements stripe.CustomersClient.SearchAll.
func (c *CustomersClient) SearchAll(ctx context.Context, params *stripe.CustomerSearchParams, opts ...stripe.RequestOption) *stripe.ListIterator[stripe.Customer] {
	if params == nil {
		params = &stripe.CustomerSearchParams{}
	}

	return stripe.NewSearchIterator[stripe.Customer](ctx, c.backend, customersPath+"/search", params, opts...)
}
