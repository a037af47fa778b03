package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

const chargesPath = "/v1/charges"

// ChargesClient implements stripe.ChargesClient.
type ChargesClient struct {
	backend stripe.Backend
}

// NewChargesClient creates a new charges client.
func NewChargesClient(backend stripe.Backend) *ChargesClient {
	return &ChargesClient{
		backend: backend,
	}
}

func chargePath(id string) string {
	return chargesPath + "/" + url.PathEscape(id)
}

// Create implements stripe.ChargesClient.Create.
func (c *ChargesClient) Create(ctx context.Context, params *stripe.ChargeParams, opts ...stripe.RequestOption) (*stripe.Charge, error) {
	var charge stripe.Charge

	err := c.backend.SendForm(ctx, http.MethodPost, chargesPath, params, &charge, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating charge: %w", err)
	}

	return &charge, nil
}

// Get implements stripe.ChargesClient.Get.
func (c *ChargesClient) Get(ctx context.Context, id string, params *stripe.ChargeRetrieveParams, opts ...stripe.RequestOption) (*stripe.Charge, error) {
	var charge stripe.Charge

	err := c.backend.GetQuery(ctx, chargePath(id), params, &charge, opts...)
	if err != nil {
		return nil, fmt.Errorf("getting charge: %w", err)
	}

	return &charge, nil
}

// Update implements stripe.ChargesClient.Update.
func (c *ChargesClient) Update(ctx context.Context, id string, params *stripe.ChargeUpdateParams, opts ...stripe.RequestOption) (*stripe.Charge, error) {
	var charge stripe.Charge

	err := c.backend.SendForm(ctx, http.MethodPost, chargePath(id), params, &charge, opts...)
	if err != nil {
		return nil, fmt.Errorf("updating charge: %w", err)
	}

	return &charge, nil
}

// Capture implements stripe.ChargesClient.Capture.
func (c *ChargesClient) Capture(ctx context.Context, id string, params *stripe.ChargeCaptureParams, opts ...stripe.RequestOption) (*stripe.Charge, error) {
	var charge stripe.Charge

	err := c.backend.SendForm(ctx, http.MethodPost, chargePath(id)+"/capture", params, &charge, opts...)
	if err != nil {
		return nil, fmt.Errorf("capturing charge: %w", err)
	}

	return &charge, nil
}

// List implements stripe.ChargesClient.List.
func (c *ChargesClient) List(ctx context.Context, params *stripe.ChargeListParams, opts ...stripe.RequestOption) (*stripe.ListResponse[stripe.Charge], error) {
	var result stripe.ListResponse[stripe.Charge]

	err := c.backend.GetQuery(ctx, chargesPath, params, &result, opts...)
	if err != nil {
		return nil, fmt.Errorf("listing charges: %w", err)
	}

	return &result, nil
}

// ListAll implements stripe.ChargesClient.ListAll.
func (c *ChargesClient) ListAll(ctx context.Context, params *stripe.ChargeListParams, opts ...stripe.RequestOption) *stripe.ListIterator[stripe.Charge] {
	if params == nil {
		params = &stripe.ChargeListParams{}
	}

	return stripe.NewListIterator[stripe.Charge](ctx, c.backend, chargesPath, params, opts...)
}

// Search implements stripe.ChargesClient.Search.
func (c *ChargesClient) Search(ctx context.Context, params *stripe.ChargeSearchParams, opts ...stripe.RequestOption) (*stripe.SearchResult[stripe.Charge], error) {
	var result stripe.SearchResult[stripe.Charge]

	err := c.backend.GetQuery(ctx, chargesPath+"/search", params, &result, opts...)
	if err != nil {
		return nil, fmt.Errorf("searching charges: %w", err)
	}

	return &result, nil
}

// SearchAll implements stripe.ChargesClient.SearchAll.
func (c *ChargesClient) SearchAll(ctx context.Context, params *stripe.ChargeSearchParams, opts ...stripe.RequestOption) *stripe.ListIterator[stripe.Charge] {
	if params == nil {
		params = &stripe.ChargeSearchParams{}
	}

	return stripe.NewSearchIterator[stripe.Charge](ctx, c.backend, chargesPath+"/search", params, opts...)
}
