package stripe

import (
	"context"
)

// Backend is the transport-facing surface every resource client and the
// pagination engine funnel into.
type Backend interface {
	// GetQuery encodes params as a query string, issues a GET and decodes
	// the JSON response into out.
	GetQuery(ctx context.Context, path string, params interface{}, out interface{}, opts ...RequestOption) error
	// SendForm encodes params as a form body, issues method (POST or
	// DELETE) and decodes the JSON response into out.
	SendForm(ctx context.Context, method, path string, params interface{}, out interface{}, opts ...RequestOption) error
}

// CustomersClient manages customers.
type CustomersClient interface {
	Create(ctx context.Context, params *CustomerParams, opts ...RequestOption) (*Customer, error)
	Get(ctx context.Context, id string, params *CustomerRetrieveParams, opts ...RequestOption) (*Customer, error)
	Update(ctx context.Context, id string, params *CustomerParams, opts ...RequestOption) (*Customer, error)
	Delete(ctx context.Context, id string, opts ...RequestOption) (*DeletedObject, error)
	List(ctx context.Context, params *CustomerListParams, opts ...RequestOption) (*ListResponse[Customer], error)
	ListAll(ctx context.Context, params *CustomerListParams, opts ...RequestOption) *ListIterator[Customer]
	Search(ctx context.Context, params *CustomerSearchParams, opts ...RequestOption) (*SearchResult[Customer], error)
	SearchAll(ctx context.Context, params *CustomerSearchParams, opts ...RequestOption) *ListIterator[Customer]
}

// ChargesClient manages charges.
type ChargesClient interface {
	Create(ctx context.Context, params *ChargeParams, opts ...RequestOption) (*Charge, error)
	Get(ctx context.Context, id string, params *ChargeRetrieveParams, opts ...RequestOption) (*Charge, error)
	Update(ctx context.Context, id string, params *ChargeUpdateParams, opts ...RequestOption) (*Charge, error)
	Capture(ctx context.Context, id string, params *ChargeCaptureParams, opts ...RequestOption) (*Charge, error)
	List(ctx context.Context, params *ChargeListParams, opts ...RequestOption) (*ListResponse[Charge], error)
	ListAll(ctx context.Context, params *ChargeListParams, opts ...RequestOption) *ListIterator[Charge]
	Search(ctx context.Context, params *ChargeSearchParams, opts ...RequestOption) (*SearchResult[Charge], error)
	SearchAll(ctx context.Context, params *ChargeSearchParams, opts ...RequestOption) *ListIterator[Charge]
}

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	Customers() CustomersClient
	Charges() ChargesClient
}

// Client is the full API client.
type Client interface {
	Backend
	ResourceClients
}
