package stripe

// Address is a postal address.
type Address struct {
	City       string `json:"city,omitempty"        yaml:"city,omitempty"`
	Country    string `json:"country,omitempty"     yaml:"country,omitempty"`
	Line1      string `json:"line1,omitempty"       yaml:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"       yaml:"line2,omitempty"`
	PostalCode string `json:"postal_code,omitempty" yaml:"postal_code,omitempty"`
	State      string `json:"state,omitempty"       yaml:"state,omitempty"`
}

// AddressParams sets a postal address.
type AddressParams struct {
	City       *string `form:"city"`
	Country    *string `form:"country"`
	Line1      *string `form:"line1"`
	Line2      *string `form:"line2"`
	PostalCode *string `form:"postal_code"`
	State      *string `form:"state"`
}

// Customer represents a customer resource.
type Customer struct {
	ID          string            `json:"id"                    yaml:"id"`
	Object      ObjectType        `json:"object"                yaml:"object"`
	Address     *Address          `json:"address,omitempty"     yaml:"address,omitempty"`
	Balance     int64             `json:"balance"               yaml:"balance"`
	Created     int64             `json:"created"               yaml:"created"`
	Currency    string            `json:"currency,omitempty"    yaml:"currency,omitempty"`
	Delinquent  bool              `json:"delinquent"            yaml:"delinquent"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Email       string            `json:"email,omitempty"       yaml:"email,omitempty"`
	Livemode    bool              `json:"livemode"              yaml:"livemode"`
	Metadata    map[string]string `json:"metadata,omitempty"    yaml:"metadata,omitempty"`
	Name        string            `json:"name,omitempty"        yaml:"name,omitempty"`
	Phone       string            `json:"phone,omitempty"       yaml:"phone,omitempty"`
	TaxExempt   CustomerTaxExempt `json:"tax_exempt,omitempty"  yaml:"tax_exempt,omitempty"`
}

// GetID implements Identifiable.
func (c Customer) GetID() string {
	return c.ID
}

// CustomerParams creates or updates a customer.
type CustomerParams struct {
	Params

	Address     *AddressParams  `form:"address"`
	Balance     *int64          `form:"balance"`
	Description *string         `form:"description"`
	Email       *string         `form:"email"`
	Name        *string         `form:"name"`
	Phone       *string         `form:"phone"`
	TaxExempt   *TaxExemptParam `form:"tax_exempt"`
}

// CustomerRetrieveParams retrieves a customer.
type CustomerRetrieveParams struct {
	Params
}

// CustomerListParams lists customers.
type CustomerListParams struct {
	ListParams

	Created *RangeQueryParams `form:"created"`
	Email   *string           `form:"email"`
}

// CustomerSearchParams searches customers.
type CustomerSearchParams struct {
	SearchParams
}

// DeletedObject is returned by delete endpoints.
type DeletedObject struct {
	ID      string     `json:"id"      yaml:"id"`
	Object  ObjectType `json:"object"  yaml:"object"`
	Deleted bool       `json:"deleted" yaml:"deleted"`
}

// Charge represents a charge resource.
type Charge struct {
	ID             string                `json:"id"                        yaml:"id"`
	Object         ObjectType            `json:"object"                    yaml:"object"`
	Amount         int64                 `json:"amount"                    yaml:"amount"`
	AmountCaptured int64                 `json:"amount_captured"           yaml:"amount_captured"`
	AmountRefunded int64                 `json:"amount_refunded"           yaml:"amount_refunded"`
	Captured       bool                  `json:"captured"                  yaml:"captured"`
	Created        int64                 `json:"created"                   yaml:"created"`
	Currency       string                `json:"currency"                  yaml:"currency"`
	Customer       *Expandable[Customer] `json:"customer,omitempty"        yaml:"customer,omitempty"`
	Description    string                `json:"description,omitempty"     yaml:"description,omitempty"`
	FailureCode    string                `json:"failure_code,omitempty"    yaml:"failure_code,omitempty"`
	FailureMessage string                `json:"failure_message,omitempty" yaml:"failure_message,omitempty"`
	Livemode       bool                  `json:"livemode"                  yaml:"livemode"`
	Metadata       map[string]string     `json:"metadata,omitempty"        yaml:"metadata,omitempty"`
	Paid           bool                  `json:"paid"                      yaml:"paid"`
	Refunded       bool                  `json:"refunded"                  yaml:"refunded"`
	Status         ChargeStatus          `json:"status"                    yaml:"status"`
}

// GetID implements Identifiable.
func (c Charge) GetID() string {
	return c.ID
}

// ChargeParams creates a charge.
type ChargeParams struct {
	Params

	Amount              *int64  `form:"amount"`
	Currency            *string `form:"currency"`
	Customer            *string `form:"customer"`
	Description         *string `form:"description"`
	Capture             *bool   `form:"capture"`
	ReceiptEmail        *string `form:"receipt_email"`
	Source              *string `form:"source"`
	StatementDescriptor *string `form:"statement_descriptor"`
}

// ChargeRetrieveParams retrieves a charge.
type ChargeRetrieveParams struct {
	Params
}

// ChargeUpdateParams updates a charge.
type ChargeUpdateParams struct {
	Params

	Customer     *string `form:"customer"`
	Description  *string `form:"description"`
	ReceiptEmail *string `form:"receipt_email"`
}

// ChargeCaptureParams captures an uncaptured charge.
type ChargeCaptureParams struct {
	Params

	Amount       *int64  `form:"amount"`
	ReceiptEmail *string `form:"receipt_email"`
}

// ChargeListParams lists charges.
type ChargeListParams struct {
	ListParams

	Created  *RangeQueryParams `form:"created"`
	Customer *string           `form:"customer"`
}

// ChargeSearchParams searches charges.
type ChargeSearchParams struct {
	SearchParams
}
