package stripe

import (
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/stripe-client/internal/form"
)

// Open enumerations keep tokens this client does not know so they survive a
// decode/encode round trip in memory. IsUnknown reports them and the form
// encoder refuses to send them. Parameter structs use closed types whose
// values cannot be built from arbitrary strings.

// ChargeStatus is the lifecycle state of a charge.
type ChargeStatus string

// Known charge statuses.
const (
	ChargeStatusFailed    ChargeStatus = "failed"
	ChargeStatusPending   ChargeStatus = "pending"
	ChargeStatusSucceeded ChargeStatus = "succeeded"
)

func (s ChargeStatus) String() string {
	return string(s)
}

// IsUnknown reports whether the status is not one of the known values.
func (s ChargeStatus) IsUnknown() bool {
	switch s {
	case ChargeStatusFailed, ChargeStatusPending, ChargeStatusSucceeded:
		return false
	}

	return true
}

// ParseChargeStatus accepts any token; unknown tokens are kept verbatim.
func ParseChargeStatus(s string) ChargeStatus {
	return ChargeStatus(s)
}

// ObjectType is the "object" discriminator carried by every resource.
type ObjectType string

// Known object types.
const (
	ObjectTypeCharge   ObjectType = "charge"
	ObjectTypeCustomer ObjectType = "customer"
	ObjectTypeList     ObjectType = "list"
	ObjectTypeSearch   ObjectType = "search_result"
)

func (o ObjectType) String() string {
	return string(o)
}

// IsUnknown reports whether the object type is not one of the known values.
func (o ObjectType) IsUnknown() bool {
	switch o {
	case ObjectTypeCharge, ObjectTypeCustomer, ObjectTypeList, ObjectTypeSearch:
		return false
	}

	return true
}

// CustomerTaxExempt is the tax exemption status reported on a customer.
type CustomerTaxExempt string

// Known tax exemption values.
const (
	CustomerTaxExemptExempt  CustomerTaxExempt = "exempt"
	CustomerTaxExemptNone    CustomerTaxExempt = "none"
	CustomerTaxExemptReverse CustomerTaxExempt = "reverse"
)

func (c CustomerTaxExempt) String() string {
	return string(c)
}

// IsUnknown reports whether the value is not one of the known values. An
// absent value is not unknown.
func (c CustomerTaxExempt) IsUnknown() bool {
	switch c {
	case "", CustomerTaxExemptExempt, CustomerTaxExemptNone, CustomerTaxExemptReverse:
		return false
	}

	return true
}

// TaxExemptParam is a tax exemption value that can be sent. Its only
// values are the TaxExemptParam variables and the results of
// ParseCustomerTaxExempt.
type TaxExemptParam struct {
	value CustomerTaxExempt
}

// Accepted tax exemption parameters.
var (
	TaxExemptParamExempt  = TaxExemptParam{value: CustomerTaxExemptExempt}
	TaxExemptParamNone    = TaxExemptParam{value: CustomerTaxExemptNone}
	TaxExemptParamReverse = TaxExemptParam{value: CustomerTaxExemptReverse}
)

// ParseCustomerTaxExempt rejects tokens outside the accepted set.
func ParseCustomerTaxExempt(s string) (TaxExemptParam, error) {
	switch value := CustomerTaxExempt(s); value {
	case CustomerTaxExemptExempt, CustomerTaxExemptNone, CustomerTaxExemptReverse:
		return TaxExemptParam{value: value}, nil
	}

	return TaxExemptParam{}, fmt.Errorf("%w: customer tax_exempt %q", ErrInvalidEnumValue, s)
}

// Value returns the wire token.
func (p TaxExemptParam) Value() CustomerTaxExempt {
	return p.value
}

func (p TaxExemptParam) String() string {
	return string(p.value)
}

// AppendForm refuses the zero value.
func (p TaxExemptParam) AppendForm(values *form.Values, key string) error {
	if p.value == "" {
		return fmt.Errorf("%w: %s is unset", ErrInvalidEnumValue, key)
	}

	values.Add(key, string(p.value))

	return nil
}

func (p *TaxExemptParam) DecodeForm(values url.Values, key string) error {
	parsed, err := ParseCustomerTaxExempt(values.Get(key))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}
