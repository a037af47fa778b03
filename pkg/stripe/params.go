package stripe

import (
	"net/url"
	"strconv"

	"github.com/fivetwenty-io/stripe-client/internal/form"
)

// Params holds the fields shared by every request parameter struct.
type Params struct {
	Expand   []string          `form:"expand"`
	Metadata map[string]string `form:"metadata"`
}

// AddExpand requests expansion of a related field.
func (p *Params) AddExpand(field string) {
	p.Expand = append(p.Expand, field)
}

// AddMetadata sets a metadata key.
func (p *Params) AddMetadata(key, value string) {
	if p.Metadata == nil {
		p.Metadata = make(map[string]string)
	}

	p.Metadata[key] = value
}

// ListCursor anchors a list request on an element id. It holds a single
// direction, so starting_after and ending_before can never both be sent.
type ListCursor struct {
	id      string
	reverse bool
}

// StartingAfter walks forward from the element with id.
func StartingAfter(id string) ListCursor {
	return ListCursor{id: id}
}

// EndingBefore walks backward from the element with id.
func EndingBefore(id string) ListCursor {
	return ListCursor{id: id, reverse: true}
}

// ID returns the anchor id.
func (c ListCursor) ID() string {
	return c.id
}

// Reverse reports whether the cursor walks backward.
func (c ListCursor) Reverse() bool {
	return c.reverse
}

// IsZero reports whether no anchor is set.
func (c ListCursor) IsZero() bool {
	return c.id == ""
}

func (c ListCursor) AppendForm(values *form.Values, key string) error {
	if c.id == "" {
		return nil
	}

	name := "starting_after"
	if c.reverse {
		name = "ending_before"
	}

	values.Add(form.NestKey(key, name), c.id)

	return nil
}

func (c *ListCursor) DecodeForm(values url.Values, key string) error {
	after := values.Get(form.NestKey(key, "starting_after"))
	before := values.Get(form.NestKey(key, "ending_before"))

	switch {
	case after != "" && before != "":
		return ErrConflictingCursors
	case after != "":
		*c = StartingAfter(after)
	case before != "":
		*c = EndingBefore(before)
	}

	return nil
}

// ListParams holds the fields shared by list requests.
type ListParams struct {
	Params

	Limit  *int64     `form:"limit"`
	Cursor ListCursor `form:",inline"`
}

// GetListParams returns the embedded list parameters.
func (p *ListParams) GetListParams() *ListParams {
	return p
}

// SetLast moves the cursor to id, keeping the walk direction.
func (p *ListParams) SetLast(id string) {
	if p.Cursor.reverse {
		p.Cursor = EndingBefore(id)

		return
	}

	p.Cursor = StartingAfter(id)
}

// ListParamsContainer is implemented by every list parameter struct.
type ListParamsContainer interface {
	GetListParams() *ListParams
}

// SearchParams holds the fields shared by search requests.
type SearchParams struct {
	Params

	Query string  `form:"query"`
	Limit *int64  `form:"limit"`
	Page  *string `form:"page"`
}

// GetSearchParams returns the embedded search parameters.
func (p *SearchParams) GetSearchParams() *SearchParams {
	return p
}

// SetPage installs the next_page token of the previous page.
func (p *SearchParams) SetPage(token string) {
	p.Page = &token
}

// SearchParamsContainer is implemented by every search parameter struct.
type SearchParamsContainer interface {
	GetSearchParams() *SearchParams
}

// RangeQueryParams filters a numeric or timestamp field. Either Exact or any
// combination of the comparators may be set.
type RangeQueryParams struct {
	Exact              *int64
	GreaterThan        *int64
	GreaterThanOrEqual *int64
	LesserThan         *int64
	LesserThanOrEqual  *int64
}

// ExactRange matches a single value.
func ExactRange(v int64) *RangeQueryParams {
	return &RangeQueryParams{Exact: &v}
}

func (r *RangeQueryParams) comparators() []struct {
	suffix string
	value  *int64
} {
	return []struct {
		suffix string
		value  *int64
	}{
		{"gt", r.GreaterThan},
		{"gte", r.GreaterThanOrEqual},
		{"lt", r.LesserThan},
		{"lte", r.LesserThanOrEqual},
	}
}

func (r *RangeQueryParams) AppendForm(values *form.Values, key string) error {
	if r.Exact != nil {
		for _, cmp := range r.comparators() {
			if cmp.value != nil {
				return ErrConflictingRange
			}
		}

		values.Add(key, strconv.FormatInt(*r.Exact, 10))

		return nil
	}

	for _, cmp := range r.comparators() {
		if cmp.value != nil {
			values.Add(form.NestKey(key, cmp.suffix), strconv.FormatInt(*cmp.value, 10))
		}
	}

	return nil
}

func (r *RangeQueryParams) DecodeForm(values url.Values, key string) error {
	if raw := values.Get(key); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return form.ErrInvalidValue
		}

		*r = RangeQueryParams{Exact: &v}

		return nil
	}

	targets := map[string]**int64{
		"gt":  &r.GreaterThan,
		"gte": &r.GreaterThanOrEqual,
		"lt":  &r.LesserThan,
		"lte": &r.LesserThanOrEqual,
	}

	for suffix, target := range targets {
		raw := values.Get(form.NestKey(key, suffix))
		if raw == "" {
			continue
		}

		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return form.ErrInvalidValue
		}

		*target = &v
	}

	return nil
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}
