package stripe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/stripe-client/internal/form"
)

// Identifiable is implemented by every resource that can appear inside an
// Expandable.
type Identifiable interface {
	GetID() string
}

// Expandable holds either the id of a related resource or the resource
// itself, depending on whether the field was expanded in the request.
type Expandable[T Identifiable] struct {
	id     string
	object *T
}

// ExpandableID returns an unexpanded reference.
func ExpandableID[T Identifiable](id string) Expandable[T] {
	return Expandable[T]{id: id}
}

// ExpandableObject returns an expanded reference.
func ExpandableObject[T Identifiable](object T) Expandable[T] {
	return Expandable[T]{object: &object}
}

// ID returns the id of the referenced resource without requiring expansion.
func (e Expandable[T]) ID() string {
	if e.object != nil {
		return (*e.object).GetID()
	}

	return e.id
}

// IsExpanded reports whether the full object is present.
func (e Expandable[T]) IsExpanded() bool {
	return e.object != nil
}

// Object returns the expanded resource, or nil.
func (e Expandable[T]) Object() *T {
	return e.object
}

// IsZero reports whether neither variant is set.
func (e Expandable[T]) IsZero() bool {
	return e.object == nil && e.id == ""
}

func (e Expandable[T]) MarshalJSON() ([]byte, error) {
	if e.object != nil {
		return json.Marshal(e.object)
	}

	if e.id == "" {
		return []byte("null"), nil
	}

	return json.Marshal(e.id)
}

func (e *Expandable[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return ErrInvalidExpandable
	}

	switch trimmed[0] {
	case '"':
		var id string

		err := json.Unmarshal(trimmed, &id)
		if err != nil {
			return fmt.Errorf("decoding expandable id: %w", err)
		}

		*e = Expandable[T]{id: id}
	case '{':
		var object T

		err := json.Unmarshal(trimmed, &object)
		if err != nil {
			return fmt.Errorf("decoding expandable object: %w", err)
		}

		*e = Expandable[T]{object: &object}
	case 'n':
		if !bytes.Equal(bytes.TrimSpace(trimmed), []byte("null")) {
			return ErrInvalidExpandable
		}

		*e = Expandable[T]{}
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidExpandable, trimmed[:1])
	}

	return nil
}

func (e Expandable[T]) MarshalYAML() (interface{}, error) {
	if e.object != nil {
		return e.object, nil
	}

	if e.id == "" {
		return nil, nil //nolint:nilnil
	}

	return e.id, nil
}

// AppendForm always emits the bare id; expansion is requested through the
// expand parameter, never through the body.
func (e Expandable[T]) AppendForm(values *form.Values, key string) error {
	if id := e.ID(); id != "" {
		values.Add(key, id)
	}

	return nil
}

func (e *Expandable[T]) DecodeForm(values url.Values, key string) error {
	if id := values.Get(key); id != "" {
		*e = Expandable[T]{id: id}
	}

	return nil
}
