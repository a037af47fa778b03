// Package form encodes parameter structs into the bracketed
// application/x-www-form-urlencoded convention used by the API, and decodes
// them back.
//
// Field names come from `form:"name"` struct tags and are emitted in
// declaration order. Nested structs and maps use one level of brackets per
// nesting (`bar[x]=1`), slices use numeric indices (`items[0]=a`). Nil
// pointers, nil interfaces and nil maps are omitted. Untagged embedded structs
// and fields tagged with an empty name (`form:",inline"`) are flattened into
// the parent key.
package form

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Static errors for err113 compliance.
var (
	ErrInvalidUTF8      = errors.New("string is not valid UTF-8")
	ErrUnknownEnumValue = errors.New("unknown enum value cannot be sent to the server")
	ErrUnsupportedKind  = errors.New("unsupported kind")
	ErrNotAStruct       = errors.New("value must be a struct or a pointer to a struct")
	ErrNotAPointer      = errors.New("decode target must be a non-nil pointer to a struct")
	ErrInvalidValue     = errors.New("invalid form value")
)

// Appender is implemented by types that need a custom wire representation.
type Appender interface {
	AppendForm(values *Values, key string) error
}

// Decoder is implemented by types that reverse a custom Appender encoding.
type Decoder interface {
	DecodeForm(values url.Values, key string) error
}

// unknownReporter is implemented by open enumerations.
type unknownReporter interface {
	IsUnknown() bool
}

var (
	appenderType = reflect.TypeOf((*Appender)(nil)).Elem()
	decoderType  = reflect.TypeOf((*Decoder)(nil)).Elem()
	timeType     = reflect.TypeOf(time.Time{})
)

type pair struct {
	key   string
	value string
}

// Values is an ordered set of form pairs. Unlike url.Values it keeps
// insertion order, so the encoded string follows field declaration order.
type Values struct {
	pairs []pair
}

// Add appends a key/value pair.
func (v *Values) Add(key, value string) {
	v.pairs = append(v.pairs, pair{key: key, value: value})
}

// Empty reports whether no pairs were added.
func (v *Values) Empty() bool {
	return v == nil || len(v.pairs) == 0
}

// Len returns the number of pairs.
func (v *Values) Len() int {
	if v == nil {
		return 0
	}

	return len(v.pairs)
}

// Get returns the first value for key.
func (v *Values) Get(key string) string {
	if v == nil {
		return ""
	}

	for _, p := range v.pairs {
		if p.key == key {
			return p.value
		}
	}

	return ""
}

// Encode renders the pairs. Brackets in keys are kept literal.
func (v *Values) Encode() string {
	if v.Empty() {
		return ""
	}

	var builder strings.Builder

	for i, p := range v.pairs {
		if i > 0 {
			builder.WriteByte('&')
		}

		builder.WriteString(escapeKey(p.key))
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(p.value))
	}

	return builder.String()
}

// ToURLValues converts the pairs into url.Values.
func (v *Values) ToURLValues() url.Values {
	out := url.Values{}
	if v == nil {
		return out
	}

	for _, p := range v.pairs {
		out.Add(p.key, p.value)
	}

	return out
}

func escapeKey(key string) string {
	escaped := url.QueryEscape(key)
	escaped = strings.ReplaceAll(escaped, "%5B", "[")

	return strings.ReplaceAll(escaped, "%5D", "]")
}

// Encode walks params and returns its form pairs. A nil params yields an
// empty set.
func Encode(params interface{}) (*Values, error) {
	values := &Values{}

	if params == nil {
		return values, nil
	}

	rv := reflect.ValueOf(params)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return values, nil
		}

		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct && rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("%w: got %s", ErrNotAStruct, rv.Kind())
	}

	err := appendValue(values, "", rv)
	if err != nil {
		return nil, err
	}

	return values, nil
}

// AppendTo encodes v under key into values. Custom Appender implementations
// use it to delegate nested values.
func AppendTo(values *Values, key string, v interface{}) error {
	if v == nil {
		return nil
	}

	return appendValue(values, key, reflect.ValueOf(v))
}

func appendValue(values *Values, key string, rv reflect.Value) error {
	if !rv.IsValid() {
		return nil
	}

	if (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface || rv.Kind() == reflect.Map || rv.Kind() == reflect.Slice) && rv.IsNil() {
		return nil
	}

	if rv.Type().Implements(appenderType) {
		appender, _ := rv.Interface().(Appender)

		return appender.AppendForm(values, key)
	}

	if rv.CanAddr() && rv.Addr().Type().Implements(appenderType) {
		appender, _ := rv.Addr().Interface().(Appender)

		return appender.AppendForm(values, key)
	}

	if reporter, ok := rv.Interface().(unknownReporter); ok && rv.Kind() == reflect.String && reporter.IsUnknown() {
		return fmt.Errorf("%w: %s=%q", ErrUnknownEnumValue, key, rv.String())
	}

	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		return appendValue(values, key, rv.Elem())
	case reflect.Struct:
		if rv.Type() == timeType {
			t, _ := rv.Interface().(time.Time)
			values.Add(key, strconv.FormatInt(t.Unix(), 10))

			return nil
		}

		return appendStruct(values, key, rv)
	case reflect.Map:
		return appendMap(values, key, rv)
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			err := appendValue(values, fmt.Sprintf("%s[%d]", key, i), rv.Index(i))
			if err != nil {
				return err
			}
		}

		return nil
	case reflect.Bool:
		values.Add(key, strconv.FormatBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		values.Add(key, strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		values.Add(key, strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32:
		values.Add(key, strconv.FormatFloat(rv.Float(), 'f', -1, 32))
	case reflect.Float64:
		values.Add(key, strconv.FormatFloat(rv.Float(), 'f', -1, 64))
	case reflect.String:
		s := rv.String()
		if !utf8.ValidString(s) {
			return fmt.Errorf("%w: %s", ErrInvalidUTF8, key)
		}

		values.Add(key, s)
	default:
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedKind, key, rv.Kind())
	}

	return nil
}

func appendStruct(values *Values, key string, rv reflect.Value) error {
	rt := rv.Type()

	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name, opts, tagged := parseTag(field)
		if name == "-" {
			continue
		}

		fv := rv.Field(i)

		if (field.Anonymous && !tagged) || (tagged && name == "") {
			err := appendValue(values, key, fv)
			if err != nil {
				return err
			}

			continue
		}

		if !tagged {
			continue
		}

		if opts.omitEmpty && fv.IsZero() {
			continue
		}

		err := appendValue(values, nestKey(key, name), fv)
		if err != nil {
			return err
		}
	}

	return nil
}

func appendMap(values *Values, key string, rv reflect.Value) error {
	if rv.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("%w: map key %s", ErrUnsupportedKind, rv.Type().Key())
	}

	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}

	sort.Strings(keys)

	for _, k := range keys {
		err := appendValue(values, nestKey(key, k), rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())))
		if err != nil {
			return err
		}
	}

	return nil
}

type tagOptions struct {
	omitEmpty bool
}

func parseTag(field reflect.StructField) (string, tagOptions, bool) {
	tag, ok := field.Tag.Lookup("form")
	if !ok {
		return "", tagOptions{}, false
	}

	parts := strings.Split(tag, ",")

	var opts tagOptions

	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			opts.omitEmpty = true
		}
	}

	return parts[0], opts, true
}

// nestKey appends name as a bracketed segment of parent.
func nestKey(parent, name string) string {
	if parent == "" {
		return name
	}

	return parent + "[" + name + "]"
}

// NestKey is the exported form of nestKey for custom Appender implementations.
func NestKey(parent, name string) string {
	return nestKey(parent, name)
}
