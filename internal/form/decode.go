package form

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Decode fills dst from form values produced by Encode. Absent keys leave
// the corresponding field untouched, so optional pointer fields stay nil.
// Timestamps come back in UTC with second precision.
func Decode(values url.Values, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return ErrNotAPointer
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return ErrNotAPointer
	}

	return decodeValue(values, "", rv)
}

// DecodeString parses an encoded form string and decodes it into dst.
func DecodeString(encoded string, dst interface{}) error {
	values, err := url.ParseQuery(encoded)
	if err != nil {
		return fmt.Errorf("parsing form: %w", err)
	}

	return Decode(values, dst)
}

// Present reports whether values holds key itself or any key nested below it.
func Present(values url.Values, key string) bool {
	if key == "" {
		return len(values) > 0
	}

	if _, ok := values[key]; ok {
		return true
	}

	prefix := key + "["
	for k := range values {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}

	return false
}

// DecodeInto decodes the value stored under key into dst. Custom Decoder
// implementations use it to delegate nested values.
func DecodeInto(values url.Values, key string, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return ErrNotAPointer
	}

	return decodeValue(values, key, rv.Elem())
}

func decodeValue(values url.Values, key string, rv reflect.Value) error {
	if rv.CanAddr() && rv.Addr().Type().Implements(decoderType) {
		decoder, _ := rv.Addr().Interface().(Decoder)

		return decoder.DecodeForm(values, key)
	}

	switch rv.Kind() {
	case reflect.Ptr:
		if !Present(values, key) {
			return nil
		}

		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}

		return decodeValue(values, key, rv.Elem())
	case reflect.Struct:
		if rv.Type() == timeType {
			return decodeTime(values, key, rv)
		}

		return decodeStruct(values, key, rv)
	case reflect.Map:
		return decodeMap(values, key, rv)
	case reflect.Slice:
		return decodeSlice(values, key, rv)
	}

	raw, ok := values[key]
	if !ok || len(raw) == 0 {
		return nil
	}

	return decodeScalar(key, raw[0], rv)
}

func decodeStruct(values url.Values, key string, rv reflect.Value) error {
	rt := rv.Type()

	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name, _, tagged := parseTag(field)
		if name == "-" {
			continue
		}

		fv := rv.Field(i)

		if (field.Anonymous && !tagged) || (tagged && name == "") {
			err := decodeValue(values, key, fv)
			if err != nil {
				return err
			}

			continue
		}

		if !tagged {
			continue
		}

		err := decodeValue(values, nestKey(key, name), fv)
		if err != nil {
			return err
		}
	}

	return nil
}

func decodeMap(values url.Values, key string, rv reflect.Value) error {
	if rv.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("%w: map key %s", ErrUnsupportedKind, rv.Type().Key())
	}

	children := childSegments(values, key)
	if len(children) == 0 {
		return nil
	}

	if rv.IsNil() {
		rv.Set(reflect.MakeMap(rv.Type()))
	}

	for _, child := range children {
		elem := reflect.New(rv.Type().Elem()).Elem()

		err := decodeValue(values, nestKey(key, child), elem)
		if err != nil {
			return err
		}

		rv.SetMapIndex(reflect.ValueOf(child).Convert(rv.Type().Key()), elem)
	}

	return nil
}

func decodeSlice(values url.Values, key string, rv reflect.Value) error {
	elems := reflect.MakeSlice(rv.Type(), 0, 0)

	for i := 0; ; i++ {
		elemKey := fmt.Sprintf("%s[%d]", key, i)
		if !Present(values, elemKey) {
			break
		}

		elem := reflect.New(rv.Type().Elem()).Elem()

		err := decodeValue(values, elemKey, elem)
		if err != nil {
			return err
		}

		elems = reflect.Append(elems, elem)
	}

	if elems.Len() > 0 {
		rv.Set(elems)
	}

	return nil
}

func decodeTime(values url.Values, key string, rv reflect.Value) error {
	raw := values.Get(key)
	if raw == "" {
		return nil
	}

	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s=%q: %w", ErrInvalidValue, key, raw, err)
	}

	rv.Set(reflect.ValueOf(time.Unix(secs, 0).UTC()))

	return nil
}

func decodeScalar(key, raw string, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.String:
		rv.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalidValue, key, raw, err)
		}

		rv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, rv.Type().Bits())
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalidValue, key, raw, err)
		}

		rv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, rv.Type().Bits())
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalidValue, key, raw, err)
		}

		rv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, rv.Type().Bits())
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalidValue, key, raw, err)
		}

		rv.SetFloat(f)
	default:
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedKind, key, rv.Kind())
	}

	return nil
}

// childSegments lists the distinct first bracket segments below key.
func childSegments(values url.Values, key string) []string {
	prefix := key + "["
	if key == "" {
		prefix = ""
	}

	seen := map[string]bool{}

	var out []string

	for k := range values {
		if !strings.HasPrefix(k, prefix) {
			continue
		}

		rest := k[len(prefix):]

		var segment string

		if key == "" {
			segment, _, _ = strings.Cut(rest, "[")
		} else {
			var ok bool

			segment, _, ok = strings.Cut(rest, "]")
			if !ok {
				continue
			}
		}

		if !seen[segment] {
			seen[segment] = true
			out = append(out, segment)
		}
	}

	return out
}
