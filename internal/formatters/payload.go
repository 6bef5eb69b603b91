package formatters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/willibrandon/proclog/core"
)

// maxFallbackDepth bounds the plain-string rendering of payloads that
// cannot be encoded as JSON, e.g. self-referencing structures.
const maxFallbackDepth = 16

// PayloadString renders a payload for the raw appender path.
// Structured payloads (maps, structs, slices, arrays and pointers to them)
// are JSON encoded; errors render their message; anything else uses its
// plain string form. An absent payload renders as an empty string.
// If JSON encoding fails, the plain-string fallback is returned together
// with a *core.FormatError.
func PayloadString(data any) (string, error) {
	if core.IsAbsent(data) {
		return "", nil
	}
	switch v := data.(type) {
	case string:
		return v, nil
	case error:
		return v.Error(), nil
	case json.RawMessage:
		return string(v), nil
	case []byte:
		return string(v), nil
	}
	if !isStructured(data) {
		return fmt.Sprint(data), nil
	}
	b, err := marshal(data)
	if err != nil {
		return FallbackString(data), &core.FormatError{Payload: fmt.Sprintf("%T", data), Err: err}
	}
	return string(b), nil
}

// FallbackString renders any value as plain text without JSON. Nesting is
// cut at a fixed depth, so cyclic values terminate.
func FallbackString(data any) string {
	var b strings.Builder
	writeValue(&b, reflect.ValueOf(data), 0)
	return b.String()
}

// isStructured reports whether data is JSON encoded on the raw path.
func isStructured(data any) bool {
	t := reflect.TypeOf(data)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		return true
	}
	return false
}

// marshal encodes v as compact JSON without HTML escaping. A panicking
// MarshalJSON or MarshalText is returned as an error.
func marshal(v any) (b []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, errors.Errorf("panic: %v", r)
		}
	}()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func writeValue(b *strings.Builder, v reflect.Value, depth int) {
	if !v.IsValid() {
		b.WriteString("<nil>")
		return
	}
	if depth > maxFallbackDepth {
		b.WriteString("<max depth exceeded>")
		return
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			b.WriteString("<nil>")
			return
		}
		writeValue(b, v.Elem(), depth+1)
	case reflect.Map:
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
		})
		b.WriteString("map[")
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeValue(b, k, depth+1)
			b.WriteByte(':')
			writeValue(b, v.MapIndex(k), depth+1)
		}
		b.WriteByte(']')
	case reflect.Slice, reflect.Array:
		b.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeValue(b, v.Index(i), depth+1)
		}
		b.WriteByte(']')
	case reflect.Struct:
		t := v.Type()
		b.WriteByte('{')
		for i := 0; i < v.NumField(); i++ {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(t.Field(i).Name)
			b.WriteByte(':')
			writeValue(b, v.Field(i), depth+1)
		}
		b.WriteByte('}')
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		b.WriteString(v.Type().String())
	default:
		fmt.Fprint(b, v)
	}
}
