package transpile

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/getkin/kin-openapi/openapi3"
)

// jsonKind is the closed set of JSON value kinds produced by decodeJSON.
type jsonKind int

const (
	kindNull jsonKind = iota
	kindBool
	kindNumber
	kindString
	kindArray
	kindObject
)

// kindOf classifies a value decoded by encoding/json. Values of any other Go
// type are reported as null.
func kindOf(v any) jsonKind {
	switch v.(type) {
	case map[string]any:
		return kindObject
	case []any:
		return kindArray
	case string:
		return kindString
	case json.Number, float64:
		return kindNumber
	case bool:
		return kindBool
	default:
		return kindNull
	}
}

// decodeJSON parses a complete JSON document, keeping numbers as json.Number so
// examples retain their literal form.
func decodeJSON(text string) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return v, true
}

// InferSchema derives a structural schema from one example value.
func InferSchema(v any) *openapi3.Schema {
	switch kindOf(v) {
	case kindObject:
		obj := v.(map[string]any)
		s := &openapi3.Schema{Type: openapi3.TypeObject, Properties: make(openapi3.Schemas, len(obj))}
		for key, val := range obj {
			s.Properties[key] = openapi3.NewSchemaRef("", InferSchema(val))
		}
		return s
	case kindArray:
		s := &openapi3.Schema{Type: openapi3.TypeArray}
		arr := v.([]any)
		if len(arr) == 0 {
			return s
		}
		items := InferSchema(arr[0])
		for _, elem := range arr[1:] {
			items = MergeSchemas(items, InferSchema(elem))
		}
		s.Items = openapi3.NewSchemaRef("", items)
		return s
	case kindString:
		return &openapi3.Schema{Type: openapi3.TypeString, Example: v}
	case kindNumber:
		return &openapi3.Schema{Type: openapi3.TypeNumber, Example: v}
	case kindBool:
		return &openapi3.Schema{Type: openapi3.TypeBoolean, Example: v}
	default:
		return &openapi3.Schema{Nullable: true}
	}
}

// MergeSchemas unifies two schemas observed for the same field. The result is
// a new schema; a and b are left untouched.
//
// The merge is deliberately shallow: a's type wins when both declare one,
// only properties present on both sides are merged, and array items are kept
// from a.
func MergeSchemas(a, b *openapi3.Schema) *openapi3.Schema {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := *a
	out.Nullable = a.Nullable || b.Nullable
	if out.Type == "" {
		out.Type = b.Type
	}
	if out.Type == openapi3.TypeObject && a.Properties != nil && b.Properties != nil {
		props := make(openapi3.Schemas, len(a.Properties))
		for name, ref := range a.Properties {
			props[name] = ref
			other, ok := b.Properties[name]
			if !ok || ref == nil || other == nil {
				continue
			}
			props[name] = openapi3.NewSchemaRef("", MergeSchemas(ref.Value, other.Value))
		}
		out.Properties = props
	}
	return &out
}
