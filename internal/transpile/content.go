package transpile

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/postman2openapi/internal/collection"
)

const (
	mimeJSON        = "application/json"
	mimeText        = "text/plain"
	mimeFormEncoded = "application/form-urlencoded"
	mimeBinary      = "application/octet-stream"
)

// payload is the inferred shape of a request or response body.
type payload struct {
	contentType string
	schema      *openapi3.Schema
	example     any
	hasExample  bool
}

// headerContentType returns the media type of an explicit Content-Type header,
// without parameters.
func headerContentType(h collection.Headers) string {
	v, ok := h.Get("Content-Type")
	if !ok {
		return ""
	}
	mediaType, _, _ := strings.Cut(v, ";")
	return strings.TrimSpace(mediaType)
}

// rawPayload infers content from a raw text body. JSON objects and arrays get
// a schema and a parsed example; anything else is carried as text.
func rawPayload(text string) payload {
	if v, ok := decodeJSON(text); ok {
		if k := kindOf(v); k == kindObject || k == kindArray {
			return payload{contentType: mimeJSON, schema: InferSchema(v), example: v, hasExample: true}
		}
	}
	return payload{contentType: mimeText, example: text, hasExample: true}
}

// requestPayload infers content for a request body. The caller applies an
// explicit Content-Type header over the inferred type.
func (r *Resolver) requestPayload(body *collection.Body) payload {
	switch body.Mode {
	case collection.BodyRaw:
		if body.Raw == nil {
			return payload{contentType: mimeBinary}
		}
		return rawPayload(r.Resolve(*body.Raw))
	case collection.BodyURLEncoded:
		p := payload{contentType: mimeFormEncoded}
		if body.URLEncoded == nil {
			return p
		}
		fields := make(map[string]any, len(body.URLEncoded))
		for _, f := range body.URLEncoded {
			if f.Value != nil {
				fields[f.Key] = *f.Value
			}
		}
		p.schema = InferSchema(fields)
		p.example = fields
		p.hasExample = true
		return p
	default:
		return payload{contentType: mimeBinary}
	}
}

// responsePayload infers content for a saved response body.
func (r *Resolver) responsePayload(body string) payload {
	return rawPayload(r.Resolve(body))
}

// mediaType renders the payload without examples.
func (p payload) mediaType() *openapi3.MediaType {
	mt := &openapi3.MediaType{}
	if p.schema != nil {
		mt.Schema = openapi3.NewSchemaRef("", p.schema)
	}
	return mt
}
