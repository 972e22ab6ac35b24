package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Format is a textual encoding of an OpenAPI document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat maps a user-supplied format name to a Format. An empty name
// selects YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected yaml or json)", s)
	}
}

// Extension returns the conventional file extension for f, with the dot.
func (f Format) Extension() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".yaml"
}

// Encode renders doc in the given format. Object keys come out sorted in both
// formats, so equal documents encode to identical bytes.
func Encode(doc *openapi3.T, format Format) ([]byte, error) {
	if doc == nil {
		return nil, &SpecError{Code: EncodeError, Message: "spec: nil document"}
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, &SpecError{Code: EncodeError, Message: fmt.Sprintf("encode json: %v", err), Cause: err}
	}
	switch format {
	case FormatJSON:
		return append(raw, '\n'), nil
	case FormatYAML, "":
		out, err := jsonToYAML(raw)
		if err != nil {
			return nil, &SpecError{Code: EncodeError, Message: fmt.Sprintf("encode yaml: %v", err), Cause: err}
		}
		return out, nil
	default:
		return nil, &SpecError{Code: EncodeError, Message: fmt.Sprintf("spec: unsupported format %q", format)}
	}
}

// jsonToYAML re-encodes a JSON document as block-style YAML, keeping the key
// order of the input.
func jsonToYAML(raw []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	clearStyle(&node)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// clearStyle drops the flow and quoting styles the parser records for JSON
// input; the encoder then quotes only where YAML requires it.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

// Decode parses a JSON or YAML OpenAPI 3 document.
func Decode(data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse spec: %v", err), JSONPointer: extractJSONPointer(err), Cause: err}
	}
	return doc, nil
}
