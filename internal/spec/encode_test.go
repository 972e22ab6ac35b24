package spec

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()
	cases := map[string]Format{"": FormatYAML, "yaml": FormatYAML, "YML": FormatYAML, " json ": FormatJSON}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Errorf("expected error for xml")
	}
	if FormatJSON.Extension() != ".json" || FormatYAML.Extension() != ".yaml" {
		t.Errorf("unexpected extensions")
	}
}

func TestEncode_JSONAndYAMLRoundTrip(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, sampleSpec)

	for _, f := range []Format{FormatJSON, FormatYAML} {
		out, err := Encode(doc, f)
		if err != nil {
			t.Fatalf("%s: encode: %v", f, err)
		}
		again, err := Decode(out)
		if err != nil {
			t.Fatalf("%s: decode: %v\n%s", f, err, out)
		}
		if err := Validate(context.Background(), again); err != nil {
			t.Fatalf("%s: validate: %v", f, err)
		}
		if got := len(BuildInventory(again).Endpoints); got != 4 {
			t.Fatalf("%s: endpoints after round trip: %d", f, got)
		}
	}
}

func TestEncode_YAMLIsBlockStyleAndQuotesCodes(t *testing.T) {
	t.Parallel()
	out, err := Encode(loadDoc(t, sampleSpec), FormatYAML)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s := string(out)
	if strings.HasPrefix(s, "{") || !strings.Contains(s, "info:\n  description: Demo\n  title: Sample API\n") {
		t.Errorf("expected block style YAML with sorted keys, got:\n%s", s)
	}
	if !strings.Contains(s, `"200":`) {
		t.Errorf("expected quoted status codes, got:\n%s", s)
	}
	if !strings.Contains(s, "openapi: 3.0.3\n") {
		t.Errorf("expected openapi version line, got:\n%s", s)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, sampleSpec)
	first, err := Encode(doc, FormatYAML)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := Encode(doc, FormatYAML)
		if !bytes.Equal(first, again) {
			t.Fatalf("encoding differs between runs")
		}
	}
}

func TestEncode_Errors(t *testing.T) {
	t.Parallel()
	var se *SpecError
	if _, err := Encode(nil, FormatJSON); !errors.As(err, &se) || se.Code != EncodeError {
		t.Fatalf("nil doc: expected EncodeError, got %v", err)
	}
	if _, err := Encode(&openapi3.T{OpenAPI: "3.0.3"}, Format("toml")); !errors.As(err, &se) || se.Code != EncodeError {
		t.Fatalf("bad format: expected EncodeError, got %v", err)
	}
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()
	_, err := Decode([]byte("openapi: [unterminated"))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != ParseError {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	if err := Validate(context.Background(), loadDoc(t, sampleSpec)); err != nil {
		t.Fatalf("validate: %v", err)
	}

	bad := loadDoc(t, sampleSpec)
	bad.Paths["/pets"].Get.Responses["200"].Value.Description = nil
	err := Validate(context.Background(), bad)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %T %v", err, err)
	}

	if err := Validate(context.Background(), nil); !IsValidationError(err) {
		t.Fatalf("nil doc: expected ValidationError, got %v", err)
	}
}

func TestExtractJSONPointer(t *testing.T) {
	t.Parallel()
	if got := extractJSONPointer(errors.New("bad value at #/paths/~1pets/get")); got != "#/paths/~1pets/get" {
		t.Errorf("got %q", got)
	}
	if got := extractJSONPointer(errors.New("no pointer")); got != "" {
		t.Errorf("got %q", got)
	}
	if got := extractJSONPointer(nil); got != "" {
		t.Errorf("got %q", got)
	}
}
