package emitter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/postman2openapi/internal/spec"
)

func minimalDoc() *openapi3.T {
	desc := ""
	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: "Sample API", Version: "1.0.0"},
		Paths: openapi3.Paths{
			"/hello": &openapi3.PathItem{Get: &openapi3.Operation{
				Summary:   "Say hello",
				Responses: openapi3.Responses{"200": &openapi3.ResponseRef{Value: &openapi3.Response{Description: &desc}}},
			}},
		},
	}
}

func TestEmit_Stdout(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	res, err := Emit(context.Background(), minimalDoc(), Options{OutPath: "-", Stdout: &buf})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if !res.Written || res.Path != "-" || res.Format != spec.FormatYAML {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Size != buf.Len() || !strings.Contains(buf.String(), "openapi: 3.0.3") {
		t.Fatalf("unexpected output (%d bytes):\n%s", res.Size, buf.String())
	}
}

func TestEmit_DryRun_Plan(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	out := filepath.Join(dir, "api.json")

	res, err := Emit(context.Background(), minimalDoc(), Options{OutPath: out, Format: spec.FormatJSON, DryRun: true})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.Written || res.Path != out || res.Size == 0 {
		t.Fatalf("unexpected plan: %+v", res)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("expected no files written on dry-run")
	}
}

func TestEmit_WriteAndContents(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "api.json")

	res, err := Emit(context.Background(), minimalDoc(), Options{OutPath: out, Format: spec.FormatJSON})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) != res.Size {
		t.Fatalf("size mismatch: %d vs %d", len(data), res.Size)
	}
	doc, err := spec.Decode(data)
	if err != nil {
		t.Fatalf("decode written file: %v", err)
	}
	if doc.Paths["/hello"] == nil {
		t.Fatalf("written document lost /hello")
	}
	entries, _ := os.ReadDir(filepath.Dir(out))
	if len(entries) != 1 {
		t.Fatalf("expected only the output file, found %d entries", len(entries))
	}
}

func TestEmit_NoForce_ExistingFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	out := filepath.Join(dir, "api.yaml")
	if err := os.WriteFile(out, []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}
	_, err := Emit(context.Background(), minimalDoc(), Options{OutPath: out})
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if _, err := Emit(context.Background(), minimalDoc(), Options{OutPath: out, Force: true}); err != nil {
		t.Fatalf("force: %v", err)
	}
	data, _ := os.ReadFile(out)
	if !strings.Contains(string(data), "Sample API") {
		t.Fatalf("file not overwritten: %s", data)
	}
}

func TestEmit_DirectoryDerivesName(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	res, err := Emit(context.Background(), minimalDoc(), Options{OutPath: dir})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if want := filepath.Join(dir, "sample-api.openapi.yaml"); res.Path != want {
		t.Fatalf("path: got %s, want %s", res.Path, want)
	}
}

func TestEmit_CancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Emit(ctx, minimalDoc(), Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDefaultFileName(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"Users API":       "users-api.openapi.yaml",
		"Shop: v2/Orders": "shop-v2-orders.openapi.yaml",
		"":                "openapi.yaml",
		"  ***  ":         "openapi.yaml",
	}
	for in, want := range cases {
		if got := DefaultFileName(in, spec.FormatYAML); got != want {
			t.Errorf("DefaultFileName(%q) = %q, want %q", in, got, want)
		}
	}
	if got := DefaultFileName("x", spec.FormatJSON); got != "x.openapi.json" {
		t.Errorf("json: got %q", got)
	}
}
