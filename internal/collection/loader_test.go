package collection

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalCollection = `{
  "info": {
    "name": "Sample",
    "schema": "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"
  },
  "item": [
    {"name": "Ping", "request": {"method": "GET", "url": "https://api.example.com/ping"}}
  ],
  "variable": [{"key": "host", "value": "api.example.com"}]
}`

func TestLoad_EmptyInput(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "  ")
	var ce *CollectionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, InputError, ce.Code)
}

func TestLoad_BlocksFileURL(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "file:///etc/hosts")
	var ce *CollectionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, InputError, ce.Code)
}

func TestLoad_UnsupportedScheme(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "ftp://example.com/c.json")
	var ce *CollectionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, InputError, ce.Code)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "c.json")
	require.NoError(t, os.WriteFile(path, []byte(minimalCollection), 0o600))

	c, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Sample", c.Info.Name)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Ping", c.Items[0].Name)
	require.Len(t, c.Variable, 1)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	var ce *CollectionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, InputError, ce.Code)
	assert.NotEmpty(t, ce.Location)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_HTTP(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(minimalCollection))
	}))
	defer srv.Close()

	c, err := Load(context.Background(), srv.URL+"/collection.json")
	require.NoError(t, err)
	assert.Equal(t, "Sample", c.Info.Name)
}

func TestLoad_HTTPRetriesTransientErrors(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(minimalCollection))
	}))
	defer srv.Close()

	c, err := Load(context.Background(), srv.URL, WithMaxRetries(3), WithBackoffBase(time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, "Sample", c.Info.Name)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestLoad_HTTPClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.URL, WithMaxRetries(3), WithBackoffBase(time.Millisecond))
	var ce *CollectionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, NetworkError, ce.Code)
	assert.Contains(t, ce.Message, "404")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestLoad_NetworkError(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Load(ctx, "http://127.0.0.1:1/c.json", WithHTTPTimeout(200*time.Millisecond), WithMaxRetries(2), WithBackoffBase(time.Millisecond))
	var ce *CollectionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, NetworkError, ce.Code)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data string
		code ErrorCode
	}{
		{name: "empty", data: "   ", code: ParseError},
		{name: "invalid json", data: "{not json", code: ParseError},
		{name: "v1 collection", data: `{"name": "old", "requests": [{"url": "x"}]}`, code: VersionError},
		{name: "unknown schema", data: `{"info": {"name": "x", "schema": "https://schema.getpostman.com/json/collection/v3.0.0/collection.json"}, "item": []}`, code: VersionError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "inline")
			var ce *CollectionError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, tt.code, ce.Code)
			assert.Equal(t, "inline", ce.Location)
		})
	}
}

func TestParse_SchemaOptional(t *testing.T) {
	t.Parallel()
	c, err := Parse([]byte(`{"info": {"name": "hand written"}, "item": []}`), "inline")
	require.NoError(t, err)
	assert.Equal(t, "hand written", c.Info.Name)
}
