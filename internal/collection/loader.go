package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError   ErrorCode = "InputError"
	NetworkError ErrorCode = "NetworkError"
	ParseError   ErrorCode = "ParseError"
	VersionError ErrorCode = "VersionError"
)

// CollectionError is a structured error with the offending location.
type CollectionError struct {
	Code     ErrorCode
	Message  string
	Location string // file path or URL
	Cause    error
}

func (e *CollectionError) Error() string { return e.Message }
func (e *CollectionError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	// HTTPClient overrides the client used for remote collections.
	HTTPClient *http.Client
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option  { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option            { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithHTTPClient(c *http.Client) Option   { return func(s *Settings) { s.HTTPClient = c } }

// supportedSchemas lists the collection format versions the converter reads.
var supportedSchemas = []string{"v2.0.0", "v2.1.0"}

// Load reads and decodes a Postman collection.
//
// input may be a filesystem path or an http/https URL. file:// URLs and other
// schemes are rejected.
func Load(ctx context.Context, input string, opts ...Option) (*Collection, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &CollectionError{Code: InputError, Message: "collection: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""

	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme == "file" {
			return nil, &CollectionError{Code: InputError, Message: "collection: file:// URLs are not supported, pass a path instead", Location: input}
		}
		if scheme != "http" && scheme != "https" {
			return nil, &CollectionError{Code: InputError, Message: fmt.Sprintf("collection: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		raw, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, &CollectionError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
		return Parse(raw, input)
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, &CollectionError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, &CollectionError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
	}
	return Parse(raw, abs)
}

// Parse decodes collection JSON and checks that its format version is supported.
func Parse(data []byte, location string) (*Collection, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &CollectionError{Code: ParseError, Message: "collection: document is empty", Location: location}
	}
	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, &CollectionError{Code: ParseError, Message: fmt.Sprintf("parse collection: %v", err), Location: location, Cause: err}
	}
	if err := checkVersion(&c); err != nil {
		return nil, &CollectionError{Code: VersionError, Message: err.Error(), Location: location, Cause: err}
	}
	return &c, nil
}

func checkVersion(c *Collection) error {
	if len(c.Requests) > 0 && c.Items == nil {
		return errors.New("collection: v1 collections are not supported (export as v2.1)")
	}
	schema := strings.TrimSpace(c.Info.Schema)
	if schema == "" {
		// Hand-written collections often omit the schema URL.
		return nil
	}
	for _, v := range supportedSchemas {
		if strings.Contains(schema, "/"+v+"/") || strings.HasSuffix(schema, "/"+v) {
			return nil
		}
	}
	return fmt.Errorf("collection: unsupported schema %q (expected v2.0.0 or v2.1.0)", schema)
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := settings.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: settings.HTTPTimeout}
	}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		body, retry, err := fetchOnce(ctx, client, rawURL)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

// fetchOnce performs a single GET. retry reports whether the failure is transient.
func fetchOnce(ctx context.Context, client *http.Client, rawURL string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		return body, false, err
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("transient http error %d", resp.StatusCode)
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return nil, false, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
}
