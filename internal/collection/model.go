package collection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Postman collection (v2.0 / v2.1) definitions consumed by the transpiler.
// Only the fields the converter reads are modeled; unknown fields are ignored.

type Collection struct {
	Info     Info       `json:"info"`
	Items    []Item     `json:"item"`
	Variable []Variable `json:"variable,omitempty"`

	// Requests is only present on legacy v1 collections and is used to reject them.
	Requests json.RawMessage `json:"requests,omitempty"`
}

type Info struct {
	Name        string       `json:"name"`
	PostmanID   string       `json:"_postman_id,omitempty"`
	Description *Description `json:"description,omitempty"`
	Schema      string       `json:"schema"`
	Version     any          `json:"version,omitempty"`
}

// Item is either a folder (Items is non-nil) or a request leaf.
type Item struct {
	Name        string       `json:"name,omitempty"`
	Description *Description `json:"description,omitempty"`
	Items       []Item       `json:"item,omitempty"`
	Request     *Request     `json:"request,omitempty"`
	Responses   []Response   `json:"response,omitempty"`
}

// IsFolder reports whether the item groups other items.
func (i Item) IsFolder() bool { return i.Items != nil }

func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var raw struct {
		plain
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = Item(raw.plain)
	if len(raw.Item) == 0 || isNull(raw.Item) {
		i.Items = nil
		return nil
	}
	var children []Item
	if err := json.Unmarshal(raw.Item, &children); err != nil {
		return fmt.Errorf("item %q: %w", i.Name, err)
	}
	if children == nil {
		children = []Item{}
	}
	i.Items = children
	return nil
}

// Description is a plain string or an object carrying {content, type}.
type Description struct {
	Content string `json:"content,omitempty"`
	Type    string `json:"type,omitempty"`
}

func (d *Description) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &d.Content)
	}
	type plain Description
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = Description(p)
	return nil
}

// Text returns the description content, or "" for a nil description.
func (d *Description) Text() string {
	if d == nil {
		return ""
	}
	return d.Content
}

// Request is a Postman request. A bare string in the collection is read as a
// GET request to that URL.
type Request struct {
	Method      string       `json:"method,omitempty"`
	URL         *URL         `json:"url,omitempty"`
	Header      Headers      `json:"header,omitempty"`
	Body        *Body        `json:"body,omitempty"`
	Description *Description `json:"description,omitempty"`
}

func (r *Request) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		r.Method = "GET"
		r.URL = ParseURL(s)
		return nil
	}
	type plain Request
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Request(p)
	return nil
}

// URL is the structured form of a request URL. Path is nil when the URL has no
// path component at all, and empty when it addresses the root.
type URL struct {
	Raw      string        `json:"raw,omitempty"`
	Protocol string        `json:"protocol,omitempty"`
	Host     Host          `json:"host,omitempty"`
	Path     []PathSegment `json:"path,omitempty"`
	Port     string        `json:"port,omitempty"`
	Query    []QueryParam  `json:"query,omitempty"`
	Variable []Variable    `json:"variable,omitempty"`
}

func (u *URL) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = *ParseURL(s)
		return nil
	}
	type plain URL
	var raw struct {
		plain
		Path json.RawMessage `json:"path"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = URL(raw.plain)
	if len(raw.Path) > 0 && !isNull(raw.Path) {
		if raw.Path[0] == '"' {
			var s string
			if err := json.Unmarshal(raw.Path, &s); err != nil {
				return err
			}
			u.Path = splitPath(s)
		} else {
			var segs []PathSegment
			if err := json.Unmarshal(raw.Path, &segs); err != nil {
				return fmt.Errorf("url path: %w", err)
			}
			if segs == nil {
				segs = []PathSegment{}
			}
			u.Path = segs
		}
	}
	// An object carrying only "raw" is treated like a string URL.
	if u.Raw != "" && len(u.Host) == 0 && u.Path == nil {
		parsed := ParseURL(u.Raw)
		u.Protocol = firstNonEmpty(u.Protocol, parsed.Protocol)
		u.Host = parsed.Host
		u.Path = parsed.Path
		u.Port = firstNonEmpty(u.Port, parsed.Port)
		if u.Query == nil {
			u.Query = parsed.Query
		}
	}
	return nil
}

// ParseURL splits a raw Postman URL ("{{base}}/users/:id?x=1") into its parts.
// Variable placeholders are kept verbatim.
func ParseURL(raw string) *URL {
	u := &URL{Raw: raw}
	rest := strings.TrimSpace(raw)
	if rest == "" {
		return u
	}
	if i := strings.Index(rest, "#"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.Index(rest, "?"); i >= 0 {
		u.Query = parseQuery(rest[i+1:])
		rest = rest[:i]
	}
	if i := strings.Index(rest, "://"); i >= 0 {
		u.Protocol = rest[:i]
		rest = rest[i+3:]
	}
	hostPart := rest
	if i := strings.Index(rest, "/"); i >= 0 {
		hostPart = rest[:i]
		u.Path = splitPath(rest[i+1:])
	}
	// "host:port", but not a "{{var}}" host or an IPv6 literal.
	if i := strings.LastIndex(hostPart, ":"); i >= 0 && !strings.Contains(hostPart[i:], "}") && !strings.HasSuffix(hostPart, "]") {
		u.Port = hostPart[i+1:]
		hostPart = hostPart[:i]
	}
	if hostPart != "" {
		u.Host = strings.Split(hostPart, ".")
	}
	return u
}

func splitPath(p string) []PathSegment {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return []PathSegment{}
	}
	parts := strings.Split(p, "/")
	segs := make([]PathSegment, 0, len(parts))
	for _, part := range parts {
		segs = append(segs, PathSegment{Value: part})
	}
	return segs
}

func parseQuery(q string) []QueryParam {
	if q == "" {
		return nil
	}
	var out []QueryParam
	for _, pair := range strings.Split(q, "&") {
		if pair == "" {
			continue
		}
		key, value, hasValue := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		qp := QueryParam{Key: key}
		if hasValue {
			if v, err := url.QueryUnescape(value); err == nil {
				value = v
			}
			qp.Value = &value
		}
		out = append(out, qp)
	}
	return out
}

// Host is a list of host labels; a string host is split on ".".
type Host []string

func (h *Host) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != "" {
			*h = strings.Split(s, ".")
		}
		return nil
	}
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("url host: %w", err)
	}
	*h = parts
	return nil
}

// PathSegment is a string or a {type, value} object.
type PathSegment struct {
	Type  string `json:"type,omitempty"`
	Value string `json:"value,omitempty"`
}

func (p *PathSegment) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &p.Value)
	}
	type plain PathSegment
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = PathSegment(v)
	return nil
}

type QueryParam struct {
	Key         string       `json:"key,omitempty"`
	Value       *string      `json:"value,omitempty"`
	Description *Description `json:"description,omitempty"`
	Disabled    bool         `json:"disabled,omitempty"`
}

type Header struct {
	Key         string       `json:"key"`
	Value       string       `json:"value"`
	Description *Description `json:"description,omitempty"`
	Disabled    bool         `json:"disabled,omitempty"`
}

// Headers is a header list; a raw "Key: Value" block is split into entries.
type Headers []Header

func (h *Headers) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		var out Headers
		for _, line := range strings.Split(s, "\n") {
			key, value, ok := strings.Cut(line, ":")
			if !ok || strings.TrimSpace(key) == "" {
				continue
			}
			out = append(out, Header{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
		}
		*h = out
		return nil
	}
	var list []Header
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	*h = list
	return nil
}

// Get returns the value of the first header matching key case-insensitively.
func (h Headers) Get(key string) (string, bool) {
	for _, hdr := range h {
		if strings.EqualFold(hdr.Key, key) {
			return hdr.Value, true
		}
	}
	return "", false
}

// BodyMode enumerates Postman request body modes.
type BodyMode string

const (
	BodyRaw        BodyMode = "raw"
	BodyURLEncoded BodyMode = "urlencoded"
	BodyFormData   BodyMode = "formdata"
	BodyFile       BodyMode = "file"
	BodyGraphQL    BodyMode = "graphql"
)

type Body struct {
	Mode       BodyMode     `json:"mode,omitempty"`
	Raw        *string      `json:"raw,omitempty"`
	URLEncoded []FormParam  `json:"urlencoded,omitempty"`
	FormData   []FormParam  `json:"formdata,omitempty"`
	Disabled   bool         `json:"disabled,omitempty"`
	Options    *BodyOptions `json:"options,omitempty"`
}

type BodyOptions struct {
	Raw *struct {
		Language string `json:"language,omitempty"`
	} `json:"raw,omitempty"`
}

type FormParam struct {
	Key         string       `json:"key"`
	Value       *string      `json:"value,omitempty"`
	Type        string       `json:"type,omitempty"`
	Description *Description `json:"description,omitempty"`
	Disabled    bool         `json:"disabled,omitempty"`
}

// Response is a saved example response.
type Response struct {
	Name   *string `json:"name,omitempty"`
	Status string  `json:"status,omitempty"`
	Code   *int    `json:"code,omitempty"`
	Header Headers `json:"header,omitempty"`
	Body   *string `json:"body,omitempty"`
}

// Variable is a collection or path variable. Value holds any JSON value.
type Variable struct {
	ID          string       `json:"id,omitempty"`
	Key         *string      `json:"key,omitempty"`
	Value       any          `json:"value,omitempty"`
	Type        string       `json:"type,omitempty"`
	Description *Description `json:"description,omitempty"`
	Disabled    bool         `json:"disabled,omitempty"`
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
