package spec

import (
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// FilterOption configures which operations Filter keeps.
type FilterOption func(*filterConfig)

type filterConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[HttpMethod]struct{}
	pathRes     []*regexp.Regexp
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) FilterOption {
	return func(c *filterConfig) {
		if len(tags) == 0 {
			return
		}
		if c.includeTags == nil {
			c.includeTags = make(map[string]struct{}, len(tags))
		}
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			c.includeTags[t] = struct{}{}
		}
	}
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) FilterOption {
	return func(c *filterConfig) {
		if len(tags) == 0 {
			return
		}
		if c.excludeTags == nil {
			c.excludeTags = make(map[string]struct{}, len(tags))
		}
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			c.excludeTags[t] = struct{}{}
		}
	}
}

// WithMethods keeps only operations using one of the provided HTTP methods.
func WithMethods(methods []HttpMethod) FilterOption {
	return func(c *filterConfig) {
		if len(methods) == 0 {
			return
		}
		if c.methods == nil {
			c.methods = make(map[HttpMethod]struct{}, len(methods))
		}
		for _, m := range methods {
			c.methods[HttpMethod(strings.ToLower(string(m)))] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only operations whose path matches at least one of
// the provided regular expressions. An invalid pattern matches nothing.
func WithPathPatterns(patterns []string) FilterOption {
	return func(c *filterConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				re = regexp.MustCompile("a^$")
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

// Filter removes the operations of doc rejected by opts and returns how many
// were removed. A path item that loses its last operation is removed too.
func Filter(doc *openapi3.T, opts ...FilterOption) int {
	if doc == nil || len(opts) == 0 {
		return 0
	}
	cfg := &filterConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	removed := 0
	for p, item := range doc.Paths {
		if item == nil {
			continue
		}
		dropped, kept := 0, 0
		for _, s := range slots(item) {
			op := *s.op
			if op == nil {
				continue
			}
			if cfg.allow(s.method, p, op) {
				kept++
				continue
			}
			*s.op = nil
			dropped++
		}
		removed += dropped
		if dropped > 0 && kept == 0 {
			delete(doc.Paths, p)
		}
	}
	return removed
}

func (c *filterConfig) allow(method HttpMethod, path string, op *openapi3.Operation) bool {
	if len(c.methods) > 0 {
		if _, ok := c.methods[method]; !ok {
			return false
		}
	}
	if len(c.pathRes) > 0 {
		matched := false
		for _, re := range c.pathRes {
			if re.MatchString(path) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return allowByTags(cleanTags(op.Tags), c)
}

func allowByTags(tags []string, cfg *filterConfig) bool {
	if len(cfg.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := cfg.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := cfg.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}

// ParseMethods converts method names into HttpMethod values, ignoring blanks.
func ParseMethods(names []string) []HttpMethod {
	var out []HttpMethod
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			out = append(out, HttpMethod(n))
		}
	}
	return out
}
