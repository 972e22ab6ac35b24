package transpile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mark3labs/postman2openapi/internal/collection"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func vars(kv ...any) collection.VariableTable {
	var list []collection.Variable
	for i := 0; i+1 < len(kv); i += 2 {
		list = append(list, collection.Variable{Key: strPtr(kv[i].(string)), Value: kv[i+1]})
	}
	return collection.NewVariableTable(list)
}

func TestResolve(t *testing.T) {
	t.Parallel()
	r := NewResolver(vars(
		"host", "api.example.com",
		"scheme", "https",
		"base", "{{scheme}}://{{host}}",
		"count", 3.0,
	), 0, nil)

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "no placeholders", "no placeholders"},
		{"single", "{{host}}", "api.example.com"},
		{"repeated", "{{host}}/{{host}}", "api.example.com/api.example.com"},
		{"nested", "{{base}}/v1", "https://api.example.com/v1"},
		{"unknown kept", "{{missing}}/{{host}}", "{{missing}}/api.example.com"},
		{"non-string kept", "n={{count}}", "n={{count}}"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Resolve(tc.in))
		})
	}
}

func TestResolve_KnownPlaceholdersFullyResolved(t *testing.T) {
	t.Parallel()
	r := NewResolver(vars("a", "1", "b", "2", "c", "{{a}}{{b}}"), 0, nil)
	out := r.Resolve("{{a}}-{{b}}-{{c}}-{{a}}")
	assert.Equal(t, "1-2-12-1", out)
	assert.NotContains(t, out, "{{")
}

func TestResolve_CycleTerminates(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := logrus.New()
	log.Out = &buf

	r := NewResolver(vars("a", "{{b}}", "b", "{{a}}"), 0, log)
	out := r.Resolve("{{a}}")
	assert.Contains(t, []string{"{{a}}", "{{b}}"}, out)
	assert.Contains(t, buf.String(), "budget exhausted")
}

func TestResolve_SelfReferenceGrowthIsBounded(t *testing.T) {
	t.Parallel()
	r := NewResolver(vars("x", "a{{x}}"), 5, nil)
	out := r.Resolve("{{x}}")
	assert.Equal(t, strings.Repeat("a", 5)+"{{x}}", out)
}

func TestResolve_BudgetCountsSubstitutions(t *testing.T) {
	t.Parallel()
	table := vars("a", "{{b}}", "b", "{{c}}", "c", "done")
	assert.Equal(t, "{{c}}", NewResolver(table, 2, nil).Resolve("{{a}}"))
	assert.Equal(t, "done", NewResolver(table, 3, nil).Resolve("{{a}}"))
}

func TestResolvePath(t *testing.T) {
	t.Parallel()
	r := NewResolver(vars("version", "v2", "loop", "{{loop}}"), 3, nil)

	assert.Equal(t, "v2", r.ResolvePath("{{version}}"))
	assert.Equal(t, "{userId}", r.ResolvePath("{{userId}}"))
	assert.Equal(t, "v2-{id}", r.ResolvePath("{{version}}-{{id}}"))
	// Budget exhaustion returns the text without the template rewrite.
	assert.Equal(t, "{{loop}}", r.ResolvePath("{{loop}}"))
}

func TestNewResolver_Defaults(t *testing.T) {
	t.Parallel()
	r := NewResolver(collection.VariableTable{}, -1, nil)
	require.NotNil(t, r.log)
	assert.Equal(t, DefaultCreditBudget, r.credits)
	assert.Equal(t, "{{x}}", r.Resolve("{{x}}"))
}
