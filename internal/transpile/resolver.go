package transpile

import (
	"regexp"
	"strings"

	"github.com/mark3labs/postman2openapi/internal/collection"
	"github.com/sirupsen/logrus"
)

// DefaultCreditBudget bounds how many substitutions a single Resolve call may
// perform. It is the only guard against self-referencing variables.
const DefaultCreditBudget = 20

var (
	variableRe    = regexp.MustCompile(`\{\{([^{}]*?)\}\}`)
	uriTemplateRe = regexp.MustCompile(`\{([^{}]*?)\}`)
)

// Resolver substitutes {{name}} placeholders with values from a variable table.
type Resolver struct {
	vars    collection.VariableTable
	credits int
	log     logrus.FieldLogger
}

// NewResolver returns a resolver over vars. A non-positive budget falls back to
// DefaultCreditBudget.
func NewResolver(vars collection.VariableTable, credits int, log logrus.FieldLogger) *Resolver {
	if credits <= 0 {
		credits = DefaultCreditBudget
	}
	if log == nil {
		log = discardLogger()
	}
	return &Resolver{vars: vars, credits: credits, log: log}
}

// Resolve inlines known variables into text. Unknown names, non-string values
// and placeholders left over when the budget runs out stay in the output.
func (r *Resolver) Resolve(text string) string {
	return r.resolve(text, r.credits, identity)
}

// ResolvePath is Resolve for path segments: placeholders that survive
// resolution are rewritten from {{name}} to the {name} template form.
func (r *Resolver) ResolvePath(text string) string {
	return r.resolve(text, r.credits, toURITemplate)
}

func (r *Resolver) resolve(text string, credits int, render func(string) string) string {
	if credits == 0 {
		if variableRe.MatchString(text) {
			r.log.WithField("text", text).Warn("variable substitution budget exhausted")
		}
		return text
	}
	for _, m := range variableRe.FindAllStringSubmatch(text, -1) {
		value, ok := r.vars.String(m[1])
		if !ok {
			continue
		}
		// One placeholder per pass; the result is re-scanned with one credit less.
		return r.resolve(strings.ReplaceAll(text, m[0], value), credits-1, render)
	}
	return render(text)
}

func identity(s string) string { return s }

func toURITemplate(s string) string {
	return variableRe.ReplaceAllString(s, "{$1}")
}
