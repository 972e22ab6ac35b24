// Package transpile converts a Postman collection into an OpenAPI 3.0.3
// document.
//
// The conversion is a single synchronous walk over the item tree. Folders
// become tags, requests become operations, and example payloads are turned
// into schemas by structural inference. Malformed or missing pieces of the
// collection are skipped rather than reported.
package transpile

import (
	"context"
	"errors"
	"io"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/postman2openapi/internal/collection"
	"github.com/sirupsen/logrus"
)

// OpenAPIVersion is the only document version the transpiler produces.
const OpenAPIVersion = "3.0.3"

const documentVersion = "1.0.0"

// ErrNilCollection is returned by Transpile when no collection is supplied.
var ErrNilCollection = errors.New("transpile: nil collection")

// Settings controls a Transpile run.
type Settings struct {
	Logger       logrus.FieldLogger
	CreditBudget int
}

// DefaultSettings returns settings with a discarding logger and the default
// credit budget.
func DefaultSettings() Settings {
	return Settings{Logger: discardLogger(), CreditBudget: DefaultCreditBudget}
}

// Option configures a Transpile run.
type Option func(*Settings)

// WithLogger routes diagnostics to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Settings) {
		if l != nil {
			s.Logger = l
		}
	}
}

// WithCreditBudget sets the per-string substitution budget. Values below one
// keep the default.
func WithCreditBudget(n int) Option {
	return func(s *Settings) {
		if n > 0 {
			s.CreditBudget = n
		}
	}
}

// state is the accumulator shared by one walk: the document under
// construction, the resolver over the collection variables and the
// operation-id registry.
type state struct {
	ctx      context.Context
	doc      *openapi3.T
	resolver *Resolver
	ids      *OperationIDs
	log      logrus.FieldLogger
}

// Transpile builds an OpenAPI document from c. It fails only when c is nil or
// ctx is cancelled; everything else degrades to a smaller document.
func Transpile(ctx context.Context, c *collection.Collection, opts ...Option) (*openapi3.T, error) {
	if c == nil {
		return nil, ErrNilCollection
	}
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	vars := collection.NewVariableTable(c.Variable)
	st := &state{
		ctx:      ctx,
		resolver: NewResolver(vars, settings.CreditBudget, settings.Logger),
		ids:      newOperationIDs(),
		log:      settings.Logger,
	}
	st.doc = &openapi3.T{
		OpenAPI: OpenAPIVersion,
		Info: &openapi3.Info{
			Title:       c.Info.Name,
			Description: st.resolver.Resolve(c.Info.Description.Text()),
			Version:     documentVersion,
		},
		Paths: openapi3.Paths{},
	}

	st.log.WithFields(logrus.Fields{
		"collection": c.Info.Name,
		"variables":  vars.Len(),
	}).Debug("transpiling collection")

	if err := st.walk(c.Items, nil); err != nil {
		return nil, err
	}
	return st.doc, nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}
