package spec

import (
	"context"
	"errors"

	"github.com/getkin/kin-openapi/openapi3"
)

// Validate checks doc against the OpenAPI 3.0 rules kin-openapi enforces.
// Failures are returned as *SpecError with code ValidationError.
func Validate(ctx context.Context, doc *openapi3.T, opts ...openapi3.ValidationOption) error {
	if doc == nil {
		return &SpecError{Code: ValidationError, Message: "spec: nil document"}
	}
	if err := doc.Validate(ctx, opts...); err != nil {
		return mapValidateErr(err)
	}
	return nil
}

// IsValidationError reports whether err is a *SpecError raised by Validate.
func IsValidationError(err error) bool {
	var se *SpecError
	return errors.As(err, &se) && se.Code == ValidationError
}
