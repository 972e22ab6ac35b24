package spec

import (
	"errors"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrorCode categorizes document errors for clearer handling and messaging.
type ErrorCode string

const (
	ParseError      ErrorCode = "ParseError"
	ValidationError ErrorCode = "ValidationError"
	EncodeError     ErrorCode = "EncodeError"
)

// SpecError is a structured error with an optional JSON Pointer into the
// offending document.
type SpecError struct {
	Code        ErrorCode
	Message     string
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

func mapValidateErr(err error) error {
	return &SpecError{Code: ValidationError, Message: err.Error(), JSONPointer: extractJSONPointer(err), Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	// Take the first entry of a MultiError.
	var me openapi3.MultiError
	if errors.As(err, &me) && len(me) > 0 {
		return extractJSONPointer(me[0])
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	if m := jsonPtrRe.FindString(err.Error()); m != "" {
		return m
	}
	return ""
}
