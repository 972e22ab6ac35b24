package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/postman2openapi/internal/collection"
	"github.com/mark3labs/postman2openapi/internal/spec"
)

var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

// friendlyError maps structured loader and document errors into usage errors
// carrying their location details. Other errors pass through unchanged.
func friendlyError(err error) error {
	var ce *collection.CollectionError
	if errors.As(err, &ce) {
		msg := withPrefix("collection: ", ce.Message)
		if ce.Location != "" {
			msg = fmt.Sprintf("%s\nLocation: %s", msg, ce.Location)
		}
		return newUsageError(msg)
	}
	var se *spec.SpecError
	if errors.As(err, &se) {
		msg := withPrefix("spec: ", se.Message)
		if se.JSONPointer != "" {
			msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
		}
		return newUsageError(msg)
	}
	return err
}

func withPrefix(prefix, msg string) string {
	if strings.HasPrefix(msg, prefix) {
		return msg
	}
	return prefix + msg
}
