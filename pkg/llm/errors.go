package llm

import (
	"fmt"
	"strings"
)

// InvalidInputError reports a missing or blank required field. No model call
// is made when it is returned.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid input: %s is required", e.Field)
}

// ModelError reports a failed model call or a response with no usable text.
// Transport, quota and content-shape failures are not distinguished.
type ModelError struct {
	Op    string
	Cause error
}

func (e *ModelError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model call %s failed: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("model call %s failed", e.Op)
}

func (e *ModelError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError reports model text that could not be decoded into
// the requested shape. Raw holds the text as received.
type MalformedResponseError struct {
	Target string
	Raw    string
	Cause  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %v", e.Target, e.Cause)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

func requireText(field, value string) (err error) {
	if strings.TrimSpace(value) == "" {
		err = &InvalidInputError{Field: field}
	}
	return err
}
