package types

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Registry.Resolve for unregistered codes.
var ErrNotFound = errors.New("type not found")

// CoercionError indicates malformed textual input for a type.
type CoercionError struct {
	Type  string
	Text  string
	Cause error
}

// Error returns the error message.
func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %q to %s: %v", e.Text, e.Type, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *CoercionError) Unwrap() error {
	return e.Cause
}
