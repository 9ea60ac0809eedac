package prepared

import "fmt"

// UnresolvedTypeError indicates a level whose type code is not registered.
type UnresolvedTypeError struct {
	Parameter string
	Level     string
	Code      string
	Cause     error
}

// Error returns the error message.
func (e *UnresolvedTypeError) Error() string {
	return fmt.Sprintf("parameter %q level %s: unresolved type %q", e.Parameter, e.Level, e.Code)
}

// Unwrap returns the underlying cause.
func (e *UnresolvedTypeError) Unwrap() error {
	return e.Cause
}

// UnresolvedMatcherError indicates a level whose matcher code is not registered.
type UnresolvedMatcherError struct {
	Parameter string
	Level     string
	Code      string
	Cause     error
}

// Error returns the error message.
func (e *UnresolvedMatcherError) Error() string {
	return fmt.Sprintf("parameter %q level %s: unresolved matcher %q", e.Parameter, e.Level, e.Code)
}

// Unwrap returns the underlying cause.
func (e *UnresolvedMatcherError) Unwrap() error {
	return e.Cause
}

// EntryError indicates an entry that cannot be compiled, such as a value
// that does not parse as its level type.
type EntryError struct {
	Parameter string
	Entry     int
	Cause     error
}

// Error returns the error message.
func (e *EntryError) Error() string {
	return fmt.Sprintf("parameter %q entry %d: %v", e.Parameter, e.Entry, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *EntryError) Unwrap() error {
	return e.Cause
}
