package function

import "fmt"

// UnknownFunctionError indicates that no function is registered under Name.
type UnknownFunctionError struct {
	Name string
}

// Error returns the error message.
func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function %q", e.Name)
}

// InvocationError wraps a failure raised by a registered function.
type InvocationError struct {
	Name  string
	Cause error
}

// Error returns the error message.
func (e *InvocationError) Error() string {
	return fmt.Sprintf("function %q failed: %v", e.Name, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *InvocationError) Unwrap() error {
	return e.Cause
}
