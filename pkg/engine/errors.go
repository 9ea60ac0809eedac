package engine

import (
	"errors"
	"fmt"

	"mercator-hq/paramengine/pkg/types"
)

// ErrInvalidConfig indicates invalid engine configuration.
var ErrInvalidConfig = errors.New("invalid engine configuration")

// UnknownParameterError indicates that no parameter is registered under the name.
type UnknownParameterError struct {
	Parameter string
	Cause     error
}

// Error returns the error message.
func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("unknown parameter %q", e.Parameter)
}

// Unwrap returns the underlying cause.
func (e *UnknownParameterError) Unwrap() error {
	return e.Cause
}

// ParameterValueNotFoundError indicates that no entry of a non-nullable
// parameter matched the level values.
type ParameterValueNotFoundError struct {
	Parameter string
	Values    []string
}

// Error returns the error message.
func (e *ParameterValueNotFoundError) Error() string {
	return fmt.Sprintf("parameter %q: no value found for levels %q", e.Parameter, e.Values)
}

// InvalidLevelValuesError indicates a level value vector whose length differs
// from the parameter's input level count.
type InvalidLevelValuesError struct {
	Parameter string
	Expected  int
	Values    []any
}

// Error returns the error message.
func (e *InvalidLevelValuesError) Error() string {
	return fmt.Sprintf("parameter %q: got %d level values %v, expected %d", e.Parameter, len(e.Values), e.Values, e.Expected)
}

// UndefinedLevelCreatorError indicates a level value that was not supplied and
// cannot be derived because the level has no level creator.
type UndefinedLevelCreatorError struct {
	Parameter string
	Level     string
	Position  int
}

// Error returns the error message.
func (e *UndefinedLevelCreatorError) Error() string {
	if e.Level != "" {
		return fmt.Sprintf("parameter %q: level %q has no level creator", e.Parameter, e.Level)
	}
	return fmt.Sprintf("parameter %q: level #%d has no level creator", e.Parameter, e.Position)
}

// InvalidFunctionReferenceError indicates an evaluated call whose resolved
// value is not a string naming a function.
type InvalidFunctionReferenceError struct {
	Parameter string
	Kind      types.Kind
}

// Error returns the error message.
func (e *InvalidFunctionReferenceError) Error() string {
	return fmt.Sprintf("parameter %q: value of kind %s cannot name a function", e.Parameter, e.Kind)
}

// QueryError wraps a failure from a lower layer, such as a level creator or
// type coercion, with the query it interrupted.
type QueryError struct {
	Parameter string
	Values    []any
	Cause     error
}

// Error returns the error message.
func (e *QueryError) Error() string {
	if e.Values != nil {
		return fmt.Sprintf("parameter %q levels %v: %v", e.Parameter, e.Values, e.Cause)
	}
	return fmt.Sprintf("parameter %q: %v", e.Parameter, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *QueryError) Unwrap() error {
	return e.Cause
}
