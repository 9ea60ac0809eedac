package index

import "fmt"

// UnknownLevelError indicates an override naming a level the parameter does
// not declare.
type UnknownLevelError struct {
	Level string
}

// Error returns the error message.
func (e *UnknownLevelError) Error() string {
	return fmt.Sprintf("unknown level %q", e.Level)
}

// TooManyValuesError indicates more values than the index has levels.
type TooManyValuesError struct {
	Depth  int
	Values int
}

// Error returns the error message.
func (e *TooManyValuesError) Error() string {
	return fmt.Sprintf("%d values supplied for %d levels", e.Values, e.Depth)
}

// DepthMismatchError indicates a traversal config that does not describe the
// index it is applied to.
type DepthMismatchError struct {
	Want int
	Got  int
}

// Error returns the error message.
func (e *DepthMismatchError) Error() string {
	return fmt.Sprintf("traversal config has %d levels, index depth is %d", e.Got, e.Want)
}
