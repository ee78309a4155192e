package tool

import "fmt"

// ErrToolNotFound is returned when a tool call references an unregistered tool.
type ErrToolNotFound struct {
	Name string
}

// Error returns a formatted error message including the tool name.
func (e *ErrToolNotFound) Error() string {
	return fmt.Sprintf("tool: not found: %s", e.Name)
}

// ErrToolAlreadyRegistered is returned when registering a tool with a
// duplicate name.
type ErrToolAlreadyRegistered struct {
	Name string
}

// Error returns a formatted error message including the duplicate tool name.
func (e *ErrToolAlreadyRegistered) Error() string {
	return fmt.Sprintf("tool: already registered: %s", e.Name)
}

// ErrMissingParam is returned when a required parameter is absent from the
// call arguments after defaults have been applied.
type ErrMissingParam struct {
	Tool  string
	Param string
}

// Error returns a formatted error message naming the tool and parameter.
func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("tool: %s: missing required parameter %q", e.Tool, e.Param)
}

// ErrInvalidParam wraps a coercion failure for a named parameter.
type ErrInvalidParam struct {
	Tool  string
	Param string
	Err   error
}

// Error returns a formatted error message naming the tool and parameter.
func (e *ErrInvalidParam) Error() string {
	return fmt.Sprintf("tool: %s: invalid parameter %q: %v", e.Tool, e.Param, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ErrInvalidParam) Unwrap() error {
	return e.Err
}
