package tool

import "fmt"

// ErrToolNotFound is returned when a tool call references an unregistered tool.
type ErrToolNotFound struct {
	Name string
}

func (e *ErrToolNotFound) Error() string {
	return fmt.Sprintf("tool: not found: %s", e.Name)
}

// ErrToolExecution wraps an error returned by, or a panic raised in, a
// tool handler. It is recorded as a failed tool result and never ends a run.
type ErrToolExecution struct {
	Name     string
	Err      error
	Panicked bool
}

func (e *ErrToolExecution) Error() string {
	if e.Panicked {
		return fmt.Sprintf("tool: %s panicked: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("tool: %s execution failed: %v", e.Name, e.Err)
}

func (e *ErrToolExecution) Unwrap() error {
	return e.Err
}

// ErrToolAlreadyRegistered is returned when registering a tool with a duplicate name.
type ErrToolAlreadyRegistered struct {
	Name string
}

func (e *ErrToolAlreadyRegistered) Error() string {
	return fmt.Sprintf("tool: already registered: %s", e.Name)
}

// ErrInvalidArguments is returned when tool arguments do not decode into
// the handler's argument type.
type ErrInvalidArguments struct {
	Err error
}

func (e *ErrInvalidArguments) Error() string {
	return fmt.Sprintf("invalid arguments: %v", e.Err)
}

func (e *ErrInvalidArguments) Unwrap() error {
	return e.Err
}

// ReportedError is a failure signalled by the tool's own output, such as
// {"error": "..."} or {"success": false}.
type ReportedError struct {
	Message string
}

func (e *ReportedError) Error() string {
	return e.Message
}
