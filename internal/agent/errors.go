// internal/agent/errors.go
package agent

import "fmt"

// CompletionError reports a failed or malformed completion-service call.
// Fatal for the current request; never retried by the loop.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion service failed: %v", e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// UnrecognizedCommandError reports model output whose first line matched no
// known command keyword. The raw text is carried for diagnosability.
type UnrecognizedCommandError struct {
	Raw string
}

func (e *UnrecognizedCommandError) Error() string {
	return fmt.Sprintf("unrecognized command: %q", e.Raw)
}

// ToolError reports a recognized command whose underlying browser action
// failed (missing selector, navigation failure). Fatal for the request.
type ToolError struct {
	Command string
	Err     error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Command, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }
