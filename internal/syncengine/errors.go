package syncengine

import "fmt"

// RunError is the structured cause chain surfaced on the ERROR event
// (spec §7 "emit ERROR with a structured cause chain (code, message,
// cause)").
type RunError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RunError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RunError) Unwrap() error {
	return e.Cause
}

func newRunError(code, message string, cause error) *RunError {
	return &RunError{Code: code, Message: message, Cause: cause}
}
