package service

import "fmt"

// ValidationError reports a missing or malformed input field. No mutation
// was performed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NotFoundError reports an unknown resource id or name.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// ExternalAPIError reports a failed call to the video host. Previously
// committed work is kept; the current pass is aborted.
type ExternalAPIError struct {
	Operation string
	Err       error
}

func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("video host call %s failed: %v", e.Operation, e.Err)
}

func (e *ExternalAPIError) Unwrap() error {
	return e.Err
}
