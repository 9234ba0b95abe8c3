package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrLoginFailed      = fmt.Errorf("invalid username or password")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNotFound           = fmt.Errorf("not found")
	ErrReleaseNotFound    = fmt.Errorf("release %w", ErrNotFound)
	ErrTaskNotFound       = fmt.Errorf("task %w", ErrNotFound)

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrNotConfirmed    = fmt.Errorf("operation not confirmed")
)
