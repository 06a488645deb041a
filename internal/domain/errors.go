package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrAuth indicates the bearer token was rejected (401/403). Fatal for
	// the whole run: no domain can proceed without credentials.
	ErrAuth = errors.New("authentication failed")

	// ErrNotFound indicates a remote item is missing (404). Recovered
	// locally as a skipped entry.
	ErrNotFound = errors.New("not found")

	// ErrTransient indicates rate limiting or a server-side failure
	// (429/5xx) that may succeed on a later attempt.
	ErrTransient = errors.New("transient server error")

	// ErrNetwork indicates a connectivity failure (timeout, DNS, TLS).
	// Fatal for the current domain only.
	ErrNetwork = errors.New("network failure")
)

// APIError carries the request context for a failed remote call. It wraps
// one of the sentinel errors above, or a plain status failure for any other
// non-2xx response.
type APIError struct {
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api error for %s: status %d: %v", e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("api error for %s: %v", e.Path, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates an APIError wrapping err.
func NewAPIError(path string, statusCode int, err error) *APIError {
	return &APIError{Path: path, StatusCode: statusCode, Err: err}
}

// IsFatal reports whether err must abort the whole run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAuth)
}

// IsDomainFatal reports whether err must abort the current domain export.
// Sibling domains still run: domain outcomes are independent.
func IsDomainFatal(err error) bool {
	return errors.Is(err, ErrAuth) || errors.Is(err, ErrNetwork)
}

// IsRetryable reports whether an operation may be retried by a caller-level
// retry policy. Only transient server failures qualify.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}

// UserMessage renders err as a short actionable message categorized by
// kind, without transport stack traces.
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case errors.Is(err, ErrAuth):
		return "Authentication failed. Your bearer token may have expired. Run cmapsync init to set a new token."
	case errors.Is(err, ErrNotFound):
		if errors.As(err, &apiErr) {
			return fmt.Sprintf("Resource not found: %s. The ControlMap API may have changed.", apiErr.Path)
		}
		return "Resource not found. The ControlMap API may have changed."
	case errors.Is(err, ErrTransient):
		if errors.As(err, &apiErr) {
			return fmt.Sprintf("ControlMap server error (%d). Please try again later.", apiErr.StatusCode)
		}
		return "ControlMap server error. Please try again later."
	case errors.Is(err, ErrNetwork):
		return "Cannot connect to the ControlMap API. Check your network connection and API URL."
	case errors.As(err, &apiErr):
		return fmt.Sprintf("ControlMap API request failed (%d) for %s.", apiErr.StatusCode, apiErr.Path)
	}
	return err.Error()
}
