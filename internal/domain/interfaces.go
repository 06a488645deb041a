package domain

import "context"

// Transport is the authenticated call boundary to the remote API. It
// carries no cross-call state beyond the fixed auth headers, so stubbing it
// in tests is a three-method exercise.
type Transport interface {
	// GetJSON performs a GET request and decodes the JSON response into out.
	GetJSON(ctx context.Context, path string, out any) error

	// PostJSON performs a POST request with a JSON body and decodes the
	// JSON response into out.
	PostJSON(ctx context.Context, path string, body, out any) error

	// Close releases transport resources.
	Close() error
}
