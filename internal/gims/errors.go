package gims

import "fmt"

// AuthenticationError means the access token could not be refreshed: the
// refresh token itself is invalid or expired. Not retried; the user has to
// obtain new tokens from GIMS.
type AuthenticationError struct {
	Detail string
}

func (e *AuthenticationError) Error() string {
	if e.Detail == "" {
		return "authentication failed"
	}
	return fmt.Sprintf("authentication failed: %s", e.Detail)
}

// AuthorizationError means the server rejected the call with 403. The token
// is valid but lacks permission, so no refresh is attempted.
type AuthorizationError struct {
	Detail string
}

func (e *AuthorizationError) Error() string {
	if e.Detail == "" {
		return "permission denied"
	}
	return fmt.Sprintf("permission denied: %s", e.Detail)
}

// NotFoundError maps HTTP 404.
type NotFoundError struct {
	Detail string
}

func (e *NotFoundError) Error() string {
	if e.Detail == "" {
		return "not found"
	}
	return fmt.Sprintf("not found: %s", e.Detail)
}

// ValidationError carries the server-provided message for 400 and any other
// HTTP error status that is not covered by a more specific type.
type ValidationError struct {
	StatusCode int
	Detail     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("GIMS API error (%d): %s", e.StatusCode, e.Detail)
}

// TransportError wraps a network-level failure: timeout, connection refused,
// TLS handshake failure. Never retried automatically.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StreamError means the SSE connection dropped mid-stream. Distinct from the
// timeout outcome, which is a normal completion.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("log stream error: %v", e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }
