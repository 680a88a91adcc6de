package client

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationRequired means there is no usable credential: the
	// access token is missing or expired and the refresh either failed or
	// was impossible. The caller has to log in again.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrInvalidCredentials is returned when login or register is
	// rejected by the server.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrConflict reports a profile update colliding with an existing
	// username or email.
	ErrConflict = errors.New("email or username already in use")

	// ErrDecoding means a success response body did not match the
	// expected shape.
	ErrDecoding = errors.New("failed to decode response")

	ErrUploadExpired   = errors.New("upload credential expired")
	ErrUploadFailed    = errors.New("media upload failed")
	ErrMediaResolution = errors.New("failed to resolve signed media URLs")
)

// ServerError is any unexpected HTTP status that is not part of the retry
// or conflict contracts. It is never retried automatically.
type ServerError struct {
	Status int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned status %d", e.Status)
}

// TransportError wraps a network-layer failure (timeout, connection reset).
// The operation is not retried; the caller decides whether to re-invoke.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
