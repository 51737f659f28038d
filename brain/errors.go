package brain

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError indicates the request never produced a usable HTTP
// response (connection failure, DNS, timeout at the network layer).
type TransportError struct {
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string { return fmt.Sprintf("transport error: %v", e.Err) }

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *TransportError) Unwrap() error { return e.Err }

// ProviderError indicates the remote service answered with a non-success
// status. Status carries the HTTP status code when known.
type ProviderError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (%d): %s", e.Status, e.Message)
}

// MalformedResponseError indicates a reply that could not be parsed into
// the normalized Response shape.
type MalformedResponseError struct {
	Reason string
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %s", e.Reason)
}

// Retryable reports whether a completion failure is worth retrying:
// network transport failures, rate limiting and server-side errors. Parse
// failures and client errors are terminal.
func Retryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Status == http.StatusTooManyRequests || pe.Status >= 500
	}
	return false
}
