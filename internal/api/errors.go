package api

import (
	"fmt"
	"net/http"
)

// DefaultServerMessage is shown when the server fails without saying why.
const DefaultServerMessage = "generation failed"

// NetworkError is a transport-level failure reaching the generator.
// It is safe for the user to resubmit.
type NetworkError struct {
	Op      string
	Err     error
	Timeout bool
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: request timed out", e.Op)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError means the generator was reachable but reported failure,
// either through a non-2xx status or a success:false envelope.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// newStatusError builds a ServerError for a non-2xx response.
func newStatusError(status int, message string) *ServerError {
	if message == "" {
		message = fmt.Sprintf("server returned %d %s", status, http.StatusText(status))
	}
	return &ServerError{StatusCode: status, Message: message}
}
