package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Generic fallback messages. 4xx responses surface the server's message
// verbatim when present; 5xx and unreachable-server failures get their own
// distinct messages so the UI can tell "retry later" from "check your
// connection".
const (
	MsgServerError = "Server error. Please try again later."
	MsgOffline     = "Unable to reach the server. Please check your connection."
	MsgGeneric     = "Something went wrong. Please try again."
)

// APIError is an HTTP error response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
}

// ValidationError is a client-detected failure. It is raised before any
// network call and never mutates state.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// UserMessage converts any error from this package into the human-readable
// notice the UI shows.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= 500 {
			return MsgServerError
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return MsgGeneric
	}

	// No response at all: transport-level failure.
	return MsgOffline
}
