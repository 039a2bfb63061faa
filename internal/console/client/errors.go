package client

import (
	"fmt"
	"net/http"
)

// TransportError means the request never produced a readable envelope: the
// connection failed or the body was not JSON.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Cause is the underlying failure without the request line.
func (e *TransportError) Cause() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// APIError is a {"success":false} reply. Message is empty when the server sent none.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (e *APIError) NotFound() bool { return e.Status == http.StatusNotFound }

func (e *APIError) Conflict() bool { return e.Status == http.StatusConflict }
