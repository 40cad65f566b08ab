package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrRequestFailed is matched by every *RequestFailedError.
	ErrRequestFailed = errors.New("request failed")

	// ErrNetwork is matched by every *NetworkError.
	ErrNetwork = errors.New("network error")

	// ErrUnsupportedOperation is returned when a resource has no binding for a verb.
	// No request is sent.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrEmptyEndpoint is returned by Call when the endpoint is empty.
	ErrEmptyEndpoint = errors.New("endpoint is required")

	// ErrMissingToken is returned when login or registration succeeds without a token.
	ErrMissingToken = errors.New("response did not include a token")
)

// RequestFailedError is returned when the backend answers with a non-2xx status.
type RequestFailedError struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// StatusText is the reason phrase, e.g. "Internal Server Error".
	StatusText string
	// Message is the backend's "message" field, or "HTTP <code>: <text>" when
	// the body carried none.
	Message string
	// Body is the raw response body.
	Body []byte
}

// Error returns Message unchanged so it can be shown to the user as is.
func (e *RequestFailedError) Error() string {
	return e.Message
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrRequestFailed).
func (e *RequestFailedError) Is(target error) bool {
	return target == ErrRequestFailed
}

// NetworkError is returned when no response was received: DNS failure,
// refused connection, TLS failure, timeout or cancellation.
type NetworkError struct {
	Method string
	URL    string
	// Cause is the error returned by the HTTP client.
	Cause error
}

// Error returns a human-readable description of the transport failure.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.URL, e.Cause)
}

// Unwrap returns the underlying cause, so errors.Is(err, context.DeadlineExceeded)
// works for timeouts.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrNetwork).
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// newRequestFailed builds the error for a non-2xx response, preferring the
// body's "message" field.
func newRequestFailed(code int, statusText string, body []byte) *RequestFailedError {
	msg := messageFromBody(body)
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d: %s", code, statusText)
	}
	return &RequestFailedError{
		StatusCode: code,
		StatusText: statusText,
		Message:    msg,
		Body:       body,
	}
}
