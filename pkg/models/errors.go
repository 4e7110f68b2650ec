package models

import (
	"errors"
	"fmt"
	"time"
)

// Base errors
var (
	ErrUnknownPlatform = errors.New("no adapter registered for platform")
	ErrNotConnected    = errors.New("device is not connected")
	ErrMissingPayload  = errors.New("payload is required for this method")
)

// ConfigurationError reports an invalid or incomplete connection
// configuration, including an unknown platform tag.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Unwrap returns the underlying error
func (e *ConfigurationError) Unwrap() error { return e.Err }

// ConnectionError reports a failure to establish or use a device
// connection: login rejection, unreachable host, TLS failure, or a
// verb call issued while disconnected.
type ConnectionError struct {
	Device string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("connection to %q failed: %s: %v", e.Device, e.Reason, e.Err)
	}
	return fmt.Sprintf("connection to %q failed: %s", e.Device, e.Reason)
}

// Unwrap returns the underlying error
func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError reports a call that exceeded its timeout. It is
// distinct from RequestFailure: the HTTP exchange never completed.
type TimeoutError struct {
	Method  string
	URL     string
	Timeout time.Duration
	Err     error
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s timed out after %s", e.Method, e.URL, e.Timeout)
}

// Unwrap returns the underlying error
func (e *TimeoutError) Unwrap() error { return e.Err }

// TransientTransportError is a retryable network-level failure
// (connection reset, refused, unexpected EOF). The adapter's retry
// policy consumes these; callers only see one after the retry budget
// is exhausted.
type TransientTransportError struct {
	Method   string
	URL      string
	Attempts int
	Err      error
}

// Error implements the error interface
func (e *TransientTransportError) Error() string {
	return fmt.Sprintf("%s %s failed after %d attempt(s): %v", e.Method, e.URL, e.Attempts, e.Err)
}

// Unwrap returns the underlying error
func (e *TransientTransportError) Unwrap() error { return e.Err }

// bodySnippetLimit caps the response body carried inside a
// RequestFailure so log lines stay readable.
const bodySnippetLimit = 512

// RequestFailure reports an HTTP exchange that completed but returned
// a status code outside the expected set.
type RequestFailure struct {
	Method   string
	URL      string
	Status   int
	Expected []int
	Body     string
}

// Error implements the error interface
func (e *RequestFailure) Error() string {
	return fmt.Sprintf("%s %s returned status %d, expected one of %v: %s",
		e.Method, e.URL, e.Status, e.Expected, e.Body)
}

// NewRequestFailure builds a RequestFailure, truncating the response
// body to a snippet.
func NewRequestFailure(method, url string, status int, expected []int, body []byte) *RequestFailure {
	snippet := string(body)
	if len(snippet) > bodySnippetLimit {
		snippet = snippet[:bodySnippetLimit] + "..."
	}
	return &RequestFailure{
		Method:   method,
		URL:      url,
		Status:   status,
		Expected: expected,
		Body:     snippet,
	}
}
