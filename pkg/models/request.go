package models

import (
	"time"
)

// RetryPolicy is the fixed-count, fixed-delay retry applied to
// transient transport errors only. A zero policy disables retries.
type RetryPolicy struct {
	Retries int
	Wait    time.Duration
}

// Result is the decoded outcome of a completed HTTP exchange: the
// parsed payload plus the raw status code. An empty body (e.g. a 204)
// yields a nil Decoded with no error.
type Result struct {
	StatusCode int
	Body       []byte
	Decoded    any
}

// Map returns the decoded payload as a structured mapping, or nil if
// the response was not a JSON object.
func (r *Result) Map() map[string]any {
	if m, ok := r.Decoded.(map[string]any); ok {
		return m
	}
	return nil
}

// Text returns the raw response body as a string.
func (r *Result) Text() string { return string(r.Body) }

// StatusIn reports whether the result's status code is a member of
// the given set. An empty set accepts any 2xx status.
func StatusIn(status int, expected []int) bool {
	if len(expected) == 0 {
		return status >= 200 && status < 300
	}
	for _, code := range expected {
		if status == code {
			return true
		}
	}
	return false
}
