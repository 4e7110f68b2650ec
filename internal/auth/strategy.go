// Package auth implements the credential acquisition strategies the
// platform adapters share: bearer-token login, plain basic auth and
// form-based session cookies. A strategy knows how to acquire its
// credential, attach it to outgoing requests and invalidate it; the
// adapter decides when each happens.
package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"
)

// SessionDoer is the slice of the transport session the strategies
// need: a single classified HTTP attempt.
type SessionDoer interface {
	Do(ctx context.Context, method, rawURL string, headers map[string]string, body []byte, timeout time.Duration) (*http.Response, []byte, error)
}

// Strategy is the per-platform credential lifecycle.
type Strategy interface {
	// Login acquires the credential, issuing the platform's login
	// call if it has one.
	Login(ctx context.Context, s SessionDoer, timeout time.Duration) error

	// Apply attaches the current credential to an outgoing request's
	// headers. Called fresh for every request.
	Apply(headers map[string]string)

	// Invalidate clears local credential state, best-effort revoking
	// the remote session first where the platform supports it.
	Invalidate(ctx context.Context, s SessionDoer, timeout time.Duration) error
}

// Basic authenticates every request with a basic-auth header and has
// no login round trip.
type Basic struct {
	Username string
	Password string
}

// Login implements Strategy; basic-auth platforms have no login call.
func (b *Basic) Login(ctx context.Context, s SessionDoer, timeout time.Duration) error {
	return nil
}

// Apply implements Strategy
func (b *Basic) Apply(headers map[string]string) {
	headers["Authorization"] = "Basic " + base64.StdEncoding.EncodeToString(
		[]byte(b.Username+":"+b.Password))
}

// Invalidate implements Strategy
func (b *Basic) Invalidate(ctx context.Context, s SessionDoer, timeout time.Duration) error {
	return nil
}
