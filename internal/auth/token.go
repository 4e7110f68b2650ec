package auth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/CiscoTestAutomation/rest/pkg/models"
)

// BearerToken logs in by POSTing credentials to the platform's login
// endpoint, extracts an opaque token from the response and attaches
// it to every subsequent request under the configured header.
type BearerToken struct {
	// LoginURL receives the credential POST.
	LoginURL string

	// BuildLogin renders the login request body and headers.
	BuildLogin func() (body []byte, headers map[string]string, err error)

	// ExtractToken pulls the token out of a successful login response.
	ExtractToken func(body []byte) (string, error)

	// Header names the request header carrying the token, e.g.
	// "Authorization" or "X-F5-Auth-Token".
	Header string

	// Scheme is prepended to the token value ("Bearer " or empty).
	Scheme string

	// RevokeURL, when set, maps the live token to the resource
	// DELETEd on invalidation.
	RevokeURL func(token string) string

	mu       sync.Mutex
	token    string
	issuedAt time.Time
}

// Login implements Strategy
func (t *BearerToken) Login(ctx context.Context, s SessionDoer, timeout time.Duration) error {
	body, headers, err := t.BuildLogin()
	if err != nil {
		return err
	}
	resp, respBody, err := s.Do(ctx, http.MethodPost, t.LoginURL, headers, body, timeout)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return models.NewRequestFailure(http.MethodPost, t.LoginURL, resp.StatusCode,
			[]int{http.StatusOK}, respBody)
	}
	token, err := t.ExtractToken(respBody)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.token = token
	t.issuedAt = time.Now()
	t.mu.Unlock()
	return nil
}

// Apply implements Strategy
func (t *BearerToken) Apply(headers map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.token != "" {
		headers[t.Header] = t.Scheme + t.token
	}
}

// Invalidate implements Strategy. Revoke failures are swallowed by
// the caller; local state is always cleared.
func (t *BearerToken) Invalidate(ctx context.Context, s SessionDoer, timeout time.Duration) error {
	t.mu.Lock()
	token := t.token
	t.token = ""
	t.issuedAt = time.Time{}
	t.mu.Unlock()

	if token == "" || t.RevokeURL == nil {
		return nil
	}
	headers := map[string]string{t.Header: t.Scheme + token}
	resp, respBody, err := s.Do(ctx, http.MethodDelete, t.RevokeURL(token), headers, nil, timeout)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return models.NewRequestFailure(http.MethodDelete, t.RevokeURL(token), resp.StatusCode,
			[]int{http.StatusOK, http.StatusNoContent}, respBody)
	}
	return nil
}

// Token returns the currently held token, empty when logged out.
func (t *BearerToken) Token() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token
}

// IssuedAt returns when the current token was acquired.
func (t *BearerToken) IssuedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.issuedAt
}
