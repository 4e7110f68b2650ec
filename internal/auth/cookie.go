package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/CiscoTestAutomation/rest/pkg/models"
)

// SessionCookie logs in by POSTing an HTML form; the device answers
// with a session cookie the transport's jar retains. Platforms that
// pair the cookie with a CSRF token expose it at TokenURL and expect
// it back under TokenHeader on every call.
type SessionCookie struct {
	// LoginURL receives the x-www-form-urlencoded credential POST.
	LoginURL string

	// Form holds the login form fields.
	Form url.Values

	// TokenURL, when set, is fetched after login to obtain the CSRF
	// token sent back under TokenHeader.
	TokenURL string

	// TokenHeader names the CSRF header, e.g. "X-XSRF-TOKEN".
	TokenHeader string

	mu    sync.Mutex
	token string
}

// Login implements Strategy
func (c *SessionCookie) Login(ctx context.Context, s SessionDoer, timeout time.Duration) error {
	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	body := []byte(c.Form.Encode())

	resp, respBody, err := s.Do(ctx, http.MethodPost, c.LoginURL, headers, body, timeout)
	if err != nil {
		return err
	}
	// Form login endpoints answer 200 with an error page on bad
	// credentials; a login form in the body means rejection.
	if resp.StatusCode != http.StatusOK || strings.Contains(string(respBody), "<html>") {
		return models.NewRequestFailure(http.MethodPost, c.LoginURL, resp.StatusCode,
			[]int{http.StatusOK}, respBody)
	}

	if c.TokenURL == "" {
		return nil
	}
	resp, respBody, err = s.Do(ctx, http.MethodGet, c.TokenURL, nil, nil, timeout)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return models.NewRequestFailure(http.MethodGet, c.TokenURL, resp.StatusCode,
			[]int{http.StatusOK}, respBody)
	}
	c.mu.Lock()
	c.token = string(respBody)
	c.mu.Unlock()
	return nil
}

// Apply implements Strategy. The session cookie travels in the jar;
// only the CSRF token needs attaching here.
func (c *SessionCookie) Apply(headers map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.TokenHeader != "" {
		headers[c.TokenHeader] = c.token
	}
}

// Invalidate implements Strategy
func (c *SessionCookie) Invalidate(ctx context.Context, s SessionDoer, timeout time.Duration) error {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	return nil
}

// Token returns the held CSRF token, empty when logged out.
func (c *SessionCookie) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}
