package transport_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CiscoTestAutomation/rest/internal/transport"
	"github.com/CiscoTestAutomation/rest/pkg/models"
)

func newSession(t *testing.T) *transport.Session {
	t.Helper()
	t.Setenv("http_proxy", "")
	t.Setenv("HTTP_PROXY", "")
	cfg := &models.ConnectionConfig{
		Device:   "test-device",
		Platform: models.PlatformNXOS,
		Host:     "ignored",
	}
	require.NoError(t, cfg.Normalize())
	s, err := transport.NewSession(cfg, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestSession_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok": true}`)
	}))
	defer srv.Close()

	s := newSession(t)
	defer s.Close()

	resp, body, err := s.Do(context.Background(), http.MethodGet, srv.URL,
		map[string]string{"Content-Type": "application/json"}, nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok": true}`, string(body))
}

func TestSession_DoTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	s := newSession(t)
	defer s.Close()

	_, _, err := s.Do(context.Background(), http.MethodGet, srv.URL, nil, nil, 50*time.Millisecond)
	var timeoutErr *models.TimeoutError
	assert.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 50*time.Millisecond, timeoutErr.Timeout)
}

func TestSession_DoConnectionRefused(t *testing.T) {
	// Grab a port nothing listens on.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	s := newSession(t)
	defer s.Close()

	_, _, err = s.Do(context.Background(), http.MethodGet, "http://"+addr+"/x", nil, nil, time.Second)
	var transient *models.TransientTransportError
	assert.ErrorAs(t, err, &transient)
}

func TestSession_CookiesRetained(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "APIC-cookie", Value: "abc"})
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := newSession(t)
	defer s.Close()

	_, _, err := s.Do(context.Background(), http.MethodPost, srv.URL+"/login", nil, nil, time.Second)
	require.NoError(t, err)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	cookies := s.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, "APIC-cookie", cookies[0].Name)
	assert.Equal(t, "abc", cookies[0].Value)
}

func TestSession_IDsAreUnique(t *testing.T) {
	a := newSession(t)
	b := newSession(t)
	defer a.Close()
	defer b.Close()
	assert.NotEqual(t, a.ID(), b.ID())
}
