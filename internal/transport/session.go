// Package transport owns the HTTP session backing one device
// connection: the pooled client, TLS verification policy, proxy
// settings and per-call timeouts. It performs single attempts only;
// retries and status interpretation belong to the adapter.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CiscoTestAutomation/rest/pkg/models"
)

const (
	maxIdleConns    = 10
	idleConnTimeout = 90 * time.Second
)

// Session is one pooled HTTP session bound to a single device
// connection. It is created on connect and discarded on disconnect.
type Session struct {
	id             uuid.UUID
	device         string
	client         *http.Client
	defaultTimeout time.Duration
	logger         *zap.Logger
}

// NewSession builds a session from a normalized connection config.
// The proxy map was frozen at config normalization; nothing here
// reads the environment.
func NewSession(cfg *models.ConnectionConfig, logger *zap.Logger) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	t := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !cfg.VerifySSL,
		},
		Proxy:           proxyFunc(cfg.Proxies),
		MaxIdleConns:    maxIdleConns,
		IdleConnTimeout: idleConnTimeout,
	}

	return &Session{
		id:             uuid.New(),
		device:         cfg.Device,
		client:         &http.Client{Transport: t, Jar: jar},
		defaultTimeout: cfg.Timeout,
		logger:         logger,
	}, nil
}

// ID returns the session identifier carried in log entries.
func (s *Session) ID() uuid.UUID { return s.id }

// Cookies returns the cookies the session currently holds for a URL.
func (s *Session) Cookies(u *url.URL) []*http.Cookie {
	return s.client.Jar.Cookies(u)
}

// Close releases idle pooled connections.
func (s *Session) Close() {
	s.client.CloseIdleConnections()
}

// Do sends one HTTP request and returns the response with its body
// fully read. timeout falls back to the connection default when zero.
// Network failures are classified: exceeded deadlines become
// TimeoutError, resets and refusals become TransientTransportError,
// anything else a ConnectionError. Status codes are not interpreted.
func (s *Session) Do(ctx context.Context, method, rawURL string, headers map[string]string, body []byte, timeout time.Duration) (*http.Response, []byte, error) {
	if timeout == 0 {
		timeout = s.defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("building %s request: %w", method, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	s.logger.Debug("Sending request",
		zap.String("session_id", s.id.String()),
		zap.String("method", method),
		zap.String("url", rawURL),
		zap.Duration("timeout", timeout),
	)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		observeError(s.device, method)
		return nil, nil, s.classify(method, rawURL, timeout, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		observeError(s.device, method)
		return nil, nil, s.classify(method, rawURL, timeout, err)
	}

	observeRequest(s.device, method, resp.StatusCode, time.Since(start))
	s.logger.Debug("Received response",
		zap.String("session_id", s.id.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	return resp, respBody, nil
}

// classify sorts a transport-level failure into the error taxonomy.
func (s *Session) classify(method, rawURL string, timeout time.Duration, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &models.TimeoutError{Method: method, URL: rawURL, Timeout: timeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &models.TimeoutError{Method: method, URL: rawURL, Timeout: timeout, Err: err}
	}
	if isTransient(err) {
		return &models.TransientTransportError{Method: method, URL: rawURL, Attempts: 1, Err: err}
	}
	return &models.ConnectionError{Device: s.device, Reason: "request failed", Err: err}
}

// isTransient reports whether the failure is the retryable kind:
// the peer reset or refused the connection, or cut the stream short.
func isTransient(err error) bool {
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF)
}

// proxyFunc builds the transport proxy callback from the frozen proxy
// map. The "no" entry is a comma-separated host suffix exclusion list.
func proxyFunc(proxies map[string]string) func(*http.Request) (*url.URL, error) {
	if len(proxies) == 0 {
		return nil
	}
	return func(req *http.Request) (*url.URL, error) {
		host := req.URL.Hostname()
		if noProxy, ok := proxies["no"]; ok {
			for _, suffix := range strings.Split(noProxy, ",") {
				suffix = strings.TrimSpace(suffix)
				if suffix != "" && strings.HasSuffix(host, suffix) {
					return nil, nil
				}
			}
		}
		raw, ok := proxies[req.URL.Scheme]
		if !ok {
			return nil, nil
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url %q: %w", raw, err)
		}
		return u, nil
	}
}

// statusLabel renders a status code as a metric label.
func statusLabel(code int) string { return strconv.Itoa(code) }
