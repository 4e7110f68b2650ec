// Package adapters holds the per-platform connection adapters. Each
// adapter translates the uniform verb contract into its device
// family's URL layout, headers and payload conventions, and registers
// itself with the connector registry at startup.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CiscoTestAutomation/rest/internal/auth"
	"github.com/CiscoTestAutomation/rest/internal/transport"
	"github.com/CiscoTestAutomation/rest/pkg/connector"
	"github.com/CiscoTestAutomation/rest/pkg/models"
	"github.com/CiscoTestAutomation/rest/pkg/payload"
)

// connState is the adapter lifecycle state.
type connState int

const (
	stateDisconnected connState = iota
	stateAuthenticating
	stateConnected
)

// loginFunc performs the platform's login exchange. Adapters that
// probe a well-known resource instead of POSTing credentials supply
// their own; the default delegates to the auth strategy.
type loginFunc func(ctx context.Context, timeout time.Duration) error

// base carries the state machine, transport handle and request
// pipeline shared by every adapter. Adapters embed it and configure
// the fields below at construction.
type base struct {
	device   string
	cfg      *models.ConnectionConfig
	logger   *zap.Logger
	strategy auth.Strategy
	baseURL  string

	// defaults seed every call's options; verbExpected overrides the
	// expected-status set per HTTP method where the platform
	// documents one.
	defaults     connector.CallOptions
	verbExpected map[string][]int

	// login replaces the strategy login exchange when set.
	login loginFunc

	// headerHook lets an adapter finalize headers from the resolved
	// call options, e.g. RESTCONF content negotiation.
	headerHook func(o *connector.CallOptions)

	// connectRetry is the fixed retry applied to login transport
	// failures. Login rejections are never retried.
	connectRetry models.RetryPolicy

	// reloginOn lists the response statuses that trigger the
	// re-login-once, replay-once policy.
	reloginOn []int

	mu      sync.Mutex
	state   connState
	session *transport.Session
}

// newBase wires the common fields. Adapters fill in strategy, login
// and policy fields afterwards.
func newBase(cfg *models.ConnectionConfig, logger *zap.Logger) *base {
	return &base{
		device:  cfg.Device,
		cfg:     cfg,
		logger:  logger,
		baseURL: cfg.BaseURL(),
	}
}

// Connected implements connector.Connector
func (b *base) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == stateConnected
}

// Connect implements connector.Connector. It is idempotent while
// connected. Login transport failures are retried per connectRetry,
// overridable with WithRetry; login rejections and configuration
// errors surface immediately.
func (b *base) Connect(ctx context.Context, opts ...connector.Option) error {
	o := connector.Build(connector.CallOptions{}, opts...)
	timeout := o.Timeout
	if timeout == 0 {
		timeout = b.cfg.Timeout
	}
	retry := b.connectRetry
	if o.Retry != (models.RetryPolicy{}) {
		retry = o.Retry
	}

	b.mu.Lock()
	if b.state == stateConnected {
		b.mu.Unlock()
		return nil
	}
	b.state = stateAuthenticating
	b.mu.Unlock()

	b.logger.Info("Connecting to device",
		zap.String("device", b.device),
		zap.String("platform", string(b.cfg.Platform)),
		zap.String("base_url", b.baseURL),
	)

	sess, err := transport.NewSession(b.cfg, b.logger)
	if err != nil {
		b.setState(stateDisconnected)
		return &models.ConnectionError{Device: b.device, Reason: "session setup failed", Err: err}
	}
	b.mu.Lock()
	b.session = sess
	b.mu.Unlock()

	if err := b.loginWithRetry(ctx, timeout, retry); err != nil {
		sess.Close()
		b.mu.Lock()
		b.session = nil
		b.state = stateDisconnected
		b.mu.Unlock()
		var connErr *models.ConnectionError
		if errors.As(err, &connErr) {
			return err
		}
		return &models.ConnectionError{Device: b.device, Reason: "login failed", Err: err}
	}

	b.setState(stateConnected)
	b.logger.Info("Connected to device", zap.String("device", b.device))
	return nil
}

// loginWithRetry runs the platform login, retrying transport-level
// failures with the fixed connect policy.
func (b *base) loginWithRetry(ctx context.Context, timeout time.Duration, retry models.RetryPolicy) error {
	login := b.login
	if login == nil {
		login = func(ctx context.Context, timeout time.Duration) error {
			return b.strategy.Login(ctx, b.session, timeout)
		}
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = login(ctx, timeout)
		if err == nil {
			return nil
		}
		var reqErr *models.RequestFailure
		var cfgErr *models.ConfigurationError
		if errors.As(err, &reqErr) || errors.As(err, &cfgErr) {
			return err
		}
		if attempt >= retry.Retries {
			return err
		}
		b.logger.Warn("Login attempt failed, retrying",
			zap.String("device", b.device),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", retry.Wait),
			zap.Error(err),
		)
		if err := sleepCtx(ctx, retry.Wait); err != nil {
			return err
		}
	}
}

// Disconnect implements connector.Connector. Remote revoke failures
// are logged, never returned; local state is always cleared.
func (b *base) Disconnect(ctx context.Context, opts ...connector.Option) error {
	o := connector.Build(b.defaults, opts...)
	timeout := o.Timeout
	if timeout == 0 {
		timeout = b.cfg.Timeout
	}

	b.mu.Lock()
	if b.state == stateDisconnected {
		b.mu.Unlock()
		return nil
	}
	sess := b.session
	b.session = nil
	b.state = stateDisconnected
	b.mu.Unlock()

	b.logger.Info("Disconnecting from device", zap.String("device", b.device))
	if sess != nil {
		if err := b.strategy.Invalidate(ctx, sess, timeout); err != nil {
			b.logger.Warn("Session revoke failed",
				zap.String("device", b.device),
				zap.Error(err),
			)
		}
		sess.Close()
	}
	return nil
}

// Get implements connector.Connector
func (b *base) Get(ctx context.Context, resource string, opts ...connector.Option) (*models.Result, error) {
	return b.do(ctx, http.MethodGet, resource, nil, opts)
}

// Post implements connector.Connector
func (b *base) Post(ctx context.Context, resource string, pl any, opts ...connector.Option) (*models.Result, error) {
	return b.do(ctx, http.MethodPost, resource, pl, opts)
}

// Put implements connector.Connector
func (b *base) Put(ctx context.Context, resource string, pl any, opts ...connector.Option) (*models.Result, error) {
	return b.do(ctx, http.MethodPut, resource, pl, opts)
}

// Patch implements connector.Connector
func (b *base) Patch(ctx context.Context, resource string, pl any, opts ...connector.Option) (*models.Result, error) {
	return b.do(ctx, http.MethodPatch, resource, pl, opts)
}

// Delete implements connector.Connector
func (b *base) Delete(ctx context.Context, resource string, opts ...connector.Option) (*models.Result, error) {
	return b.do(ctx, http.MethodDelete, resource, nil, opts)
}

// do runs the shared request pipeline: fail fast while disconnected,
// encode the payload, attach the credential, send with the transient
// retry policy, validate the status and decode the body.
func (b *base) do(ctx context.Context, method, resource string, pl any, opts []connector.Option) (*models.Result, error) {
	b.mu.Lock()
	connected := b.state == stateConnected
	sess := b.session
	b.mu.Unlock()
	if !connected || sess == nil {
		return nil, &models.ConnectionError{
			Device: b.device,
			Reason: fmt.Sprintf("cannot %s %q", method, resource),
			Err:    models.ErrNotConnected,
		}
	}

	o := connector.Build(b.defaults, opts...)
	if o.Expected == nil {
		if codes, ok := b.verbExpected[method]; ok {
			o.Expected = codes
		}
	}
	if b.headerHook != nil {
		b.headerHook(&o)
	}
	if pl == nil && (method == http.MethodPost || method == http.MethodPut) {
		return nil, &models.ConfigurationError{
			Field:  "payload",
			Reason: fmt.Sprintf("%s %q requires a payload", method, resource),
			Err:    models.ErrMissingPayload,
		}
	}

	body, contentType, err := payload.Encode(pl, o.ForceXML)
	if err != nil {
		return nil, &models.ConfigurationError{Field: "payload", Reason: err.Error()}
	}

	headers := o.Headers
	if headers == nil {
		headers = make(map[string]string)
	}
	if contentType != "" {
		if _, set := headers["Content-Type"]; !set {
			headers["Content-Type"] = contentType
		}
	}

	fullURL := b.buildURL(resource, o.Query)
	b.logger.Info("Sending request to device",
		zap.String("device", b.device),
		zap.String("method", method),
		zap.String("url", fullURL),
	)

	replayed := false
	for {
		b.strategy.Apply(headers)

		resp, respBody, err := b.send(ctx, method, fullURL, headers, body, o)
		if err != nil {
			return nil, err
		}

		if !models.StatusIn(resp.StatusCode, o.Expected) {
			if !replayed && statusTriggers(resp.StatusCode, b.reloginOn) {
				replayed = true
				b.logger.Info("Session rejected the request, re-authenticating once",
					zap.String("device", b.device),
					zap.Int("status", resp.StatusCode),
				)
				if err := b.relogin(ctx, o.Timeout); err != nil {
					return nil, err
				}
				continue
			}
			return nil, models.NewRequestFailure(method, fullURL, resp.StatusCode, o.Expected, respBody)
		}

		decoded, err := payload.Decode(respBody, resp.Header.Get("Content-Type"))
		if err != nil {
			return nil, err
		}
		return &models.Result{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			Decoded:    decoded,
		}, nil
	}
}

// send performs the HTTP exchange, retrying transient transport
// errors with the call's fixed policy. Completed exchanges are never
// retried here.
func (b *base) send(ctx context.Context, method, fullURL string, headers map[string]string, body []byte, o connector.CallOptions) (*http.Response, []byte, error) {
	b.mu.Lock()
	sess := b.session
	b.mu.Unlock()
	if sess == nil {
		return nil, nil, &models.ConnectionError{Device: b.device, Reason: "session closed", Err: models.ErrNotConnected}
	}

	for attempt := 0; ; attempt++ {
		resp, respBody, err := sess.Do(ctx, method, fullURL, headers, body, o.Timeout)
		if err == nil {
			return resp, respBody, nil
		}

		var transient *models.TransientTransportError
		if !errors.As(err, &transient) {
			return nil, nil, err
		}
		if attempt >= o.Retry.Retries {
			transient.Attempts = attempt + 1
			return nil, nil, err
		}
		b.logger.Warn("Transient transport error, retrying",
			zap.String("device", b.device),
			zap.String("method", method),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", o.Retry.Wait),
			zap.Error(err),
		)
		if err := sleepCtx(ctx, o.Retry.Wait); err != nil {
			return nil, nil, err
		}
	}
}

// relogin drops the current credential and runs the login exchange
// again on the live session.
func (b *base) relogin(ctx context.Context, timeout time.Duration) error {
	if timeout == 0 {
		timeout = b.cfg.Timeout
	}
	b.mu.Lock()
	sess := b.session
	b.mu.Unlock()
	if sess == nil {
		return &models.ConnectionError{Device: b.device, Reason: "session closed", Err: models.ErrNotConnected}
	}
	if err := b.strategy.Invalidate(ctx, sess, timeout); err != nil {
		b.logger.Warn("Credential invalidation failed during re-login",
			zap.String("device", b.device), zap.Error(err))
	}
	login := b.login
	if login == nil {
		login = func(ctx context.Context, timeout time.Duration) error {
			return b.strategy.Login(ctx, sess, timeout)
		}
	}
	if err := login(ctx, timeout); err != nil {
		return &models.ConnectionError{Device: b.device, Reason: "re-login failed", Err: err}
	}
	return nil
}

// buildURL joins the resource onto the base URL and appends query
// parameters in sorted order.
func (b *base) buildURL(resource string, query map[string]string) string {
	u := b.baseURL
	switch {
	case resource == "":
	case strings.HasSuffix(u, "/") && strings.HasPrefix(resource, "/"):
		u += resource[1:]
	case !strings.HasSuffix(u, "/") && !strings.HasPrefix(resource, "/"):
		u += "/" + resource
	default:
		u += resource
	}
	if len(query) > 0 {
		vals := make(url.Values, len(query))
		for k, v := range query {
			vals.Set(k, v)
		}
		u += "?" + vals.Encode()
	}
	return u
}

// probeSession does a GET against a well-known resource and treats
// anything but 200 as a login rejection. The RESTCONF and
// search-engine platforms connect this way.
func (b *base) probeSession(ctx context.Context, probeURL string, timeout time.Duration) error {
	headers := make(map[string]string)
	b.strategy.Apply(headers)
	resp, respBody, err := b.session.Do(ctx, http.MethodGet, probeURL, headers, nil, timeout)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return models.NewRequestFailure(http.MethodGet, probeURL, resp.StatusCode,
			[]int{http.StatusOK}, respBody)
	}
	return nil
}

func (b *base) setState(s connState) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

func statusTriggers(status int, triggers []int) bool {
	for _, t := range triggers {
		if status == t {
			return true
		}
	}
	return false
}

// sleepCtx waits for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
