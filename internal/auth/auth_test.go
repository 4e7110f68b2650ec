package auth_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/CiscoTestAutomation/rest/internal/auth"
	"github.com/CiscoTestAutomation/rest/pkg/models"
)

// MockSessionDoer implements auth.SessionDoer
type MockSessionDoer struct {
	mock.Mock
}

func (m *MockSessionDoer) Do(ctx context.Context, method, rawURL string, headers map[string]string, body []byte, timeout time.Duration) (*http.Response, []byte, error) {
	args := m.Called(ctx, method, rawURL, headers, body, timeout)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*http.Response), args.Get(1).([]byte), args.Error(2)
}

func newToken() *auth.BearerToken {
	return &auth.BearerToken{
		LoginURL: "https://device/login",
		BuildLogin: func() ([]byte, map[string]string, error) {
			return []byte(`{"user":"admin"}`), map[string]string{"Content-Type": "application/json"}, nil
		},
		ExtractToken: func(body []byte) (string, error) {
			return string(body), nil
		},
		Header: "X-Auth-Token",
	}
}

func TestBearerToken_Login(t *testing.T) {
	s := new(MockSessionDoer)
	s.On("Do", mock.Anything, http.MethodPost, "https://device/login",
		mock.Anything, mock.Anything, mock.Anything).
		Return(&http.Response{StatusCode: 200}, []byte("tok-123"), nil)

	tok := newToken()
	err := tok.Login(context.Background(), s, time.Second)

	assert.NoError(t, err)
	assert.Equal(t, "tok-123", tok.Token())
	assert.False(t, tok.IssuedAt().IsZero())
	s.AssertExpectations(t)
}

func TestBearerToken_LoginRejected(t *testing.T) {
	s := new(MockSessionDoer)
	s.On("Do", mock.Anything, http.MethodPost, "https://device/login",
		mock.Anything, mock.Anything, mock.Anything).
		Return(&http.Response{StatusCode: 401}, []byte("bad credentials"), nil)

	tok := newToken()
	err := tok.Login(context.Background(), s, time.Second)

	var reqErr *models.RequestFailure
	assert.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 401, reqErr.Status)
	assert.Empty(t, tok.Token())
}

func TestBearerToken_Apply(t *testing.T) {
	tok := newToken()
	tok.Scheme = "Bearer "

	headers := make(map[string]string)
	tok.Apply(headers)
	// No token yet, nothing attached.
	assert.Empty(t, headers)

	s := new(MockSessionDoer)
	s.On("Do", mock.Anything, http.MethodPost, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return(&http.Response{StatusCode: 200}, []byte("tok-123"), nil)
	assert.NoError(t, tok.Login(context.Background(), s, time.Second))

	tok.Apply(headers)
	assert.Equal(t, "Bearer tok-123", headers["X-Auth-Token"])
}

func TestBearerToken_InvalidateRevokes(t *testing.T) {
	tok := newToken()
	tok.RevokeURL = func(token string) string {
		return "https://device/tokens/" + token
	}

	s := new(MockSessionDoer)
	s.On("Do", mock.Anything, http.MethodPost, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return(&http.Response{StatusCode: 200}, []byte("tok-123"), nil)
	assert.NoError(t, tok.Login(context.Background(), s, time.Second))

	s.On("Do", mock.Anything, http.MethodDelete, "https://device/tokens/tok-123",
		mock.Anything, mock.Anything, mock.Anything).
		Return(&http.Response{StatusCode: 204}, []byte(nil), nil)

	assert.NoError(t, tok.Invalidate(context.Background(), s, time.Second))
	assert.Empty(t, tok.Token())
	s.AssertExpectations(t)
}

func TestBearerToken_InvalidateWithoutTokenSkipsRevoke(t *testing.T) {
	tok := newToken()
	tok.RevokeURL = func(token string) string { return "https://device/tokens/" + token }

	s := new(MockSessionDoer)
	assert.NoError(t, tok.Invalidate(context.Background(), s, time.Second))
	s.AssertNotCalled(t, "Do")
}

func TestBasic_Apply(t *testing.T) {
	b := &auth.Basic{Username: "admin", Password: "secret"}

	headers := make(map[string]string)
	b.Apply(headers)

	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:secret"))
	assert.Equal(t, want, headers["Authorization"])
}

func TestSessionCookie_Login(t *testing.T) {
	c := &auth.SessionCookie{
		LoginURL:    "https://device/j_security_check",
		Form:        url.Values{"j_username": {"admin"}, "j_password": {"secret"}},
		TokenURL:    "https://device/dataservice/client/token",
		TokenHeader: "X-XSRF-TOKEN",
	}

	s := new(MockSessionDoer)
	s.On("Do", mock.Anything, http.MethodPost, c.LoginURL,
		mock.MatchedBy(func(h map[string]string) bool {
			return h["Content-Type"] == "application/x-www-form-urlencoded"
		}),
		[]byte(c.Form.Encode()), mock.Anything).
		Return(&http.Response{StatusCode: 200}, []byte(""), nil)
	s.On("Do", mock.Anything, http.MethodGet, c.TokenURL,
		mock.Anything, mock.Anything, mock.Anything).
		Return(&http.Response{StatusCode: 200}, []byte("csrf-456"), nil)

	assert.NoError(t, c.Login(context.Background(), s, time.Second))
	assert.Equal(t, "csrf-456", c.Token())

	headers := make(map[string]string)
	c.Apply(headers)
	assert.Equal(t, "csrf-456", headers["X-XSRF-TOKEN"])
}

func TestSessionCookie_LoginErrorPage(t *testing.T) {
	c := &auth.SessionCookie{
		LoginURL: "https://device/j_security_check",
		Form:     url.Values{"j_username": {"admin"}, "j_password": {"wrong"}},
	}

	s := new(MockSessionDoer)
	s.On("Do", mock.Anything, http.MethodPost, c.LoginURL,
		mock.Anything, mock.Anything, mock.Anything).
		Return(&http.Response{StatusCode: 200}, []byte("<html>login failed</html>"), nil)

	err := c.Login(context.Background(), s, time.Second)
	var reqErr *models.RequestFailure
	assert.ErrorAs(t, err, &reqErr)
}

func TestStatic_LoginRequiresToken(t *testing.T) {
	s := &auth.Static{Header: "Authorization", Scheme: "Bearer "}

	err := s.Login(context.Background(), nil, time.Second)
	var cfgErr *models.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)

	s.Token = "abc"
	assert.NoError(t, s.Login(context.Background(), nil, time.Second))

	headers := make(map[string]string)
	s.Apply(headers)
	assert.Equal(t, "Bearer abc", headers["Authorization"])
}
