package adapters

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/CiscoTestAutomation/rest/internal/auth"
	"github.com/CiscoTestAutomation/rest/pkg/connector"
	"github.com/CiscoTestAutomation/rest/pkg/models"
)

func init() {
	connector.Register(models.PlatformND, newND)
}

// ndDefaultDomain is the login domain used when the credentials omit
// one.
const ndDefaultDomain = "DefaultAuth"

// ndAdapter logs into the multi-cluster manager, which hands back a
// JWT that must travel both as a bearer header and as the AuthCookie
// session cookie.
type ndAdapter struct {
	*base
}

// ndStrategy attaches the JWT in both places the platform checks.
type ndStrategy struct {
	*auth.BearerToken
}

// Apply implements auth.Strategy
func (s *ndStrategy) Apply(headers map[string]string) {
	s.BearerToken.Apply(headers)
	if tok := s.Token(); tok != "" {
		headers["Cookie"] = "AuthCookie=" + tok
	}
}

func newND(cfg *models.ConnectionConfig, logger *zap.Logger) (connector.Connector, error) {
	b := newBase(cfg, logger)

	domain := cfg.Credentials.Domain
	if domain == "" {
		domain = ndDefaultDomain
	}
	token := &auth.BearerToken{
		LoginURL: b.buildURL("/login", nil),
		BuildLogin: func() ([]byte, map[string]string, error) {
			body, err := json.Marshal(map[string]string{
				"userName":   cfg.Credentials.Username,
				"userPasswd": cfg.Credentials.Password,
				"domain":     domain,
			})
			return body, map[string]string{"Content-Type": "application/json"}, err
		},
		ExtractToken: extractNDToken,
		Header:       "Authorization",
		Scheme:       "Bearer ",
	}

	b.strategy = &ndStrategy{BearerToken: token}
	b.defaults = connector.CallOptions{
		Headers: map[string]string{"Content-Type": "application/json"},
		Retry:   models.RetryPolicy{Retries: 3, Wait: 10 * time.Second},
	}
	b.connectRetry = models.RetryPolicy{Retries: 3, Wait: 10 * time.Second}
	b.reloginOn = []int{http.StatusUnauthorized}
	return &ndAdapter{base: b}, nil
}

func extractNDToken(body []byte) (string, error) {
	var doc struct {
		Token string `json:"jwttoken"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("decoding login response: %w", err)
	}
	if doc.Token == "" {
		return "", fmt.Errorf("login response carried no jwttoken")
	}
	return doc.Token, nil
}
