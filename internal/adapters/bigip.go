package adapters

import (
	"context"
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
	connector.Register(models.PlatformBigIP, newBigIP)
}

// bigipTokenTTL is the session lifetime requested after login.
const bigipTokenTTL = 3600

// bigipAdapter authenticates against the iControl REST login
// endpoint, carries the issued token in X-F5-Auth-Token, extends its
// TTL right after login and revokes it on disconnect. A 401 on any
// call triggers one re-login and replay.
type bigipAdapter struct {
	*base
	token *auth.BearerToken
}

func newBigIP(cfg *models.ConnectionConfig, logger *zap.Logger) (connector.Connector, error) {
	b := newBase(cfg, logger)

	token := &auth.BearerToken{
		LoginURL: b.buildURL("/mgmt/shared/authn/login", nil),
		BuildLogin: func() ([]byte, map[string]string, error) {
			body, err := json.Marshal(map[string]string{
				"username":          cfg.Credentials.Username,
				"password":          cfg.Credentials.Password,
				"loginProviderName": "tmos",
			})
			return body, map[string]string{"Content-Type": "application/json"}, err
		},
		ExtractToken: extractBigIPToken,
		Header:       "X-F5-Auth-Token",
		RevokeURL: func(tok string) string {
			return b.buildURL("/mgmt/shared/authz/tokens/"+tok, nil)
		},
	}

	b.strategy = token
	b.defaults = connector.CallOptions{
		Headers: map[string]string{"Content-Type": "application/json"},
		Retry:   models.RetryPolicy{Retries: 3, Wait: 10 * time.Second},
	}
	b.connectRetry = models.RetryPolicy{Retries: 3, Wait: 10 * time.Second}
	b.reloginOn = []int{http.StatusUnauthorized}
	b.login = func(ctx context.Context, timeout time.Duration) error {
		if err := token.Login(ctx, b.session, timeout); err != nil {
			return err
		}
		return b.extendTokenTTL(ctx, token, timeout)
	}
	return &bigipAdapter{base: b, token: token}, nil
}

// extractBigIPToken digs the opaque token out of the login response.
func extractBigIPToken(body []byte) (string, error) {
	var doc struct {
		Token struct {
			Token string `json:"token"`
		} `json:"token"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("decoding login response: %w", err)
	}
	if doc.Token.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return doc.Token.Token, nil
}

// extendTokenTTL PATCHes the token resource so the session outlives
// the platform's short default.
func (b *base) extendTokenTTL(ctx context.Context, token *auth.BearerToken, timeout time.Duration) error {
	tok := token.Token()
	tokenURL := b.buildURL("/mgmt/shared/authz/tokens/"+tok, nil)
	body, err := json.Marshal(map[string]int{"timeout": bigipTokenTTL})
	if err != nil {
		return err
	}
	headers := map[string]string{"Content-Type": "application/json"}
	token.Apply(headers)

	resp, respBody, err := b.session.Do(ctx, http.MethodPatch, tokenURL, headers, body, timeout)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return models.NewRequestFailure(http.MethodPatch, tokenURL, resp.StatusCode,
			[]int{http.StatusOK}, respBody)
	}
	return nil
}
