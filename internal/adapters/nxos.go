package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/CiscoTestAutomation/rest/internal/auth"
	"github.com/CiscoTestAutomation/rest/pkg/connector"
	"github.com/CiscoTestAutomation/rest/pkg/models"
)

func init() {
	connector.Register(models.PlatformNXOS, newNXOS)
}

// nxosAdapter speaks the NX-API REST interface: an aaaLogin.json
// credential POST establishes the session, then every call carries
// basic auth. Calls use the yang.data encoding the platform expects.
type nxosAdapter struct {
	*base
}

func newNXOS(cfg *models.ConnectionConfig, logger *zap.Logger) (connector.Connector, error) {
	b := newBase(cfg, logger)
	b.strategy = &auth.Basic{
		Username: cfg.Credentials.Username,
		Password: cfg.Credentials.Password,
	}
	b.defaults = connector.CallOptions{
		Headers: map[string]string{
			"Content-Type": "application/yang.data+json",
			"Accept":       "application/yang.data+json",
		},
		Retry: models.RetryPolicy{Retries: 3, Wait: 10 * time.Second},
	}
	b.connectRetry = models.RetryPolicy{Retries: 3, Wait: 10 * time.Second}
	b.reloginOn = []int{http.StatusUnauthorized, http.StatusForbidden}
	b.login = aaaLogin(b, cfg.Credentials.Username, cfg.Credentials.Password)
	return &nxosAdapter{base: b}, nil
}

// aaaLogin posts the aaaUser credential document the NX-OS/APIC
// family authenticates with. The session cookie the controller sets
// is retained by the transport's jar.
func aaaLogin(b *base, username, password string) loginFunc {
	return func(ctx context.Context, timeout time.Duration) error {
		doc := map[string]any{
			"aaaUser": map[string]any{
				"attributes": map[string]any{
					"name": username,
					"pwd":  password,
				},
			},
		}
		body, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		loginURL := b.buildURL("api/aaaLogin.json", nil)
		headers := map[string]string{"Content-Type": "application/json"}

		resp, respBody, err := b.session.Do(ctx, http.MethodPost, loginURL, headers, body, timeout)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return models.NewRequestFailure(http.MethodPost, loginURL, resp.StatusCode,
				[]int{http.StatusOK}, respBody)
		}
		return nil
	}
}
