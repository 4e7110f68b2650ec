package adapters

import (
	"encoding/base64"
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
	connector.Register(models.PlatformDNAC, newDNAC)
}

// dnacAdapter trades basic credentials for a short-lived token at the
// fabric manager's auth endpoint and carries it in X-Auth-Token.
type dnacAdapter struct {
	*base
}

func newDNAC(cfg *models.ConnectionConfig, logger *zap.Logger) (connector.Connector, error) {
	b := newBase(cfg, logger)

	basic := base64.StdEncoding.EncodeToString(
		[]byte(cfg.Credentials.Username + ":" + cfg.Credentials.Password))

	b.strategy = &auth.BearerToken{
		LoginURL: b.buildURL("/dna/system/api/v1/auth/token", nil),
		BuildLogin: func() ([]byte, map[string]string, error) {
			return nil, map[string]string{
				"Authorization": "Basic " + basic,
				"Content-Type":  "application/json",
			}, nil
		},
		ExtractToken: extractDNACToken,
		Header:       "X-Auth-Token",
	}
	b.defaults = connector.CallOptions{
		Headers: map[string]string{"Content-Type": "application/json"},
		Retry:   models.RetryPolicy{Retries: 3, Wait: 10 * time.Second},
	}
	b.connectRetry = models.RetryPolicy{Retries: 3, Wait: 10 * time.Second}
	b.reloginOn = []int{http.StatusUnauthorized}
	return &dnacAdapter{base: b}, nil
}

func extractDNACToken(body []byte) (string, error) {
	var doc struct {
		Token string `json:"Token"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("decoding auth response: %w", err)
	}
	if doc.Token == "" {
		return "", fmt.Errorf("auth response carried no token")
	}
	return doc.Token, nil
}
