package adapters

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/CiscoTestAutomation/rest/internal/auth"
	"github.com/CiscoTestAutomation/rest/pkg/connector"
	"github.com/CiscoTestAutomation/rest/pkg/models"
)

func init() {
	connector.Register(models.PlatformWebex, newWebex)
}

// webexCloudURL is the hosted API root used when no host is
// configured for the device.
const webexCloudURL = "https://webexapis.com/v1"

// WebexAdapter posts to the hosted chat API with a static bearer
// token from the testbed credentials. It is exported so callers can
// reach Notify after a type assertion on the opened connector.
type WebexAdapter struct {
	*base
}

func newWebex(cfg *models.ConnectionConfig, logger *zap.Logger) (connector.Connector, error) {
	if cfg.Credentials.Token == "" {
		return nil, &models.ConfigurationError{
			Field:  "credentials.token",
			Reason: "webex requires an access token",
		}
	}

	b := newBase(cfg, logger)
	if cfg.Host == "" {
		b.baseURL = webexCloudURL
	}

	b.strategy = &auth.Static{
		Header: "Authorization",
		Scheme: "Bearer ",
		Token:  cfg.Credentials.Token,
	}
	b.defaults = connector.CallOptions{
		Headers: map[string]string{"Content-Type": "application/json"},
		Retry:   models.RetryPolicy{Retries: 3, Wait: 10 * time.Second},
	}
	b.connectRetry = models.RetryPolicy{Retries: 3, Wait: 10 * time.Second}
	b.login = func(ctx context.Context, timeout time.Duration) error {
		return b.probeSession(ctx, b.buildURL("/people/me", nil), timeout)
	}
	return &WebexAdapter{base: b}, nil
}

// Notify posts a markdown message to a room or directly to a person.
// Exactly one of roomID and toEmail must be set.
func (w *WebexAdapter) Notify(ctx context.Context, message, roomID, toEmail string, opts ...connector.Option) (*models.Result, error) {
	if (roomID == "") == (toEmail == "") {
		return nil, &models.ConfigurationError{
			Field:  "destination",
			Reason: "exactly one of roomID and toEmail must be set",
		}
	}
	body := map[string]any{"markdown": message}
	if roomID != "" {
		body["roomId"] = roomID
	} else {
		body["toPersonEmail"] = toEmail
	}
	return w.Post(ctx, "/messages", body, opts...)
}
