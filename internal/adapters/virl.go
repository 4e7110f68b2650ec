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
	connector.Register(models.PlatformVIRL, newVIRL)
}

// virlAdapter drives the simulation engine's REST surface. Every call
// carries basic credentials; Connect probes the roster to validate
// them.
type virlAdapter struct {
	*base
}

func newVIRL(cfg *models.ConnectionConfig, logger *zap.Logger) (connector.Connector, error) {
	b := newBase(cfg, logger)

	b.strategy = &auth.Basic{
		Username: cfg.Credentials.Username,
		Password: cfg.Credentials.Password,
	}
	b.defaults = connector.CallOptions{
		Headers: map[string]string{"Content-Type": "text/xml;charset=UTF-8"},
		Retry:   models.RetryPolicy{Retries: 3, Wait: 10 * time.Second},
	}
	b.connectRetry = models.RetryPolicy{Retries: 3, Wait: 10 * time.Second}
	b.login = func(ctx context.Context, timeout time.Duration) error {
		return b.probeSession(ctx, b.buildURL("/roster/rest/test", nil), timeout)
	}
	return &virlAdapter{base: b}, nil
}
