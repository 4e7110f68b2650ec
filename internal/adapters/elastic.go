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
	connector.Register(models.PlatformElastic, newElastic)
}

// elasticAdapter talks to an unauthenticated search-engine endpoint.
// Connect probes the cluster root; paging goes through WithBatch.
type elasticAdapter struct {
	*base
}

func newElastic(cfg *models.ConnectionConfig, logger *zap.Logger) (connector.Connector, error) {
	b := newBase(cfg, logger)

	b.strategy = auth.None{}
	b.defaults = connector.CallOptions{
		Headers: map[string]string{"Content-Type": "application/json"},
		Retry:   models.RetryPolicy{Retries: 3, Wait: 10 * time.Second},
	}
	b.connectRetry = models.RetryPolicy{Retries: 3, Wait: 10 * time.Second}
	b.login = func(ctx context.Context, timeout time.Duration) error {
		return b.probeSession(ctx, b.buildURL("/", nil), timeout)
	}
	return &elasticAdapter{base: b}, nil
}
