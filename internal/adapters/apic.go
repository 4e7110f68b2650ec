package adapters

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/CiscoTestAutomation/rest/internal/auth"
	"github.com/CiscoTestAutomation/rest/pkg/connector"
	"github.com/CiscoTestAutomation/rest/pkg/models"
)

func init() {
	connector.Register(models.PlatformAPIC, newAPIC)
}

// apicAdapter talks to the APIC controller's managed-object tree.
// Resources are distinguished names; the session cookie issued by
// aaaLogin authenticates every call. The controller caps session
// lifetime, so a rejected call triggers one re-login and replay.
type apicAdapter struct {
	*base
}

func newAPIC(cfg *models.ConnectionConfig, logger *zap.Logger) (connector.Connector, error) {
	b := newBase(cfg, logger)
	b.strategy = auth.None{}
	b.defaults = connector.CallOptions{
		Expected: []int{http.StatusOK},
		Retry:    models.RetryPolicy{Retries: 3, Wait: 10 * time.Second},
	}
	b.connectRetry = models.RetryPolicy{Retries: 3, Wait: 10 * time.Second}
	b.reloginOn = []int{http.StatusUnauthorized, http.StatusForbidden}
	b.login = aaaLogin(b, cfg.Credentials.Username, cfg.Credentials.Password)
	return &apicAdapter{base: b}, nil
}

// Get retrieves a managed object by DN. The controller's query
// options default to the object itself with all properties; callers
// refine them with WithQuery ("query-target", "rsp-subtree",
// "rsp-prop-include", "query-target-filter", "order-by", ...).
func (a *apicAdapter) Get(ctx context.Context, dn string, opts ...connector.Option) (*models.Result, error) {
	merged := append([]connector.Option{
		connector.WithQuery("query-target", "self"),
		connector.WithQuery("rsp-subtree", "no"),
		connector.WithQuery("rsp-prop-include", "all"),
	}, opts...)
	return a.base.Get(ctx, dn, merged...)
}
