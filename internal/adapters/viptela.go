package adapters

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/CiscoTestAutomation/rest/internal/auth"
	"github.com/CiscoTestAutomation/rest/pkg/connector"
	"github.com/CiscoTestAutomation/rest/pkg/models"
)

func init() {
	connector.Register(models.PlatformViptela, newViptela)
}

// viptelaAdapter logs in through the SD-WAN manager's form endpoint,
// then fetches a CSRF token that every subsequent call carries in
// X-XSRF-TOKEN. The session itself lives in the cookie jar.
type viptelaAdapter struct {
	*base
}

func newViptela(cfg *models.ConnectionConfig, logger *zap.Logger) (connector.Connector, error) {
	b := newBase(cfg, logger)

	cookie := &auth.SessionCookie{
		LoginURL: b.buildURL("/j_security_check", nil),
		Form: url.Values{
			"j_username": {cfg.Credentials.Username},
			"j_password": {cfg.Credentials.Password},
		},
		TokenURL:    b.buildURL("/dataservice/client/token", nil),
		TokenHeader: "X-XSRF-TOKEN",
	}

	b.strategy = cookie
	b.defaults = connector.CallOptions{
		Headers: map[string]string{"Content-Type": "application/json"},
		Retry:   models.RetryPolicy{Retries: 3, Wait: 10 * time.Second},
	}
	b.connectRetry = models.RetryPolicy{Retries: 3, Wait: 10 * time.Second}
	b.reloginOn = []int{http.StatusForbidden}
	b.login = func(ctx context.Context, timeout time.Duration) error {
		return cookie.Login(ctx, b.session, timeout)
	}
	return &viptelaAdapter{base: b}, nil
}
