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

// restconfExpected is the per-verb expected-status table from RFC
// 8040. Both RESTCONF platforms share it; callers override per call.
var restconfExpected = map[string][]int{
	http.MethodGet:    {http.StatusOK, http.StatusNoContent},
	http.MethodPost:   {http.StatusOK, http.StatusCreated, http.StatusNoContent},
	http.MethodPatch:  {http.StatusOK, http.StatusNoContent},
	http.MethodPut:    {http.StatusCreated, http.StatusNoContent},
	http.MethodDelete: {http.StatusNoContent},
}

// newRestconf wires the pieces the RESTCONF platforms share: basic
// auth on every call, a login that probes a well-known resource, and
// json/xml content negotiation driven by the per-call XML flag.
// mediaType is the platform's yang media-type prefix, completed with
// "json" or "xml".
func newRestconf(cfg *models.ConnectionConfig, logger *zap.Logger, probePath, mediaType string) *base {
	b := newBase(cfg, logger)
	b.strategy = &auth.Basic{
		Username: cfg.Credentials.Username,
		Password: cfg.Credentials.Password,
	}
	b.verbExpected = restconfExpected
	b.defaults = connector.CallOptions{
		Retry: models.RetryPolicy{Retries: 3, Wait: 10 * time.Second},
	}
	b.connectRetry = models.RetryPolicy{Retries: 3, Wait: 10 * time.Second}
	b.headerHook = func(o *connector.CallOptions) {
		format := "json"
		if o.ForceXML {
			format = "xml"
		}
		ct := mediaType + format
		if o.Headers == nil {
			o.Headers = make(map[string]string, 2)
		}
		if _, set := o.Headers["Content-Type"]; !set {
			o.Headers["Content-Type"] = ct
		}
		if _, set := o.Headers["Accept"]; !set {
			o.Headers["Accept"] = ct
		}
	}
	b.login = func(ctx context.Context, timeout time.Duration) error {
		return b.probeSession(ctx, b.buildURL(probePath, nil), timeout)
	}
	return b
}

func init() {
	connector.Register(models.PlatformIOSXE, newIOSXE)
	connector.Register(models.PlatformNSO, newNSO)
}

// iosxeAdapter speaks RESTCONF to IOS-XE devices. Connecting probes
// the native version leaf the way a CLI connection would run
// "show version".
type iosxeAdapter struct {
	*base
}

func newIOSXE(cfg *models.ConnectionConfig, logger *zap.Logger) (connector.Connector, error) {
	b := newRestconf(cfg, logger,
		"/restconf/data/Cisco-IOS-XE-native:native/version",
		"application/yang-data+")
	return &iosxeAdapter{base: b}, nil
}

// nsoAdapter speaks RESTCONF to an NSO instance through its /api
// root, using the vnd.yang media types NSO serves.
type nsoAdapter struct {
	*base
}

func newNSO(cfg *models.ConnectionConfig, logger *zap.Logger) (connector.Connector, error) {
	b := newRestconf(cfg, logger, "/api", "application/vnd.yang.data+")
	return &nsoAdapter{base: b}, nil
}
