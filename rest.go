// Package rest provides a uniform REST client for network-device test
// automation. Callers open a connector for a device by its platform
// tag and drive it through the standard HTTP verbs; each supported
// platform's login flow, headers and URL conventions are handled by
// its adapter.
package rest

import (
	"go.uber.org/zap"

	// Registers the platform adapters with the connector registry.
	_ "github.com/CiscoTestAutomation/rest/internal/adapters"

	"github.com/CiscoTestAutomation/rest/pkg/connector"
	"github.com/CiscoTestAutomation/rest/pkg/models"
)

// Open builds the adapter for the config's platform. The connector is
// returned disconnected; call Connect before issuing requests. A nil
// logger disables logging.
func Open(cfg *models.ConnectionConfig, logger *zap.Logger) (connector.Connector, error) {
	return connector.Open(cfg, logger)
}

// Platforms lists the registered platform tags, sorted.
func Platforms() []models.Platform {
	return connector.Platforms()
}
