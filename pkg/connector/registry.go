package connector

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/CiscoTestAutomation/rest/pkg/models"
)

// Factory builds an adapter for one normalized connection config.
type Factory func(cfg *models.ConnectionConfig, logger *zap.Logger) (Connector, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[models.Platform]Factory)
)

// Register maps a platform tag to its adapter constructor. Adapters
// register themselves at startup; registering the same tag twice
// panics, as it signals two adapters claiming one platform.
func Register(platform models.Platform, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[platform]; dup {
		panic(fmt.Sprintf("connector: adapter for platform %q registered twice", platform))
	}
	registry[platform] = factory
}

// Platforms lists all registered platform tags, sorted.
func Platforms() []models.Platform {
	registryMu.RLock()
	defer registryMu.RUnlock()
	tags := make([]models.Platform, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Open resolves the adapter for the config's platform tag,
// normalizes the config and constructs the adapter. The connection is
// not yet live; call Connect on the result.
func Open(cfg *models.ConnectionConfig, logger *zap.Logger) (Connector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	registryMu.RLock()
	factory, ok := registry[cfg.Platform]
	registryMu.RUnlock()
	if !ok {
		return nil, &models.ConfigurationError{
			Field:  "os",
			Reason: fmt.Sprintf("unknown platform %q", cfg.Platform),
			Err:    models.ErrUnknownPlatform,
		}
	}
	return factory(cfg, logger)
}
