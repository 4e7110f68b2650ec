// Package connector defines the uniform connection surface every
// platform adapter implements, the request options callers tune per
// call, and the registry the dispatch front resolves platform tags
// through.
package connector

import (
	"context"

	"github.com/CiscoTestAutomation/rest/pkg/models"
)

// Connector is the uniform per-device connection contract. One
// instance maps to one open device connection; instances are not safe
// for concurrent use and callers must serialize calls per device.
type Connector interface {
	// Connect performs the platform's login, caching the resulting
	// token or session. Calling it while connected is a no-op.
	Connect(ctx context.Context, opts ...Option) error

	// Disconnect best-effort revokes the remote session and always
	// clears local state. It is idempotent and never fails locally.
	Disconnect(ctx context.Context, opts ...Option) error

	// Connected reports whether the adapter holds a live session.
	Connected() bool

	Get(ctx context.Context, resource string, opts ...Option) (*models.Result, error)
	Post(ctx context.Context, resource string, payload any, opts ...Option) (*models.Result, error)
	Put(ctx context.Context, resource string, payload any, opts ...Option) (*models.Result, error)
	Patch(ctx context.Context, resource string, payload any, opts ...Option) (*models.Result, error)
	Delete(ctx context.Context, resource string, opts ...Option) (*models.Result, error)
}
