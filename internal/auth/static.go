package auth

import (
	"context"
	"time"

	"github.com/CiscoTestAutomation/rest/pkg/models"
)

// Static attaches a pre-issued token from configuration. There is no
// login exchange and nothing to revoke; the chat-API platform works
// this way.
type Static struct {
	Header string
	Scheme string
	Token  string
}

// Login implements Strategy
func (s *Static) Login(ctx context.Context, d SessionDoer, timeout time.Duration) error {
	if s.Token == "" {
		return &models.ConfigurationError{Field: "token", Reason: "a pre-issued token is required"}
	}
	return nil
}

// Apply implements Strategy
func (s *Static) Apply(headers map[string]string) {
	headers[s.Header] = s.Scheme + s.Token
}

// Invalidate implements Strategy
func (s *Static) Invalidate(ctx context.Context, d SessionDoer, timeout time.Duration) error {
	return nil
}

// None is the strategy for platforms whose authentication lives
// entirely in the transport session (cookie jar) or that have no
// authentication at all.
type None struct{}

// Login implements Strategy
func (None) Login(ctx context.Context, d SessionDoer, timeout time.Duration) error { return nil }

// Apply implements Strategy
func (None) Apply(headers map[string]string) {}

// Invalidate implements Strategy
func (None) Invalidate(ctx context.Context, d SessionDoer, timeout time.Duration) error { return nil }
