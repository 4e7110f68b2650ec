package models_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/CiscoTestAutomation/rest/pkg/models"
)

func TestConnectionConfig_NormalizeDefaults(t *testing.T) {
	cfg := &models.ConnectionConfig{
		Device:   "switch1",
		Platform: models.PlatformNXOS,
		Host:     "switch1.example.com",
	}

	err := cfg.Normalize()
	assert.NoError(t, err)
	assert.Equal(t, "https", cfg.Protocol)
	assert.Equal(t, 443, cfg.Port)
	assert.Equal(t, models.DefaultTimeout, cfg.Timeout)
}

func TestConnectionConfig_NormalizeHostFromIP(t *testing.T) {
	cfg := &models.ConnectionConfig{
		Device:   "switch1",
		Platform: models.PlatformNXOS,
		IP:       "10.0.0.5",
	}

	err := cfg.Normalize()
	assert.NoError(t, err)
	assert.Equal(t, "10.0.0.5", cfg.Host)
}

func TestConnectionConfig_NormalizeMissingPlatform(t *testing.T) {
	cfg := &models.ConnectionConfig{Device: "switch1", Host: "h"}

	err := cfg.Normalize()
	var cfgErr *models.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "os", cfgErr.Field)
}

func TestConnectionConfig_NormalizeMissingHost(t *testing.T) {
	cfg := &models.ConnectionConfig{Device: "switch1", Platform: models.PlatformNXOS}

	err := cfg.Normalize()
	var cfgErr *models.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "host", cfgErr.Field)
}

func TestConnectionConfig_NormalizeWebexNeedsNoHost(t *testing.T) {
	cfg := &models.ConnectionConfig{
		Device:      "bot",
		Platform:    models.PlatformWebex,
		Credentials: models.Credentials{Token: "abc"},
	}

	assert.NoError(t, cfg.Normalize())
}

func TestConnectionConfig_NormalizeBadProtocol(t *testing.T) {
	cfg := &models.ConnectionConfig{
		Device:   "switch1",
		Platform: models.PlatformNXOS,
		Host:     "h",
		Protocol: "ftp",
	}

	err := cfg.Normalize()
	var cfgErr *models.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "protocol", cfgErr.Field)
}

func TestConnectionConfig_PlatformPorts(t *testing.T) {
	tests := []struct {
		platform models.Platform
		port     int
	}{
		{models.PlatformViptela, 8443},
		{models.PlatformNSO, 8080},
		{models.PlatformElastic, 9200},
		{models.PlatformVIRL, 19399},
		{models.PlatformNXOS, 443},
	}

	for _, tt := range tests {
		cfg := &models.ConnectionConfig{
			Device:   "d",
			Platform: tt.platform,
			Host:     "h",
		}
		assert.NoError(t, cfg.Normalize())
		assert.Equal(t, tt.port, cfg.Port, "platform %s", tt.platform)
	}
}

func TestConnectionConfig_BaseURL(t *testing.T) {
	cfg := &models.ConnectionConfig{
		Device:   "d",
		Platform: models.PlatformNXOS,
		Host:     "switch1",
		Port:     8443,
		Protocol: "https",
	}
	assert.NoError(t, cfg.Normalize())
	assert.Equal(t, "https://switch1:8443", cfg.BaseURL())
}

func TestConnectionConfig_BaseURLBracketsIPv6(t *testing.T) {
	cfg := &models.ConnectionConfig{
		Device:   "d",
		Platform: models.PlatformNXOS,
		IP:       "2001:db8::1",
	}
	assert.NoError(t, cfg.Normalize())
	assert.Equal(t, "https://[2001:db8::1]:443", cfg.BaseURL())
}

func TestConnectionConfig_BaseURLTunnelOverride(t *testing.T) {
	cfg := &models.ConnectionConfig{
		Device:   "d",
		Platform: models.PlatformNXOS,
		Host:     "switch1",
		Tunnel:   &models.TunnelSpec{LocalPort: 9999},
	}
	assert.NoError(t, cfg.Normalize())
	assert.Equal(t, "https://127.0.0.1:9999", cfg.BaseURL())
}

func TestConnectionConfig_ProxiesFrozenFromEnvironment(t *testing.T) {
	t.Setenv("https_proxy", "http://proxy.example.com:3128")

	cfg := &models.ConnectionConfig{
		Device:   "d",
		Platform: models.PlatformNXOS,
		Host:     "h",
	}
	assert.NoError(t, cfg.Normalize())
	assert.Equal(t, "http://proxy.example.com:3128", cfg.Proxies["https"])

	// Later environment changes must not leak into the frozen map.
	os.Setenv("https_proxy", "http://other.example.com:3128")
	assert.Equal(t, "http://proxy.example.com:3128", cfg.Proxies["https"])
}

func TestConnectionConfig_ExplicitProxyWinsOverEnvironment(t *testing.T) {
	t.Setenv("https_proxy", "http://env.example.com:3128")

	cfg := &models.ConnectionConfig{
		Device:   "d",
		Platform: models.PlatformNXOS,
		Host:     "h",
		Proxies:  map[string]string{"https": "http://explicit.example.com:8080"},
	}
	assert.NoError(t, cfg.Normalize())
	assert.Equal(t, "http://explicit.example.com:8080", cfg.Proxies["https"])
}

func TestConnectionConfig_TimeoutPreserved(t *testing.T) {
	cfg := &models.ConnectionConfig{
		Device:   "d",
		Platform: models.PlatformNXOS,
		Host:     "h",
		Timeout:  5 * time.Second,
	}
	assert.NoError(t, cfg.Normalize())
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}
