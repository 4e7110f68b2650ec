package testbed_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CiscoTestAutomation/rest/internal/testbed"
	"github.com/CiscoTestAutomation/rest/pkg/models"
)

const sampleTopology = `
devices:
  switch1:
    os: nxos
    connections:
      rest:
        ip: 10.0.0.5
        port: 8443
        protocol: https
        verify: false
        credentials:
          rest:
            username: admin
            password: secret
  controller1:
    os: apic
    credentials:
      rest:
        username: apic-admin
        password: apic-secret
    connections:
      rest:
        host: apic.example.com
  console-only:
    os: iosxe
    connections:
      cli:
        ip: 10.0.0.9
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "testbed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTopology), 0o644))

	tb, err := testbed.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"controller1", "switch1"}, tb.Names())
}

func TestParse_ConnectionCredentials(t *testing.T) {
	tb, err := testbed.Parse([]byte(sampleTopology))
	require.NoError(t, err)

	cfg, err := tb.Device("switch1")
	require.NoError(t, err)
	assert.Equal(t, models.PlatformNXOS, cfg.Platform)
	assert.Equal(t, "10.0.0.5", cfg.IP)
	assert.Equal(t, 8443, cfg.Port)
	assert.Equal(t, "admin", cfg.Credentials.Username)
	assert.Equal(t, "secret", cfg.Credentials.Password)
}

func TestParse_DeviceLevelCredentials(t *testing.T) {
	tb, err := testbed.Parse([]byte(sampleTopology))
	require.NoError(t, err)

	cfg, err := tb.Device("controller1")
	require.NoError(t, err)
	assert.Equal(t, models.PlatformAPIC, cfg.Platform)
	assert.Equal(t, "apic.example.com", cfg.Host)
	assert.Equal(t, "apic-admin", cfg.Credentials.Username)
}

func TestParse_SkipsDevicesWithoutRestConnection(t *testing.T) {
	tb, err := testbed.Parse([]byte(sampleTopology))
	require.NoError(t, err)

	_, err = tb.Device("console-only")
	var cfgErr *models.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := testbed.Load("/nonexistent/testbed.yaml")
	assert.Error(t, err)
}

func TestParse_BadYAML(t *testing.T) {
	_, err := testbed.Parse([]byte("{devices: ["))
	assert.Error(t, err)
}
