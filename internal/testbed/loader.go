// Package testbed loads topology files describing devices and their
// REST connections, producing the connection configs adapters are
// built from.
package testbed

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/CiscoTestAutomation/rest/pkg/models"
)

// ConnectionName is the connection block adapters are wired to.
const ConnectionName = "rest"

// Testbed is a loaded topology file.
type Testbed struct {
	Devices map[string]*models.ConnectionConfig
}

// device mirrors one devices: entry in the topology YAML.
type device struct {
	OS          string                       `yaml:"os"`
	Connections map[string]connection        `yaml:"connections"`
	Credentials map[string]models.Credentials `yaml:"credentials"`
}

// connection mirrors one connections: entry. Credentials may live
// here or at the device level; the connection-level block wins.
type connection struct {
	Host        string                        `yaml:"host"`
	IP          string                        `yaml:"ip"`
	Port        int                           `yaml:"port"`
	Protocol    string                        `yaml:"protocol"`
	Verify      bool                          `yaml:"verify"`
	Credentials map[string]models.Credentials `yaml:"credentials"`
	Proxies     map[string]string             `yaml:"proxies"`
	Tunnel      *models.TunnelSpec            `yaml:"sshtunnel"`
	Timeout     time.Duration                 `yaml:"timeout"`
}

type topology struct {
	Devices map[string]device `yaml:"devices"`
}

// Load reads a topology file and resolves a connection config for
// every device that carries a rest connection block. Devices without
// one are skipped.
func Load(path string) (*Testbed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading testbed %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse resolves a topology document from memory.
func Parse(raw []byte) (*Testbed, error) {
	var topo topology
	if err := yaml.Unmarshal(raw, &topo); err != nil {
		return nil, fmt.Errorf("parsing testbed: %w", err)
	}

	tb := &Testbed{Devices: make(map[string]*models.ConnectionConfig)}
	for name, dev := range topo.Devices {
		conn, ok := dev.Connections[ConnectionName]
		if !ok {
			continue
		}
		cfg := &models.ConnectionConfig{
			Device:      name,
			Platform:    models.Platform(dev.OS),
			Host:        conn.Host,
			IP:          conn.IP,
			Port:        conn.Port,
			Protocol:    conn.Protocol,
			VerifySSL:   conn.Verify,
			Credentials: resolveCredentials(dev, conn),
			Proxies:     conn.Proxies,
			Tunnel:      conn.Tunnel,
			Timeout:     conn.Timeout,
		}
		tb.Devices[name] = cfg
	}
	return tb, nil
}

// resolveCredentials picks the rest credential block, preferring the
// connection-level one over the device-level one.
func resolveCredentials(dev device, conn connection) models.Credentials {
	if creds, ok := conn.Credentials[ConnectionName]; ok {
		return creds
	}
	if creds, ok := dev.Credentials[ConnectionName]; ok {
		return creds
	}
	return models.Credentials{}
}

// Device returns the named device's connection config.
func (t *Testbed) Device(name string) (*models.ConnectionConfig, error) {
	cfg, ok := t.Devices[name]
	if !ok {
		return nil, &models.ConfigurationError{
			Field:  "device",
			Reason: fmt.Sprintf("device %q has no rest connection in the testbed", name),
		}
	}
	return cfg, nil
}

// Names lists the devices with rest connections, sorted.
func (t *Testbed) Names() []string {
	names := make([]string, 0, len(t.Devices))
	for name := range t.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
