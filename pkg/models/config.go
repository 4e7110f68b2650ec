package models

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"
)

// Platform identifies the device family an adapter speaks to. The
// registry maps each tag to its adapter constructor.
type Platform string

const (
	PlatformNXOS     Platform = "nxos"
	PlatformAPIC     Platform = "apic"
	PlatformIOSXE    Platform = "iosxe"
	PlatformNSO      Platform = "nso"
	PlatformBigIP    Platform = "bigip"
	PlatformViptela  Platform = "viptela"
	PlatformElastic  Platform = "elasticsearch"
	PlatformVIRL     Platform = "virl"
	PlatformWebex    Platform = "webex"
	PlatformDNAC     Platform = "dnac"
	PlatformND       Platform = "nd"
)

// DefaultTimeout is the connection-level request timeout applied when
// a call does not carry its own.
const DefaultTimeout = 30 * time.Second

// Credentials holds the authentication material for one device
// connection. Token-only platforms leave Username/Password empty.
type Credentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Token    string `yaml:"token"`
	Domain   string `yaml:"domain"`
}

// TunnelSpec describes an SSH tunnel the caller has established (or
// will establish) in front of the device. Tunnel setup itself is the
// caller's responsibility; when LocalPort is set the adapter directs
// traffic at the tunnel endpoint instead of the device address.
type TunnelSpec struct {
	LocalHost string `yaml:"local_host"`
	LocalPort int    `yaml:"local_port"`
}

// ConnectionConfig is the immutable per-device settings an adapter is
// constructed with. It is produced by the topology loader (or built
// directly by the caller) and normalized once before use.
type ConnectionConfig struct {
	Device      string            `yaml:"-"`
	Platform    Platform          `yaml:"os"`
	Host        string            `yaml:"host"`
	IP          string            `yaml:"ip"`
	Port        int               `yaml:"port"`
	Protocol    string            `yaml:"protocol"`
	VerifySSL   bool              `yaml:"verify"`
	Credentials Credentials       `yaml:"credentials"`
	Proxies     map[string]string `yaml:"proxies"`
	Tunnel      *TunnelSpec       `yaml:"sshtunnel"`
	Timeout     time.Duration     `yaml:"timeout"`
}

// proxyEnvVars are consulted, lowercase first, when no explicit proxy
// configuration is present for the scheme.
var proxyEnvVars = map[string][]string{
	"http":  {"http_proxy", "HTTP_PROXY"},
	"https": {"https_proxy", "HTTPS_PROXY"},
	"no":    {"no_proxy", "NO_PROXY"},
}

// Normalize validates the config, applies the platform port and
// protocol defaults and freezes the proxy map by merging in the
// process environment. It must be called exactly once, before the
// config is handed to an adapter.
func (c *ConnectionConfig) Normalize() error {
	if c.Platform == "" {
		return &ConfigurationError{Field: "os", Reason: "platform tag is required"}
	}
	if c.Host == "" {
		c.Host = c.IP
	}
	if c.Host == "" && c.Platform != PlatformWebex {
		return &ConfigurationError{Field: "host", Reason: "host or ip is required"}
	}
	if c.Protocol == "" {
		c.Protocol = "https"
	}
	if c.Protocol != "http" && c.Protocol != "https" {
		return &ConfigurationError{Field: "protocol", Reason: fmt.Sprintf("unsupported protocol %q", c.Protocol)}
	}
	if c.Port == 0 {
		c.Port = defaultPort(c.Platform, c.Protocol)
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	c.Proxies = resolveProxies(c.Proxies)
	return nil
}

// BaseURL forms the scheme://host:port root for the connection,
// bracketing IPv6 literals. Tunnel endpoints take precedence over the
// configured address.
func (c *ConnectionConfig) BaseURL() string {
	host, port := c.Host, c.Port
	if c.Tunnel != nil && c.Tunnel.LocalPort != 0 {
		host, port = c.Tunnel.LocalHost, c.Tunnel.LocalPort
		if host == "" {
			host = "127.0.0.1"
		}
	}
	if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
		host = "[" + ip.String() + "]"
	}
	return fmt.Sprintf("%s://%s:%d", c.Protocol, host, port)
}

// defaultPort returns the customary management port for the platform.
func defaultPort(p Platform, protocol string) int {
	switch p {
	case PlatformViptela:
		return 8443
	case PlatformNSO:
		return 8080
	case PlatformElastic:
		return 9200
	case PlatformVIRL:
		return 19399
	default:
		if protocol == "http" {
			return 80
		}
		return 443
	}
}

// resolveProxies merges explicit proxy settings with the process
// environment. Explicit entries win; the environment is read once
// here, never again per call.
func resolveProxies(explicit map[string]string) map[string]string {
	merged := make(map[string]string, len(explicit))
	for scheme, vars := range proxyEnvVars {
		for _, v := range vars {
			if val := os.Getenv(v); val != "" {
				merged[scheme] = val
				break
			}
		}
	}
	for scheme, val := range explicit {
		merged[strings.ToLower(scheme)] = val
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}
