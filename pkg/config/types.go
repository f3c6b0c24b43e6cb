package config

import (
	"fmt"
	"time"

	"github.com/papercomputeco/chatproxy/pkg/utils"
)

// Config represents the persistent chatproxy configuration stored as
// config.toml in the .chatproxy/ directory.
type Config struct {
	Version int          `toml:"version"`
	Proxy   ProxyConfig  `toml:"proxy"`
	Client  ClientConfig `toml:"client"`
}

// ProxyConfig holds the proxy server settings.
type ProxyConfig struct {
	Listen   string `toml:"listen,omitempty"`
	Upstream string `toml:"upstream,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`

	// Timeout bounds the upstream call, as a Go duration string (e.g. "30s").
	Timeout string `toml:"timeout,omitempty"`
}

// TimeoutDuration parses Timeout.
func (p ProxyConfig) TimeoutDuration() (time.Duration, error) {
	return parseTimeout(p.Timeout)
}

// ClientConfig holds settings for the chat command, which talks to a
// running proxy.
type ClientConfig struct {
	ProxyTarget string `toml:"proxy_target,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
// Secret values are masked when displayed.
type configKeyInfo struct {
	get    func(c *Config) string
	set    func(c *Config, v string) error
	secret bool
}

// configKeys is the authoritative map of all supported config keys.
var configKeys = map[string]configKeyInfo{
	"proxy.listen": {
		get: func(c *Config) string { return c.Proxy.Listen },
		set: func(c *Config, v string) error { c.Proxy.Listen = v; return nil },
	},
	"proxy.upstream": {
		get: func(c *Config) string { return c.Proxy.Upstream },
		set: func(c *Config, v string) error { c.Proxy.Upstream = v; return nil },
	},
	"proxy.api_key": {
		get:    func(c *Config) string { return c.Proxy.APIKey },
		set:    func(c *Config, v string) error { c.Proxy.APIKey = v; return nil },
		secret: true,
	},
	"proxy.timeout": {
		get: func(c *Config) string { return c.Proxy.Timeout },
		set: func(c *Config, v string) error {
			if _, err := parseTimeout(v); err != nil {
				return err
			}
			c.Proxy.Timeout = v
			return nil
		},
	},
	"client.proxy_target": {
		get: func(c *Config) string { return c.Client.ProxyTarget },
		set: func(c *Config, v string) error { c.Client.ProxyTarget = v; return nil },
	},
}

// DisplayValue returns the value of key suitable for printing: secrets are
// masked, everything else is returned as-is.
func DisplayValue(key, value string) string {
	if info, ok := configKeys[key]; ok && info.secret {
		return utils.Mask(value)
	}
	return value
}

func parseTimeout(v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value for proxy.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid value for proxy.timeout: must be positive, got %s", v)
	}
	return d, nil
}
