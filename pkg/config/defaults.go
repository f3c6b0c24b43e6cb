package config

const (
	defaultProxyListen  = ":8080"
	defaultProxyTimeout = "30s"

	defaultClientProxyTarget = "http://localhost:8080"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values. There is no default
// upstream or API key: both must be configured.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Proxy: ProxyConfig{
			Listen:  defaultProxyListen,
			Timeout: defaultProxyTimeout,
		},
		Client: ClientConfig{
			ProxyTarget: defaultClientProxyTarget,
		},
	}
}
