package proxy

import "time"

// DefaultTimeout bounds the upstream call when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Config is the proxy server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// UpstreamURL is the AI service every chat request is forwarded to.
	UpstreamURL string

	// APIKey is sent upstream in the X-api-key header.
	APIKey string

	// Timeout bounds the whole upstream exchange, including reading the body.
	Timeout time.Duration
}
