// Package header owns the headers chatproxy sets on each leg of a request:
//
//	Browser <--> Proxy <--> Upstream AI service
//
// Responses to the browser always carry permissive CORS headers; requests to
// the upstream carry the configured API key and nothing from the client.
package header

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// APIKeyHeader carries the upstream API key.
const APIKeyHeader = "X-api-key"

// corsResponse is set on every response to the client.
var corsResponse = map[string]string{
	fiber.HeaderAccessControlAllowOrigin: "*",
}

// corsPreflight is additionally set on OPTIONS responses.
var corsPreflight = map[string]string{
	fiber.HeaderAccessControlAllowMethods: "POST, OPTIONS",
	fiber.HeaderAccessControlAllowHeaders: "Content-Type",
	fiber.HeaderAccessControlMaxAge:       "86400",
}

// Handler manages headers between proxy connections.
type Handler struct{}

// NewHandler creates a new header Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// SetCORSHeaders sets the headers every client response carries.
func (h *Handler) SetCORSHeaders(c *fiber.Ctx) {
	for k, v := range corsResponse {
		c.Set(k, v)
	}
}

// SetPreflightHeaders sets the headers answering a browser preflight.
func (h *Handler) SetPreflightHeaders(c *fiber.Ctx) {
	h.SetCORSHeaders(c)
	for k, v := range corsPreflight {
		c.Set(k, v)
	}
}

// SetUpstreamRequestHeaders prepares the outgoing request to the upstream AI
// service. Client headers are not forwarded: the upstream only
// ever sees the JSON content type and the configured key.
func (h *Handler) SetUpstreamRequestHeaders(req *http.Request, apiKey string) {
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if apiKey != "" {
		req.Header.Set(APIKeyHeader, apiKey)
	}
}
