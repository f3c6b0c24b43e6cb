// Package proxy provides the chat proxy: it accepts a prompt and conversation
// history from a browser, forwards them to a single upstream AI service with
// the configured API key, and maps the result back into a JSON response.
package proxy

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/papercomputeco/chatproxy/pkg/logger"
	"github.com/papercomputeco/chatproxy/proxy/header"
)

// requestIDLocal is the fiber locals key holding the request id.
const requestIDLocal = "requestid"

// Proxy is a stateless forwarding proxy in front of one upstream AI service.
// Every request is handled independently; the only shared object is the
// HTTP client.
type Proxy struct {
	config        Config
	logger        *slog.Logger
	httpClient    *http.Client
	server        *fiber.App
	headerHandler *header.Handler
}

// New creates a new Proxy. Returns an error if the upstream URL is missing or
// not an absolute http(s) URL.
func New(config Config, log *slog.Logger) (*Proxy, error) {
	if config.UpstreamURL == "" {
		return nil, errors.New("upstream URL is required")
	}
	u, err := url.Parse(config.UpstreamURL)
	if err != nil {
		return nil, fmt.Errorf("parsing upstream URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("upstream URL must be an absolute http(s) URL, got %q", config.UpstreamURL)
	}

	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}

	p := &Proxy{
		config:        config,
		logger:        log,
		headerHandler: header.NewHandler(),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		ErrorHandler:          p.handleError,
	})

	app.Use(requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: requestIDLocal,
	}))
	app.Use(p.logRequest)
	app.Use(recover.New())
	app.Use(compress.New())

	// The proxy answers on every path, like the function it replaces.
	app.All("/*", p.handleChat)

	p.server = app
	return p, nil
}

// Run starts the proxy server on the configured listening address.
func (p *Proxy) Run() error {
	p.logger.Info("starting proxy server",
		"listen", p.config.ListenAddr,
		"upstream", p.config.UpstreamURL,
	)

	return p.server.Listen(p.config.ListenAddr)
}

// RunWithListener starts the proxy server using the provided listener.
func (p *Proxy) RunWithListener(listener net.Listener) error {
	p.logger.Info("starting proxy server",
		"listen", listener.Addr().String(),
		"upstream", p.config.UpstreamURL,
	)

	return p.server.Listener(listener)
}

// Close gracefully shuts down the proxy, waiting for in-flight requests.
func (p *Proxy) Close() error {
	return p.server.Shutdown()
}

// Handler exposes the proxy as a net/http handler so it can be mounted in a
// standard library server or a serverless adapter.
func (p *Proxy) Handler() http.Handler {
	return adaptor.FiberApp(p.server)
}

// logRequest logs one line per request. Chain errors are rendered through the
// app error handler before the status is logged.
func (p *Proxy) logRequest(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	p.logger.Info("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
		"request_id", requestID(c),
	)
	return nil
}

// handleError is the single boundary where failures become client responses.
func (p *Proxy) handleError(c *fiber.Ctx, err error) error {
	perr := asError(err)

	attrs := []any{
		"kind", perr.Kind.String(),
		"status", perr.StatusCode(),
		"request_id", requestID(c),
		"error", err,
	}
	switch perr.Kind {
	case KindUnknown, KindUpstreamUnreachable, KindUpstreamHTTP:
		p.logger.Error("chat request failed", attrs...)
	default:
		p.logger.Debug("chat request rejected", attrs...)
	}

	p.headerHandler.SetCORSHeaders(c)
	return c.Status(perr.StatusCode()).JSON(perr.Response())
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDLocal).(string)
	return id
}
