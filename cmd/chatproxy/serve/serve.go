// Package servecmder provides the serve command that runs the chat proxy.
package servecmder

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatproxy/pkg/config"
	"github.com/papercomputeco/chatproxy/pkg/logger"
	"github.com/papercomputeco/chatproxy/proxy"
)

type serveCommander struct {
	listen   string
	upstream string
	apiKey   string
	timeout  string
	logFile  string
	debug    bool

	upstreamTimeout time.Duration
	logger          *slog.Logger
}

const serveLongDesc string = `Run the chat proxy server.

The proxy accepts {"prompt": ..., "messages": [...]} from browsers on any
path, appends the prompt to the conversation and forwards it to the
configured upstream AI service with the API key in the X-api-key header.

Values are resolved from flags, then CHATPROXY_* environment variables
(e.g. CHATPROXY_PROXY_UPSTREAM, CHATPROXY_PROXY_API_KEY), then config.toml.

Examples:
  chatproxy serve --upstream https://ai.example.com/v1/chat
  CHATPROXY_PROXY_API_KEY=... chatproxy serve -l :9000`

const serveShortDesc string = "Run the chat proxy server"

var serveFlags = []string{
	config.FlagListen,
	config.FlagUpstream,
	config.FlagAPIKey,
	config.FlagTimeout,
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlags)

			cmder.listen = v.GetString("proxy.listen")
			cmder.upstream = v.GetString("proxy.upstream")
			cmder.apiKey = v.GetString("proxy.api_key")
			cmder.timeout = v.GetString("proxy.timeout")

			return cmder.validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagUpstream, &cmder.upstream)
	config.AddStringFlag(cmd, config.Flags, config.FlagAPIKey, &cmder.apiKey)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

func (c *serveCommander) validate() error {
	if c.upstream == "" {
		return errors.New("upstream URL is required: set --upstream, CHATPROXY_PROXY_UPSTREAM or proxy.upstream")
	}

	timeout, err := config.ProxyConfig{Timeout: c.timeout}.TimeoutDuration()
	if err != nil {
		return err
	}
	c.upstreamTimeout = timeout

	return nil
}

func (c *serveCommander) run() error {
	closeLog, err := c.initLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	if c.apiKey == "" {
		c.logger.Warn("no API key configured, upstream requests will be sent without X-api-key")
	}

	p, err := proxy.New(proxy.Config{
		ListenAddr:  c.listen,
		UpstreamURL: c.upstream,
		APIKey:      c.apiKey,
		Timeout:     c.upstreamTimeout,
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating proxy: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := p.Run(); err != nil {
			errChan <- fmt.Errorf("proxy error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return p.Close()
	}
}

// initLogger builds the pretty stdout logger, fanned out to a JSON file
// logger when --log-file is set. The returned func closes the file.
func (c *serveCommander) initLogger() (func(), error) {
	stdout := logger.New(logger.WithDebug(c.debug), logger.WithPretty(true), logger.WithSource(c.debug))
	if c.logFile == "" {
		c.logger = stdout
		return func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	file := logger.New(logger.WithDebug(c.debug), logger.WithJSON(true), logger.WithWriter(f), logger.WithSource(c.debug))
	c.logger = logger.Multi(stdout, file)
	return func() { _ = f.Close() }, nil
}
