// Package chatcmder provides the chat command, an interactive terminal client
// for a running chatproxy server.
package chatcmder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/chatproxy/pkg/cliui"
	"github.com/papercomputeco/chatproxy/pkg/config"
	"github.com/papercomputeco/chatproxy/pkg/dotdir"
	"github.com/papercomputeco/chatproxy/pkg/llm"
	"github.com/papercomputeco/chatproxy/pkg/logger"
)

const (
	exitCommand  = "/exit"
	clearCommand = "/clear"

	// noReplyText stands in for a response with no reply text.
	noReplyText = "Sorry, no answer was received."

	// requestTimeout bounds one round trip to the proxy. The proxy applies
	// its own, shorter, upstream timeout.
	requestTimeout = 2 * time.Minute
)

type chatCommander struct {
	proxyTarget string
	configDir   string
	fresh       bool
	debug       bool

	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	interactive bool

	dotdir     *dotdir.Manager
	httpClient *http.Client
	logger     *slog.Logger
}

const chatLongDesc string = `Start an interactive chat session through a running chatproxy server.

Each message is sent as {"prompt": ..., "messages": [...]} with the
conversation so far. The conversation is saved in .chatproxy/history.json
and resumed on the next run.

Type /clear to start a new conversation and /exit (or Ctrl+D) to quit.

Examples:
  chatproxy chat
  chatproxy chat --new --proxy-target http://localhost:9000`

const chatShortDesc string = "Interactive chat through the proxy"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagProxyTarget})

			cmder.proxyTarget = v.GetString("client.proxy_target")
			if cmder.proxyTarget == "" {
				return errors.New("proxy target is required: set --proxy-target or client.proxy_target")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()
			cmder.interactive = isTerminal(cmder.out)

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProxyTarget, &cmder.proxyTarget)
	cmd.Flags().BoolVar(&cmder.fresh, "new", false, "Discard the saved conversation and start fresh")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true), logger.WithWriter(c.errOut))
	c.dotdir = dotdir.NewManager()
	c.httpClient = &http.Client{Timeout: requestTimeout}

	if c.fresh {
		if err := c.dotdir.ClearHistory(c.configDir); err != nil {
			return err
		}
	}

	history, err := c.dotdir.LoadHistory(c.configDir)
	if err != nil {
		return fmt.Errorf("loading chat history: %w", err)
	}

	fmt.Fprintln(c.out)
	if len(history.Messages) > 0 {
		fmt.Fprintf(c.out, "  %s Resuming conversation %s\n",
			cliui.SuccessMark,
			cliui.DimStyle.Render(fmt.Sprintf("(%d messages)", len(history.Messages))),
		)
	} else {
		fmt.Fprintf(c.out, "  %s New conversation\n", cliui.DimStyle.Render("●"))
	}
	fmt.Fprintf(c.out, "  %s %s\n\n",
		cliui.KeyStyle.Render("Proxy:"),
		cliui.NameStyle.Render(c.proxyTarget),
	)
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /clear to reset, /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(c.in)

	for {
		fmt.Fprint(c.out, cliui.UserPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case exitCommand:
			fmt.Fprintln(c.out)
			return nil
		case clearCommand:
			history.Messages = nil
			if err := c.dotdir.ClearHistory(c.configDir); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "  %s Conversation cleared\n\n", cliui.SuccessMark)
			continue
		}

		reply, err := c.send(ctx, input, history.Messages)
		if err != nil {
			// The turn is not recorded so it can be retried.
			fmt.Fprintf(c.errOut, "  %s %v\n\n", cliui.FailMark, err)
			continue
		}

		history.Messages = append(history.Messages,
			llm.NewUserMessage(input),
			llm.NewAssistantMessage(reply),
		)
		if err := c.dotdir.SaveHistory(history, c.configDir); err != nil {
			return fmt.Errorf("saving chat history: %w", err)
		}

		c.printReply(reply)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return nil
}

// send posts one prompt with the conversation so far and returns the reply
// text extracted from the proxy's response.
func (c *chatCommander) send(ctx context.Context, prompt string, messages []llm.Message) (string, error) {
	body, err := json.Marshal(llm.ChatPayload{Prompt: prompt, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	c.logger.Debug("sending chat request",
		"proxy_target", c.proxyTarget,
		"message_count", len(messages),
	)

	var respBody []byte
	var status int
	do := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.proxyTarget, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return fmt.Errorf("sending request to proxy: %w", err)
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading proxy response: %w", err)
		}
		return nil
	}

	if c.interactive {
		err = cliui.Step(c.out, "Thinking", do)
	} else {
		err = do()
	}
	if err != nil {
		return "", err
	}

	if status != http.StatusOK {
		return "", proxyError(status, respBody)
	}

	reply := llm.ExtractReply(respBody)
	if strings.TrimSpace(reply) == "" {
		return noReplyText, nil
	}
	return reply, nil
}

func (c *chatCommander) printReply(reply string) {
	if c.interactive {
		if rendered, err := cliui.RenderMarkdown(reply); err == nil {
			reply = strings.TrimSpace(rendered)
		}
	}
	fmt.Fprintf(c.out, "%s%s\n\n", cliui.AssistantPrompt, reply)
}

// proxyError formats an error response from the proxy for display.
func proxyError(status int, body []byte) error {
	var errResp llm.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return fmt.Errorf("proxy returned status %d: %s", status, strings.TrimSpace(string(body)))
	}
	if errResp.Details != "" {
		return fmt.Errorf("%s (%d): %s", errResp.Error, status, errResp.Details)
	}
	return fmt.Errorf("%s (%d)", errResp.Error, status)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
