package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/chatproxy/pkg/llm"
	"github.com/papercomputeco/chatproxy/pkg/utils"
)

// maxLoggedBody caps payloads written to debug logs.
const maxLoggedBody = 500

var errNotObject = errors.New("request body must be a JSON object")

// handleChat is the single chat endpoint. It is mounted on every path.
func (p *Proxy) handleChat(c *fiber.Ctx) error {
	p.headerHandler.SetCORSHeaders(c)

	switch c.Method() {
	case fiber.MethodOptions:
		p.headerHandler.SetPreflightHeaders(c)
		c.Status(fiber.StatusOK)
		return nil
	case fiber.MethodPost:
	default:
		return newError(KindMethodNotAllowed, nil)
	}

	payload, err := decodePayload(c.Body())
	if err != nil {
		return newError(KindDecode, err)
	}
	if err := payload.Validate(); err != nil {
		return newError(KindValidation, err)
	}

	outbound := payload.Outbound()
	p.logger.Debug("forwarding chat request",
		"request_id", requestID(c),
		"message_count", len(outbound.Messages),
		"prompt", utils.Truncate(payload.Prompt, maxLoggedBody),
	)

	body, err := p.forward(c.Context(), outbound)
	if err != nil {
		return err
	}

	p.logger.Debug("upstream response",
		"request_id", requestID(c),
		"body", utils.Truncate(string(body), maxLoggedBody),
	)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(body)
}

// decodePayload parses the client body. An empty body is treated as an empty
// object so it fails validation rather than decoding.
func decodePayload(body []byte) (*llm.ChatPayload, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return &llm.ChatPayload{}, nil
	}
	if body[0] != '{' {
		if !json.Valid(body) {
			var raw json.RawMessage
			return nil, json.Unmarshal(body, &raw)
		}
		return nil, errNotObject
	}

	payload := &llm.ChatPayload{}
	if err := json.Unmarshal(body, payload); err != nil {
		return nil, err
	}
	if len(payload.Messages) > 0 {
		if err := checkNullMessages(body); err != nil {
			return nil, err
		}
	}
	return payload, nil
}

// checkNullMessages rejects null history entries, which would otherwise
// decode as empty user turns.
func checkNullMessages(body []byte) error {
	var raw struct {
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return err
	}
	for i, msg := range raw.Messages {
		if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
			return fmt.Errorf("messages[%d] is null", i)
		}
	}
	return nil
}
