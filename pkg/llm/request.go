package llm

import "errors"

// ErrPromptRequired is returned by Validate when the payload carries no prompt.
var ErrPromptRequired = errors.New("prompt is required")

// ChatPayload is the body accepted by the proxy: the new prompt plus the
// conversation so far, oldest first.
type ChatPayload struct {
	Prompt   string    `json:"prompt"`
	Messages []Message `json:"messages,omitempty"`
}

// Validate reports whether the payload can be forwarded upstream.
func (p *ChatPayload) Validate() error {
	if p.Prompt == "" {
		return ErrPromptRequired
	}
	return nil
}

// OutboundPayload is the body sent to the upstream AI service.
type OutboundPayload struct {
	Messages []Message `json:"messages"`
}

// Outbound builds the upstream body by appending the prompt as a new user
// turn to the normalized history.
func (p *ChatPayload) Outbound() OutboundPayload {
	messages := make([]Message, 0, len(p.Messages)+1)
	for _, msg := range p.Messages {
		messages = append(messages, msg.normalized())
	}
	messages = append(messages, NewUserMessage(p.Prompt))

	return OutboundPayload{Messages: messages}
}
