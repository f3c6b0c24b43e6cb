package llm

// Role values used in conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a message with the "user" role.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a message with the "assistant" role.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// normalized returns a copy of m with an empty role defaulted to "user".
func (m Message) normalized() Message {
	if m.Role == "" {
		m.Role = RoleUser
	}
	return m
}
