package llm

import (
	"encoding/json"
	"strings"
)

// ErrorResponse is the JSON body returned by the proxy on every failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// replyFields are the object keys checked, in order, for the assistant's
// reply text in an upstream response.
var replyFields = []string{"response", "message", "text", "content", "answer"}

// ExtractReply pulls the assistant's reply text out of an opaque upstream
// response body. A bare JSON string is the reply itself; otherwise the first
// non-empty string among replyFields wins. Anything else is returned as the
// raw (trimmed) body so nothing the upstream said is lost.
func ExtractReply(body []byte) string {
	var text string
	if err := json.Unmarshal(body, &text); err == nil {
		return text
	}

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err == nil {
		for _, field := range replyFields {
			if s, ok := obj[field].(string); ok && s != "" {
				return s
			}
		}
	}

	return strings.TrimSpace(string(body))
}
