package chat

import "github.com/wolfman30/htx-dental-leads/internal/dialogue"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn as the widget sends it.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is the assistant turn returned to the widget. State is set only
// in guided mode, where the client carries it into the next request.
type Response struct {
	Role          string          `json:"role"`
	Content       string          `json:"content"`
	LeadSubmitted bool            `json:"leadSubmitted"`
	State         *dialogue.State `json:"state,omitempty"`
}
