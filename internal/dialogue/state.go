package dialogue

import (
	"strings"

	"github.com/wolfman30/htx-dental-leads/internal/leads"
)

// Step is a dialogue state. Collection steps wait for the user's next
// utterance; Complete and Abandoned are terminal.
type Step string

const (
	StepProcedure Step = "procedure"
	StepLocation  Step = "location"
	StepUrgency   Step = "urgency"
	StepContact   Step = "contact"
	StepComplete  Step = "complete"
	StepAbandoned Step = "abandoned"
)

// ParseStep accepts a step name. "name" is the older spelling of the contact
// step still found in in-flight callback URLs.
func ParseStep(raw string) (Step, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "procedure":
		return StepProcedure, true
	case "location":
		return StepLocation, true
	case "urgency":
		return StepUrgency, true
	case "contact", "name":
		return StepContact, true
	case "complete":
		return StepComplete, true
	case "abandoned":
		return StepAbandoned, true
	default:
		return "", false
	}
}

// Terminal reports whether no further input is accepted.
func (s Step) Terminal() bool {
	return s == StepComplete || s == StepAbandoned
}

// State is everything a conversation needs between turns. It is owned by the
// client (chat) or the callback URL (voice), never by the server.
type State struct {
	Step     Step         `json:"step"`
	Fields   leads.Fields `json:"fields"`
	Callback bool         `json:"callback,omitempty"`
}

// Input is one user turn.
type Input struct {
	Text string
	// CallerPhone is the number the channel already knows (voice caller ID).
	CallerPhone string
}

// Reply is the outcome of one turn. Lead is set exactly when the turn
// completed the conversation with a name and a phone.
type Reply struct {
	State     State
	Prompt    string
	Done      bool
	Abandoned bool
	Lead      *leads.Lead
}
