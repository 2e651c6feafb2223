package leads

import (
	"strings"
	"time"
)

// Urgency captures how soon the patient wants treatment.
type Urgency string

const (
	UrgencyASAP        Urgency = "asap"
	UrgencyWithinMonth Urgency = "within-month"
	UrgencyResearching Urgency = "researching"
)

// ParseUrgency normalizes an urgency value. The chat tool schema uses "month"
// for within-month, so both spellings are accepted.
func ParseUrgency(raw string) (Urgency, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "asap":
		return UrgencyASAP, true
	case "within-month", "month", "within_month":
		return UrgencyWithinMonth, true
	case "researching":
		return UrgencyResearching, true
	default:
		return "", false
	}
}

// Source is an opaque tag naming the surface that produced the lead. It is
// carried for routing and reporting only.
type Source string

const (
	SourceChatbot   Source = "chatbot"
	SourceVoice     Source = "twilio-voice"
	SourceLeadForm  Source = "lead-form"
	SourceQuoteFlow Source = "get-quotes"
)

// Channel identifies the entry channel, which decides the default values of
// fields the channel never asks for.
type Channel string

const (
	ChannelVoice Channel = "voice"
	ChannelChat  Channel = "chat"
	ChannelForm  Channel = "form"
)

// Fields is the partially collected lead. Every field may be empty while a
// conversation is in progress.
type Fields struct {
	Name        string      `json:"name,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	Email       string      `json:"email,omitempty"`
	Procedure   ProcedureID `json:"procedure,omitempty"`
	Location    string      `json:"location_interest,omitempty"`
	Urgency     Urgency     `json:"urgency,omitempty"`
	Source      Source      `json:"source,omitempty"`
	UTMSource   string      `json:"utm_source,omitempty"`
	UTMMedium   string      `json:"utm_medium,omitempty"`
	UTMCampaign string      `json:"utm_campaign,omitempty"`
}

// HasContact reports whether both name and phone have been captured.
func (f Fields) HasContact() bool {
	return strings.TrimSpace(f.Name) != "" && strings.TrimSpace(f.Phone) != ""
}

// Lead is the canonical unit of work handed to the matcher and the sinks.
type Lead struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Email       string      `json:"email,omitempty"`
	Procedure   ProcedureID `json:"procedure"`
	Location    string      `json:"location_interest,omitempty"`
	Urgency     Urgency     `json:"urgency"`
	Source      Source      `json:"source"`
	UTMSource   string      `json:"utm_source,omitempty"`
	UTMMedium   string      `json:"utm_medium,omitempty"`
	UTMCampaign string      `json:"utm_campaign,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Validate enforces the only hard rule on a lead: name and phone are present.
// Formats are deliberately not checked.
func (l Lead) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(l.Phone) == "" {
		return ErrMissingPhone
	}
	return nil
}

// Eligible reports whether the lead may be dispatched.
func (l Lead) Eligible() bool {
	return l.Validate() == nil
}

// FirstName returns the first whitespace-delimited token of the name.
func (l Lead) FirstName() string {
	parts := strings.Fields(l.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// MaskPhone hides all but the last four digits for logging.
func MaskPhone(phone string) string {
	digits := make([]rune, 0, len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) <= 4 {
		return "***"
	}
	return "***" + string(digits[len(digits)-4:])
}
