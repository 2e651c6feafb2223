package dialogue

import (
	"fmt"
	"strings"

	"github.com/wolfman30/htx-dental-leads/internal/leads"
)

// Script supplies the words a channel says at each step.
type Script interface {
	// Ask is the question that collects step.
	Ask(step Step, f leads.Fields) string
	// Confirm acknowledges what step just collected.
	Confirm(step Step, f leads.Fields) string
	CallbackAck(f leads.Fields) string
	Closing(lead leads.Lead) string
	AlreadyComplete(f leads.Fields) string
	Abandon() string
}

// VoiceScript is spoken by the phone line. Sentences are short and avoid
// symbols the speech engine would read out.
type VoiceScript struct {
	// SpokenName is the business name as it should be pronounced.
	SpokenName  string
	DefaultArea string
}

func (s VoiceScript) Ask(step Step, f leads.Fields) string {
	switch step {
	case StepProcedure:
		return fmt.Sprintf("Hi! Thanks for calling %s, Houston's trusted implant network. "+
			"I'm here to connect you with a top-rated specialist near you, completely free. "+
			"What type of dental procedure are you interested in? "+
			"For example: a single tooth implant, All-on-4, snap-in dentures, same-day implants, "+
			"or just say not sure and we'll set up a free consultation.", s.SpokenName)
	case StepLocation:
		return "And which area of Houston are you in? " +
			"For example: Katy, Sugar Land, Montrose, the Medical Center, or just say your neighborhood."
	case StepUrgency:
		return "How soon are you hoping to get started? As soon as possible, within a month, or are you just researching?"
	case StepContact:
		return "Last question: what's your first name?"
	default:
		return ""
	}
}

func (s VoiceScript) Confirm(step Step, f leads.Fields) string {
	switch step {
	case StepProcedure:
		return fmt.Sprintf("Got it, %s.", f.Procedure.Label())
	case StepLocation:
		return fmt.Sprintf("Perfect, %s.", f.Location)
	default:
		return ""
	}
}

func (s VoiceScript) CallbackAck(f leads.Fields) string {
	return s.Ask(StepContact, f)
}

func (s VoiceScript) Closing(lead leads.Lead) string {
	name := lead.Name
	if name == "" {
		name = NamePlaceholder
	}
	location := lead.Location
	if location == "" {
		location = s.DefaultArea
	}
	return fmt.Sprintf("Great, %s! I've matched you with Houston's top specialists for %s near %s. "+
		"Expect a call within 24 hours to schedule your free consultation, no obligation. "+
		"Thank you for calling %s. Have a wonderful day!",
		name, lead.Procedure.Label(), location, s.SpokenName)
}

func (s VoiceScript) AlreadyComplete(f leads.Fields) string {
	return s.Unknown()
}

func (s VoiceScript) Abandon() string {
	return "I didn't catch that. No worries, please call us back and we'll get you matched right away. Goodbye!"
}

// Unknown is said when a callback arrives for a step the line does not know.
func (s VoiceScript) Unknown() string {
	return "I'm sorry, something went wrong on our end. Please call back and we'll get you sorted out. Goodbye!"
}

// ChatScript is the guided text conversation used by the chat widget and the
// quote form.
type ChatScript struct {
	SiteName     string
	PhoneDisplay string
}

func (s ChatScript) Ask(step Step, f leads.Fields) string {
	switch step {
	case StepProcedure:
		return fmt.Sprintf("Hi! I'm the %s assistant. I can match you with top-rated implant specialists near you for a free consultation. "+
			"What are you interested in? A single tooth implant, All-on-4, implant dentures, same-day implants, bone grafting, full mouth reconstruction, or not sure yet?", s.SiteName)
	case StepLocation:
		return "Which part of Houston are you in? A neighborhood, suburb or zip code works."
	case StepUrgency:
		return "How soon are you hoping to start treatment: as soon as possible, within a month, or just researching?"
	case StepContact:
		if strings.TrimSpace(f.Name) == "" && strings.TrimSpace(f.Phone) != "" {
			return "Thanks! And what's your first name?"
		}
		if strings.TrimSpace(f.Name) == "" {
			return "What's your first name and the best phone number for a specialist to reach you?"
		}
		return fmt.Sprintf("Thanks, %s! What's the best phone number for a specialist to reach you?", firstWord(f.Name))
	default:
		return ""
	}
}

func (s ChatScript) Confirm(step Step, f leads.Fields) string {
	switch step {
	case StepProcedure:
		return fmt.Sprintf("Got it, %s.", f.Procedure.Label())
	case StepLocation:
		return fmt.Sprintf("%s, perfect.", f.Location)
	case StepUrgency:
		return "Thanks, that helps us prioritize."
	default:
		return ""
	}
}

func (s ChatScript) CallbackAck(f leads.Fields) string {
	return "Absolutely, we can have a specialist call you. What's your first name and the best number to reach you?"
}

func (s ChatScript) Closing(lead leads.Lead) string {
	return fmt.Sprintf("Perfect, %s! You're all set. Our top Houston specialists will call you within 24 hours "+
		"to schedule your free consultation. No obligation, just helpful guidance. Is there anything else I can help with?",
		lead.FirstName())
}

func (s ChatScript) AlreadyComplete(f leads.Fields) string {
	return fmt.Sprintf("You're all set! A specialist will call you within 24 hours. If you need anything sooner, call us at %s.", s.PhoneDisplay)
}

func (s ChatScript) Abandon() string {
	return fmt.Sprintf("No problem. Whenever you're ready, call us at %s.", s.PhoneDisplay)
}

func firstWord(s string) string {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}
