package dialogue

import "github.com/wolfman30/htx-dental-leads/internal/leads"

// Flow is a channel's sequencing of the shared steps.
type Flow struct {
	Channel leads.Channel
	Steps   []Step
	// CallbackShortcut lets a "just call me" utterance jump to the contact step.
	CallbackShortcut bool
	// AbandonOnEmpty ends the conversation on an empty utterance instead of
	// asking again.
	AbandonOnEmpty bool
	// PhoneFromCaller takes the phone from the channel (caller ID) and only
	// asks the user for a name.
	PhoneFromCaller bool
}

var (
	// VoiceFlow is step-indexed by callback URL, so it has no shortcut.
	VoiceFlow = Flow{
		Channel:         leads.ChannelVoice,
		Steps:           []Step{StepProcedure, StepLocation, StepContact},
		AbandonOnEmpty:  true,
		PhoneFromCaller: true,
	}
	ChatFlow = Flow{
		Channel:          leads.ChannelChat,
		Steps:            []Step{StepProcedure, StepLocation, StepContact},
		CallbackShortcut: true,
	}
	// QuoteFlow is the multi-step quote form; it is the only flow that asks
	// for urgency.
	QuoteFlow = Flow{
		Channel: leads.ChannelForm,
		Steps:   []Step{StepProcedure, StepLocation, StepUrgency, StepContact},
	}
)

func (f Flow) first() Step {
	if len(f.Steps) == 0 {
		return StepContact
	}
	return f.Steps[0]
}

func (f Flow) next(s Step) Step {
	for i, step := range f.Steps {
		if step == s && i+1 < len(f.Steps) {
			return f.Steps[i+1]
		}
	}
	return StepComplete
}

func (f Flow) has(s Step) bool {
	for _, step := range f.Steps {
		if step == s {
			return true
		}
	}
	return false
}
