package dialogue

import (
	"context"
	"strings"

	"github.com/wolfman30/htx-dental-leads/internal/leads"
	"github.com/wolfman30/htx-dental-leads/internal/observability/metrics"
	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

// Intents is the classification the machine relies on.
type Intents interface {
	Procedure(ctx context.Context, utterance string) leads.ProcedureID
	Location(ctx context.Context, utterance string) string
	Urgency(utterance string) (leads.Urgency, bool)
}

// Machine advances one conversation by one turn. It holds no per-conversation
// state, so one Machine serves every conversation of its flow.
type Machine struct {
	flow    Flow
	script  Script
	intents Intents
	builder *leads.Builder
	logger  *logging.Logger
	metrics *metrics.PipelineMetrics
}

// Option configures a Machine.
type Option func(*Machine)

func WithLogger(l *logging.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithMetrics(pm *metrics.PipelineMetrics) Option {
	return func(m *Machine) { m.metrics = pm }
}

// NewMachine creates a machine for one flow.
func NewMachine(flow Flow, script Script, intents Intents, builder *leads.Builder, opts ...Option) *Machine {
	if script == nil {
		panic("dialogue: script required")
	}
	if intents == nil {
		panic("dialogue: intents required")
	}
	if builder == nil {
		panic("dialogue: lead builder required")
	}
	m := &Machine{
		flow:    flow,
		script:  script,
		intents: intents,
		builder: builder,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Flow returns the machine's flow.
func (m *Machine) Flow() Flow { return m.flow }

// Script returns the machine's script.
func (m *Machine) Script() Script { return m.script }

// Start returns the opening state and its prompt.
func (m *Machine) Start() Reply {
	st := State{Step: m.flow.first()}
	return Reply{State: st, Prompt: m.script.Ask(st.Step, st.Fields)}
}

// Advance applies one user turn to st and returns the next state with the
// prompt to emit.
func (m *Machine) Advance(ctx context.Context, st State, in Input) Reply {
	if st.Step == "" {
		st.Step = m.flow.first()
	}
	reply := m.advance(ctx, st, in)
	m.metrics.ObserveTurn(string(m.flow.Channel), string(reply.State.Step))
	return reply
}

func (m *Machine) advance(ctx context.Context, st State, in Input) Reply {
	switch st.Step {
	case StepComplete:
		return Reply{State: st, Prompt: m.script.AlreadyComplete(st.Fields), Done: true}
	case StepAbandoned:
		return Reply{State: st, Prompt: m.script.Abandon(), Abandoned: true}
	}
	if !m.flow.has(st.Step) {
		// A step this flow does not collect; resume at the first step still missing.
		st.Step = m.resumeStep(st.Fields)
	}

	if m.flow.PhoneFromCaller && st.Fields.Phone == "" {
		st.Fields.Phone = strings.TrimSpace(in.CallerPhone)
	}

	if st.Step == StepContact && !m.flow.PhoneFromCaller && st.Fields.HasContact() {
		return m.complete(st)
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		if m.flow.AbandonOnEmpty {
			m.logger.Info("dialogue abandoned on empty input", "channel", m.flow.Channel, "step", st.Step)
			st.Step = StepAbandoned
			return Reply{State: st, Prompt: m.script.Abandon(), Abandoned: true}
		}
		return Reply{State: st, Prompt: m.script.Ask(st.Step, st.Fields)}
	}

	if m.flow.CallbackShortcut && st.Step != StepContact && IsCallbackRequest(text) {
		st.Callback = true
		st.Step = StepContact
		return Reply{State: st, Prompt: m.script.CallbackAck(st.Fields)}
	}

	collected := st.Step
	switch collected {
	case StepProcedure:
		st.Fields.Procedure = m.intents.Procedure(ctx, text)
	case StepLocation:
		st.Fields.Location = m.intents.Location(ctx, text)
	case StepUrgency:
		u, ok := m.intents.Urgency(text)
		if !ok {
			u = m.builder.Defaults(m.flow.Channel).Urgency
		}
		st.Fields.Urgency = u
	case StepContact:
		if !m.captureContact(&st.Fields, text) {
			return Reply{State: st, Prompt: m.script.Ask(StepContact, st.Fields)}
		}
		return m.complete(st)
	}

	st.Step = m.flow.next(collected)
	if st.Step == StepComplete {
		return m.complete(st)
	}
	return Reply{State: st, Prompt: joinPrompt(m.script.Confirm(collected, st.Fields), m.script.Ask(st.Step, st.Fields))}
}

// captureContact records name and phone from text and reports whether the
// contact step is finished.
func (m *Machine) captureContact(f *leads.Fields, text string) bool {
	if m.flow.PhoneFromCaller {
		f.Name = ExtractName(text)
		return true
	}

	phone := ExtractPhone(text)
	rest := text
	if phone != "" {
		rest = phonePattern.ReplaceAllString(text, " ")
	} else if f.Name != "" && len(digitsOnly(text)) >= 7 {
		// Asked for a phone and got digits we cannot normalize; keep them as typed.
		phone = text
		rest = ""
	}
	if phone != "" {
		f.Phone = phone
	}
	if f.Name == "" {
		if name := extractName(stripFiller(rest)); name != "" {
			f.Name = name
		}
	}
	return f.HasContact()
}

func (m *Machine) complete(st State) Reply {
	st.Step = StepComplete
	lead := m.builder.Build(m.flow.Channel, st.Fields)
	reply := Reply{State: st, Prompt: m.script.Closing(lead), Done: true}
	if lead.Eligible() {
		reply.Lead = &lead
	} else {
		m.logger.Warn("dialogue completed without contact details", "channel", m.flow.Channel)
	}
	return reply
}

func (m *Machine) resumeStep(f leads.Fields) Step {
	for _, s := range m.flow.Steps {
		switch {
		case s == StepProcedure && f.Procedure == "":
			return s
		case s == StepLocation && f.Location == "":
			return s
		case s == StepUrgency && f.Urgency == "":
			return s
		case s == StepContact:
			return s
		}
	}
	return m.flow.first()
}

var fillerWords = []string{"and", "my", "number", "phone", "is", "cell", "at", "call", "me", "on"}

// stripFiller drops the phrasing left over once the phone number has been
// removed from "John, my number is ...".
func stripFiller(s string) string {
	s = leadInPattern.ReplaceAllString(s, " ")
	s = introPattern.ReplaceAllString(s, " ")
	s = contactPhrasePattern.ReplaceAllString(s, " ")
	var kept []string
	for _, w := range strings.Fields(s) {
		trimmed := strings.ToLower(strings.Trim(w, ".,!?;:"))
		if trimmed == "" || contains(fillerWords, trimmed) {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func joinPrompt(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
