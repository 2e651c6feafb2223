package dialogue

import (
	"errors"
	"net/url"
	"strings"

	"github.com/wolfman30/htx-dental-leads/internal/leads"
)

// ErrUnknownStep is returned when a callback names a step this service does
// not have.
var ErrUnknownStep = errors.New("dialogue: unknown step")

const (
	paramStep      = "step"
	paramProcedure = "procedure"
	paramLocation  = "location"
	paramUrgency   = "urgency"
)

// EncodeParams serializes the fields a voice call carries between turns into
// callback query parameters.
func EncodeParams(st State) url.Values {
	v := url.Values{}
	v.Set(paramStep, string(st.Step))
	if st.Fields.Procedure != "" {
		v.Set(paramProcedure, string(st.Fields.Procedure))
	}
	if st.Fields.Location != "" {
		v.Set(paramLocation, st.Fields.Location)
	}
	if st.Fields.Urgency != "" {
		v.Set(paramUrgency, string(st.Fields.Urgency))
	}
	return v
}

// DecodeParams rebuilds State from callback query parameters. A missing step
// means the first turn after the greeting. Unknown procedure or urgency values
// are dropped rather than trusted.
func DecodeParams(v url.Values) (State, error) {
	var st State
	raw := strings.TrimSpace(v.Get(paramStep))
	if raw == "" {
		st.Step = StepProcedure
	} else {
		step, ok := ParseStep(raw)
		if !ok {
			return State{}, ErrUnknownStep
		}
		st.Step = step
	}
	if p, ok := leads.ParseProcedure(v.Get(paramProcedure)); ok {
		st.Fields.Procedure = p
	}
	st.Fields.Location = strings.TrimSpace(v.Get(paramLocation))
	if u, ok := leads.ParseUrgency(v.Get(paramUrgency)); ok {
		st.Fields.Urgency = u
	}
	return st, nil
}
