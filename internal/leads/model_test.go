package leads

import (
	"errors"
	"testing"
	"time"
)

func TestProcedureLabelsAreExhaustive(t *testing.T) {
	for _, id := range Procedures() {
		if !id.Valid() {
			t.Errorf("%s should be valid", id)
		}
		if id.Label() == "dental implants" {
			t.Errorf("%s has no dedicated label", id)
		}
		if id.Name() == "" {
			t.Errorf("%s has no name", id)
		}
	}
	if ProcedureID("veneers").Valid() {
		t.Error("unknown id must not be valid")
	}
	if got := ProcedureID("veneers").Label(); got != "dental implants" {
		t.Errorf("unexpected fallback label %q", got)
	}
}

func TestParseProcedure(t *testing.T) {
	if id, ok := ParseProcedure("  All-On-4 "); !ok || id != ProcedureAllOn4 {
		t.Errorf("expected all-on-4, got %q %v", id, ok)
	}
	if _, ok := ParseProcedure("all on four"); ok {
		t.Error("free text must not parse as an id")
	}
}

func TestMatchTerm(t *testing.T) {
	cases := map[ProcedureID]string{
		ProcedureAllOn4:          "all",
		ProcedureSingleTooth:     "single",
		ProcedureImplantDentures: "implant",
		ProcedureSameDay:         "same",
		ProcedureBoneGraft:       "bone",
		ProcedureFullMouth:       "full",
		ProcedureNotSure:         "",
		ProcedureID("bogus"):     "",
	}
	for id, want := range cases {
		if got := id.MatchTerm(); got != want {
			t.Errorf("%s: expected %q, got %q", id, want, got)
		}
	}
}

func TestParseUrgency(t *testing.T) {
	cases := map[string]Urgency{
		"asap":         UrgencyASAP,
		"month":        UrgencyWithinMonth,
		"Within-Month": UrgencyWithinMonth,
		"researching":  UrgencyResearching,
	}
	for in, want := range cases {
		got, ok := ParseUrgency(in)
		if !ok || got != want {
			t.Errorf("%q: expected %s, got %s (%v)", in, want, got, ok)
		}
	}
	if _, ok := ParseUrgency("someday"); ok {
		t.Error("unknown urgency must be rejected")
	}
}

func TestBuildAppliesChannelDefaults(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := NewBuilder("Houston").WithClock(func() time.Time { return fixed })

	voice := b.Build(ChannelVoice, Fields{Name: "John", Phone: "+17135551234", Procedure: ProcedureAllOn4})
	if voice.Urgency != UrgencyASAP || voice.Source != SourceVoice || voice.Location != "Houston" {
		t.Errorf("unexpected voice defaults: %+v", voice)
	}
	if !voice.CreatedAt.Equal(fixed) {
		t.Errorf("expected fixed clock, got %s", voice.CreatedAt)
	}

	chat := b.Build(ChannelChat, Fields{Name: "Ann", Phone: "555", Urgency: "month"})
	if chat.Urgency != UrgencyWithinMonth || chat.Source != SourceChatbot {
		t.Errorf("unexpected chat lead: %+v", chat)
	}
	if chat.Procedure != ProcedureNotSure {
		t.Errorf("expected not-sure when procedure missing, got %s", chat.Procedure)
	}

	form := b.Build(ChannelForm, Fields{Name: "Bo", Phone: "555", Urgency: "someday"})
	if form.Urgency != UrgencyResearching || form.Source != SourceLeadForm || form.Location != "" {
		t.Errorf("unexpected form lead: %+v", form)
	}
}

func TestBuildKeepsFreeTextContact(t *testing.T) {
	lead := NewBuilder("").Build(ChannelForm, Fields{Name: " x ", Phone: "call me maybe"})
	if lead.Name != "x" || lead.Phone != "call me maybe" {
		t.Errorf("contact fields must be accepted as free text: %+v", lead)
	}
	if !lead.Eligible() {
		t.Error("lead with name and phone must be eligible")
	}
}

func TestValidate(t *testing.T) {
	if err := (Lead{Phone: "1"}).Validate(); !errors.Is(err, ErrMissingName) {
		t.Errorf("expected ErrMissingName, got %v", err)
	}
	if err := (Lead{Name: "a"}).Validate(); !errors.Is(err, ErrMissingPhone) {
		t.Errorf("expected ErrMissingPhone, got %v", err)
	}
}

func TestMaskPhone(t *testing.T) {
	if got := MaskPhone("(713) 555-1234"); got != "***1234" {
		t.Errorf("unexpected mask %q", got)
	}
	if got := MaskPhone("12"); got != "***" {
		t.Errorf("unexpected mask %q", got)
	}
}
