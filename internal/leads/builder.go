package leads

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Defaults is the per-channel fill-in table for fields a channel does not
// collect itself.
type Defaults struct {
	Urgency  Urgency
	Source   Source
	Location string
}

// Builder turns collected fields into a Lead. It never rejects input; the
// completeness check lives in Lead.Validate.
type Builder struct {
	defaultArea string
	now         func() time.Time
	newID       func() string
}

// NewBuilder creates a builder. defaultArea is the city-level label used when
// a conversational channel finishes without a location.
func NewBuilder(defaultArea string) *Builder {
	if strings.TrimSpace(defaultArea) == "" {
		defaultArea = "Houston"
	}
	return &Builder{
		defaultArea: defaultArea,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       func() string { return uuid.New().String() },
	}
}

// WithClock overrides the timestamp source (tests).
func (b *Builder) WithClock(now func() time.Time) *Builder {
	if now != nil {
		b.now = now
	}
	return b
}

// Defaults returns the fill-in table for a channel. A caller who phoned in is
// treated as higher intent than one browsing the site, hence asap for voice.
func (b *Builder) Defaults(ch Channel) Defaults {
	switch ch {
	case ChannelVoice:
		return Defaults{Urgency: UrgencyASAP, Source: SourceVoice, Location: b.defaultArea}
	case ChannelChat:
		return Defaults{Urgency: UrgencyResearching, Source: SourceChatbot, Location: b.defaultArea}
	default:
		return Defaults{Urgency: UrgencyResearching, Source: SourceLeadForm}
	}
}

// Build merges the collected fields over the channel defaults.
func (b *Builder) Build(ch Channel, f Fields) Lead {
	d := b.Defaults(ch)

	procedure := f.Procedure
	if !procedure.Valid() {
		procedure = ProcedureNotSure
	}
	urgency := f.Urgency
	if u, ok := ParseUrgency(string(urgency)); ok {
		urgency = u
	} else {
		urgency = d.Urgency
	}
	source := Source(strings.TrimSpace(string(f.Source)))
	if source == "" {
		source = d.Source
	}
	location := strings.TrimSpace(f.Location)
	if location == "" {
		location = d.Location
	}

	return Lead{
		ID:          b.newID(),
		Name:        strings.TrimSpace(f.Name),
		Phone:       strings.TrimSpace(f.Phone),
		Email:       strings.TrimSpace(f.Email),
		Procedure:   procedure,
		Location:    location,
		Urgency:     urgency,
		Source:      source,
		UTMSource:   strings.TrimSpace(f.UTMSource),
		UTMMedium:   strings.TrimSpace(f.UTMMedium),
		UTMCampaign: strings.TrimSpace(f.UTMCampaign),
		CreatedAt:   b.now(),
	}
}
