package chat

import (
	"context"
	"time"

	"github.com/wolfman30/htx-dental-leads/internal/dialogue"
	"github.com/wolfman30/htx-dental-leads/internal/leads"
	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

// Mode selects the guided conversation.
type Mode string

const (
	ModeChat  Mode = "chat"
	ModeQuote Mode = "quote"
)

// Guided runs the deterministic dialogue machines. The client holds the
// state and sends it back with every turn.
type Guided struct {
	machines    map[Mode]*dialogue.Machine
	distributor leads.Distributor
	timeout     time.Duration
	logger      *logging.Logger
}

// NewGuided requires the chat machine; quote is optional.
func NewGuided(chat, quote *dialogue.Machine, distributor leads.Distributor, logger *logging.Logger) *Guided {
	if chat == nil {
		panic("chat: guided chat machine required")
	}
	if distributor == nil {
		panic("chat: distributor required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	machines := map[Mode]*dialogue.Machine{ModeChat: chat}
	if quote != nil {
		machines[ModeQuote] = quote
	}
	return &Guided{machines: machines, distributor: distributor, timeout: 20 * time.Second, logger: logger}
}

// Supports reports whether mode has a machine.
func (g *Guided) Supports(mode Mode) bool {
	_, ok := g.machines[mode]
	return ok
}

// Turn applies text to st. A nil st starts a new conversation and returns
// its opening prompt.
func (g *Guided) Turn(ctx context.Context, mode Mode, st *dialogue.State, text string) Response {
	m, ok := g.machines[mode]
	if !ok {
		m = g.machines[ModeChat]
	}

	var reply dialogue.Reply
	if st == nil {
		reply = m.Start()
		if text != "" {
			reply = m.Advance(ctx, reply.State, dialogue.Input{Text: text})
		}
	} else {
		reply = m.Advance(ctx, *st, dialogue.Input{Text: text})
	}

	resp := Response{Role: RoleAssistant, Content: reply.Prompt}
	if reply.Lead != nil {
		dctx, cancel := context.WithTimeout(ctx, g.timeout)
		res := g.distributor.Distribute(dctx, *reply.Lead)
		cancel()
		g.logger.Info("guided lead submitted", "mode", string(mode), "lead_id", reply.Lead.ID, "matched", len(res.Matched))
		resp.LeadSubmitted = true
	}
	next := reply.State
	resp.State = &next
	return resp
}
