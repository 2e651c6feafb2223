package notify

import (
	"context"
	"time"

	"github.com/wolfman30/htx-dental-leads/internal/catalog"
	"github.com/wolfman30/htx-dental-leads/internal/leads"
)

// Notification is what every sink receives for one lead.
type Notification struct {
	Lead       leads.Lead
	Matched    []catalog.Provider
	ReceivedAt time.Time
}

// Sink delivers a lead to one external destination. A Sink must honor ctx
// cancellation; the dispatcher bounds each call with its own timeout.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n Notification) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc struct {
	SinkName string
	Fn       func(ctx context.Context, n Notification) error
}

func (s SinkFunc) Name() string { return s.SinkName }

func (s SinkFunc) Deliver(ctx context.Context, n Notification) error {
	return s.Fn(ctx, n)
}
