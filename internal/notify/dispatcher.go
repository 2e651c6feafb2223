package notify

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/htx-dental-leads/internal/observability/metrics"
	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

var dispatchTracer = otel.Tracer("htx.internal.notify.dispatch")

const defaultSinkTimeout = 10 * time.Second

// Outcome is the settled result of one sink call.
type Outcome struct {
	Sink     string
	Err      error
	Duration time.Duration
}

// Report lists every sink outcome in registration order.
type Report struct {
	Outcomes []Outcome
}

// Failed counts the sinks that returned an error.
func (r Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// Dispatcher fans a lead out to every sink concurrently and waits for all of
// them to settle. Sink failures are logged and reported, never returned.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	logger  *logging.Logger
	metrics *metrics.PipelineMetrics
}

type DispatcherOption func(*Dispatcher)

// WithSinkTimeout bounds each individual sink call.
func WithSinkTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

func WithLogger(logger *logging.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithMetrics(m *metrics.PipelineMetrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

// NewDispatcher skips nil sinks. A dispatcher with no sinks is valid and
// delivers nowhere.
func NewDispatcher(sinks []Sink, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		timeout: defaultSinkTimeout,
		logger:  logging.Default(),
	}
	for _, s := range sinks {
		if s != nil {
			d.sinks = append(d.sinks, s)
		}
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Sinks returns the registered sink names.
func (d *Dispatcher) Sinks() []string {
	names := make([]string, 0, len(d.sinks))
	for _, s := range d.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Dispatch delivers n to every sink. Each sink runs in its own goroutine
// with its own timeout; cancellation of one never cancels another.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) Report {
	ctx, span := dispatchTracer.Start(ctx, "notify.dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("htx.lead.source", string(n.Lead.Source)),
		attribute.Int("htx.dispatch.sinks", len(d.sinks)),
	)

	report := Report{Outcomes: make([]Outcome, len(d.sinks))}
	var g errgroup.Group
	for i, sink := range d.sinks {
		g.Go(func() error {
			report.Outcomes[i] = d.deliver(ctx, sink, n)
			return nil
		})
	}
	_ = g.Wait()

	failed := report.Failed()
	span.SetAttributes(attribute.Int("htx.dispatch.failed", failed))
	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d sink(s) failed", failed))
	}
	return report
}

func (d *Dispatcher) deliver(ctx context.Context, sink Sink, n Notification) (out Outcome) {
	name := sink.Name()
	out.Sink = name
	start := time.Now()

	sinkCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("%w: %s: %v", errSinkPanic, name, r)
		}
		out.Duration = time.Since(start)
		d.metrics.ObserveSink(name, out.Err == nil, out.Duration.Seconds())
		if out.Err != nil {
			args := append([]any{"sink", name, "error", out.Err}, leadFields(n.Lead)...)
			d.logger.Warn("lead sink failed", args...)
			return
		}
		d.logger.Debug("lead delivered", append([]any{"sink", name, "duration_ms", out.Duration.Milliseconds()}, leadFields(n.Lead)...)...)
	}()

	out.Err = sink.Deliver(sinkCtx, n)
	return out
}
