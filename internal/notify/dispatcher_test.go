package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/htx-dental-leads/internal/observability/metrics"
	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

func TestDispatchIsolatesFailures(t *testing.T) {
	var delivered atomic.Int32
	ok := SinkFunc{SinkName: "ok", Fn: func(ctx context.Context, n Notification) error {
		delivered.Add(1)
		return nil
	}}
	failing := SinkFunc{SinkName: "failing", Fn: func(ctx context.Context, n Notification) error {
		return errors.New("webhook down")
	}}

	d := NewDispatcher([]Sink{failing, nil, ok}, WithLogger(logging.Discard()))
	report := d.Dispatch(context.Background(), sampleNotification())

	if delivered.Load() != 1 {
		t.Fatalf("expected healthy sink to run once, got %d", delivered.Load())
	}
	if len(report.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(report.Outcomes))
	}
	if report.Outcomes[0].Sink != "failing" || report.Outcomes[0].Err == nil {
		t.Errorf("unexpected first outcome %+v", report.Outcomes[0])
	}
	if report.Outcomes[1].Err != nil {
		t.Errorf("unexpected second outcome %+v", report.Outcomes[1])
	}
	if report.Failed() != 1 {
		t.Errorf("expected 1 failure, got %d", report.Failed())
	}
}

func TestDispatchRunsSinksConcurrently(t *testing.T) {
	release := make(chan struct{})
	var started atomic.Int32
	blocking := func(name string) Sink {
		return SinkFunc{SinkName: name, Fn: func(ctx context.Context, n Notification) error {
			if started.Add(1) == 2 {
				close(release)
			}
			select {
			case <-release:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}}
	}

	d := NewDispatcher([]Sink{blocking("a"), blocking("b")}, WithLogger(logging.Discard()), WithSinkTimeout(2*time.Second))
	report := d.Dispatch(context.Background(), sampleNotification())
	if report.Failed() != 0 {
		t.Fatalf("sinks should have overlapped: %+v", report.Outcomes)
	}
}

func TestDispatchAppliesPerSinkTimeout(t *testing.T) {
	slow := SinkFunc{SinkName: "slow", Fn: func(ctx context.Context, n Notification) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	fast := SinkFunc{SinkName: "fast", Fn: func(ctx context.Context, n Notification) error { return nil }}

	d := NewDispatcher([]Sink{slow, fast}, WithLogger(logging.Discard()), WithSinkTimeout(20*time.Millisecond))
	report := d.Dispatch(context.Background(), sampleNotification())

	if !errors.Is(report.Outcomes[0].Err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", report.Outcomes[0].Err)
	}
	if report.Outcomes[1].Err != nil {
		t.Errorf("fast sink should succeed: %v", report.Outcomes[1].Err)
	}
}

func TestDispatchRecoversPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewPipelineMetrics(reg)
	boom := SinkFunc{SinkName: "boom", Fn: func(ctx context.Context, n Notification) error {
		panic("nil map")
	}}

	d := NewDispatcher([]Sink{boom}, WithLogger(logging.Discard()), WithMetrics(m))
	report := d.Dispatch(context.Background(), sampleNotification())

	if !errors.Is(report.Outcomes[0].Err, errSinkPanic) {
		t.Fatalf("expected panic to be converted, got %v", report.Outcomes[0].Err)
	}
}

func TestDispatchWithoutSinks(t *testing.T) {
	d := NewDispatcher(nil)
	if got := d.Dispatch(context.Background(), sampleNotification()); len(got.Outcomes) != 0 {
		t.Fatalf("expected no outcomes, got %+v", got)
	}
	if len(d.Sinks()) != 0 {
		t.Error("expected no sinks")
	}
}
