package distribution

import (
	"context"
	"errors"
	"testing"

	"github.com/wolfman30/htx-dental-leads/internal/catalog"
	"github.com/wolfman30/htx-dental-leads/internal/leads"
	"github.com/wolfman30/htx-dental-leads/internal/notify"
	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

func testCatalog() catalog.Source {
	return catalog.NewStatic([]catalog.Provider{
		{Slug: "katy-smiles", Name: "Dr. K", Procedures: []string{"All-on-4 Implants"}, ServiceAreas: []string{"katy"}, Rating: 4.7},
		{Slug: "west-dental", Name: "Dr. W", Procedures: []string{"All-on-4 Implants", "Bone Grafting"}, ServiceAreas: []string{"katy", "cypress"}, Rating: 4.9},
		{Slug: "med-center", Name: "Dr. M", Procedures: []string{"Single Tooth Implant"}, ServiceAreas: []string{"medical-center"}, Rating: 5.0, Featured: true},
		{Slug: "sugar-implants", Name: "Dr. S", Procedures: []string{"Same-Day Implants"}, ServiceAreas: []string{"sugar-land"}, Rating: 4.8},
	})
}

type countingDispatcher struct {
	calls []notify.Notification
	panic bool
}

func (d *countingDispatcher) Dispatch(ctx context.Context, n notify.Notification) notify.Report {
	d.calls = append(d.calls, n)
	if d.panic {
		panic("dispatcher bug")
	}
	return notify.Report{}
}

func eligibleLead(p leads.ProcedureID, location string) leads.Lead {
	return leads.Lead{ID: "l-1", Name: "John", Phone: "+17135551234", Procedure: p, Location: location, Source: leads.SourceVoice}
}

func TestDistributeMatchesAndDispatches(t *testing.T) {
	d := &countingDispatcher{}
	svc := NewService(testCatalog(), d, WithLogger(logging.Discard()))

	res := svc.Distribute(context.Background(), eligibleLead(leads.ProcedureAllOn4, "Katy"))

	if !res.Success {
		t.Fatal("expected success")
	}
	if len(res.Matched) != 2 || res.Matched[0].Slug != "west-dental" || res.Matched[1].Slug != "katy-smiles" {
		t.Fatalf("unexpected matches %+v", res.Matched)
	}
	if len(d.calls) != 1 || len(d.calls[0].Matched) != 2 {
		t.Fatalf("expected one dispatch with matches, got %+v", d.calls)
	}
	if d.calls[0].ReceivedAt.IsZero() {
		t.Error("expected received timestamp")
	}
}

func TestDistributeFallsBackToWholeCatalog(t *testing.T) {
	d := &countingDispatcher{}
	svc := NewService(testCatalog(), d, WithLogger(logging.Discard()))

	res := svc.Distribute(context.Background(), eligibleLead(leads.ProcedureFullMouth, "Pearland"))

	if len(res.Matched) != 3 {
		t.Fatalf("expected 3 fallback matches, got %d", len(res.Matched))
	}
	if res.Matched[0].Slug != "med-center" {
		t.Errorf("expected featured provider first, got %s", res.Matched[0].Slug)
	}
}

func TestDistributeSkipsIneligibleLead(t *testing.T) {
	d := &countingDispatcher{}
	svc := NewService(testCatalog(), d, WithLogger(logging.Discard()))

	lead := eligibleLead(leads.ProcedureAllOn4, "Katy")
	lead.Phone = ""
	res := svc.Distribute(context.Background(), lead)

	if !res.Success {
		t.Fatal("expected success")
	}
	if len(d.calls) != 0 {
		t.Fatalf("ineligible lead must not be dispatched")
	}
}

type failingSource struct{}

func (failingSource) Providers(ctx context.Context) ([]catalog.Provider, error) {
	return nil, errors.New("disk gone")
}

func TestDistributeShieldsCatalogFailure(t *testing.T) {
	d := &countingDispatcher{}
	svc := NewService(failingSource{}, d, WithLogger(logging.Discard()))

	res := svc.Distribute(context.Background(), eligibleLead(leads.ProcedureAllOn4, "Katy"))

	if !res.Success || res.Matched == nil || len(res.Matched) != 0 {
		t.Fatalf("expected success with empty matches, got %+v", res)
	}
	if len(d.calls) != 1 {
		t.Fatalf("lead should still reach the sinks, got %d dispatches", len(d.calls))
	}
}

func TestDistributeShieldsDispatcherPanic(t *testing.T) {
	d := &countingDispatcher{panic: true}
	svc := NewService(testCatalog(), d, WithLogger(logging.Discard()))

	res := svc.Distribute(context.Background(), eligibleLead(leads.ProcedureAllOn4, "Katy"))
	if !res.Success || len(res.Matched) == 0 {
		t.Fatalf("expected success with matches, got %+v", res)
	}
}

func TestDistributeWithFailingSinks(t *testing.T) {
	fail := func(name string) notify.Sink {
		return notify.SinkFunc{SinkName: name, Fn: func(ctx context.Context, n notify.Notification) error {
			return errors.New(name + " down")
		}}
	}
	disp := notify.NewDispatcher([]notify.Sink{fail("email"), fail("sheets")}, notify.WithLogger(logging.Discard()))
	svc := NewService(testCatalog(), disp, WithLogger(logging.Discard()))

	res := svc.Distribute(context.Background(), eligibleLead(leads.ProcedureAllOn4, "Katy"))
	if !res.Success || len(res.Matched) != 2 {
		t.Fatalf("sink failures must be invisible, got %+v", res)
	}
}
