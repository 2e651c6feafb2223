package distribution

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/htx-dental-leads/internal/catalog"
	"github.com/wolfman30/htx-dental-leads/internal/classify"
	"github.com/wolfman30/htx-dental-leads/internal/leads"
	"github.com/wolfman30/htx-dental-leads/internal/matching"
	"github.com/wolfman30/htx-dental-leads/internal/notify"
	"github.com/wolfman30/htx-dental-leads/internal/observability/metrics"
	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

type dispatcher interface {
	Dispatch(ctx context.Context, n notify.Notification) notify.Report
}

// Service matches a lead against the catalog and fans it out to the sinks.
// It implements leads.Distributor.
type Service struct {
	catalog    catalog.Source
	dispatcher dispatcher
	maxMatches int
	logger     *logging.Logger
	metrics    *metrics.PipelineMetrics
	now        func() time.Time
}

type Option func(*Service)

func WithLogger(logger *logging.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.PipelineMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithMaxMatches overrides the lead-funnel cap.
func WithMaxMatches(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxMatches = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(source catalog.Source, d dispatcher, opts ...Option) *Service {
	if source == nil {
		panic("distribution: catalog source required")
	}
	if d == nil {
		panic("distribution: dispatcher required")
	}
	s := &Service{
		catalog:    source,
		dispatcher: d,
		maxMatches: matching.MaxLeadMatches,
		logger:     logging.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Distribute always reports success. Matching or catalog failures yield an
// empty match list; sink failures are logged by the dispatcher. A lead
// without a name and phone is matched but never dispatched.
func (s *Service) Distribute(ctx context.Context, lead leads.Lead) leads.Result {
	received := s.now()
	matched, err := s.match(ctx, lead)
	if err != nil {
		s.logger.Warn("lead matching failed", "lead_id", lead.ID, "error", err)
		matched = []catalog.Provider{}
	}

	if !lead.Eligible() {
		s.logger.Warn("lead not dispatched: missing contact", "lead_id", lead.ID, "lead_source", string(lead.Source))
		return leads.Result{Success: true, Matched: catalog.Summaries(matched)}
	}

	s.metrics.ObserveLead(string(lead.Source))
	s.safeDispatch(ctx, notify.Notification{Lead: lead, Matched: matched, ReceivedAt: received})

	s.logger.Info("lead distributed",
		"lead_id", lead.ID,
		"lead_source", string(lead.Source),
		"procedure", string(lead.Procedure),
		"phone", leads.MaskPhone(lead.Phone),
		"matched", len(matched),
	)
	return leads.Result{Success: true, Matched: catalog.Summaries(matched)}
}

func (s *Service) match(ctx context.Context, lead leads.Lead) (out []catalog.Provider, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("distribution: match panicked: %v", r)
		}
	}()

	providers, err := s.catalog.Providers(ctx)
	if err != nil {
		return nil, fmt.Errorf("distribution: load catalog: %w", err)
	}
	criteria := matching.Criteria{
		Procedure: lead.Procedure,
		AreaSlug:  classify.SlugFor(lead.Location),
	}
	matched, fallback := matching.Match(criteria, providers, s.maxMatches)
	if fallback {
		s.metrics.ObserveMatchFallback()
	}
	return matched, nil
}

func (s *Service) safeDispatch(ctx context.Context, n notify.Notification) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("lead dispatch panicked", "lead_id", n.Lead.ID, "panic", fmt.Sprint(r))
		}
	}()
	// Sinks keep running if the caller goes away; each has its own timeout.
	report := s.dispatcher.Dispatch(context.WithoutCancel(ctx), n)
	if failed := report.Failed(); failed > 0 {
		s.logger.Warn("lead reached only some sinks", "lead_id", n.Lead.ID, "failed", failed, "total", len(report.Outcomes))
	}
}

var _ leads.Distributor = (*Service)(nil)
