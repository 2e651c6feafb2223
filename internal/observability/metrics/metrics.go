package metrics

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics exposes counters/histograms for lead qualification and
// distribution. A nil *PipelineMetrics is a valid no-op.
type PipelineMetrics struct {
	classifications *prometheus.CounterVec
	turns           *prometheus.CounterVec
	sinkDeliveries  *prometheus.CounterVec
	sinkLatency     *prometheus.HistogramVec
	leadsTotal      *prometheus.CounterVec
	matchFallbacks  prometheus.Counter
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "htx",
			Subsystem: "classify",
			Name:      "total",
			Help:      "Intent classifications by domain and path (model or keyword)",
		}, []string{"domain", "path"}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "htx",
			Subsystem: "dialogue",
			Name:      "turns_total",
			Help:      "Dialogue turns by channel and resulting step",
		}, []string{"channel", "step"}),
		sinkDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "htx",
			Subsystem: "dispatch",
			Name:      "sink_deliveries_total",
			Help:      "Lead deliveries per sink and outcome",
		}, []string{"sink", "status"}),
		sinkLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "htx",
			Subsystem: "dispatch",
			Name:      "sink_latency_seconds",
			Help:      "Latency of a single sink delivery",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sink"}),
		leadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "htx",
			Subsystem: "leads",
			Name:      "distributed_total",
			Help:      "Leads distributed by source",
		}, []string{"source"}),
		matchFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "htx",
			Subsystem: "matching",
			Name:      "fallback_total",
			Help:      "Matches that discarded the filter and used the whole catalog",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.classifications, m.turns, m.sinkDeliveries, m.sinkLatency, m.leadsTotal, m.matchFallbacks)
	return m
}

func (m *PipelineMetrics) ObserveClassification(domain, path string) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(domain, path).Inc()
}

func (m *PipelineMetrics) ObserveTurn(channel, step string) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(channel, step).Inc()
}

func (m *PipelineMetrics) ObserveSink(sink string, ok bool, seconds float64) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.sinkDeliveries.WithLabelValues(sink, status).Inc()
	m.sinkLatency.WithLabelValues(sink).Observe(seconds)
}

func (m *PipelineMetrics) ObserveLead(source string) {
	if m == nil {
		return
	}
	m.leadsTotal.WithLabelValues(source).Inc()
}

func (m *PipelineMetrics) ObserveMatchFallback() {
	if m == nil {
		return
	}
	m.matchFallbacks.Inc()
}
