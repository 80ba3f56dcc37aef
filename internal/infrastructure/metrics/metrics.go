package metrics

import (
	"net/http"

	"fxrates-ingest/internal/application"
	"fxrates-ingest/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ application.IngestMetrics = (*IngestMetrics)(nil)

// IngestMetrics records ingestion counters on its own registry so tests and
// multiple instances never collide on the default one.
type IngestMetrics struct {
	Registry *prometheus.Registry

	PairsTotal   *prometheus.CounterVec
	TicksTotal   *prometheus.CounterVec
	TickDuration prometheus.Histogram
	TickPairs    prometheus.Gauge
	LastTickUnix prometheus.Gauge
}

func NewIngestMetrics() *IngestMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &IngestMetrics{
		Registry: reg,
		PairsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxrates_pair_fetch_total",
				Help: "Pairs processed by ingestion ticks, by outcome.",
			},
			[]string{"pair", "outcome"},
		),
		TicksTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxrates_ticks_total",
				Help: "Ingestion ticks by result (completed, skipped_busy, skipped_leased).",
			},
			[]string{"result"},
		),
		TickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fxrates_tick_duration_seconds",
			Help:    "Wall time of one ingestion tick.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		TickPairs: f.NewGauge(prometheus.GaugeOpts{
			Name: "fxrates_tick_pairs",
			Help: "Pairs tracked during the last tick.",
		}),
		LastTickUnix: f.NewGauge(prometheus.GaugeOpts{
			Name: "fxrates_last_tick_timestamp_seconds",
			Help: "Start time of the last completed tick.",
		}),
	}
}

func (m *IngestMetrics) PairProcessed(p domain.Pair, o application.PairOutcome) {
	m.PairsTotal.WithLabelValues(p.String(), string(o)).Inc()
}

func (m *IngestMetrics) TickCompleted(r domain.TickReport) {
	m.TicksTotal.WithLabelValues("completed").Inc()
	m.TickDuration.Observe(r.Duration.Seconds())
	m.TickPairs.Set(float64(r.Pairs))
	m.LastTickUnix.Set(float64(r.StartedAt.Unix()))
}

func (m *IngestMetrics) TickSkipped(reason string) {
	m.TicksTotal.WithLabelValues("skipped_" + reason).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *IngestMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
