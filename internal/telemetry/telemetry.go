// Package telemetry exposes Prometheus metrics for the swotlab server.
package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swotlab/swotlab/internal/store"
)

// Metrics holds all Prometheus collectors on a private registry.
type Metrics struct {
	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	ExperimentEvents    *prometheus.CounterVec
	CompetitorsAnalyzed prometheus.Counter
	StoreWrites         *prometheus.CounterVec
	StoreWriteDuration  *prometheus.HistogramVec

	registry *prometheus.Registry
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swotlab_http_requests_total",
				Help: "HTTP requests by route and status code.",
			},
			[]string{"route", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swotlab_http_request_duration_seconds",
				Help:    "HTTP request duration by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		ExperimentEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swotlab_experiment_events_total",
				Help: "Layout experiment views and conversions by variant.",
			},
			[]string{"event", "variant"},
		),
		CompetitorsAnalyzed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "swotlab_competitors_analyzed_total",
				Help: "Competitor descriptions run through SWOT extraction.",
			},
		),
		StoreWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swotlab_store_writes_total",
				Help: "Whole-collection writes by collection and result.",
			},
			[]string{"collection", "result"},
		),
		StoreWriteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swotlab_store_write_duration_seconds",
				Help:    "Whole-collection write duration by collection.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"collection"},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.ExperimentEvents)
	reg.MustRegister(m.CompetitorsAnalyzed)
	reg.MustRegister(m.StoreWrites)
	reg.MustRegister(m.StoreWriteDuration)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRequest(route string, code int, d time.Duration) {
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveEvent counts an experiment view or conversion.
func (m *Metrics) ObserveEvent(event, variant string) {
	m.ExperimentEvents.WithLabelValues(event, variant).Inc()
}

func (m *Metrics) ObserveCompetitors(n int) {
	m.CompetitorsAnalyzed.Add(float64(n))
}

type instrumentedStore struct {
	store.Store
	metrics *Metrics
}

// InstrumentStore wraps s so every Save is counted and timed.
func InstrumentStore(s store.Store, m *Metrics) store.Store {
	return &instrumentedStore{Store: s, metrics: m}
}

func (s *instrumentedStore) Save(ctx context.Context, c store.Collection, value any) error {
	start := time.Now()
	err := s.Store.Save(ctx, c, value)
	s.metrics.StoreWriteDuration.WithLabelValues(string(c)).Observe(time.Since(start).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.StoreWrites.WithLabelValues(string(c), result).Inc()
	return err
}
