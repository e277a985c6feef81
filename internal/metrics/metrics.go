// Package metrics exposes Prometheus counters for projections, flights,
// catalogue loads, and picking.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/litescript/ls-stellar/internal/logging"
)

// Collector records viewer activity. It satisfies starfield.Observer and
// camera.Observer.
type Collector struct {
	gatherer prometheus.Gatherer

	projectionDuration *prometheus.HistogramVec
	projectedStars     *prometheus.GaugeVec
	flightsTotal       *prometheus.CounterVec
	catalogStars       prometheus.Gauge
	catalogLoads       *prometheus.CounterVec
	picksTotal         *prometheus.CounterVec
}

// NewCollector creates the collectors and registers them with reg.
// A nil reg uses a fresh private registry.
func NewCollector(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Collector{
		gatherer: reg,
		projectionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stellar_projection_duration_seconds",
				Help:    "Time spent building render buffers",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"tier"},
		),
		projectedStars: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stellar_projected_stars",
				Help: "Stars in the most recent render buffers",
			},
			[]string{"tier"},
		),
		flightsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stellar_flight_events_total",
				Help: "Camera flight lifecycle events",
			},
			[]string{"event"},
		),
		catalogStars: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "stellar_catalog_stars",
				Help: "Stars in the loaded catalogue",
			},
		),
		catalogLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stellar_catalog_loads_total",
				Help: "Catalogue load attempts",
			},
			[]string{"result"},
		),
		picksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stellar_picks_total",
				Help: "Pointer interactions that resolved to a star",
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(
		m.projectionDuration,
		m.projectedStars,
		m.flightsTotal,
		m.catalogStars,
		m.catalogLoads,
		m.picksTotal,
	)
	return m
}

// ObserveProjection records one pipeline run.
func (m *Collector) ObserveProjection(tier string, stars int, elapsed time.Duration) {
	m.projectionDuration.WithLabelValues(tier).Observe(elapsed.Seconds())
	m.projectedStars.WithLabelValues(tier).Set(float64(stars))
}

// ObserveFlight counts a flight event (started, completed, preempted, ...).
func (m *Collector) ObserveFlight(kind string) {
	m.flightsTotal.WithLabelValues(kind).Inc()
}

// RecordCatalogLoad counts a load attempt and, on success, its size.
func (m *Collector) RecordCatalogLoad(stars int, err error) {
	if err != nil {
		m.catalogLoads.WithLabelValues("error").Inc()
		return
	}
	m.catalogLoads.WithLabelValues("ok").Inc()
	m.catalogStars.Set(float64(stars))
}

// RecordPick counts a hover or click.
func (m *Collector) RecordPick(kind string) {
	m.picksTotal.WithLabelValues(kind).Inc()
}

// Handler returns the /metrics handler for this collector's registry.
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Serve exposes the metrics on addr until ctx is cancelled.
func (m *Collector) Serve(ctx context.Context, addr string, logger *logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting Prometheus metrics server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
