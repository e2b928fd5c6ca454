package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/letluck/pkg/domain"
)

// Metrics holds the collectors fed by session hooks.
type Metrics struct {
	registry *prometheus.Registry

	Navigations    *prometheus.CounterVec
	Decisions      *prometheus.CounterVec
	Reveals        *prometheus.CounterVec
	RevealDuration prometheus.Histogram
	RevealTicks    prometheus.Counter
	Transitions    *prometheus.CounterVec
	ActiveReveals  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		Navigations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "letluck_navigations_total",
				Help: "Total number of accepted navigation actions",
			},
			[]string{"action"},
		),
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "letluck_decisions_total",
				Help: "Total number of decisions by category and anti-repeat tier",
			},
			[]string{"category", "tier", "outcome"},
		),
		Reveals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "letluck_reveals_total",
				Help: "Total number of finished reveals by result",
			},
			[]string{"result"},
		),
		RevealDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "letluck_reveal_duration_seconds",
				Help:    "Time from reveal start to the winner being highlighted",
				Buckets: []float64{1, 2, 3, 4, 5, 5.5, 6, 7, 10},
			},
		),
		RevealTicks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "letluck_reveal_ticks_total",
				Help: "Total number of highlight moves across reveals",
			},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "letluck_transitions_total",
				Help: "Total number of grid transitions by style",
			},
			[]string{"style"},
		),
		ActiveReveals: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "letluck_active_reveals",
				Help: "Number of reveals currently running",
			},
		),
	}
	reg.MustRegister(
		m.Navigations,
		m.Decisions,
		m.Reveals,
		m.RevealDuration,
		m.RevealTicks,
		m.Transitions,
		m.ActiveReveals,
	)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks recording into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNavigate: func(_ context.Context, e *domain.NavigationEvent) {
			m.Navigations.WithLabelValues(e.Action).Inc()
		},
		OnDecide: func(_ context.Context, e *domain.DecisionEvent) {
			m.Decisions.WithLabelValues(e.CategoryID, strconv.Itoa(e.Tier), strconv.FormatBool(e.Outcome)).Inc()
		},
		OnRevealStart: func(context.Context, *domain.RevealEvent) {
			m.ActiveReveals.Inc()
		},
		OnRevealTick: func(context.Context, *domain.RevealEvent) {
			m.RevealTicks.Inc()
		},
		OnRevealDone: func(_ context.Context, e *domain.RevealEvent) {
			result := "completed"
			if e.Forced {
				result = "forced"
			}
			m.Reveals.WithLabelValues(result).Inc()
			m.RevealDuration.Observe(e.Elapsed.Seconds())
			m.ActiveReveals.Dec()
		},
		OnRevealAbort: func(context.Context, *domain.RevealEvent) {
			m.Reveals.WithLabelValues("aborted").Inc()
			m.ActiveReveals.Dec()
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			if e.Phase == "done" {
				m.Transitions.WithLabelValues(e.Style).Inc()
			}
		},
	}
}
