// Package metrics provides Prometheus-backed bus capabilities.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/matheus3301/eventsagg/internal/bus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Timer is a bus.Timer that observes scope durations into a histogram
// labelled by scope key.
type Timer struct {
	durations *prometheus.HistogramVec
}

// NewTimer registers the scope duration histogram on reg.
func NewTimer(reg prometheus.Registerer, namespace string) (*Timer, error) {
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scope_duration_seconds",
		Help:      "Duration of event publish and handler scopes, by key.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"key"})
	if err := reg.Register(durations); err != nil {
		return nil, fmt.Errorf("register scope histogram: %w", err)
	}
	return &Timer{durations: durations}, nil
}

// TimeScope starts a measurement for key.
func (t *Timer) TimeScope(key string) bus.Scope {
	return scope{prometheus.NewTimer(t.durations.WithLabelValues(key))}
}

type scope struct {
	timer *prometheus.Timer
}

func (s scope) Stop() {
	s.timer.ObserveDuration()
}

// CountingReporter counts handler failures by origin before passing them on.
type CountingReporter struct {
	next     bus.ErrorReporter
	failures *prometheus.CounterVec
}

// NewCountingReporter wraps next and registers the failure counter on reg.
func NewCountingReporter(reg prometheus.Registerer, namespace string, next bus.ErrorReporter) (*CountingReporter, error) {
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "handler_failures_total",
		Help:      "Total number of event handler failures, by origin.",
	}, []string{"origin"})
	if err := reg.Register(failures); err != nil {
		return nil, fmt.Errorf("register failure counter: %w", err)
	}
	return &CountingReporter{next: next, failures: failures}, nil
}

// Report increments the failure counter for origin and forwards the failure.
func (r *CountingReporter) Report(origin string, ev bus.Event, err error) {
	r.failures.WithLabelValues(origin).Inc()
	r.next.Report(origin, ev, err)
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
