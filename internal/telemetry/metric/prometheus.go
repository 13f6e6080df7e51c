package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "honeymesh"

// Access results recorded by RecordTokenAccess.
const (
	AccessRecorded    = "recorded"
	AccessUnknown     = "unknown"
	AccessMalformed   = "malformed"
	AccessUnavailable = "unavailable"
)

// Publish results recorded by RecordAlertPublish.
const (
	PublishOK     = "ok"
	PublishFailed = "failed"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Honeytoken metrics
	TokensMinted  prometheus.Counter
	TokenAccesses *prometheus.CounterVec

	// Alert metrics
	AlertsPublished *prometheus.CounterVec
	LoginAttempts   *prometheus.CounterVec

	// Storage metrics
	StoreErrors   *prometheus.CounterVec
	StoreDegraded prometheus.Gauge

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter
}

var (
	globalRegistry *Registry
	globalOnce     sync.Once
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns an HTTP handler for the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// NewRegistry creates a registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		TokensMinted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_minted_total",
			Help:      "Total number of honeytokens minted.",
		}),
		TokenAccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_accesses_total",
			Help:      "Total number of honeytoken accesses by result.",
		}, []string{"result"}),
		AlertsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_published_total",
			Help:      "Total number of alert publish attempts by event type and result.",
		}, []string{"event_type", "result"}),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Total number of bait login submissions by outcome.",
		}, []string{"outcome"}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Total number of token store errors by backend and operation.",
		}, []string{"backend", "op"}),
		StoreDegraded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_degraded",
			Help:      "1 while the primary token store is unavailable and memory is serving.",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "route"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter.",
		}),
	}

	reg.MustRegister(
		r.TokensMinted,
		r.TokenAccesses,
		r.AlertsPublished,
		r.LoginAttempts,
		r.StoreErrors,
		r.StoreDegraded,
		r.RequestsTotal,
		r.RequestDuration,
		r.RateLimited,
	)
	return r
}

// Handler returns an HTTP handler serving this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Register adds extra collectors, e.g. backend-specific gauges.
func (r *Registry) Register(cs ...prometheus.Collector) error {
	if r == nil {
		return nil
	}
	for _, c := range cs {
		if err := r.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncTokensMinted counts one minted honeytoken.
func (r *Registry) IncTokensMinted() {
	if r == nil {
		return
	}
	r.TokensMinted.Inc()
}

// RecordTokenAccess counts one access attempt by result.
func (r *Registry) RecordTokenAccess(result string) {
	if r == nil {
		return
	}
	r.TokenAccesses.WithLabelValues(result).Inc()
}

// RecordAlertPublish counts one publish attempt.
func (r *Registry) RecordAlertPublish(eventType, result string) {
	if r == nil {
		return
	}
	r.AlertsPublished.WithLabelValues(eventType, result).Inc()
}

// RecordLoginAttempt counts one bait login submission.
func (r *Registry) RecordLoginAttempt(outcome string) {
	if r == nil {
		return
	}
	r.LoginAttempts.WithLabelValues(outcome).Inc()
}

// RecordStoreError counts one failed store operation.
func (r *Registry) RecordStoreError(backend, op string) {
	if r == nil {
		return
	}
	r.StoreErrors.WithLabelValues(backend, op).Inc()
}

// SetStoreDegraded flips the degraded gauge.
func (r *Registry) SetStoreDegraded(degraded bool) {
	if r == nil {
		return
	}
	if degraded {
		r.StoreDegraded.Set(1)
	} else {
		r.StoreDegraded.Set(0)
	}
}

// RecordRequest counts one HTTP request.
func (r *Registry) RecordRequest(method, route, status string) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, route, status).Inc()
}

// ObserveRequestDuration records the duration of one HTTP request.
func (r *Registry) ObserveRequestDuration(method, route string, seconds float64) {
	if r == nil {
		return
	}
	r.RequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// IncRateLimited counts one rejected request.
func (r *Registry) IncRateLimited() {
	if r == nil {
		return
	}
	r.RateLimited.Inc()
}
