// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "compliance_mgt"

// Recorder holds the HTTP and domain collectors registered on one registry.
type Recorder struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	submissions     *prometheus.CounterVec
	verifications   *prometheus.CounterVec
	invitations     *prometheus.CounterVec
	uploads         *prometheus.CounterVec
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	r.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	r.submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Form and checklist submissions by kind and result",
		},
		[]string{"kind", "result"},
	)
	r.verifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_verifications_total",
			Help:      "Audit verification decisions",
		},
		[]string{"decision"},
	)
	r.invitations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_invitations_total",
			Help:      "User invitations by outcome",
		},
		[]string{"outcome"},
	)
	r.uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evidence_uploads_total",
			Help:      "Checklist evidence uploads by outcome",
		},
		[]string{"outcome"},
	)

	r.registry.MustRegister(
		r.requestsTotal,
		r.requestDuration,
		r.submissions,
		r.verifications,
		r.invitations,
		r.uploads,
		prometheus.NewGoCollector(),
	)
	return r
}

// ObserveRequest records one finished HTTP request.
func (r *Recorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Submission counts a form or checklist submission.
func (r *Recorder) Submission(kind, result string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(kind, result).Inc()
}

// Verification counts an audit verification decision.
func (r *Recorder) Verification(decision string) {
	if r == nil {
		return
	}
	r.verifications.WithLabelValues(decision).Inc()
}

// Invitation counts a user invitation outcome.
func (r *Recorder) Invitation(outcome string) {
	if r == nil {
		return
	}
	r.invitations.WithLabelValues(outcome).Inc()
}

// Upload counts an evidence upload outcome.
func (r *Recorder) Upload(outcome string) {
	if r == nil {
		return
	}
	r.uploads.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
