// Package metrics holds the service's prometheus collectors. A nil *Metrics
// is valid and records nothing, so library code and tests can skip it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"time"
)

type Metrics struct {
	Registry *prometheus.Registry

	accessorCalls   *prometheus.CounterVec
	sourceFailures  *prometheus.CounterVec
	skippedFiles    prometheus.Counter
	cmsRequests     *prometheus.HistogramVec
	formSubmissions *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		accessorCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitecms_content_accessor_calls_total",
			Help: "Content accessor calls by kind and source mode.",
		}, []string{"kind", "mode"}),
		sourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitecms_content_source_failures_total",
			Help: "Accessor calls that fell back to an empty result.",
		}, []string{"kind", "mode"}),
		skippedFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sitecms_content_files_skipped_total",
			Help: "Local content files skipped because they failed to parse.",
		}),
		cmsRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sitecms_cms_request_duration_seconds",
			Help:    "Remote CMS GraphQL request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query", "outcome"}),
		formSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitecms_form_submissions_total",
			Help: "Form submissions by form and outcome.",
		}, []string{"form", "outcome"}),
	}
	reg.MustRegister(
		m.accessorCalls,
		m.sourceFailures,
		m.skippedFiles,
		m.cmsRequests,
		m.formSubmissions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) AccessorCall(kind, mode string) {
	if m == nil {
		return
	}
	m.accessorCalls.WithLabelValues(kind, mode).Inc()
}

func (m *Metrics) SourceFailure(kind, mode string) {
	if m == nil {
		return
	}
	m.sourceFailures.WithLabelValues(kind, mode).Inc()
}

func (m *Metrics) FileSkipped() {
	if m == nil {
		return
	}
	m.skippedFiles.Inc()
}

func (m *Metrics) CMSRequest(query string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.cmsRequests.WithLabelValues(query, outcome).Observe(time.Since(started).Seconds())
}

func (m *Metrics) FormSubmission(form, outcome string) {
	if m == nil {
		return
	}
	m.formSubmissions.WithLabelValues(form, outcome).Inc()
}
