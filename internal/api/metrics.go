package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dusk-indust/codesense/internal/analysis"
	"github.com/dusk-indust/codesense/internal/report"
)

// Metrics records analysis telemetry. It implements analysis.Observer so the
// analyzer reports every run, including failures.
type Metrics struct {
	registry *prometheus.Registry

	analysesTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	issuesFound      *prometheus.HistogramVec
}

var _ analysis.Observer = (*Metrics)(nil)

// NewMetrics registers the codesense collectors on a private registry, along
// with the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		analysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "codesense_analyses_total",
			Help: "Analyses run, by language and status",
		}, []string{"language", "status"}),
		analysisDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "codesense_analysis_duration_seconds",
			Help:    "Time to analyze one snippet",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"language"}),
		issuesFound: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "codesense_issues_found",
			Help:    "Issues reported per analysis",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}, []string{"language"}),
	}
}

// ObserveAnalysis records one completed analysis. Unsupported tags are
// folded into a single label value to bound cardinality.
func (m *Metrics) ObserveAnalysis(result report.AnalysisResult, elapsed time.Duration) {
	lang := string(result.Language)
	if _, ok := analysis.NormalizeLanguage(lang); !ok {
		lang = "unsupported"
	}
	m.analysesTotal.WithLabelValues(lang, string(result.Status)).Inc()
	m.analysisDuration.WithLabelValues(lang).Observe(elapsed.Seconds())
	m.issuesFound.WithLabelValues(lang).Observe(float64(result.IssueCount))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
