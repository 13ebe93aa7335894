/* metrics.go
 * Contains the Prometheus collectors of the importer: imports by outcome, draws by type and diagnostics by kind
 * Authors: Zachary Bower
 */

package metrics

import (
	"net/http"
	"time"
	"tournament-importer/api/shared"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tournament_importer"

// Import outcomes
const (
	OutcomeParsed = "parsed"
	OutcomeCached = "cached"
	OutcomeFailed = "failed"
)

// Metrics holds the collectors registered on one registry. A nil *Metrics records nothing
type Metrics struct {
	Registry *prometheus.Registry

	imports        *prometheus.CounterVec
	draws          *prometheus.CounterVec
	diagnostics    *prometheus.CounterVec
	importDuration prometheus.Histogram
	droppedNotices prometheus.Counter
}

// New creates the collectors on a fresh registry, together with the Go and process collectors
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Workbook imports by organization and outcome.",
		}, []string{"organization", "outcome"}),
		draws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draws_total",
			Help:      "Draws reconstructed by draw type and stage.",
		}, []string{"type", "stage"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Diagnostics raised by kind and severity.",
		}, []string{"kind", "severity"}),
		importDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Time spent decoding and parsing a workbook.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		droppedNotices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dropped_total",
			Help:      "Diagnostics not posted to Discord because of rate limiting.",
		}),
	}
	m.Registry.MustRegister(
		m.imports, m.draws, m.diagnostics, m.importDuration, m.droppedNotices,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveImport records one import: its outcome, duration, draws and diagnostics
func (m *Metrics) ObserveImport(organization, outcome string, elapsed time.Duration, record shared.TournamentRecord,
	diagnostics []shared.Diagnostic) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(organization, outcome).Inc()
	if outcome == OutcomeCached {
		return
	}
	m.importDuration.Observe(elapsed.Seconds())
	for _, d := range record.Draws {
		m.draws.WithLabelValues(string(d.DrawType), d.Stage).Inc()
	}
	for _, d := range diagnostics {
		m.diagnostics.WithLabelValues(string(d.Kind), string(d.Severity)).Inc()
	}
}

// DroppedNotification counts a diagnostic the notifier did not post
func (m *Metrics) DroppedNotification() {
	if m == nil {
		return
	}
	m.droppedNotices.Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
