package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the application.
// It includes API call counters and latencies, the pending deletion gauge,
// deletion outcomes, form submissions and bot commands.
//
// Every recording method tolerates a nil receiver, so components can run
// without metrics.
type Metrics struct {
	APIRequests     *prometheus.CounterVec   // Counter for API calls by operation and outcome
	APIDuration     *prometheus.HistogramVec // Histogram for API call durations
	PendingDeletes  prometheus.Gauge         // Gauge for deletions waiting for their undo window
	DeleteOutcomes  *prometheus.CounterVec   // Counter for committed, undone and failed deletions
	FormSubmissions *prometheus.CounterVec   // Counter for form submissions by mode and outcome
	BotCommands     *prometheus.CounterVec   // Counter for received bot commands
}

// NewMetrics creates a new Metrics instance with the provided Prometheus Registerer.
//
// Parameters:
//   - reg: A Prometheus Registerer used to register the metrics.
//
// Returns:
//   - A pointer to the newly created Metrics instance.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		APIRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hestia_api_requests_total",
			Help: "Total number of employee API calls",
		}, []string{"operation", "outcome"}), // outcome: ok, rate_limited, failed, error
		APIDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hestia_api_request_duration_seconds",
			Help:    "Duration of employee API calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}), // operation: list, get, create, update, delete, import, export
		PendingDeletes: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "hestia_pending_deletes",
			Help: "Deletions removed from view and waiting for the undo window to elapse",
		}),
		DeleteOutcomes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hestia_delete_outcomes_total",
			Help: "Outcome of optimistic deletions",
		}, []string{"outcome"}), // outcome: committed, undone, failed
		FormSubmissions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hestia_form_submissions_total",
			Help: "Form submissions",
		}, []string{"mode", "outcome"}), // mode: create, edit; outcome: ok, invalid, rate_limited, failed
		BotCommands: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hestia_bot_commands_total",
			Help: "Total number of used bot commands",
		}, []string{"command"}),
	}
}

// ObserveRequest records one API call.
func (m *Metrics) ObserveRequest(operation, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(operation, outcome).Inc()
	m.APIDuration.WithLabelValues(operation).Observe(took.Seconds())
}

// DeletePending adjusts the pending deletions gauge by delta.
func (m *Metrics) DeletePending(delta float64) {
	if m == nil {
		return
	}
	m.PendingDeletes.Add(delta)
}

// DeleteOutcome counts a finished deletion.
func (m *Metrics) DeleteOutcome(outcome string) {
	if m == nil {
		return
	}
	m.DeleteOutcomes.WithLabelValues(outcome).Inc()
}

// FormSubmitted counts a form submission attempt.
func (m *Metrics) FormSubmitted(mode, outcome string) {
	if m == nil {
		return
	}
	m.FormSubmissions.WithLabelValues(mode, outcome).Inc()
}

// CommandReceived counts a bot command.
func (m *Metrics) CommandReceived(command string) {
	if m == nil {
		return
	}
	m.BotCommands.WithLabelValues(command).Inc()
}
