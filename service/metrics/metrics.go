package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the tool. Following the
// explicit dependency injection pattern, this struct is passed to every
// component that records metrics; components accept nil and skip recording.
type Metrics struct {
	// Ledger endpoint metrics
	ledgerCallsTotal   *prometheus.CounterVec
	ledgerCallDuration *prometheus.HistogramVec

	// Batch progress metrics
	submissionsTotal  *prometheus.CounterVec
	skipsTotal        *prometheus.CounterVec
	batchDuration     *prometheus.HistogramVec
	participantsTotal *prometheus.CounterVec

	// Outcome sink metrics
	outcomesRecorded *prometheus.CounterVec
}

// New creates and registers all collectors with the given registerer.
// Pass prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ledgerCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustsweep_ledger_calls_total",
				Help: "Total XRPL requests by operation, status, and endpoint.",
			},
			[]string{"operation", "status", "endpoint"},
		),
		ledgerCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trustsweep_ledger_call_duration_seconds",
				Help:    "XRPL request duration by operation and endpoint.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "endpoint"},
		),
		submissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustsweep_submissions_total",
				Help: "Payment submissions by batch mode and engine result.",
			},
			[]string{"mode", "engine_result"},
		),
		skipsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustsweep_participants_skipped_total",
				Help: "Participants skipped before submission, by reason.",
			},
			[]string{"mode", "reason"},
		),
		batchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trustsweep_batch_duration_seconds",
				Help:    "Wall-clock duration of whole batch runs.",
				Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
			},
			[]string{"mode", "status"},
		),
		participantsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustsweep_participants_total",
				Help: "Participants processed by batch mode and outcome status.",
			},
			[]string{"mode", "status"},
		),
		outcomesRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustsweep_outcomes_recorded_total",
				Help: "Outcomes written to sinks, by sink and status.",
			},
			[]string{"sink", "status"},
		),
	}
}

// RecordLedgerCall records one XRPL request.
func (m *Metrics) RecordLedgerCall(operation, status, endpoint string, duration float64) {
	m.ledgerCallsTotal.WithLabelValues(operation, status, endpoint).Inc()
	m.ledgerCallDuration.WithLabelValues(operation, endpoint).Observe(duration)
}

// RecordSubmission records a payment submission and its engine result.
func (m *Metrics) RecordSubmission(mode, engineResult string) {
	m.submissionsTotal.WithLabelValues(mode, engineResult).Inc()
}

// RecordSkip records a participant skipped before submission.
func (m *Metrics) RecordSkip(mode, reason string) {
	m.skipsTotal.WithLabelValues(mode, reason).Inc()
}

// RecordParticipant records a processed participant's final status.
func (m *Metrics) RecordParticipant(mode, status string) {
	m.participantsTotal.WithLabelValues(mode, status).Inc()
}

// RecordBatchDuration records a completed batch run.
func (m *Metrics) RecordBatchDuration(mode, status string, duration float64) {
	m.batchDuration.WithLabelValues(mode, status).Observe(duration)
}

// RecordOutcomeSink records an outcome write to a sink.
func (m *Metrics) RecordOutcomeSink(sink string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.outcomesRecorded.WithLabelValues(sink, status).Inc()
}
