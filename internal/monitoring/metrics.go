package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registrations_created_total",
			Help: "Registrations successfully committed",
		},
	)

	soldOutRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registrations_sold_out_total",
			Help: "Registration attempts rejected because the ticket sold out",
		},
	)

	checkIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkins_total",
			Help: "Check-in attempts by outcome",
		},
		[]string{"outcome"},
	)

	pipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_pipeline_runs_total",
			Help: "Invoice pipeline executions by status",
		},
		[]string{"status"},
	)

	pipelineStepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "invoice_pipeline_step_duration_seconds",
			Help:    "Duration of individual invoice pipeline steps",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"step"},
	)
)

func RegistrationCreated() {
	registrationsCreated.Inc()
}

func SoldOutRejected() {
	soldOutRejections.Inc()
}

// CheckIn records a check-in attempt; outcome is one of "checked_in",
// "already_checked_in" or "not_found".
func CheckIn(outcome string) {
	checkIns.WithLabelValues(outcome).Inc()
}

// PipelineRun records a completed pipeline execution.
func PipelineRun(status string) {
	pipelineRuns.WithLabelValues(status).Inc()
}

// ObservePipelineStep records how long a pipeline step took.
func ObservePipelineStep(step string, d time.Duration) {
	pipelineStepDuration.WithLabelValues(step).Observe(d.Seconds())
}
