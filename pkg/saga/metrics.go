package saga

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Action labels.
const (
	ActionExecute    = "execute"
	ActionCompensate = "compensate"
)

// Outcome labels for saga_participant_actions_total.
const (
	OutcomeCreated     = "created"
	OutcomeReplayed    = "replayed"
	OutcomeUpdated     = "updated"
	OutcomeCompensated = "compensated"
	OutcomeNothingToDo = "nothing_to_undo"
	OutcomeInvalid     = "invalid"
	OutcomeNotFound    = "not_found"
	OutcomeTransient   = "transient_failure"
	OutcomeUnsupported = "unsupported"
	OutcomeError       = "error"
)

var (
	// ActionsTotal counts forward and compensating actions by outcome.
	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_participant_actions_total",
			Help: "Total number of saga actions handled by a participant",
		},
		[]string{"service", "action", "outcome"},
	)

	// InjectedFailuresTotal counts simulated failures.
	InjectedFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_participant_injected_failures_total",
			Help: "Total number of injected transient failures",
		},
		[]string{"service", "stage"},
	)

	// ActionDuration observes how long each action holds the participant.
	ActionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "saga_participant_action_duration_seconds",
			Help:    "Duration of saga actions in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"service", "action"},
	)
)

// RecordsCollector implements prometheus.Collector for the number of live
// records a participant holds. The count is read at scrape time.
type RecordsCollector struct {
	counter  interface{ Len() int }
	service  string
	resource string

	records *prometheus.Desc
}

// NewRecordsCollector creates a collector reporting counter.Len().
func NewRecordsCollector(service, resource string, counter interface{ Len() int }) *RecordsCollector {
	return &RecordsCollector{
		counter:  counter,
		service:  service,
		resource: resource,
		records: prometheus.NewDesc(
			"saga_participant_records",
			"Number of order records currently held by the participant",
			[]string{"service", "resource"}, nil,
		),
	}
}

// Describe sends the descriptor to the provided channel.
func (c *RecordsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.records
}

// Collect sends the current record count.
func (c *RecordsCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.records, prometheus.GaugeValue, float64(c.counter.Len()), c.service, c.resource)
}
