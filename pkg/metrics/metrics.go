package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HistogramBuckets are in milliseconds and stop just past the gateway client timeout.
var HistogramBuckets = []float64{
	10, 25, 50, 100, 250, 500,
	750, 1000, 1500, 2000, 3000,
	5000, 7500, 10000, 15000, 20000,
}

// Metric is a definition for the name, description, type, ID, and
// label names of a collector.
type Metric struct {
	ID          string
	Name        string
	Description string
	Type        string
	Args        []string
}

// NewMetric builds the prometheus.Collector for m. Unknown types return nil.
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	switch m.Type {
	case "counter_vec":
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      m.Name,
			Help:      m.Description,
		}, m.Args)
	case "histogram_vec":
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      m.Name,
			Help:      m.Description,
			Buckets:   HistogramBuckets,
		}, m.Args)
	case "summary_vec":
		return prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Subsystem: subsystem,
			Name:      m.Name,
			Help:      m.Description,
		}, m.Args)
	}
	return nil
}

// MetricsBusinessProcess times outbound work such as gateway calls.
var MetricsBusinessProcess = &Metric{
	ID:          "bpDur",
	Name:        "bp_dur",
	Description: "process latency in milliseconds",
	Type:        "histogram_vec",
	Args:        []string{"type", "subtype", "result"},
}

// MetricsPaymentTransition counts reconciliation signals per channel and outcome.
var MetricsPaymentTransition = &Metric{
	ID:          "payTrans",
	Name:        "payment_transitions_total",
	Description: "Payment reconciliation signals partitioned by channel and outcome.",
	Type:        "counter_vec",
	Args:        []string{"channel", "outcome"},
}
