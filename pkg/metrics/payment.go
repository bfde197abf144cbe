package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/fatflowers/travelpay/pkg/types"
)

const paymentSubsystem = "travelpay"

// PaymentMetrics records reconciliation outcomes and gateway latency.
// A nil *PaymentMetrics is valid and records nothing.
type PaymentMetrics struct {
	transitions *prometheus.CounterVec
	bpDur       *prometheus.HistogramVec
}

func NewPaymentMetrics(reg prometheus.Registerer) (*PaymentMetrics, error) {
	transitions, err := register(reg, NewMetric(MetricsPaymentTransition, paymentSubsystem))
	if err != nil {
		return nil, err
	}
	bpDur, err := register(reg, NewMetric(MetricsBusinessProcess, paymentSubsystem))
	if err != nil {
		return nil, err
	}
	return &PaymentMetrics{
		transitions: transitions.(*prometheus.CounterVec),
		bpDur:       bpDur.(*prometheus.HistogramVec),
	}, nil
}

// NewDefaultPaymentMetrics registers on the process-wide registry served at /metrics.
func NewDefaultPaymentMetrics() (*PaymentMetrics, error) {
	return NewPaymentMetrics(prometheus.DefaultRegisterer)
}

func register(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector, nil
		}
		return nil, err
	}
	return c, nil
}

func (m *PaymentMetrics) Transition(channel types.ReconcileChannel, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(channel), outcome).Inc()
}

// TransitionCounter exposes one series of the transitions counter.
func (m *PaymentMetrics) TransitionCounter(channel types.ReconcileChannel, outcome string) prometheus.Counter {
	return m.transitions.WithLabelValues(string(channel), outcome)
}

func (m *PaymentMetrics) ObserveGateway(op, result string, start time.Time) {
	if m == nil {
		return
	}
	m.bpDur.WithLabelValues("gateway", op, result).Observe(MillisecondsSince(start))
}

var Module = fx.Options(
	fx.Provide(NewDefaultPaymentMetrics),
)
