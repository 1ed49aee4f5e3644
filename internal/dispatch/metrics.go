package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Execution paths recorded in metrics.
const (
	PathPrimary  = "primary"
	PathFallback = "fallback"
)

// Metrics counts calculator executions by path.
type Metrics struct {
	calculations   *prometheus.CounterVec
	fallbacks      *prometheus.CounterVec
	doubleFailures *prometheus.CounterVec
}

// NewMetrics creates the dispatch counters and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentscore_calculations_total",
			Help: "Successful calculator executions by path.",
		}, []string{"calculator", "path"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentscore_fallbacks_total",
			Help: "Primary engine failures recovered by the fallback engine.",
		}, []string{"calculator"}),
		doubleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentscore_double_failures_total",
			Help: "Calculations where both primary and fallback engines failed.",
		}, []string{"calculator"}),
	}
	if reg != nil {
		reg.MustRegister(m.calculations, m.fallbacks, m.doubleFailures)
	}
	return m
}

func (m *Metrics) success(calculator, path string) {
	m.calculations.WithLabelValues(calculator, path).Inc()
}

func (m *Metrics) fallback(calculator string) {
	m.fallbacks.WithLabelValues(calculator).Inc()
}

func (m *Metrics) doubleFailure(calculator string) {
	m.doubleFailures.WithLabelValues(calculator).Inc()
}
