package registry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes registry evaluations to Prometheus. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	up            *prometheus.GaugeVec
	configured    *prometheus.GaugeVec
	checkDuration *prometheus.HistogramVec
	initFailures  *prometheus.CounterVec
}

// NewMetrics creates and registers the registry metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		up: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "portal_service_up",
			Help: "Whether the last health evaluation of an integration succeeded (1) or not (0)",
		}, []string{"service"}),
		configured: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "portal_service_configured",
			Help: "Whether an integration has all required credentials (1) or not (0)",
		}, []string{"service"}),
		checkDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_service_health_check_duration_seconds",
			Help:    "Duration of integration status evaluations",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"service"}),
		initFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_service_init_failures_total",
			Help: "Number of integration initialization failures",
		}, []string{"service"}),
	}
}

func (m *Metrics) observeStatus(st ServiceStatus, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.up.WithLabelValues(st.Name).Set(boolToFloat(st.Status == StatusOK))
	m.configured.WithLabelValues(st.Name).Set(boolToFloat(st.IsConfigured))
	m.checkDuration.WithLabelValues(st.Name).Observe(elapsed.Seconds())
}

func (m *Metrics) observeInitFailure(name string) {
	if m == nil {
		return
	}
	m.initFailures.WithLabelValues(name).Inc()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
