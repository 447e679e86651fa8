package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "artifacts"
	// Subsystem for controller metrics
	subsystem = "daemon"
)

// Registry is the global Prometheus registry for all metrics
var Registry *prometheus.Registry

// InitRegistry initializes the Prometheus registry.
// Should be called once at application startup if metrics are enabled.
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// ActionCollector records one observation per server action a character
// performs. It satisfies the executors' observer interface.
type ActionCollector struct {
	actionsTotal    *prometheus.CounterVec
	cooldownSeconds *prometheus.HistogramVec
}

// NewActionCollector creates a new action metrics collector
func NewActionCollector() *ActionCollector {
	return &ActionCollector{
		actionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "actions_total",
				Help:      "Total number of server actions by character, action, and result",
			},
			[]string{"character", "action", "result"},
		),

		cooldownSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "action_cooldown_seconds",
				Help:      "Cooldown duration returned per action",
				Buckets:   []float64{1, 3, 5, 10, 20, 30, 60, 120},
			},
			[]string{"character", "action"},
		),
	}
}

// Register registers all action metrics with the Prometheus registry
func (c *ActionCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.actionsTotal,
		c.cooldownSeconds,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// ObserveAction records one server action
func (c *ActionCollector) ObserveAction(characterName, action, result string, cooldownSeconds float64) {
	c.actionsTotal.WithLabelValues(characterName, action, result).Inc()
	if cooldownSeconds > 0 {
		c.cooldownSeconds.WithLabelValues(characterName, action).Observe(cooldownSeconds)
	}
}
