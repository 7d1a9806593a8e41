// Package metrics provides the Prometheus metric collectors for each
// LeafSense-Go subsystem.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ControlMetrics contains metrics for the control orchestrator.
type ControlMetrics struct {
	TicksTotal       prometheus.Counter
	SensorReadsTotal prometheus.Counter
	ActuationsTotal  *prometheus.CounterVec
	AlertLEDState    prometheus.Gauge
	SensorValue      *prometheus.GaugeVec
}

// NewControlMetrics creates control-loop metrics and registers them.
func NewControlMetrics(registry *prometheus.Registry) (*ControlMetrics, error) {
	m := &ControlMetrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leafsense_ticks_total",
			Help: "Total heartbeat ticks dispatched",
		}),
		SensorReadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leafsense_sensor_reads_total",
			Help: "Total sensor-read task activations",
		}),
		ActuationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leafsense_actuations_total",
			Help: "Actuator state transitions by actuator and new state",
		}, []string{"actuator", "state"}),
		AlertLEDState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "leafsense_alert_led_state",
			Help: "Alert LED state set by the last sensor read (1 on, 0 off); LED writes by the camera task are not reflected",
		}),
		SensorValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "leafsense_sensor_value",
			Help: "Latest sensor reading by parameter",
		}, []string{"parameter"}),
	}

	collectors := []prometheus.Collector{
		m.TicksTotal, m.SensorReadsTotal, m.ActuationsTotal, m.AlertLEDState, m.SensorValue,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
