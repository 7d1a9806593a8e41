package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DatastoreMetrics contains metrics for the persistence daemon.
type DatastoreMetrics struct {
	MessagesTotal *prometheus.CounterVec
	QueueDepth    prometheus.Gauge
}

// NewDatastoreMetrics creates persistence metrics and registers them.
func NewDatastoreMetrics(registry *prometheus.Registry) (*DatastoreMetrics, error) {
	m := &DatastoreMetrics{
		MessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leafsense_daemon_messages_total",
			Help: "Wire messages processed by tag and outcome",
		}, []string{"tag", "outcome"}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "leafsense_daemon_queue_depth",
			Help: "Messages waiting in the persistence queue",
		}),
	}

	for _, c := range []prometheus.Collector{m.MessagesTotal, m.QueueDepth} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MQTTMetrics contains metrics for MQTT publishing.
type MQTTMetrics struct {
	PublishTotal *prometheus.CounterVec
}

// NewMQTTMetrics creates MQTT metrics and registers them.
func NewMQTTMetrics(registry *prometheus.Registry) (*MQTTMetrics, error) {
	m := &MQTTMetrics{
		PublishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leafsense_mqtt_publish_total",
			Help: "MQTT publishes by topic and outcome",
		}, []string{"topic", "outcome"}),
	}
	if err := registry.Register(m.PublishTotal); err != nil {
		return nil, err
	}
	return m, nil
}
