// Package observability provides metrics and the telemetry endpoint for
// LeafSense-Go.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/leafsense/leafsense-go/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry  *prometheus.Registry
	Control   *metrics.ControlMetrics
	LeafNet   *metrics.LeafNetMetrics
	Datastore *metrics.DatastoreMetrics
	MQTT      *metrics.MQTTMetrics
}

// NewMetrics creates a Metrics instance with all collectors registered.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	controlMetrics, err := metrics.NewControlMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create control metrics: %w", err)
	}
	leafnetMetrics, err := metrics.NewLeafNetMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create leafnet metrics: %w", err)
	}
	datastoreMetrics, err := metrics.NewDatastoreMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore metrics: %w", err)
	}
	mqttMetrics, err := metrics.NewMQTTMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create MQTT metrics: %w", err)
	}

	return &Metrics{
		registry:  registry,
		Control:   controlMetrics,
		LeafNet:   leafnetMetrics,
		Datastore: datastoreMetrics,
		MQTT:      mqttMetrics,
	}, nil
}

// Registry exposes the underlying registry for the telemetry endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
