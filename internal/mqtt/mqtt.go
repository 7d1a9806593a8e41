// Package mqtt publishes sensor samples and predictions to an MQTT broker
// for off-box consumers.
package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/leafsense/leafsense-go/internal/conf"
	"github.com/leafsense/leafsense-go/internal/logging"
	"github.com/leafsense/leafsense-go/internal/observability/metrics"
)

// Client defines the interface for MQTT client operations.
type Client interface {
	// Connect attempts to connect to the MQTT broker.
	Connect(ctx context.Context) error

	// Publish sends a message to the specified topic on the MQTT broker.
	Publish(ctx context.Context, topic, payload string) error

	// IsConnected reports whether the client is currently connected.
	IsConnected() bool

	// Disconnect closes the connection to the MQTT broker.
	Disconnect()
}

const (
	connectTimeout    = 30 * time.Second
	publishTimeout    = 10 * time.Second
	disconnectQuiesce = 250 // milliseconds handed to paho
)

// client implements Client on top of paho.
type client struct {
	settings *conf.MQTTSettings
	internal pahomqtt.Client
	metrics  *metrics.MQTTMetrics

	mu     sync.Mutex
	logger *slog.Logger
}

// NewClient creates an MQTT client from settings. metrics may be nil.
func NewClient(settings *conf.Settings, m *metrics.MQTTMetrics) Client {
	return &client{
		settings: &settings.Realtime.MQTT,
		metrics:  m,
		logger:   logging.ForService("mqtt"),
	}
}

// Connect establishes the broker connection, blocking up to the connect
// timeout.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(c.settings.Broker)
	opts.SetClientID(fmt.Sprintf("leafsense-%s", uuid.New().String()[:8]))
	opts.SetUsername(c.settings.Username)
	opts.SetPassword(c.settings.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetOnConnectHandler(func(pahomqtt.Client) {
		c.logger.Info("connected to MQTT broker", "broker", c.settings.Broker)
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.logger.Warn("MQTT connection lost", "error", err)
	})

	c.internal = pahomqtt.NewClient(opts)

	token := c.internal.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("connect to %s timed out", c.settings.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to %s: %w", c.settings.Broker, err)
	}
	return nil
}

// Publish sends one payload, respecting the context deadline.
func (c *client) Publish(ctx context.Context, topic, payload string) error {
	c.mu.Lock()
	internal := c.internal
	c.mu.Unlock()

	if internal == nil || !internal.IsConnected() {
		c.count(topic, "dropped")
		return fmt.Errorf("not connected to broker")
	}

	token := internal.Publish(topic, 0, c.settings.Retain, payload)

	timeout := publishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if !token.WaitTimeout(timeout) {
		c.count(topic, "timeout")
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		c.count(topic, "error")
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	c.count(topic, "ok")
	return nil
}

// IsConnected reports the broker connection state.
func (c *client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.internal != nil && c.internal.IsConnected()
}

// Disconnect closes the connection.
func (c *client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.internal != nil {
		c.internal.Disconnect(disconnectQuiesce)
	}
}

func (c *client) count(topic, outcome string) {
	if c.metrics != nil {
		c.metrics.PublishTotal.WithLabelValues(topic, outcome).Inc()
	}
}
