// Package analysis wires the components together for each run mode of the
// leafsense binary.
package analysis

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/leafsense/leafsense-go/internal/conditions"
	"github.com/leafsense/leafsense-go/internal/conf"
	"github.com/leafsense/leafsense-go/internal/daemon"
	"github.com/leafsense/leafsense-go/internal/datastore"
	"github.com/leafsense/leafsense-go/internal/logging"
	"github.com/leafsense/leafsense-go/internal/mqtt"
	"github.com/leafsense/leafsense-go/internal/msgqueue"
	"github.com/leafsense/leafsense-go/internal/notification"
	"github.com/leafsense/leafsense-go/internal/observability"
	"github.com/leafsense/leafsense-go/internal/orchestrator"
)

// RealtimeAnalysis runs the full control engine until a termination signal
// arrives. A store that cannot open is a startup failure: nothing is
// spawned and the error is returned.
func RealtimeAnalysis(settings *conf.Settings) error {
	printStartupBanner(settings)

	dataStore := datastore.New(settings)
	if dataStore == nil {
		return fmt.Errorf("no output database enabled")
	}
	if err := dataStore.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer closeDataStore(dataStore)

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("error initializing metrics: %w", err)
	}

	var endpoint *observability.Endpoint
	if settings.Realtime.Telemetry.Enabled {
		endpoint = observability.NewEndpoint(settings.Realtime.Telemetry.Listen, metrics)
		endpoint.Start()
		defer endpoint.Stop()
	}

	var publisher mqtt.Client
	if settings.Realtime.MQTT.Enabled {
		publisher = mqtt.NewClient(settings, metrics.MQTT)
		if err := publisher.Connect(context.Background()); err != nil {
			// The broker being down must not stop the control loop.
			logging.Warn("MQTT connect failed, publishing disabled until reconnect", "error", err)
		}
		defer publisher.Disconnect()
	}

	notifier := notification.New(settings)

	queue := msgqueue.New()
	persistence := daemon.New(queue, dataStore, metrics.Datastore)
	persistence.Start()

	components := orchestrator.BuildComponents(settings)
	if components.Classifier != nil {
		defer components.Classifier.Close()
	}

	engine := orchestrator.New(settings, components, conditions.New(), queue, metrics, notifier, publisher)
	engine.Start()

	// Shutdown order follows dependency direction: producers first, the
	// persistence daemon last so every queued message lands.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logging.Info("shutdown signal received", "signal", sig.String())

	engine.Stop()
	persistence.Stop()
	return nil
}

func closeDataStore(store datastore.Interface) {
	if err := store.Close(); err != nil {
		logging.Error("failed to close datastore", "error", err)
	}
}

func printStartupBanner(settings *conf.Settings) {
	info, err := host.Info()
	if err == nil {
		fmt.Printf("System details: %s %s %s\n", info.OS, info.Platform, info.PlatformVersion)
	}
	fmt.Printf("Starting %s control engine. Tick: %ds, sensor period: %d ticks, camera period: %d ticks\n",
		settings.Main.Name,
		settings.Control.TickPeriod,
		settings.Control.SensorPeriod,
		settings.Control.CameraPeriod)
}
