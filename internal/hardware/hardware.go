// Package hardware defines the sensor and actuator contracts the control
// loop runs against, with bus-backed implementations for the Raspberry Pi
// and mock implementations for tests and development hosts. A failed bus
// probe does not switch to a mock: the bus-backed sensors return fallback
// samples and the GPIO actuators become no-ops.
package hardware

import (
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/leafsense/leafsense-go/internal/logging"
)

// Sensor produces a reading in the unit native to the sensor (°C, pH,
// µS/cm). Read never fails from the caller's perspective: bus errors are
// recovered by returning a fallback sample inside the sensor's expected
// range, with a diagnostic logged once per failure burst.
type Sensor interface {
	Name() string
	Read() float64
}

// Actuator is a boolean output (heater relay, dosing pump, LED). Set is
// idempotent: setting the current state is a no-op and is not an edge.
type Actuator interface {
	Name() string
	Set(on bool)
	State() bool
}

// burstWindow is how long a sensor failure burst suppresses repeat
// diagnostics for the same sensor.
const burstWindow = 5 * time.Minute

var (
	hwLogger   *slog.Logger
	burstCache = gocache.New(burstWindow, 10*time.Minute)
)

func logger() *slog.Logger {
	if hwLogger == nil {
		hwLogger = logging.ForService("hardware")
	}
	return hwLogger
}

// logBurst logs a read failure at most once per burst window per key.
// Callers cannot distinguish fallback samples from real ones, so this is
// the only instrumentation trail.
func logBurst(key, msg string, err error) {
	if _, found := burstCache.Get(key); found {
		return
	}
	burstCache.Set(key, struct{}{}, burstWindow)
	logger().Warn(msg, "sensor", key, "error", err)
}

// clearBurst resets the failure burst for a sensor after a successful read,
// so the next failure logs again.
func clearBurst(key string) {
	burstCache.Delete(key)
}
