package hardware

import (
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

var hostInitOnce sync.Once

// initHost initializes the periph host drivers once per process.
func initHost() {
	hostInitOnce.Do(func() {
		if _, err := host.Init(); err != nil {
			logger().Warn("periph host init failed, GPIO actuators degrade to no-op", "error", err)
		}
	})
}

// GPIOActuator drives one GPIO output line, idle level low. Set and State
// are serialized by an internal mutex. A heater or pump is mutated only by
// its owning excitation task; a State read in the control loop that is stale
// by the time the toggle lands is tolerated by design of the toggle protocol.
type GPIOActuator struct {
	mu    sync.Mutex
	name  string
	pin   gpio.PinIO
	state bool
}

// NewGPIOActuator resolves the named GPIO line and drives it low. A line
// that cannot be resolved downgrades to a no-op actuator that still tracks
// logical state, so the control loop keeps running without hardware.
func NewGPIOActuator(name, pinName string) *GPIOActuator {
	initHost()

	a := &GPIOActuator{name: name}
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		logger().Warn("GPIO line not found, actuator degrades to no-op", "actuator", name, "pin", pinName)
		return a
	}
	if err := pin.Out(gpio.Low); err != nil {
		logger().Warn("GPIO line init failed, actuator degrades to no-op", "actuator", name, "pin", pinName, "error", err)
		return a
	}
	a.pin = pin
	return a
}

func (a *GPIOActuator) Name() string { return a.name }

// Set drives the line to the requested level. Setting the current state is
// a no-op.
func (a *GPIOActuator) Set(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == on {
		return
	}
	a.state = on

	if a.pin == nil {
		return
	}
	level := gpio.Low
	if on {
		level = gpio.High
	}
	if err := a.pin.Out(level); err != nil {
		logger().Error("GPIO write failed", "actuator", a.name, "on", on, "error", err)
	}
}

// State returns the last requested level.
func (a *GPIOActuator) State() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// NewAlertLED returns the alert indicator actuator. Last writer wins: both
// the periodic controller and the inference task drive it, serialized by
// the underlying GPIO write.
func NewAlertLED(pinName string) *GPIOActuator {
	return NewGPIOActuator("alert-led", pinName)
}
