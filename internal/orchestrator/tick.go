package orchestrator

import (
	"time"
)

// runTickGenerator produces the fixed-period heartbeat. It waits on a timer
// or shutdown, whichever comes first, and wakes the dispatcher.
func (o *Orchestrator) runTickGenerator() {
	period := time.Duration(o.settings.Control.TickPeriod) * time.Second
	timer := time.NewTimer(period)
	defer timer.Stop()

	for {
		select {
		case <-o.quit:
			return
		case <-timer.C:
			if !o.running.Load() {
				return
			}
			raise(o.tickSignal)
			timer.Reset(period)
		}
	}
}

// cooldowns are the dispatcher-owned tick counters. The dispatcher is the
// sole decrementer, so they need no locking.
type cooldowns struct {
	sensor int
	camera int
}

// runDispatcher converts ticks into sub-task activations.
func (o *Orchestrator) runDispatcher() {
	cd := &cooldowns{
		sensor: o.settings.Control.SensorPeriod,
		camera: o.settings.Control.CameraPeriod,
	}

	for {
		select {
		case <-o.quit:
			return
		case <-o.tickSignal:
		}
		if !o.running.Load() {
			return
		}
		o.handleTick(cd)
	}
}

// handleTick processes one heartbeat: auto-offs first, then the sensor
// cooldown, then the camera cooldown.
func (o *Orchestrator) handleTick(cd *cooldowns) {
	if o.metrics != nil {
		o.metrics.Control.TicksTotal.Inc()
	}

	// Dosing pulses are one tick wide: any pump still on gets turned off
	// now. The heater holds across ticks unless the policy flag opts it
	// into the same treatment.
	autoOff := []*excitation{o.phUp, o.phDown, o.nutrient}
	if o.settings.Control.HeaterAutoOff {
		autoOff = append(autoOff, o.heater)
	}
	for _, ex := range autoOff {
		if ex.actuator.State() {
			ex.raise("Auto-off after dosing pulse")
		}
	}

	decrement := 1
	if o.sensorsCorrecting.Load() {
		// Faster decay during correction accelerates recovery without
		// tightening the tick itself.
		decrement = 2
	}
	cd.sensor -= decrement
	if cd.sensor <= 0 {
		cd.sensor = o.settings.Control.SensorPeriod
		raise(o.sensorSignal)
	}

	cd.camera--
	if cd.camera <= 0 {
		cd.camera = o.settings.Control.CameraPeriod
		raise(o.cameraSignal)
	}
}
