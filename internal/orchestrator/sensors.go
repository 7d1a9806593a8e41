package orchestrator

import (
	"time"

	"github.com/leafsense/leafsense-go/internal/wire"
)

// runSensorTask polls the three sensors on each activation, logs the sample
// and evaluates the control law against the ideal ranges.
func (o *Orchestrator) runSensorTask() {
	for {
		select {
		case <-o.quit:
			return
		case <-o.sensorSignal:
		}
		if !o.running.Load() {
			return
		}
		o.readAndControl()
	}
}

// readAndControl performs one sensor-read activation: read T, pH, EC in
// that order, emit the sample, then raise actuator signals in fixed order
// {heater, pH, EC}.
func (o *Orchestrator) readAndControl() {
	sample := SensorSample{
		Temperature: o.tempSensor.Read(),
		PH:          o.phSensor.Read(),
		EC:          o.ecSensor.Read(),
		Timestamp:   time.Now(),
	}
	o.setLastSample(sample)

	o.queue.Send(wire.SensorMessage{
		Temperature: sample.Temperature,
		PH:          sample.PH,
		EC:          sample.EC,
	}.Serialize())

	ranges := o.conditions.Snapshot()
	signalled := false

	// Temperature control with hysteresis: only a below-min crossing turns
	// the heater on, only an above-max crossing while on turns it off.
	// Inside the deadband nothing moves. Strict inequalities on both edges.
	switch {
	case sample.Temperature < ranges.Temp.Min && !o.heater.actuator.State():
		o.heater.raise("Temperature below ideal range")
		signalled = true
	case sample.Temperature > ranges.Temp.Max && o.heater.actuator.State():
		o.heater.raise("Temperature above ideal range")
		signalled = true
	}

	// pH control: one dosing pulse toward the band.
	switch {
	case sample.PH < ranges.PH.Min:
		o.phUp.raise("pH below ideal range")
		signalled = true
	case sample.PH > ranges.PH.Max:
		o.phDown.raise("pH above ideal range")
		signalled = true
	}

	// EC control: low-side only. Dilution needs a water change, which the
	// unit cannot do on its own.
	if sample.EC < ranges.EC.Min {
		o.nutrient.raise("EC below ideal range")
		signalled = true
	}

	// The LED reflects the just-logged sample, not a fresh read.
	outOfRange := !ranges.Temp.Contains(sample.Temperature) ||
		!ranges.PH.Contains(sample.PH) ||
		!ranges.EC.Contains(sample.EC)
	o.alertLED.Set(outOfRange)

	if signalled {
		o.sensorsCorrecting.Store(true)
	} else if !outOfRange {
		o.sensorsCorrecting.Store(false)
	}

	o.recordSensorMetrics(sample, outOfRange)
	o.publishSample(sample)
}

func (o *Orchestrator) recordSensorMetrics(sample SensorSample, outOfRange bool) {
	if o.metrics == nil {
		return
	}
	o.metrics.Control.SensorReadsTotal.Inc()
	o.metrics.Control.SensorValue.WithLabelValues("temperature").Set(sample.Temperature)
	o.metrics.Control.SensorValue.WithLabelValues("ph").Set(sample.PH)
	o.metrics.Control.SensorValue.WithLabelValues("ec").Set(sample.EC)
	ledState := 0.0
	if outOfRange {
		ledState = 1.0
	}
	o.metrics.Control.AlertLEDState.Set(ledState)
}
