package orchestrator

import (
	"github.com/leafsense/leafsense-go/internal/hardware"
	"github.com/leafsense/leafsense-go/internal/wire"
)

// excitation is the worker dedicated to one actuator. It waits on its
// private signal channel; each delivered signal is one toggle, logged as a
// maintenance entry. The reason travels with the signal so auto-offs and
// control decisions are distinguishable in the log stream.
type excitation struct {
	orchestrator *Orchestrator
	actuator     hardware.Actuator
	displayName  string
	signals      chan string
}

func newExcitation(o *Orchestrator, actuator hardware.Actuator, displayName string) *excitation {
	return &excitation{
		orchestrator: o,
		actuator:     actuator,
		displayName:  displayName,
		signals:      make(chan string, 4),
	}
}

// raise requests one toggle. Non-blocking; if the channel is full the
// actuator already has enough pending work and the extra signal is dropped.
func (e *excitation) raise(reason string) {
	select {
	case e.signals <- reason:
	default:
	}
}

// run is the excitation worker loop.
func (e *excitation) run() {
	o := e.orchestrator
	for {
		select {
		case <-o.quit:
			return
		case reason := <-e.signals:
			if !o.running.Load() {
				return
			}
			e.fire(reason)
		}
	}
}

// fire performs one toggle and logs the edge.
func (e *excitation) fire(reason string) {
	o := e.orchestrator
	newState := !e.actuator.State()
	e.actuator.Set(newState)

	stateLabel := "Off"
	if newState {
		stateLabel = "On"
	}
	o.queue.Send(wire.LogMessage{
		Category: wire.LogMaintenance,
		Title:    e.displayName + " " + stateLabel,
		Detail:   reason,
	}.Serialize())

	if o.metrics != nil {
		o.metrics.Control.ActuationsTotal.WithLabelValues(e.displayName, stateLabel).Inc()
	}
}
