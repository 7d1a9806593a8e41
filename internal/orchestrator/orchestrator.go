// Package orchestrator runs the control engine: a fixed-period tick fans out
// through a dispatcher to the sensor-read controller, the camera+inference
// pipeline and one excitation task per actuator, with every event serialized
// onto the persistence queue.
package orchestrator

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leafsense/leafsense-go/internal/camera"
	"github.com/leafsense/leafsense-go/internal/conditions"
	"github.com/leafsense/leafsense-go/internal/conf"
	"github.com/leafsense/leafsense-go/internal/hardware"
	"github.com/leafsense/leafsense-go/internal/leafnet"
	"github.com/leafsense/leafsense-go/internal/logging"
	"github.com/leafsense/leafsense-go/internal/mqtt"
	"github.com/leafsense/leafsense-go/internal/msgqueue"
	"github.com/leafsense/leafsense-go/internal/notification"
	"github.com/leafsense/leafsense-go/internal/observability"
)

// SensorSample is one reading of all three environmental sensors.
type SensorSample struct {
	Temperature float64
	PH          float64
	EC          float64
	Timestamp   time.Time
}

// Classifier is the contract the camera task runs inference through.
// *leafnet.LeafNet is the production implementation.
type Classifier interface {
	AnalyzeDetailed(imagePath string) (leafnet.Result, error)
	Close()
}

// Components are the hardware-facing collaborators the orchestrator owns
// exclusively for its lifetime.
type Components struct {
	TempSensor hardware.Sensor
	PHSensor   hardware.Sensor
	ECSensor   hardware.Sensor

	Heater   hardware.Actuator
	PhUp     hardware.Actuator
	PhDown   hardware.Actuator
	Nutrient hardware.Actuator
	AlertLED hardware.Actuator

	Camera     camera.Camera
	Classifier Classifier
}

// Orchestrator owns the sensors, actuators, classifier, range store and the
// queue's producer side. Workers communicate through per-relation signal
// channels; shutdown is signalled by closing quit.
type Orchestrator struct {
	settings   *conf.Settings
	conditions *conditions.IdealConditions
	queue      *msgqueue.Queue
	metrics    *observability.Metrics
	notifier   *notification.Notifier
	publisher  mqtt.Client

	tempSensor hardware.Sensor
	phSensor   hardware.Sensor
	ecSensor   hardware.Sensor
	alertLED   hardware.Actuator
	camera     camera.Camera
	classifier Classifier

	heater   *excitation
	phUp     *excitation
	phDown   *excitation
	nutrient *excitation

	tickSignal   chan struct{}
	sensorSignal chan struct{}
	cameraSignal chan struct{}

	running           atomic.Bool
	sensorsCorrecting atomic.Bool
	quit              chan struct{}
	wg                sync.WaitGroup
	startOnce         sync.Once
	stopOnce          sync.Once

	sampleMu   sync.RWMutex
	lastSample SensorSample

	logger *slog.Logger
}

// New wires an orchestrator from its collaborators. metrics, notifier and
// publisher may be nil.
func New(settings *conf.Settings, components *Components, conds *conditions.IdealConditions,
	queue *msgqueue.Queue, m *observability.Metrics, notifier *notification.Notifier,
	publisher mqtt.Client) *Orchestrator {

	o := &Orchestrator{
		settings:   settings,
		conditions: conds,
		queue:      queue,
		metrics:    m,
		notifier:   notifier,
		publisher:  publisher,

		tempSensor: components.TempSensor,
		phSensor:   components.PHSensor,
		ecSensor:   components.ECSensor,
		alertLED:   components.AlertLED,
		camera:     components.Camera,
		classifier: components.Classifier,

		tickSignal:   make(chan struct{}, 1),
		sensorSignal: make(chan struct{}, 1),
		cameraSignal: make(chan struct{}, 1),
		quit:         make(chan struct{}),

		logger: logging.ForService("orchestrator"),
	}

	o.heater = newExcitation(o, components.Heater, "Heater")
	o.phUp = newExcitation(o, components.PhUp, "pH Up")
	o.phDown = newExcitation(o, components.PhDown, "pH Down")
	o.nutrient = newExcitation(o, components.Nutrient, "Nutrients")

	return o
}

// Start spawns all worker goroutines. Safe to call once; later calls are
// no-ops.
func (o *Orchestrator) Start() {
	o.startOnce.Do(func() {
		o.running.Store(true)

		workers := []func(){
			o.runTickGenerator,
			o.runDispatcher,
			o.runSensorTask,
			o.runCameraTask,
			o.heater.run,
			o.phUp.run,
			o.phDown.run,
			o.nutrient.run,
		}
		o.wg.Add(len(workers))
		for _, w := range workers {
			go func(worker func()) {
				defer o.wg.Done()
				worker()
			}(w)
		}

		o.logger.Info("control orchestrator started",
			"tick_period_s", o.settings.Control.TickPeriod,
			"sensor_period_ticks", o.settings.Control.SensorPeriod,
			"camera_period_ticks", o.settings.Control.CameraPeriod)
	})
}

// Stop signals every worker and waits for all of them to exit. Safe to call
// multiple times. Producers are quiescent when Stop returns, so the caller
// can then stop the persistence daemon without losing messages.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		o.running.Store(false)
		close(o.quit)
		o.wg.Wait()
		o.logger.Info("control orchestrator stopped")
	})
}

// LastSample returns the most recent sensor sample.
func (o *Orchestrator) LastSample() SensorSample {
	o.sampleMu.RLock()
	defer o.sampleMu.RUnlock()
	return o.lastSample
}

func (o *Orchestrator) setLastSample(sample SensorSample) {
	o.sampleMu.Lock()
	o.lastSample = sample
	o.sampleMu.Unlock()
}

// raise delivers a collapsing signal: a relation that is already signalled
// absorbs further raises until its worker wakes.
func raise(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
