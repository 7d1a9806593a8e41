package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/leafsense/leafsense-go/internal/camera"
	"github.com/leafsense/leafsense-go/internal/conditions"
	"github.com/leafsense/leafsense-go/internal/conf"
	"github.com/leafsense/leafsense-go/internal/hardware"
	"github.com/leafsense/leafsense-go/internal/leafnet"
	"github.com/leafsense/leafsense-go/internal/msgqueue"
	"github.com/leafsense/leafsense-go/internal/wire"
)

// fakeClassifier returns a canned result.
type fakeClassifier struct {
	result leafnet.Result
	err    error
}

func (f *fakeClassifier) AnalyzeDetailed(string) (leafnet.Result, error) { return f.result, f.err }
func (f *fakeClassifier) Close()                                         {}

// rig bundles an orchestrator with handles to its mocks.
type rig struct {
	o        *Orchestrator
	queue    *msgqueue.Queue
	temp     *hardware.MockSensor
	ph       *hardware.MockSensor
	ec       *hardware.MockSensor
	heater   *hardware.MockActuator
	phUp     *hardware.MockActuator
	phDown   *hardware.MockActuator
	nutrient *hardware.MockActuator
	led      *hardware.MockActuator
}

func testControlSettings() *conf.Settings {
	return &conf.Settings{
		Control: conf.ControlSettings{
			TickPeriod:   1,
			SensorPeriod: 10,
			CameraPeriod: 900,
		},
	}
}

func newRig(t *testing.T, settings *conf.Settings, cam camera.Camera, classifier Classifier) *rig {
	t.Helper()

	r := &rig{
		queue:    msgqueue.New(),
		temp:     hardware.NewMockSensor("temperature", 21),
		ph:       hardware.NewMockSensor("ph", 6.0),
		ec:       hardware.NewMockSensor("ec", 700),
		heater:   hardware.NewMockActuator("heater"),
		phUp:     hardware.NewMockActuator("ph-up"),
		phDown:   hardware.NewMockActuator("ph-down"),
		nutrient: hardware.NewMockActuator("nutrient"),
		led:      hardware.NewMockActuator("alert-led"),
	}

	components := &Components{
		TempSensor: r.temp,
		PHSensor:   r.ph,
		ECSensor:   r.ec,
		Heater:     r.heater,
		PhUp:       r.phUp,
		PhDown:     r.phDown,
		Nutrient:   r.nutrient,
		AlertLED:   r.led,
		Camera:     cam,
		Classifier: classifier,
	}
	r.o = New(settings, components, conditions.New(), r.queue, nil, nil, nil)
	return r
}

// pump synchronously processes one pending excitation signal, returning
// whether one was pending.
func pump(e *excitation) bool {
	select {
	case reason := <-e.signals:
		e.fire(reason)
		return true
	default:
		return false
	}
}

// drain empties the queue into a slice.
func drain(q *msgqueue.Queue) []string {
	var out []string
	for q.Len() > 0 {
		out = append(out, q.Receive())
	}
	return out
}

func signalled(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// TestLowPHSinglePulse covers the end-to-end dosing pulse: low pH raises
// exactly one pH-up edge, and the next tick's auto-off pass produces the
// matching off edge. No other actuator moves.
func TestLowPHSinglePulse(t *testing.T) {
	t.Parallel()

	r := newRig(t, testControlSettings(), &camera.MockCamera{}, &fakeClassifier{})
	r.temp.SetValues(21)
	r.ph.SetValues(5.0)
	r.ec.SetValues(700)

	r.o.readAndControl()

	require.True(t, pump(r.o.phUp), "pH up excitation must fire")
	assert.False(t, pump(r.o.heater))
	assert.False(t, pump(r.o.phDown))
	assert.False(t, pump(r.o.nutrient))
	assert.True(t, r.phUp.State())

	// Next tick turns the pump off again.
	r.o.handleTick(&cooldowns{sensor: 10, camera: 900})
	require.True(t, pump(r.o.phUp), "auto-off must fire at the next tick")
	assert.False(t, r.phUp.State())

	msgs := drain(r.queue)
	require.Len(t, msgs, 3)
	assert.Equal(t, "SENSOR|21|5|700", msgs[0])

	onLog, err := wire.Parse(msgs[1])
	require.NoError(t, err)
	assert.Equal(t, wire.LogMessage{Category: wire.LogMaintenance, Title: "pH Up On", Detail: "pH below ideal range"}, onLog)

	offLog, err := wire.Parse(msgs[2])
	require.NoError(t, err)
	assert.Equal(t, "pH Up Off", offLog.(wire.LogMessage).Title)

	assert.Empty(t, r.heater.Edges())
	assert.Empty(t, r.nutrient.Edges())
	assert.Len(t, r.phUp.Edges(), 2)
}

// TestHysteresisHolds feeds a temperature walk that never leaves the
// deadband's reach while the heater is off: zero heater edges, including at
// the exact boundaries and on an above-max excursion.
func TestHysteresisHolds(t *testing.T) {
	t.Parallel()

	r := newRig(t, testControlSettings(), &camera.MockCamera{}, &fakeClassifier{})
	require.NoError(t, r.o.conditions.SetTemp(20, 24))

	for _, temp := range []float64{23, 24, 23.9, 24.1, 23.9, 24.5} {
		r.temp.SetValues(temp)
		r.ph.SetValues(6.0)
		r.ec.SetValues(700)
		r.o.readAndControl()
		assert.False(t, pump(r.o.heater), "temp %v must not toggle an off heater", temp)
	}
	assert.Empty(t, r.heater.Edges())
}

// TestHeaterHysteresisCrossings verifies the two legal transitions: on at a
// below-min crossing, off at an above-max crossing while on.
func TestHeaterHysteresisCrossings(t *testing.T) {
	t.Parallel()

	r := newRig(t, testControlSettings(), &camera.MockCamera{}, &fakeClassifier{})

	// Exactly at min: strict inequality, no toggle.
	r.temp.SetValues(18)
	r.o.readAndControl()
	assert.False(t, pump(r.o.heater))

	r.temp.SetValues(17.5)
	r.o.readAndControl()
	require.True(t, pump(r.o.heater))
	assert.True(t, r.heater.State())

	// Still cold: heater already on, no second on-signal.
	r.temp.SetValues(17.0)
	r.o.readAndControl()
	assert.False(t, pump(r.o.heater))

	// Exactly at max while on: no toggle.
	r.temp.SetValues(24)
	r.o.readAndControl()
	assert.False(t, pump(r.o.heater))

	r.temp.SetValues(24.5)
	r.o.readAndControl()
	require.True(t, pump(r.o.heater))
	assert.False(t, r.heater.State())

	assert.Len(t, r.heater.Edges(), 2)
}

// TestHeaterExcludedFromAutoOff pins the default policy: the dispatcher's
// per-tick auto-off acts on pumps only, so a heater holding temperature is
// not forced off every tick.
func TestHeaterExcludedFromAutoOff(t *testing.T) {
	t.Parallel()

	r := newRig(t, testControlSettings(), &camera.MockCamera{}, &fakeClassifier{})
	r.heater.Set(true)

	r.o.handleTick(&cooldowns{sensor: 10, camera: 900})
	assert.False(t, pump(r.o.heater), "heater must survive the auto-off pass by default")
	assert.True(t, r.heater.State())
}

func TestHeaterAutoOffPolicyFlag(t *testing.T) {
	t.Parallel()

	settings := testControlSettings()
	settings.Control.HeaterAutoOff = true
	r := newRig(t, settings, &camera.MockCamera{}, &fakeClassifier{})
	r.heater.Set(true)

	r.o.handleTick(&cooldowns{sensor: 10, camera: 900})
	require.True(t, pump(r.o.heater))
	assert.False(t, r.heater.State())
}

// TestSensorCooldownDecay verifies the dispatcher decrements by 1 normally
// and by 2 while correcting, and resets on expiry.
func TestSensorCooldownDecay(t *testing.T) {
	t.Parallel()

	settings := testControlSettings()
	settings.Control.SensorPeriod = 4
	r := newRig(t, settings, &camera.MockCamera{}, &fakeClassifier{})

	cd := &cooldowns{sensor: 4, camera: 900}
	for range 3 {
		r.o.handleTick(cd)
		assert.False(t, signalled(r.o.sensorSignal))
	}
	r.o.handleTick(cd)
	assert.True(t, signalled(r.o.sensorSignal), "fourth tick must activate the sensor task")
	assert.Equal(t, 4, cd.sensor, "cooldown must reset to the period")

	// Correction doubles the decay rate.
	r.o.sensorsCorrecting.Store(true)
	r.o.handleTick(cd)
	r.o.handleTick(cd)
	assert.True(t, signalled(r.o.sensorSignal), "two ticks suffice while correcting")
}

func TestCameraCooldown(t *testing.T) {
	t.Parallel()

	settings := testControlSettings()
	settings.Control.CameraPeriod = 3
	r := newRig(t, settings, &camera.MockCamera{}, &fakeClassifier{})

	cd := &cooldowns{sensor: 100, camera: 3}
	r.o.handleTick(cd)
	r.o.handleTick(cd)
	assert.False(t, signalled(r.o.cameraSignal))
	r.o.handleTick(cd)
	assert.True(t, signalled(r.o.cameraSignal))
	assert.Equal(t, 3, cd.camera)
}

// TestAlertLEDFollowsSensors: any out-of-range parameter lights the LED;
// an all-in-range sample clears it.
func TestAlertLEDFollowsSensors(t *testing.T) {
	t.Parallel()

	r := newRig(t, testControlSettings(), &camera.MockCamera{}, &fakeClassifier{})

	r.ec.SetValues(400) // below minimum
	r.o.readAndControl()
	pump(r.o.nutrient)
	assert.True(t, r.led.State())
	assert.True(t, r.o.sensorsCorrecting.Load())

	r.ec.SetValues(700)
	r.o.readAndControl()
	assert.False(t, r.led.State())
	assert.False(t, r.o.sensorsCorrecting.Load())
}

// TestPHAndECCorrectIndependently covers the tie-break: both out of band
// means both pumps fire.
func TestPHAndECCorrectIndependently(t *testing.T) {
	t.Parallel()

	r := newRig(t, testControlSettings(), &camera.MockCamera{}, &fakeClassifier{})
	r.ph.SetValues(7.1)
	r.ec.SetValues(400)

	r.o.readAndControl()
	assert.True(t, pump(r.o.phDown))
	assert.True(t, pump(r.o.nutrient))
	assert.False(t, pump(r.o.phUp))
}

// TestOODRejection: an out-of-distribution image is recorded, the
// prediction carries the unknown label, the OOD log appears, the LED goes
// off, and no recommendation is synthesized.
func TestOODRejection(t *testing.T) {
	t.Parallel()

	classifier := &fakeClassifier{result: leafnet.Result{
		ClassID:    leafnet.ClassUnknown,
		ClassName:  leafnet.UnknownClassName,
		Confidence: 0.41,
		Probs:      []float64{0.25, 0.41, 0.18, 0.16},
		Entropy:    1.9,
		GreenRatio: 0.03,
		ValidPlant: false,
	}}
	cam := &camera.MockCamera{Filename: "plant_x.jpg", Path: "/g/plant_x.jpg"}
	r := newRig(t, testControlSettings(), cam, classifier)
	r.led.Set(true)

	r.o.captureAndClassify()

	msgs := drain(r.queue)
	require.Len(t, msgs, 3)
	assert.Equal(t, "IMG|plant_x.jpg|/g/plant_x.jpg", msgs[0])

	pred, err := wire.Parse(msgs[1])
	require.NoError(t, err)
	assert.Equal(t, leafnet.UnknownClassName, pred.(wire.PredictionMessage).Label)

	logMsg, err := wire.Parse(msgs[2])
	require.NoError(t, err)
	assert.Equal(t, "Out-of-Distribution Detected", logMsg.(wire.LogMessage).Title)

	assert.False(t, r.led.State(), "OOD must clear the alert LED")
}

// TestConfidentDiseaseAlert: a confident disease classification produces
// the full alert sequence.
func TestConfidentDiseaseAlert(t *testing.T) {
	t.Parallel()

	classifier := &fakeClassifier{result: leafnet.Result{
		ClassID:    leafnet.ClassDisease,
		ClassName:  "Disease",
		Confidence: 0.82,
		Probs:      []float64{0.06, 0.82, 0.07, 0.05},
		Entropy:    0.95,
		GreenRatio: 0.4,
		ValidPlant: true,
	}}
	cam := &camera.MockCamera{Filename: "plant_d.jpg", Path: "/g/plant_d.jpg"}
	r := newRig(t, testControlSettings(), cam, classifier)

	r.o.captureAndClassify()

	var tags []string
	var alert wire.AlertMessage
	var rec wire.RecommendationMessage
	for _, raw := range drain(r.queue) {
		msg, err := wire.Parse(raw)
		require.NoError(t, err)
		tags = append(tags, msg.Tag())
		switch m := msg.(type) {
		case wire.AlertMessage:
			alert = m
		case wire.RecommendationMessage:
			rec = m
		}
	}

	assert.Equal(t, []string{"IMG", "PRED", "LOG", "REC", "ALERT", "LOG"}, tags)
	assert.Equal(t, wire.AlertCritical, alert.Kind)
	assert.Equal(t, "Disease detected with 82% confidence", alert.Message)
	assert.Equal(t, "Disease", rec.Kind)
	assert.True(t, strings.HasPrefix(rec.Text, "Disease detected. IMMEDIATE ACTIONS:"), "rec text: %s", rec.Text)
	assert.True(t, r.led.State(), "non-healthy prediction must light the LED")
}

// TestAlertConfidenceBoundary pins the inclusive 0.70 threshold.
func TestAlertConfidenceBoundary(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		confidence float64
		wantAlert  bool
	}{
		{0.70, true},
		{0.699, false},
	} {
		classifier := &fakeClassifier{result: leafnet.Result{
			ClassID:    leafnet.ClassDisease,
			ClassName:  "Disease",
			Confidence: tc.confidence,
			Probs:      []float64{0.1, tc.confidence, 0.1, 0.1},
			ValidPlant: true,
		}}
		cam := &camera.MockCamera{Filename: "plant.jpg", Path: "/g/plant.jpg"}
		r := newRig(t, testControlSettings(), cam, classifier)

		r.o.captureAndClassify()

		hasAlert := false
		for _, raw := range drain(r.queue) {
			if strings.HasPrefix(raw, "ALERT|") {
				hasAlert = true
			}
		}
		assert.Equal(t, tc.wantAlert, hasAlert, "confidence %v", tc.confidence)
	}
}

// TestSecondaryClassLogs verifies secondary findings at or above 0.20 are
// logged and lower ones are not.
func TestSecondaryClassLogs(t *testing.T) {
	t.Parallel()

	classifier := &fakeClassifier{result: leafnet.Result{
		ClassID:    leafnet.ClassHealthy,
		ClassName:  "Healthy",
		Confidence: 0.55,
		Probs:      []float64{0.20, 0.19, 0.55, 0.06},
		ValidPlant: true,
	}}
	cam := &camera.MockCamera{Filename: "plant.jpg", Path: "/g/plant.jpg"}
	r := newRig(t, testControlSettings(), cam, classifier)

	r.o.captureAndClassify()

	var secondaries []string
	for _, raw := range drain(r.queue) {
		msg, err := wire.Parse(raw)
		require.NoError(t, err)
		if logMsg, ok := msg.(wire.LogMessage); ok && strings.HasPrefix(logMsg.Title, "Secondary:") {
			secondaries = append(secondaries, logMsg.Title)
		}
	}
	assert.Equal(t, []string{"Secondary: Deficiency"}, secondaries)
}

// TestEmptyImagePathSkipsCycle: no capture, no messages.
func TestEmptyImagePathSkipsCycle(t *testing.T) {
	t.Parallel()

	r := newRig(t, testControlSettings(), &camera.MockCamera{}, &fakeClassifier{})
	r.o.captureAndClassify()
	assert.Equal(t, 0, r.queue.Len())
}

// TestDegradedClassifierEndToEnd: with a missing
// model the camera task still produces IMG, PRED and a Healthy
// recommendation.
func TestDegradedClassifierEndToEnd(t *testing.T) {
	t.Parallel()

	settings := testControlSettings()
	settings.LeafNet = conf.LeafNetSettings{
		ModelPath:        "/nonexistent",
		ModelName:        "missing.tflite",
		ImageSize:        224,
		EntropyThreshold: 1.8,
		MinConfidence:    0.30,
		MinGreenRatio:    0.10,
	}
	classifier := leafnet.New(settings)
	defer classifier.Close()
	require.True(t, classifier.Degraded())

	cam := &camera.MockCamera{Filename: "plant.jpg", Path: "/g/plant.jpg"}
	r := newRig(t, settings, cam, classifier)

	r.o.captureAndClassify()

	var tags []string
	var pred wire.PredictionMessage
	var rec wire.RecommendationMessage
	for _, raw := range drain(r.queue) {
		msg, err := wire.Parse(raw)
		require.NoError(t, err)
		tags = append(tags, msg.Tag())
		switch m := msg.(type) {
		case wire.PredictionMessage:
			pred = m
		case wire.RecommendationMessage:
			rec = m
		}
	}

	assert.Equal(t, []string{"IMG", "PRED", "LOG", "REC"}, tags)
	assert.Equal(t, "Healthy", pred.Label)
	assert.InDelta(t, 1.0, pred.Confidence, 1e-9)
	assert.Equal(t, "Healthy", rec.Kind)
	assert.False(t, r.led.State())
}

// TestStartStopClean verifies the full worker set starts and shuts down
// without leaking goroutines, and that Stop is idempotent.
func TestStartStopClean(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newRig(t, testControlSettings(), &camera.MockCamera{}, &fakeClassifier{})
	r.o.Start()
	r.o.Stop()
	r.o.Stop()
}
