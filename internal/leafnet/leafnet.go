// Package leafnet runs the plant health classifier: a MobileNetV3-small
// TensorFlow Lite model over gallery captures, with an out-of-distribution
// gate that rejects images the model cannot be trusted to classify.
package leafnet

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	tflite "github.com/tphakala/go-tflite"

	"github.com/leafsense/leafsense-go/internal/conf"
	"github.com/leafsense/leafsense-go/internal/logging"
)

// Class ids, fixed alphabetically. Wire-visible: predictions are persisted
// by id.
const (
	ClassDeficiency = 0
	ClassDisease    = 1
	ClassHealthy    = 2
	ClassPest       = 3

	// ClassUnknown marks an out-of-distribution image.
	ClassUnknown = -1
)

// NumClasses is the model's output width.
const NumClasses = 4

// ClassNames maps class ids to display labels.
var ClassNames = [NumClasses]string{"Deficiency", "Disease", "Healthy", "Pest"}

// UnknownClassName labels out-of-distribution results.
const UnknownClassName = "Unknown (Not a Plant)"

// Result holds one detailed classification.
type Result struct {
	ClassID    int       // -1 iff ValidPlant is false
	ClassName  string    // display label
	Confidence float64   // max class probability
	Probs      []float64 // full distribution, sums to 1
	Entropy    float64   // Shannon entropy of Probs, bits
	GreenRatio float64   // green+yellow-green pixel fraction of the source image
	ValidPlant bool      // OOD gate verdict
}

// LeafNet wraps the tflite interpreter and the OOD gate. When the model file
// is missing or fails to load the classifier runs in degraded mode: every
// analysis reports Healthy with confidence 1.0 so the dashboard never blanks.
type LeafNet struct {
	Settings *conf.Settings

	mu          sync.Mutex
	interpreter *tflite.Interpreter
	model       *tflite.Model
	degraded    bool

	logger *slog.Logger
}

// New constructs the classifier and loads the model from the configured
// (dir, name). Load failure is not an error: the classifier degrades.
func New(settings *conf.Settings) *LeafNet {
	ln := &LeafNet{
		Settings: settings,
		logger:   logging.ForService("leafnet"),
	}

	modelFile := filepath.Join(settings.LeafNet.ModelPath, settings.LeafNet.ModelName)
	if err := ln.initializeModel(modelFile); err != nil {
		ln.logger.Warn("model load failed, classifier running in degraded mode",
			"model", modelFile, "error", err)
		ln.degraded = true
	}
	return ln
}

// Degraded reports whether the classifier is running without a model.
func (ln *LeafNet) Degraded() bool {
	ln.mu.Lock()
	defer ln.mu.Unlock()
	return ln.degraded
}

func (ln *LeafNet) initializeModel(modelFile string) error {
	data, err := os.ReadFile(modelFile)
	if err != nil {
		return fmt.Errorf("reading model file: %w", err)
	}

	model := tflite.NewModel(data)
	if model == nil {
		return fmt.Errorf("cannot load model from %s", modelFile)
	}

	options := tflite.NewInterpreterOptions()
	threads := runtime.NumCPU()
	if threads > 4 {
		threads = 4
	}
	options.SetNumThread(threads)

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		model.Delete()
		return fmt.Errorf("cannot create interpreter")
	}

	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		model.Delete()
		return fmt.Errorf("tensor allocation failed")
	}

	ln.model = model
	ln.interpreter = interpreter
	return nil
}

// Close releases the interpreter and model.
func (ln *LeafNet) Close() {
	ln.mu.Lock()
	defer ln.mu.Unlock()

	if ln.interpreter != nil {
		ln.interpreter.Delete()
		ln.interpreter = nil
	}
	if ln.model != nil {
		ln.model.Delete()
		ln.model = nil
	}
	ln.degraded = true
}

// invoke runs a single-shot forward pass over the preprocessed tensor and
// returns the raw logits.
func (ln *LeafNet) invoke(input []float32) ([]float64, error) {
	ln.mu.Lock()
	defer ln.mu.Unlock()

	if ln.interpreter == nil {
		return nil, fmt.Errorf("interpreter not initialized")
	}

	inputTensor := ln.interpreter.GetInputTensor(0)
	if inputTensor == nil {
		return nil, fmt.Errorf("cannot get input tensor")
	}
	copy(inputTensor.Float32s(), input)

	if status := ln.interpreter.Invoke(); status != tflite.OK {
		return nil, fmt.Errorf("tensor invoke failed: %v", status)
	}

	outputTensor := ln.interpreter.GetOutputTensor(0)
	if outputTensor == nil {
		return nil, fmt.Errorf("cannot get output tensor")
	}

	raw := outputTensor.Float32s()
	logits := make([]float64, len(raw))
	for i, v := range raw {
		logits[i] = float64(v)
	}
	return logits, nil
}
