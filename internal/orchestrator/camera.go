package orchestrator

import (
	"fmt"
	"time"

	"github.com/leafsense/leafsense-go/internal/leafnet"
	"github.com/leafsense/leafsense-go/internal/recommend"
	"github.com/leafsense/leafsense-go/internal/wire"
)

// alertConfidence is the minimum confidence for a non-healthy prediction to
// raise a critical alert.
const alertConfidence = 0.70

// secondaryConfidence is the minimum probability for a non-predicted class
// to be logged as a secondary finding.
const secondaryConfidence = 0.20

// runCameraTask captures and classifies on each activation.
func (o *Orchestrator) runCameraTask() {
	for {
		select {
		case <-o.quit:
			return
		case <-o.cameraSignal:
		}
		if !o.running.Load() {
			return
		}
		o.captureAndClassify()
	}
}

// captureAndClassify performs one camera cycle. A capture failure produces
// nothing this cycle and does not stop subsequent cycles.
func (o *Orchestrator) captureAndClassify() {
	filename, path, err := o.camera.TakePhoto()
	if err != nil {
		o.logger.Warn("camera capture failed, skipping cycle", "error", err)
		return
	}
	if path == "" {
		return
	}

	o.queue.Send(wire.ImageMessage{Filename: filename, Path: path}.Serialize())

	start := time.Now()
	result, err := o.classifier.AnalyzeDetailed(path)
	if o.metrics != nil {
		o.metrics.LeafNet.InferenceDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		o.logger.Error("image analysis failed", "path", path, "error", err)
		return
	}

	if !result.ValidPlant {
		o.handleInvalidPlant(filename, result)
		return
	}
	o.handlePrediction(filename, result)
}

// handleInvalidPlant records an out-of-distribution rejection. No
// recommendation is synthesized and the alert LED is cleared: the image
// says nothing about plant health.
func (o *Orchestrator) handleInvalidPlant(filename string, result leafnet.Result) {
	o.queue.Send(wire.PredictionMessage{
		Filename:   filename,
		Label:      result.ClassName,
		Confidence: result.Confidence,
	}.Serialize())

	o.queue.Send(wire.LogMessage{
		Category: wire.LogMLAnalysis,
		Title:    "Out-of-Distribution Detected",
		Detail: fmt.Sprintf("Image rejected: green ratio %.3f, entropy %.2f, confidence %.1f%%",
			result.GreenRatio, result.Entropy, result.Confidence*100),
	}.Serialize())

	o.alertLED.Set(false)

	if o.metrics != nil {
		o.metrics.LeafNet.OODRejectionsTotal.Inc()
	}
	o.logger.Info("out-of-distribution image rejected",
		"filename", filename, "green_ratio", result.GreenRatio, "entropy", result.Entropy)

	o.publishPrediction(filename, result, recommend.Recommendation{})
}

// handlePrediction records a valid classification, drives the LED, and
// synthesizes the recommendation and any class-specific follow-ups.
func (o *Orchestrator) handlePrediction(filename string, result leafnet.Result) {
	o.queue.Send(wire.PredictionMessage{
		Filename:   filename,
		Label:      result.ClassName,
		Confidence: result.Confidence,
	}.Serialize())

	o.queue.Send(wire.LogMessage{
		Category: wire.LogMLAnalysis,
		Title:    result.ClassName,
		Detail:   fmt.Sprintf("Confidence: %.1f%%", result.Confidence*100),
	}.Serialize())

	// Anything but Healthy keeps the indicator lit.
	o.alertLED.Set(result.ClassID != leafnet.ClassHealthy)

	if o.metrics != nil {
		o.metrics.LeafNet.PredictionsTotal.WithLabelValues(result.ClassName).Inc()
	}

	sample := o.LastSample()
	ranges := o.conditions.Snapshot()
	rec := recommend.Synthesize(result, recommend.Sample{
		Temperature: sample.Temperature,
		PH:          sample.PH,
		EC:          sample.EC,
	}, ranges)

	o.queue.Send(wire.RecommendationMessage{
		Filename:   filename,
		Kind:       string(rec.Kind),
		Text:       rec.Text,
		Confidence: rec.Confidence,
	}.Serialize())

	for i, p := range result.Probs {
		if i == result.ClassID || p < secondaryConfidence {
			continue
		}
		o.queue.Send(wire.LogMessage{
			Category: wire.LogMLAnalysis,
			Title:    "Secondary: " + leafnet.ClassNames[i],
			Detail:   fmt.Sprintf("Confidence: %.1f%%", p*100),
		}.Serialize())
	}

	if result.ClassID != leafnet.ClassHealthy && result.Confidence >= alertConfidence {
		message := fmt.Sprintf("%s detected with %.0f%% confidence", result.ClassName, result.Confidence*100)
		o.queue.Send(wire.AlertMessage{
			Kind:    wire.AlertCritical,
			Message: message,
		}.Serialize())
		o.notifier.PushCritical(message)
	}

	switch result.ClassID {
	case leafnet.ClassDisease:
		o.queue.Send(wire.LogMessage{
			Category: wire.LogDisease,
			Title:    "Disease Detected",
			Detail:   fmt.Sprintf("Confidence: %.1f%%; see recommendation", result.Confidence*100),
		}.Serialize())
	case leafnet.ClassDeficiency:
		o.queue.Send(wire.LogMessage{
			Category: wire.LogDeficiency,
			Title:    "Nutrient Deficiency",
			Detail:   fmt.Sprintf("Current EC: %.0f uS/cm", sample.EC),
		}.Serialize())
	case leafnet.ClassPest:
		o.queue.Send(wire.LogMessage{
			Category: wire.LogDisease,
			Title:    "Pest Damage",
			Detail:   fmt.Sprintf("Confidence: %.1f%%; inspect canopy", result.Confidence*100),
		}.Serialize())
	}

	o.publishPrediction(filename, result, rec)
}
