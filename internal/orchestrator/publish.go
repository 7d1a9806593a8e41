package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/leafsense/leafsense-go/internal/leafnet"
	"github.com/leafsense/leafsense-go/internal/recommend"
)

// publishTimeout bounds how long the control path waits on the broker.
const publishTimeout = 2 * time.Second

// samplePayload is the MQTT JSON shape for one sensor sample.
type samplePayload struct {
	Temperature float64   `json:"temperature"`
	PH          float64   `json:"ph"`
	EC          float64   `json:"ec"`
	Timestamp   time.Time `json:"timestamp"`
}

// predictionPayload is the MQTT JSON shape for one classification.
type predictionPayload struct {
	Filename       string    `json:"filename"`
	Class          string    `json:"class"`
	Confidence     float64   `json:"confidence"`
	Entropy        float64   `json:"entropy"`
	ValidPlant     bool      `json:"valid_plant"`
	Recommendation string    `json:"recommendation,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

func (o *Orchestrator) publishSample(sample SensorSample) {
	if o.publisher == nil || !o.publisher.IsConnected() {
		return
	}

	payload, err := json.Marshal(samplePayload{
		Temperature: sample.Temperature,
		PH:          sample.PH,
		EC:          sample.EC,
		Timestamp:   sample.Timestamp,
	})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	topic := o.settings.Realtime.MQTT.Topic + "/sensors"
	if err := o.publisher.Publish(ctx, topic, string(payload)); err != nil {
		o.logger.Debug("sensor sample publish failed", "error", err)
	}
}

func (o *Orchestrator) publishPrediction(filename string, result leafnet.Result, rec recommend.Recommendation) {
	if o.publisher == nil || !o.publisher.IsConnected() {
		return
	}

	payload, err := json.Marshal(predictionPayload{
		Filename:       filename,
		Class:          result.ClassName,
		Confidence:     result.Confidence,
		Entropy:        result.Entropy,
		ValidPlant:     result.ValidPlant,
		Recommendation: rec.Text,
		Timestamp:      time.Now(),
	})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	topic := o.settings.Realtime.MQTT.Topic + "/predictions"
	if err := o.publisher.Publish(ctx, topic, string(payload)); err != nil {
		o.logger.Debug("prediction publish failed", "error", err)
	}
}
