// Package daemon implements the persistence worker: it drains the message
// queue, translates wire messages into datastore writes and keeps going
// through per-message failures. One daemon owns the store handle and the
// queue's consumer side.
package daemon

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/leafsense/leafsense-go/internal/datastore"
	"github.com/leafsense/leafsense-go/internal/logging"
	"github.com/leafsense/leafsense-go/internal/msgqueue"
	"github.com/leafsense/leafsense-go/internal/observability/metrics"
	"github.com/leafsense/leafsense-go/internal/wire"
)

// Daemon consumes the queue until the exit sentinel is dequeued. Producers
// must enqueue the sentinel after all intended messages so nothing is lost
// on shutdown.
type Daemon struct {
	queue   *msgqueue.Queue
	store   datastore.Interface
	metrics *metrics.DatastoreMetrics

	logger   *slog.Logger
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a persistence daemon. metrics may be nil.
func New(queue *msgqueue.Queue, store datastore.Interface, m *metrics.DatastoreMetrics) *Daemon {
	return &Daemon{
		queue:   queue,
		store:   store,
		metrics: m,
		logger:  logging.ForService("daemon"),
	}
}

// Start launches the worker goroutine.
func (d *Daemon) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run()
	}()
}

// Stop enqueues the exit sentinel and waits for the worker to drain the
// queue and exit. Safe to call multiple times.
func (d *Daemon) Stop() {
	d.stopOnce.Do(func() {
		d.queue.Send(msgqueue.ExitSentinel)
	})
	d.wg.Wait()
}

func (d *Daemon) run() {
	d.logger.Info("persistence daemon started")

	for {
		raw := d.queue.Receive()
		if raw == msgqueue.ExitSentinel {
			break
		}
		if raw == "" {
			continue
		}

		if d.metrics != nil {
			d.metrics.QueueDepth.Set(float64(d.queue.Len()))
		}

		msg, err := wire.Parse(raw)
		if err != nil {
			// Malformed messages are dropped, never fatal.
			d.logger.Error("dropping malformed message", "raw", raw, "error", err)
			d.count("unknown", "malformed")
			continue
		}

		if err := d.execute(msg); err != nil {
			d.logger.Error("failed to persist message", "tag", msg.Tag(), "error", err)
			d.count(msg.Tag(), "error")
			continue
		}
		d.count(msg.Tag(), "ok")
		d.logger.Debug("persisted message", "tag", msg.Tag())
	}

	d.logger.Info("persistence daemon stopped")
}

// execute maps one typed wire message to its datastore write.
func (d *Daemon) execute(msg wire.Message) error {
	switch m := msg.(type) {
	case wire.SensorMessage:
		return d.store.SaveSensorReading(&datastore.SensorReading{
			Temperature: m.Temperature,
			PH:          m.PH,
			EC:          m.EC,
		})
	case wire.LogMessage:
		return d.store.SaveLog(&datastore.Log{
			LogType: string(m.Category),
			Message: m.Title,
			Details: m.Detail,
		})
	case wire.AlertMessage:
		return d.store.SaveAlert(&datastore.Alert{
			Type:    string(m.Kind),
			Message: m.Message,
			Details: m.Detail,
			IsRead:  false,
		})
	case wire.ImageMessage:
		return d.store.SavePlantImage(&datastore.PlantImage{
			Filename: m.Filename,
			Filepath: m.Path,
		})
	case wire.PredictionMessage:
		err := d.store.SavePredictionForImage(m.Filename, &datastore.MLPrediction{
			PredictionLabel: m.Label,
			Confidence:      m.Confidence,
		})
		if errors.Is(err, datastore.ErrImageNotFound) {
			// Orphan predictions are rejected silently; the join found no row.
			d.logger.Debug("dropping prediction without image row", "filename", m.Filename)
			return nil
		}
		return err
	case wire.RecommendationMessage:
		err := d.store.SaveRecommendationForImage(m.Filename, &datastore.MLRecommendation{
			RecommendationType: m.Kind,
			RecommendationText: m.Text,
			Confidence:         m.Confidence,
			UserAcknowledged:   false,
		})
		if errors.Is(err, datastore.ErrPredictionNotFound) {
			d.logger.Debug("dropping recommendation without prediction row", "filename", m.Filename)
			return nil
		}
		return err
	default:
		return nil
	}
}

func (d *Daemon) count(tag, outcome string) {
	if d.metrics != nil {
		d.metrics.MessagesTotal.WithLabelValues(tag, outcome).Inc()
	}
}
