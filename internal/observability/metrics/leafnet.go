package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LeafNetMetrics contains metrics for the classifier pipeline.
type LeafNetMetrics struct {
	InferenceDuration  prometheus.Histogram
	PredictionsTotal   *prometheus.CounterVec
	OODRejectionsTotal prometheus.Counter
	DegradedMode       prometheus.Gauge
}

// NewLeafNetMetrics creates classifier metrics and registers them.
func NewLeafNetMetrics(registry *prometheus.Registry) (*LeafNetMetrics, error) {
	m := &LeafNetMetrics{
		InferenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "leafsense_inference_duration_seconds",
			Help:    "Wall time of one image classification",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		PredictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leafsense_predictions_total",
			Help: "Predictions by class label",
		}, []string{"class"}),
		OODRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leafsense_ood_rejections_total",
			Help: "Images rejected by the out-of-distribution gate",
		}),
		DegradedMode: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "leafsense_classifier_degraded",
			Help: "Whether the classifier is running without a model (1 degraded)",
		}),
	}

	collectors := []prometheus.Collector{
		m.InferenceDuration, m.PredictionsTotal, m.OODRejectionsTotal, m.DegradedMode,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
