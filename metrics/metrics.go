package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Predictions served, by price tier
	Predictions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "phoneprice_predictions_total",
		Help: "Total predictions served by price tier",
	}, []string{"tier"})

	// Failed predictions, by error reason
	PredictionErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "phoneprice_prediction_errors_total",
		Help: "Total failed predictions by reason",
	}, []string{"reason"})

	PredictDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "phoneprice_predict_duration_seconds",
		Help:    "Latency of a single prediction including validation and label mapping",
		Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
	})

	ModelReloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "phoneprice_model_reloads_total",
		Help: "Model artifact reload attempts by result",
	}, []string{"result"})
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more
// than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			Predictions,
			PredictionErrors,
			PredictDuration,
			ModelReloads,
		)
	})
}
