package classifier

import "github.com/prometheus/client_golang/prometheus"

var (
	inferenceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "imgclassd",
			Name:      "inference_duration_seconds",
			Help:      "Duration of model forward passes in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "imgclassd",
			Name:      "predictions_total",
			Help:      "Persisted predictions by label",
		},
		[]string{"label"},
	)
)

func init() {
	prometheus.MustRegister(inferenceDuration, predictionsTotal)
}
