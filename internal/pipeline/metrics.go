package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumo_frames_processed_total",
			Help: "Total number of frames taken by the pipeline worker",
		},
		[]string{"result"}, // result: ok, shape_mismatch, error
	)

	framesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lumo_frames_dropped_total",
			Help: "Total number of frames discarded by keep-only-latest backpressure",
		},
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lumo_stage_duration_seconds",
			Help:    "Per-stage processing duration in seconds",
			Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
		[]string{"stage"}, // stage: convert, resize, normalize, infer, decode
	)

	inferenceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lumo_inference_duration_seconds",
			Help:    "Model inference duration in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)
)
