package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// uploadsTotal counts upload attempts by outcome (ok, invalid, missing).
	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "volcano_uploads_total",
			Help: "Total number of data file uploads by result",
		},
		[]string{"result"},
	)

	// renderRowsDropped is observed once per rendered plot.
	renderRowsDropped = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "volcano_render_rows_dropped",
			Help:    "Rows dropped by cleaning (missing or non-positive p-value, missing fold change) per rendered plot",
			Buckets: []float64{0, 1, 10, 100, 1000, 10000, 100000},
		},
	)

	rendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "volcano_renders_total",
			Help: "Total number of plot renders by outcome",
		},
		[]string{"outcome"},
	)

	renderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "volcano_render_duration_seconds",
			Help:    "Time spent rendering one volcano plot PNG",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)
)
