package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline and API instrumentation, exposed on the API server's /metrics
// endpoint.
var (
	RecordsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flowscope_records_ingested_total",
		Help: "Flow records accepted into the session store.",
	})

	SessionRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flowscope_session_records",
		Help: "Flow records currently held by the session store.",
	})

	FilterDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flowscope_filter_recompute_seconds",
		Help:    "Time spent recomputing derived views after a criteria change.",
		Buckets: prometheus.DefBuckets,
	})

	SearchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flowscope_searches_total",
		Help: "Search queries served.",
	})

	ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowscope_exports_total",
		Help: "Export operations by format and outcome.",
	}, []string{"format", "outcome"})

	WriterFlushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowscope_writer_flushes_total",
		Help: "Record batches flushed to durable writers, by writer type.",
	}, []string{"writer"})
)
