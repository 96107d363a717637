// Package telemetry exposes Prometheus metrics for the retrieval pipeline.
// A nil *Telemetry is valid and records nothing, so components never need to
// guard their instrumentation calls.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Telemetry holds the pipeline's metric instruments.
type Telemetry struct {
	questionsTotal   *prometheus.CounterVec
	retrievalLatency prometheus.Histogram
	indexErrorsTotal prometheus.Counter
	rerankFallbacks  prometheus.Counter
	evidenceReturned prometheus.Histogram
}

// New registers the pipeline metrics with the given registerer.
func New(reg prometheus.Registerer) *Telemetry {
	t := &Telemetry{
		questionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regrag_questions_total",
			Help: "Questions processed, labelled by plan kind.",
		}, []string{"kind"}),
		retrievalLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "regrag_retrieval_seconds",
			Help:    "Wall time of the recall fan-out per question.",
			Buckets: prometheus.DefBuckets,
		}),
		indexErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "regrag_index_query_errors_total",
			Help: "Vector index queries that failed and contributed zero hits.",
		}),
		rerankFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "regrag_rerank_fallbacks_total",
			Help: "Rerank calls that degraded to recall order.",
		}),
		evidenceReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "regrag_evidence_returned",
			Help:    "Number of evidence chunks in the final answer.",
			Buckets: []float64{0, 1, 2, 4, 6, 8, 12, 16},
		}),
	}
	reg.MustRegister(t.questionsTotal, t.retrievalLatency, t.indexErrorsTotal, t.rerankFallbacks, t.evidenceReturned)
	return t
}

// RecordQuestion counts a processed question by plan kind.
func (t *Telemetry) RecordQuestion(comparison bool) {
	if t == nil {
		return
	}
	kind := "single"
	if comparison {
		kind = "comparison"
	}
	t.questionsTotal.WithLabelValues(kind).Inc()
}

// ObserveRetrieval records the duration of the recall stage.
func (t *Telemetry) ObserveRetrieval(d time.Duration) {
	if t == nil {
		return
	}
	t.retrievalLatency.Observe(d.Seconds())
}

// RecordIndexError counts a failed vector index query.
func (t *Telemetry) RecordIndexError() {
	if t == nil {
		return
	}
	t.indexErrorsTotal.Inc()
}

// RecordRerankFallback counts a rerank degradation to recall order.
func (t *Telemetry) RecordRerankFallback() {
	if t == nil {
		return
	}
	t.rerankFallbacks.Inc()
}

// RecordEvidence records how many chunks were returned as evidence.
func (t *Telemetry) RecordEvidence(n int) {
	if t == nil {
		return
	}
	t.evidenceReturned.Observe(float64(n))
}
