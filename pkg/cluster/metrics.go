package cluster

import "github.com/prometheus/client_golang/prometheus"

// metricsNamespace is the default Prometheus namespace for Clusterer
// metrics.
const metricsNamespace = "dupcluster"

// Metrics holds the Prometheus instrumentation a Clusterer reports through,
// if configured via WithMetrics. A Clusterer constructed without this
// option performs no metrics bookkeeping.
type Metrics struct {
	ItemsIndexed      prometheus.Counter
	UnionsPerformed   prometheus.Counter
	LabelsKnown       prometheus.Gauge
	VocabularySize    prometheus.Gauge
	SignatureCacheHit prometheus.Counter
}

// NewMetrics creates and registers a Metrics set on reg. Passing the same
// reg to two Metrics instances will panic on duplicate registration, as is
// standard for prometheus.Registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ItemsIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "items_indexed_total",
			Help:      "Total number of items passed to AddItem.",
		}),
		UnionsPerformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "unions_performed_total",
			Help:      "Total number of union-find Union calls across all bands, including calls on labels already in one class.",
		}),
		LabelsKnown: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "labels_known",
			Help:      "Number of distinct labels interned so far.",
		}),
		VocabularySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "vocabulary_size_estimate",
			Help:      "HyperLogLog estimate of distinct shingle keys seen so far.",
		}),
		SignatureCacheHit: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "signature_cache_hits_total",
			Help:      "Total number of AddItem calls served from the exact-text signature cache.",
		}),
	}

	reg.MustRegister(m.ItemsIndexed, m.UnionsPerformed, m.LabelsKnown, m.VocabularySize, m.SignatureCacheHit)

	return m
}
