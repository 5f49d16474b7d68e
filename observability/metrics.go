// Package observability exposes the SDK's prometheus instrumentation.
// Registries are lazily initialised and registered on first use so that
// embedding applications which never scrape pay nothing.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// RegistryMetrics tracks address-resolution cache behaviour.
type RegistryMetrics struct {
	hits     *prometheus.CounterVec
	misses   *prometheus.CounterVec
	inFlight *prometheus.CounterVec
}

// PipelineMetrics tracks record submissions by operation and outcome.
type PipelineMetrics struct {
	submissions *prometheus.CounterVec
}

// ContentMetrics tracks off-chain content store traffic.
type ContentMetrics struct {
	writes *prometheus.CounterVec
	reads  *prometheus.CounterVec
}

var (
	registryOnce    sync.Once
	registryMetrics *RegistryMetrics

	pipelineOnce    sync.Once
	pipelineMetrics *PipelineMetrics

	contentOnce    sync.Once
	contentMetrics *ContentMetrics
)

// Registry returns the lazily-initialised cache metrics.
func Registry() *RegistryMetrics {
	registryOnce.Do(func() {
		registryMetrics = &RegistryMetrics{
			hits: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "neptune",
				Subsystem: "registry",
				Name:      "cache_hits_total",
				Help:      "Address resolutions served from the cache.",
			}, []string{"chain"}),
			misses: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "neptune",
				Subsystem: "registry",
				Name:      "cache_misses_total",
				Help:      "Address resolutions that required a ledger read.",
			}, []string{"chain"}),
			inFlight: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "neptune",
				Subsystem: "registry",
				Name:      "shared_resolutions_total",
				Help:      "Concurrent resolutions that shared an in-flight ledger read.",
			}, []string{"chain"}),
		}
		prometheus.MustRegister(registryMetrics.hits, registryMetrics.misses, registryMetrics.inFlight)
	})
	return registryMetrics
}

// Hit records a cache hit for the chain.
func (m *RegistryMetrics) Hit(chain string) { m.hits.WithLabelValues(chain).Inc() }

// Miss records a resolution that went to the ledger.
func (m *RegistryMetrics) Miss(chain string) { m.misses.WithLabelValues(chain).Inc() }

// Shared records a resolution that piggybacked on an in-flight read.
func (m *RegistryMetrics) Shared(chain string) { m.inFlight.WithLabelValues(chain).Inc() }

// Pipeline returns the lazily-initialised submission metrics.
func Pipeline() *PipelineMetrics {
	pipelineOnce.Do(func() {
		pipelineMetrics = &PipelineMetrics{
			submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "neptune",
				Subsystem: "pipeline",
				Name:      "submissions_total",
				Help:      "Record submissions segmented by operation and outcome.",
			}, []string{"operation", "outcome"}),
		}
		prometheus.MustRegister(pipelineMetrics.submissions)
	})
	return pipelineMetrics
}

// Observe records one submission outcome.
func (m *PipelineMetrics) Observe(operation, outcome string) {
	m.submissions.WithLabelValues(operation, outcome).Inc()
}

// Content returns the lazily-initialised content store metrics.
func Content() *ContentMetrics {
	contentOnce.Do(func() {
		contentMetrics = &ContentMetrics{
			writes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "neptune",
				Subsystem: "content",
				Name:      "writes_total",
				Help:      "Off-chain content writes segmented by outcome.",
			}, []string{"outcome"}),
			reads: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "neptune",
				Subsystem: "content",
				Name:      "reads_total",
				Help:      "Off-chain content reads segmented by outcome.",
			}, []string{"outcome"}),
		}
		prometheus.MustRegister(contentMetrics.writes, contentMetrics.reads)
	})
	return contentMetrics
}

// Write records one content store write outcome.
func (m *ContentMetrics) Write(outcome string) { m.writes.WithLabelValues(outcome).Inc() }

// Read records one content store read outcome.
func (m *ContentMetrics) Read(outcome string) { m.reads.WithLabelValues(outcome).Inc() }
