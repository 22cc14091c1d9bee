// Package metrics exposes resolution counters over a Prometheus endpoint.
//
// The recorder is optional: a batch run with metrics disabled passes a nil
// MetricsRecorder down and pays nothing. When enabled, an embedded promhttp
// server serves the registry for the lifetime of the run, which is useful
// when the generator runs as a long scheduled job.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FlyBase/blast-db-configuration/internal/ncbi/genomes"
)

const namespace = "blastdbconf"

// Recorder collects resolution metrics into its own Prometheus registry.
type Recorder struct {
	registry *prometheus.Registry

	resolutions      *prometheus.CounterVec
	duration         prometheus.Histogram
	manifestFailures prometheus.Counter
	organisms        *prometheus.CounterVec
	cacheHits        prometheus.Gauge
	cacheMisses      prometheus.Gauge
	cacheEntries     prometheus.Gauge
	taxonomyLookups  prometheus.Counter

	server *http.Server
}

var _ genomes.MetricsRecorder = (*Recorder)(nil)

// NewRecorder creates a recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Assembly resolutions by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolution_duration_seconds",
			Help:      "Wall time of one assembly resolution.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		manifestFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifest_failures_total",
			Help:      "Checksum manifest fetches that failed and degraded to absence.",
		}),
		organisms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "organisms_total",
			Help:      "Organisms processed by result.",
		}, []string{"result"}),
		cacheHits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "listing_cache_hits",
			Help:      "Listing cache hits for the current run.",
		}),
		cacheMisses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "listing_cache_misses",
			Help:      "Listing cache misses for the current run.",
		}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "listing_cache_entries",
			Help:      "Listings held by the cache.",
		}),
		taxonomyLookups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "taxonomy_lookups_total",
			Help:      "Remote taxonomy lookups performed.",
		}),
	}

	r.registry.MustRegister(
		r.resolutions,
		r.duration,
		r.manifestFailures,
		r.organisms,
		r.cacheHits,
		r.cacheMisses,
		r.cacheEntries,
		r.taxonomyLookups,
	)
	return r
}

// RecordResolution counts one resolution attempt by outcome and observes its
// duration.
func (r *Recorder) RecordResolution(outcome string, d time.Duration) {
	r.resolutions.WithLabelValues(outcome).Inc()
	r.duration.Observe(d.Seconds())
}

// RecordManifestFailure counts a checksum manifest that could not be fetched.
func (r *Recorder) RecordManifestFailure() {
	r.manifestFailures.Inc()
}

// RecordOrganism counts one processed organism: "ok", "empty", or "failed".
func (r *Recorder) RecordOrganism(result string) {
	r.organisms.WithLabelValues(result).Inc()
}

// RecordTaxonomyLookup counts one remote taxonomy query.
func (r *Recorder) RecordTaxonomyLookup() {
	r.taxonomyLookups.Inc()
}

// SetCacheStats publishes the listing cache counters, typically once at the
// end of the run.
func (r *Recorder) SetCacheStats(stats genomes.CacheStats) {
	r.cacheHits.Set(float64(stats.Hits))
	r.cacheMisses.Set(float64(stats.Misses))
	r.cacheEntries.Set(float64(stats.Entries))
}

// Handler returns the scrape handler for the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Start serves the metrics endpoint on listen until Stop is called. It
// returns immediately; serve errors other than a clean shutdown are sent to
// errCh if non-nil.
func (r *Recorder) Start(listen, path string, errCh chan<- error) {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, r.Handler())

	r.server = &http.Server{Addr: listen, Handler: mux}
	go func() {
		err := r.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) && errCh != nil {
			errCh <- err
		}
	}()
}

// Stop shuts the metrics endpoint down, bounded by ctx.
func (r *Recorder) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	return r.server.Shutdown(ctx)
}
