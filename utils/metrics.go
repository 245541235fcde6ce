package utils

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes crawl counters on a private Prometheus registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	pages         *prometheus.CounterVec
	recordsParsed prometheus.Counter
	recordsSkip   prometheus.Counter
	crawlSeconds  prometheus.Histogram
}

// NewMetrics registers the crawl collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hackermove",
			Name:      "pages_total",
			Help:      "Result pages processed, by outcome.",
		}, []string{"outcome"}),
		recordsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hackermove",
			Name:      "records_parsed_total",
			Help:      "Listing records parsed successfully.",
		}),
		recordsSkip: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hackermove",
			Name:      "records_skipped_total",
			Help:      "Listing records skipped because a required field was missing.",
		}),
		crawlSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hackermove",
			Name:      "crawl_duration_seconds",
			Help:      "Wall time of a full paginated crawl.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
	}
	m.Registry.MustRegister(m.pages, m.recordsParsed, m.recordsSkip, m.crawlSeconds)
	return m
}

// ObservePage counts one processed page. outcome is "ok", "fetch_error" or
// "extract_error".
func (m *Metrics) ObservePage(outcome string) {
	if m == nil {
		return
	}
	m.pages.WithLabelValues(outcome).Inc()
}

// ObserveRecords counts parsed and skipped records for one page.
func (m *Metrics) ObserveRecords(parsed, skipped int) {
	if m == nil {
		return
	}
	m.recordsParsed.Add(float64(parsed))
	m.recordsSkip.Add(float64(skipped))
}

// ObserveCrawl records the duration of a crawl.
func (m *Metrics) ObserveCrawl(d time.Duration) {
	if m == nil {
		return
	}
	m.crawlSeconds.Observe(d.Seconds())
}
