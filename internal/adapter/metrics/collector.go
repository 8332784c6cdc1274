package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vadimbarashkov/shortlink/internal/cache"
	"github.com/vadimbarashkov/shortlink/internal/clicks"
	"github.com/vadimbarashkov/shortlink/internal/ratelimit"
)

type cacheSource interface {
	Stats() cache.Stats
}

type clickSource interface {
	Stats() clicks.Stats
}

type limiterSource interface {
	Stats() ratelimit.Stats
}

// StatsCollector reads the in-process counters of the lookup cache, the
// click recorder and the rate limiter at scrape time.
type StatsCollector struct {
	cache   cacheSource
	clicks  clickSource
	limiter limiterSource

	cacheSize     *prometheus.Desc
	cacheCapacity *prometheus.Desc
	cacheHits     *prometheus.Desc
	cacheMisses   *prometheus.Desc

	clicksEnqueued *prometheus.Desc
	clicksRecorded *prometheus.Desc
	clicksDropped  *prometheus.Desc
	clicksFailed   *prometheus.Desc
	clicksPending  *prometheus.Desc

	rateLimitKeys *prometheus.Desc
}

func NewStatsCollector(namespace string, cache cacheSource, clicks clickSource, limiter limiterSource) *StatsCollector {
	desc := func(subsystem, name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, nil, nil)
	}

	return &StatsCollector{
		cache:   cache,
		clicks:  clicks,
		limiter: limiter,

		cacheSize:     desc("cache", "entries", "Number of entries in the lookup cache."),
		cacheCapacity: desc("cache", "capacity", "Maximum number of entries in the lookup cache."),
		cacheHits:     desc("cache", "hits_total", "Lookup cache hits."),
		cacheMisses:   desc("cache", "misses_total", "Lookup cache misses."),

		clicksEnqueued: desc("clicks", "enqueued_total", "Clicks accepted into the recorder queue."),
		clicksRecorded: desc("clicks", "recorded_total", "Clicks written to storage."),
		clicksDropped:  desc("clicks", "dropped_total", "Clicks dropped because the queue was full."),
		clicksFailed:   desc("clicks", "failed_total", "Clicks whose storage write failed."),
		clicksPending:  desc("clicks", "pending", "Clicks waiting in the recorder queue."),

		rateLimitKeys: desc("rate_limit", "active_keys", "Clients tracked by the rate limiter."),
	}
}

func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cacheSize
	ch <- c.cacheCapacity
	ch <- c.cacheHits
	ch <- c.cacheMisses
	ch <- c.clicksEnqueued
	ch <- c.clicksRecorded
	ch <- c.clicksDropped
	ch <- c.clicksFailed
	ch <- c.clicksPending
	ch <- c.rateLimitKeys
}

func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	cs := c.cache.Stats()
	ch <- prometheus.MustNewConstMetric(c.cacheSize, prometheus.GaugeValue, float64(cs.Size))
	ch <- prometheus.MustNewConstMetric(c.cacheCapacity, prometheus.GaugeValue, float64(cs.Capacity))
	ch <- prometheus.MustNewConstMetric(c.cacheHits, prometheus.CounterValue, float64(cs.TotalHits))
	ch <- prometheus.MustNewConstMetric(c.cacheMisses, prometheus.CounterValue, float64(cs.TotalMisses))

	rs := c.clicks.Stats()
	ch <- prometheus.MustNewConstMetric(c.clicksEnqueued, prometheus.CounterValue, float64(rs.Enqueued))
	ch <- prometheus.MustNewConstMetric(c.clicksRecorded, prometheus.CounterValue, float64(rs.Recorded))
	ch <- prometheus.MustNewConstMetric(c.clicksDropped, prometheus.CounterValue, float64(rs.Dropped))
	ch <- prometheus.MustNewConstMetric(c.clicksFailed, prometheus.CounterValue, float64(rs.Failed))
	ch <- prometheus.MustNewConstMetric(c.clicksPending, prometheus.GaugeValue, float64(rs.Pending))

	ls := c.limiter.Stats()
	ch <- prometheus.MustNewConstMetric(c.rateLimitKeys, prometheus.GaugeValue, float64(ls.ActiveKeys))
}
