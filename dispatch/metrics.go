package dispatch

import "github.com/prometheus/client_golang/prometheus"

// scanReason labels why a scanned entry did or did not yield.
type scanReason string

const (
	reasonTotal        scanReason = "total"
	reasonExpired      scanReason = "expired"
	reasonNoQueue      scanReason = "no_queue_number"
	reasonHashMismatch scanReason = "hash_mismatch"
	reasonCacheLookup  scanReason = "cache_taken"
	reasonRealMismatch scanReason = "real_mismatch"
	reasonYielded      scanReason = "yielded"
	reasonBroken       scanReason = "broken"
)

// Metrics holds the Prometheus counters the dispatcher updates once per
// scan, matching the per-reason tally spec.md §4.3 requires in the
// end-of-scan log line.
type Metrics struct {
	ScanEntries *prometheus.CounterVec
	ScanBudget  prometheus.Histogram
}

// NewMetrics registers a fresh counter set with reg. Pass
// prometheus.NewRegistry() in tests to avoid collisions with the global
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ScanEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swarmq",
			Subsystem: "dispatch",
			Name:      "scan_entries_total",
			Help:      "Ready-queue entries examined during YieldCandidates scans, by outcome.",
		}, []string{"reason"}),
		ScanBudget: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "swarmq",
			Subsystem: "dispatch",
			Name:      "scan_duration_seconds",
			Help:      "Wall-clock duration of YieldCandidates scans.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.ScanEntries, m.ScanBudget)
	return m
}

type scanCounters struct {
	total, expired, noQueue, hashMismatch, cacheLookup, realMismatch, yielded, broken int
}

func (c *scanCounters) record(m *Metrics) {
	if m == nil {
		return
	}
	m.ScanEntries.WithLabelValues(string(reasonTotal)).Add(float64(c.total))
	m.ScanEntries.WithLabelValues(string(reasonExpired)).Add(float64(c.expired))
	m.ScanEntries.WithLabelValues(string(reasonNoQueue)).Add(float64(c.noQueue))
	m.ScanEntries.WithLabelValues(string(reasonHashMismatch)).Add(float64(c.hashMismatch))
	m.ScanEntries.WithLabelValues(string(reasonCacheLookup)).Add(float64(c.cacheLookup))
	m.ScanEntries.WithLabelValues(string(reasonRealMismatch)).Add(float64(c.realMismatch))
	m.ScanEntries.WithLabelValues(string(reasonYielded)).Add(float64(c.yielded))
	m.ScanEntries.WithLabelValues(string(reasonBroken)).Add(float64(c.broken))
}
