package adb

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects counters and latency histograms for container I/O
// operations. A nil *Metrics is valid and every method on it is a no-op,
// so callers that don't care about metrics can pass nil everywhere
// without a branch at each call site.
type Metrics struct {
	BlocksRead    prometheus.Counter
	BlocksWritten prometheus.Counter
	SigVerified   prometheus.Counter
	SigRejected   prometheus.Counter
	DedupHits     prometheus.Counter
	DedupMisses   prometheus.Counter

	// mapLatency tracks wall-clock time spent in Map calls, exposed to
	// the CLI's `stat` subcommand as a latency distribution (value unit:
	// microseconds) rather than through Prometheus, since a one-shot CLI
	// invocation has no scrape loop to export to.
	mapLatency *hdrhistogram.Histogram
}

// NewMetrics registers a fresh set of counters under reg and returns a
// Metrics ready to record container I/O activity.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BlocksRead:    prometheus.NewCounter(prometheus.CounterOpts{Name: "adb_blocks_read_total"}),
		BlocksWritten: prometheus.NewCounter(prometheus.CounterOpts{Name: "adb_blocks_written_total"}),
		SigVerified:   prometheus.NewCounter(prometheus.CounterOpts{Name: "adb_signatures_verified_total"}),
		SigRejected:   prometheus.NewCounter(prometheus.CounterOpts{Name: "adb_signatures_rejected_total"}),
		DedupHits:     prometheus.NewCounter(prometheus.CounterOpts{Name: "adb_dedup_hits_total"}),
		DedupMisses:   prometheus.NewCounter(prometheus.CounterOpts{Name: "adb_dedup_misses_total"}),
		mapLatency:    hdrhistogram.New(1, 10_000_000, 3),
	}
	if reg != nil {
		reg.MustRegister(m.BlocksRead, m.BlocksWritten, m.SigVerified, m.SigRejected, m.DedupHits, m.DedupMisses)
	}
	return m
}

func (m *Metrics) recordBlockRead() {
	if m == nil {
		return
	}
	m.BlocksRead.Inc()
}

func (m *Metrics) recordSigResult(verified bool) {
	if m == nil {
		return
	}
	if verified {
		m.SigVerified.Inc()
	} else {
		m.SigRejected.Inc()
	}
}

func (m *Metrics) recordDedup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.DedupHits.Inc()
	} else {
		m.DedupMisses.Inc()
	}
}

// recordMapLatency records a completed Map call's duration.
func (m *Metrics) recordMapLatency(d time.Duration) {
	if m == nil {
		return
	}
	_ = m.mapLatency.RecordValue(d.Microseconds())
}

// MapLatencyHistogram exposes the recorded Map-call latencies, for the
// CLI's `stat` subcommand to render (e.g. via asciigraph).
func (m *Metrics) MapLatencyHistogram() *hdrhistogram.Histogram {
	if m == nil {
		return nil
	}
	return m.mapLatency
}
