package admin

import (
	"shopwarden/internal/infra"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsCollector exports the process-local atomic metrics in
// Prometheus format without double bookkeeping: every scrape takes a
// snapshot and converts it.
type metricsCollector struct {
	metrics *infra.Metrics

	sweepCycles     *prometheus.Desc
	offersCorrected *prometheus.Desc
	shopsSkipped    *prometheus.Desc
	cycleFailures   *prometheus.Desc
	droppedEvents   *prometheus.Desc
	avgCycleSeconds *prometheus.Desc
	wsClients       *prometheus.Desc
	degraded        *prometheus.Desc
}

func newMetricsCollector(m *infra.Metrics) *metricsCollector {
	return &metricsCollector{
		metrics: m,
		sweepCycles: prometheus.NewDesc("shopwarden_sweep_cycles_total",
			"Completed sweep cycles", nil, nil),
		offersCorrected: prometheus.NewDesc("shopwarden_offers_corrected_total",
			"Offers clamped to a price limit", nil, nil),
		shopsSkipped: prometheus.NewDesc("shopwarden_shops_skipped_total",
			"Shops skipped by the recursion guard", nil, nil),
		cycleFailures: prometheus.NewDesc("shopwarden_cycle_failures_total",
			"Recovered sweep cycle failures", nil, nil),
		droppedEvents: prometheus.NewDesc("shopwarden_dropped_events_total",
			"Events dropped on a full inbox or hub buffer", nil, nil),
		avgCycleSeconds: prometheus.NewDesc("shopwarden_avg_cycle_seconds",
			"Average sweep cycle duration", nil, nil),
		wsClients: prometheus.NewDesc("shopwarden_ws_clients",
			"Connected admin WebSocket clients", nil, nil),
		degraded: prometheus.NewDesc("shopwarden_degraded",
			"1 while the hourly fallback interval is active", nil, nil),
	}
}

func (c *metricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.sweepCycles
	ch <- c.offersCorrected
	ch <- c.shopsSkipped
	ch <- c.cycleFailures
	ch <- c.droppedEvents
	ch <- c.avgCycleSeconds
	ch <- c.wsClients
	ch <- c.degraded
}

func (c *metricsCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.metrics.Snapshot()

	ch <- prometheus.MustNewConstMetric(c.sweepCycles, prometheus.CounterValue, float64(snap.SweepCycles))
	ch <- prometheus.MustNewConstMetric(c.offersCorrected, prometheus.CounterValue, float64(snap.OffersCorrected))
	ch <- prometheus.MustNewConstMetric(c.shopsSkipped, prometheus.CounterValue, float64(snap.ShopsSkipped))
	ch <- prometheus.MustNewConstMetric(c.cycleFailures, prometheus.CounterValue, float64(snap.CycleFailures))
	ch <- prometheus.MustNewConstMetric(c.droppedEvents, prometheus.CounterValue, float64(snap.DroppedEvents))
	ch <- prometheus.MustNewConstMetric(c.avgCycleSeconds, prometheus.GaugeValue, float64(snap.AvgCycleNs)/1e9)
	ch <- prometheus.MustNewConstMetric(c.wsClients, prometheus.GaugeValue, float64(snap.WSClients))

	degraded := 0.0
	if snap.Degraded {
		degraded = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.degraded, prometheus.GaugeValue, degraded)
}
