package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety. The admin package additionally
// exports a snapshot of these values in Prometheus format.
type Metrics struct {
	// Counters
	sweepCycles     atomic.Uint64
	offersCorrected atomic.Uint64
	shopsSkipped    atomic.Uint64
	cycleFailures   atomic.Uint64
	droppedEvents   atomic.Uint64

	// Cycle duration tracking
	cycleSumNs atomic.Int64
	cycleCount atomic.Uint64

	// Gauges
	wsClients atomic.Int32
	degraded  atomic.Int32 // 1 = degraded, 0 = healthy
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordCycle records a completed sweep cycle with its duration.
func (m *Metrics) RecordCycle(durationNs int64) {
	m.sweepCycles.Add(1)
	m.cycleSumNs.Add(durationNs)
	m.cycleCount.Add(1)
}

// RecordCorrection records one clamped offer.
func (m *Metrics) RecordCorrection() {
	m.offersCorrected.Add(1)
}

// RecordSkippedShop records a shop skipped by the recursion guard.
func (m *Metrics) RecordSkippedShop() {
	m.shopsSkipped.Add(1)
}

// RecordCycleFailure records a recovered sweep cycle failure.
func (m *Metrics) RecordCycleFailure() {
	m.cycleFailures.Add(1)
}

// RecordDroppedEvent records an event dropped on a full recorder inbox.
func (m *Metrics) RecordDroppedEvent() {
	m.droppedEvents.Add(1)
}

// IncrementWSClients increments connected admin WebSocket clients by 1.
func (m *Metrics) IncrementWSClients() {
	m.wsClients.Add(1)
}

// DecrementWSClients decrements connected admin WebSocket clients by 1.
func (m *Metrics) DecrementWSClients() {
	m.wsClients.Add(-1)
}

// SetDegraded sets the sweep degradation state (true = hourly fallback).
func (m *Metrics) SetDegraded(degraded bool) {
	if degraded {
		m.degraded.Store(1)
	} else {
		m.degraded.Store(0)
	}
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	SweepCycles     uint64    `json:"sweep_cycles"`
	OffersCorrected uint64    `json:"offers_corrected"`
	ShopsSkipped    uint64    `json:"shops_skipped"`
	CycleFailures   uint64    `json:"cycle_failures"`
	DroppedEvents   uint64    `json:"dropped_events"`
	AvgCycleNs      int64     `json:"avg_cycle_ns"`
	WSClients       int32     `json:"ws_clients"`
	Degraded        bool      `json:"degraded"`
	Timestamp       time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgCycle int64
	count := m.cycleCount.Load()
	if count > 0 {
		avgCycle = m.cycleSumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		SweepCycles:     m.sweepCycles.Load(),
		OffersCorrected: m.offersCorrected.Load(),
		ShopsSkipped:    m.shopsSkipped.Load(),
		CycleFailures:   m.cycleFailures.Load(),
		DroppedEvents:   m.droppedEvents.Load(),
		AvgCycleNs:      avgCycle,
		WSClients:       m.wsClients.Load(),
		Degraded:        m.degraded.Load() == 1,
		Timestamp:       time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.sweepCycles.Store(0)
	m.offersCorrected.Store(0)
	m.shopsSkipped.Store(0)
	m.cycleFailures.Store(0)
	m.droppedEvents.Store(0)
	m.cycleSumNs.Store(0)
	m.cycleCount.Store(0)
	m.wsClients.Store(0)
	m.degraded.Store(0)
}
