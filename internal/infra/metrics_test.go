package infra

import (
	"testing"
)

func TestMetrics_RecordCycle(t *testing.T) {
	m := &Metrics{}

	m.RecordCycle(1000)
	m.RecordCycle(2000)
	m.RecordCycle(3000)

	snap := m.Snapshot()

	if snap.SweepCycles != 3 {
		t.Errorf("Expected 3 cycles, got %d", snap.SweepCycles)
	}

	// Average duration: (1000 + 2000 + 3000) / 3 = 2000
	if snap.AvgCycleNs != 2000 {
		t.Errorf("Expected avg cycle 2000, got %d", snap.AvgCycleNs)
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := &Metrics{}

	m.RecordCorrection()
	m.RecordCorrection()
	m.RecordSkippedShop()
	m.RecordCycleFailure()
	m.RecordDroppedEvent()

	snap := m.Snapshot()
	if snap.OffersCorrected != 2 {
		t.Errorf("Expected 2 corrections, got %d", snap.OffersCorrected)
	}
	if snap.ShopsSkipped != 1 {
		t.Errorf("Expected 1 skipped shop, got %d", snap.ShopsSkipped)
	}
	if snap.CycleFailures != 1 {
		t.Errorf("Expected 1 cycle failure, got %d", snap.CycleFailures)
	}
	if snap.DroppedEvents != 1 {
		t.Errorf("Expected 1 dropped event, got %d", snap.DroppedEvents)
	}
}

func TestMetrics_WSClients(t *testing.T) {
	m := &Metrics{}

	m.IncrementWSClients()
	m.IncrementWSClients()
	m.IncrementWSClients()

	snap := m.Snapshot()
	if snap.WSClients != 3 {
		t.Errorf("Expected 3 clients, got %d", snap.WSClients)
	}

	m.DecrementWSClients()
	snap = m.Snapshot()
	if snap.WSClients != 2 {
		t.Errorf("Expected 2 clients, got %d", snap.WSClients)
	}
}

func TestMetrics_Degraded(t *testing.T) {
	m := &Metrics{}

	snap := m.Snapshot()
	if snap.Degraded {
		t.Error("Expected healthy initially")
	}

	m.SetDegraded(true)
	snap = m.Snapshot()
	if !snap.Degraded {
		t.Error("Expected degraded")
	}

	m.SetDegraded(false)
	snap = m.Snapshot()
	if snap.Degraded {
		t.Error("Expected healthy again")
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := &Metrics{}

	m.RecordCycle(1000)
	m.RecordCorrection()
	m.SetDegraded(true)

	m.Reset()
	snap := m.Snapshot()

	if snap.SweepCycles != 0 {
		t.Error("Expected 0 cycles after reset")
	}
	if snap.OffersCorrected != 0 {
		t.Error("Expected 0 corrections after reset")
	}
	if snap.Degraded {
		t.Error("Expected healthy after reset")
	}
}
