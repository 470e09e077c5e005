package event

import (
	"sync"
)

// EventPool provides sync.Pool for high-frequency event allocation.
// A sweep over a large catalog can clamp thousands of offers in one
// cycle; pooling keeps that burst off the GC.
//
// Usage:
//
//	ev := AcquireCorrectionEvent()
//	ev.ItemID = "wood"
//	// ... send to the recorder inbox ...
//	ReleaseCorrectionEvent(ev)  // Return to pool after processing
var correctionPool = sync.Pool{
	New: func() interface{} {
		return &CorrectionEvent{}
	},
}

// AcquireCorrectionEvent gets a CorrectionEvent from the pool.
// The returned event has zero values and must be initialized.
func AcquireCorrectionEvent() *CorrectionEvent {
	ev := correctionPool.Get().(*CorrectionEvent)
	ev.Type = TypeCorrection
	return ev
}

// ReleaseCorrectionEvent returns a CorrectionEvent to the pool.
// The event is reset to zero values before being pooled.
func ReleaseCorrectionEvent(ev *CorrectionEvent) {
	if ev == nil {
		return
	}
	// Reset all fields to zero values
	ev.Seq = 0
	ev.Ts = 0
	ev.Type = ""
	ev.CycleID = ""
	ev.ControllerID = ""
	ev.ShopName = ""
	ev.Category = ""
	ev.OfferID = ""
	ev.ItemID = ""
	ev.Side = ""
	ev.OldPrice = ""
	ev.NewPrice = ""

	correctionPool.Put(ev)
}

// SweepEvent pool
var sweepPool = sync.Pool{
	New: func() interface{} {
		return &SweepEvent{}
	},
}

// AcquireSweepEvent gets a SweepEvent from the pool.
func AcquireSweepEvent() *SweepEvent {
	ev := sweepPool.Get().(*SweepEvent)
	ev.Type = TypeSweep
	return ev
}

// ReleaseSweepEvent returns a SweepEvent to the pool.
func ReleaseSweepEvent(ev *SweepEvent) {
	if ev == nil {
		return
	}
	ev.Seq = 0
	ev.Ts = 0
	ev.Type = ""
	ev.CycleID = ""
	ev.Shops = 0
	ev.Skipped = 0
	ev.ChangedShops = 0
	ev.CorrectedOffers = 0
	ev.DurationMS = 0
	ev.Degraded = false

	sweepPool.Put(ev)
}

// Warmup pre-allocates event objects to reduce GC pressure at startup.
// It acquires and releases a batch of events.
func Warmup() {
	const batchSize = 1000

	corrEvs := make([]*CorrectionEvent, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		corrEvs = append(corrEvs, AcquireCorrectionEvent())
	}
	for _, ev := range corrEvs {
		ReleaseCorrectionEvent(ev)
	}

	sweepEvs := make([]*SweepEvent, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		sweepEvs = append(sweepEvs, AcquireSweepEvent())
	}
	for _, ev := range sweepEvs {
		ReleaseSweepEvent(ev)
	}
}
