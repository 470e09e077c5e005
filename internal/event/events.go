package event

import "sync/atomic"

// Event is the unit the recorder drains from the sweep inbox.
type Event interface {
	GetSeq() uint64
	GetType() string
}

// BaseEvent carries the fields shared by all events.
type BaseEvent struct {
	Seq uint64 `json:"seq"`
	Ts  int64  `json:"ts"` // unix milliseconds
}

func (e *BaseEvent) GetSeq() uint64 { return e.Seq }

var seqCounter atomic.Uint64

// NextSeq returns the next monotonic event sequence number. Shared by
// every emitter so the recorder sees a single ordered stream.
func NextSeq() uint64 {
	return seqCounter.Add(1)
}

// Wire type tags, also present in the broadcast JSON so feed consumers
// can dispatch without probing fields.
const (
	TypeCorrection = "correction"
	TypeSweep      = "sweep"
)

// CorrectionEvent is emitted once per clamped offer.
type CorrectionEvent struct {
	BaseEvent
	Type         string `json:"type"`
	CycleID      string `json:"cycle_id"`
	ControllerID string `json:"controller_id"`
	ShopName     string `json:"shop_name"`
	Category     string `json:"category"`
	OfferID      string `json:"offer_id"`
	ItemID       string `json:"item_id"`
	Side         string `json:"side"` // "sell_floor" or "buy_ceiling"
	OldPrice     string `json:"old_price"`
	NewPrice     string `json:"new_price"`
}

func (e *CorrectionEvent) GetType() string { return TypeCorrection }

// SweepEvent summarizes one completed sweep cycle.
type SweepEvent struct {
	BaseEvent
	Type            string `json:"type"`
	CycleID         string `json:"cycle_id"`
	Shops           int    `json:"shops"`
	Skipped         int    `json:"skipped"`
	ChangedShops    int    `json:"changed_shops"`
	CorrectedOffers int    `json:"corrected_offers"`
	DurationMS      int64  `json:"duration_ms"`
	Degraded        bool   `json:"degraded"`
}

func (e *SweepEvent) GetType() string { return TypeSweep }

// Broadcaster pushes recorded events to live observers (the admin hub).
type Broadcaster interface {
	BroadcastJSON(v any)
}
