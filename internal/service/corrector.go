package service

import (
	"time"

	"shopwarden/internal/domain"
	"shopwarden/internal/event"
	"shopwarden/internal/infra"
)

// Corrector clamps out-of-bound offers on one shop. It is pure with
// respect to scheduling: the sweeper decides when and under which guard
// it runs. Each clamped offer produces a correction event for the
// recorder and a synchronous listener notification on the shop.
type Corrector struct {
	inbox   chan<- event.Event
	metrics *infra.Metrics
}

// NewCorrector creates a corrector emitting into the recorder inbox.
// The inbox may be nil for library use; events are then skipped.
func NewCorrector(inbox chan<- event.Event) *Corrector {
	return &Corrector{inbox: inbox, metrics: infra.GlobalMetrics}
}

// Correct enforces one bound direction over the relevant categories of a
// shop and reports whether any offer changed. Offers with a missing
// stack or item are skipped; items absent from the table are unbounded.
// Comparison and clamp are exact decimal operations.
func (c *Corrector) Correct(cycleID string, dir domain.Direction, tables *domain.LimitTables, shop *domain.Shop) bool {
	if tables == nil || shop == nil {
		return false
	}

	table := tables.Table(dir)
	changed := false

	for _, cat := range shop.Categories(dir) {
		if cat == nil {
			continue
		}
		for _, offer := range cat.Offers {
			if offer == nil || offer.Stack == nil || offer.Stack.Item == nil {
				continue
			}

			limit, ok := table[offer.Stack.Item.ID]
			if !ok {
				continue
			}

			violated := false
			if dir == domain.DirectionSellFloor {
				violated = offer.Price.LessThan(limit)
			} else {
				violated = offer.Price.GreaterThan(limit)
			}
			if !violated {
				continue
			}

			old := offer.Price
			offer.Price = limit
			changed = true

			c.metrics.RecordCorrection()
			correction := domain.Correction{
				Category: cat.Name,
				OfferID:  offer.ID,
				ItemID:   offer.Stack.Item.ID,
				Side:     dir,
				OldPrice: old,
				NewPrice: limit,
			}
			c.emit(cycleID, shop, correction)
			shop.OfferCorrected(correction)
		}
	}

	return changed
}

// emit sends a correction event without blocking the sweep. A full inbox
// drops the event and counts the drop; the audit trail is best-effort.
func (c *Corrector) emit(cycleID string, shop *domain.Shop, corr domain.Correction) {
	if c.inbox == nil {
		return
	}

	ev := event.AcquireCorrectionEvent()
	ev.Seq = event.NextSeq()
	ev.Ts = time.Now().UnixMilli()
	ev.CycleID = cycleID
	ev.ControllerID = shop.ControllerID
	ev.ShopName = shop.Name
	ev.Category = corr.Category
	ev.OfferID = corr.OfferID
	ev.ItemID = corr.ItemID
	ev.Side = corr.Side.String()
	ev.OldPrice = corr.OldPrice.String()
	ev.NewPrice = corr.NewPrice.String()

	select {
	case c.inbox <- ev:
	default:
		event.ReleaseCorrectionEvent(ev)
		c.metrics.RecordDroppedEvent()
	}
}
