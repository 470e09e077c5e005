package domain

import (
	"github.com/shopspring/decimal"
)

// Item is a catalog entry referenced by offers.
type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ItemStack is a counted stack of one item. The item reference may be nil
// for incomplete world data; such stacks are skipped by correction.
type ItemStack struct {
	Item  *Item `json:"item"`
	Count int   `json:"count"`
}

// Offer is a priced stack listed in a shop category. Price is the only
// field the warden mutates.
type Offer struct {
	ID    string          `json:"id"`
	Stack *ItemStack      `json:"stack"`
	Price decimal.Decimal `json:"price"`
}

// OfferCategory groups offers under a shop tab ("Blocks", "Ores", ...).
type OfferCategory struct {
	Name   string   `json:"name"`
	Offers []*Offer `json:"offers"`
}

// Correction describes one clamped offer, passed to shop listeners.
type Correction struct {
	Category string
	OfferID  string
	ItemID   string
	Side     Direction
	OldPrice decimal.Decimal
	NewPrice decimal.Decimal
}

// OfferListener observes individual price corrections on a shop.
// Listeners run synchronously on the sweep goroutine; a listener that
// re-triggers correction of the same shop is refused by the sweep guard.
type OfferListener interface {
	OfferCorrected(shop *Shop, c Correction)
}

// OfferListenerFunc adapts a function to the OfferListener interface.
type OfferListenerFunc func(shop *Shop, c Correction)

func (f OfferListenerFunc) OfferCorrected(shop *Shop, c Correction) { f(shop, c) }

// StockRefresher is the derived-state capability a shop exposes to the
// sweeper: recompute whatever depends on offer prices (stock display,
// availability) after a correction pass changed the shop.
type StockRefresher interface {
	RefreshStock()
}

// Shop is one automated store: its controller identity, its categorized
// sell and buy offers, and the listeners interested in corrections.
// A shop is mutated only by the sweep goroutine once published to the
// registry; gateway updates replace the whole value instead of editing it.
type Shop struct {
	ControllerID string           `json:"controller_id"`
	Name         string           `json:"name"`
	Sell         []*OfferCategory `json:"sell"`
	Buy          []*OfferCategory `json:"buy"`

	listeners []OfferListener

	// Availability is derived state: sellable stack count per item id.
	// Rebuilt by RefreshStock after a pass changed any offer.
	Availability map[string]int `json:"availability,omitempty"`
}

// Categories returns the category slice relevant to one correction direction.
func (s *Shop) Categories(dir Direction) []*OfferCategory {
	if dir == DirectionSellFloor {
		return s.Sell
	}
	return s.Buy
}

// AddListener registers a correction listener. Not safe to call while a
// sweep of this shop is in progress.
func (s *Shop) AddListener(l OfferListener) {
	s.listeners = append(s.listeners, l)
}

// OfferCorrected notifies all listeners of one clamped offer, synchronously
// and in registration order.
func (s *Shop) OfferCorrected(c Correction) {
	for _, l := range s.listeners {
		l.OfferCorrected(s, c)
	}
}

// RefreshStock recomputes the per-item availability from the sell
// categories. The sweeper calls this once per changed shop, not per offer.
func (s *Shop) RefreshStock() {
	avail := make(map[string]int)
	for _, cat := range s.Sell {
		for _, offer := range cat.Offers {
			if offer == nil || offer.Stack == nil || offer.Stack.Item == nil {
				continue
			}
			avail[offer.Stack.Item.ID] += offer.Stack.Count
		}
	}
	s.Availability = avail
}
