package domain

import "github.com/shopspring/decimal"

// Direction selects which bound a correction pass enforces.
type Direction int

const (
	// DirectionSellFloor raises sell offers priced below their item's floor.
	DirectionSellFloor Direction = iota
	// DirectionBuyCeiling lowers buy offers priced above their item's ceiling.
	DirectionBuyCeiling
)

func (d Direction) String() string {
	if d == DirectionSellFloor {
		return "sell_floor"
	}
	return "buy_ceiling"
}

// Sentinel bounds used for items the operator has not limited yet.
// Reconciliation seeds every catalog item with these so the lists always
// cover the full catalog while leaving prices effectively unbounded.
var (
	UnboundedFloor   = decimal.NewFromInt(-1_000_000_000)
	UnboundedCeiling = decimal.NewFromInt(1_000_000_000)
)

// ItemPriceLimit is one configured bound: the minimum sell price or the
// maximum buy price for a single catalog item.
type ItemPriceLimit struct {
	ItemID string          `json:"item_id" yaml:"item_id"`
	Price  decimal.Decimal `json:"price" yaml:"price"`
}

// LimitTables is an immutable lookup snapshot derived from the two limit
// lists. The limit service builds a fresh value and swaps the reference on
// every rebuild; readers never see a half-built table.
type LimitTables struct {
	SellFloors  map[string]decimal.Decimal
	BuyCeilings map[string]decimal.Decimal
}

// Table returns the mapping for one direction.
func (t *LimitTables) Table(dir Direction) map[string]decimal.Decimal {
	if dir == DirectionSellFloor {
		return t.SellFloors
	}
	return t.BuyCeilings
}

// BuildLimitTables derives the lookup tables from the limit lists.
// Duplicate item ids resolve last-entry-wins, matching list edit order.
func BuildLimitTables(sellFloors, buyCeilings []ItemPriceLimit) *LimitTables {
	tables := &LimitTables{
		SellFloors:  make(map[string]decimal.Decimal, len(sellFloors)),
		BuyCeilings: make(map[string]decimal.Decimal, len(buyCeilings)),
	}
	for _, l := range sellFloors {
		tables.SellFloors[l.ItemID] = l.Price
	}
	for _, l := range buyCeilings {
		tables.BuyCeilings[l.ItemID] = l.Price
	}
	return tables
}
