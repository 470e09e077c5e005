package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func stack(itemID string, count int) *ItemStack {
	return &ItemStack{Item: &Item{ID: itemID, Name: itemID}, Count: count}
}

func TestShop_OfferCorrected_NotifiesInOrder(t *testing.T) {
	shop := &Shop{ControllerID: "ctl-1", Name: "General Store"}

	var order []string
	shop.AddListener(OfferListenerFunc(func(s *Shop, c Correction) {
		order = append(order, "first:"+c.OfferID)
	}))
	shop.AddListener(OfferListenerFunc(func(s *Shop, c Correction) {
		order = append(order, "second:"+c.OfferID)
	}))

	shop.OfferCorrected(Correction{OfferID: "of-9"})

	if len(order) != 2 || order[0] != "first:of-9" || order[1] != "second:of-9" {
		t.Errorf("listeners not invoked in registration order: %v", order)
	}
}

func TestShop_RefreshStock(t *testing.T) {
	shop := &Shop{
		ControllerID: "ctl-1",
		Sell: []*OfferCategory{
			{Name: "Blocks", Offers: []*Offer{
				{ID: "a", Stack: stack("wood", 64), Price: decimal.NewFromInt(10)},
				{ID: "b", Stack: stack("wood", 32), Price: decimal.NewFromInt(12)},
				{ID: "c", Stack: stack("stone", 16), Price: decimal.NewFromInt(3)},
			}},
			{Name: "Broken", Offers: []*Offer{
				nil,
				{ID: "d", Stack: nil},
				{ID: "e", Stack: &ItemStack{Item: nil, Count: 5}},
			}},
		},
	}

	shop.RefreshStock()

	if shop.Availability["wood"] != 96 {
		t.Errorf("wood availability = %d, want 96", shop.Availability["wood"])
	}
	if shop.Availability["stone"] != 16 {
		t.Errorf("stone availability = %d, want 16", shop.Availability["stone"])
	}
	if len(shop.Availability) != 2 {
		t.Errorf("expected 2 items, got %d", len(shop.Availability))
	}
}

func TestBuildLimitTables_LastEntryWins(t *testing.T) {
	tables := BuildLimitTables(
		[]ItemPriceLimit{
			{ItemID: "wood", Price: decimal.NewFromInt(5)},
			{ItemID: "wood", Price: decimal.NewFromInt(10)},
		},
		[]ItemPriceLimit{
			{ItemID: "coal", Price: decimal.NewFromInt(50)},
		},
	)

	if !tables.SellFloors["wood"].Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected last entry to win, got %v", tables.SellFloors["wood"])
	}
	if !tables.BuyCeilings["coal"].Equal(decimal.NewFromInt(50)) {
		t.Errorf("coal ceiling = %v, want 50", tables.BuyCeilings["coal"])
	}
	if _, ok := tables.SellFloors["coal"]; ok {
		t.Error("coal should not appear in sell floors")
	}
}

func TestLimitTables_TableByDirection(t *testing.T) {
	tables := BuildLimitTables(
		[]ItemPriceLimit{{ItemID: "wood", Price: decimal.NewFromInt(1)}},
		[]ItemPriceLimit{{ItemID: "coal", Price: decimal.NewFromInt(2)}},
	)

	if _, ok := tables.Table(DirectionSellFloor)["wood"]; !ok {
		t.Error("sell direction should resolve to sell floors")
	}
	if _, ok := tables.Table(DirectionBuyCeiling)["coal"]; !ok {
		t.Error("buy direction should resolve to buy ceilings")
	}
}
