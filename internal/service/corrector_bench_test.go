package service

import (
	"testing"

	"shopwarden/internal/domain"

	"github.com/shopspring/decimal"
)

// BenchmarkCorrector_Correct measures one full sell-floor pass over a
// large shop. This is the per-shop cost a sweep cycle pays.
func BenchmarkCorrector_Correct(b *testing.B) {
	c := NewCorrector(nil)

	offers := make([]*domain.Offer, 1000)
	for i := range offers {
		offers[i] = &domain.Offer{
			ID:    "of",
			Stack: &domain.ItemStack{Item: &domain.Item{ID: "wood"}, Count: 1},
			Price: decimal.NewFromInt(int64(i)),
		}
	}
	shop := &domain.Shop{
		ControllerID: "ctl-1",
		Sell:         []*domain.OfferCategory{{Name: "Goods", Offers: offers}},
	}
	tables := domain.BuildLimitTables(
		[]domain.ItemPriceLimit{{ItemID: "wood", Price: decimal.NewFromInt(500)}}, nil)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		c.Correct("bench", domain.DirectionSellFloor, tables, shop)
	}
}
