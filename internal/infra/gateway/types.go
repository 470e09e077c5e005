package gateway

import (
	"github.com/shopspring/decimal"

	"shopwarden/internal/domain"
)

// Inbound wire types. The world server pushes full shop snapshots; the
// warden never edits a mirrored shop incrementally.
type offerPayload struct {
	ID       string          `json:"id"`
	ItemID   string          `json:"item_id"`
	ItemName string          `json:"item_name"`
	Count    int             `json:"count"`
	Price    decimal.Decimal `json:"price"`
}

type categoryPayload struct {
	Name   string         `json:"name"`
	Offers []offerPayload `json:"offers"`
}

type shopPayload struct {
	ControllerID string            `json:"controller_id"`
	Name         string            `json:"name"`
	Sell         []categoryPayload `json:"sell"`
	Buy          []categoryPayload `json:"buy"`
}

type inboundMessage struct {
	Type         string       `json:"type"` // shop_snapshot | shop_removed
	Shop         *shopPayload `json:"shop,omitempty"`
	ControllerID string       `json:"controller_id,omitempty"`
}

type subscribeMessage struct {
	Type  string `json:"type"`
	Token string `json:"token,omitempty"`
}

type setPriceCommand struct {
	Type         string `json:"type"`
	ControllerID string `json:"controller_id"`
	OfferID      string `json:"offer_id"`
	Price        string `json:"price"`
}

func buildSetPrice(shop *domain.Shop, c domain.Correction) setPriceCommand {
	return setPriceCommand{
		Type:         "set_price",
		ControllerID: shop.ControllerID,
		OfferID:      c.OfferID,
		Price:        c.NewPrice.String(),
	}
}

func materializeCategories(payloads []categoryPayload) []*domain.OfferCategory {
	cats := make([]*domain.OfferCategory, 0, len(payloads))
	for _, cp := range payloads {
		cat := &domain.OfferCategory{Name: cp.Name, Offers: make([]*domain.Offer, 0, len(cp.Offers))}
		for _, op := range cp.Offers {
			offer := &domain.Offer{ID: op.ID, Price: op.Price}
			// Incomplete world data stays nil-shaped; correction skips it.
			if op.ItemID != "" {
				offer.Stack = &domain.ItemStack{
					Item:  &domain.Item{ID: op.ItemID, Name: op.ItemName},
					Count: op.Count,
				}
			}
			cat.Offers = append(cat.Offers, offer)
		}
		cats = append(cats, cat)
	}
	return cats
}

func materializeShop(p *shopPayload) *domain.Shop {
	shop := &domain.Shop{
		ControllerID: p.ControllerID,
		Name:         p.Name,
		Sell:         materializeCategories(p.Sell),
		Buy:          materializeCategories(p.Buy),
	}
	shop.RefreshStock()
	return shop
}
