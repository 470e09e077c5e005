package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"shopwarden/internal/domain"
	"shopwarden/internal/service"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Fixture shapes mirror the gateway snapshot format so an embedded run
// exercises the same materialization rules as a live one.

type fixtureOffer struct {
	ID       string          `yaml:"id"`
	ItemID   string          `yaml:"item_id"`
	ItemName string          `yaml:"item_name"`
	Count    int             `yaml:"count"`
	Price    decimal.Decimal `yaml:"price"`
}

type fixtureCategory struct {
	Name   string         `yaml:"name"`
	Offers []fixtureOffer `yaml:"offers"`
}

type fixtureShop struct {
	ControllerID string            `yaml:"controller_id"`
	Name         string            `yaml:"name"`
	Sell         []fixtureCategory `yaml:"sell"`
	Buy          []fixtureCategory `yaml:"buy"`
}

type fixtureFile struct {
	Shops []fixtureShop `yaml:"shops"`
}

// LoadShopFixture seeds the registry from a YAML fixture. Used in
// embedded mode, when no gateway URL is configured. Each shop gets a
// logging listener so corrections are visible without a world server.
func (b *Bootstrap) LoadShopFixture(path string, registry *service.Registry) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read shops fixture: %w", err)
	}

	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse shops fixture: %w", err)
	}
	if len(file.Shops) == 0 {
		return fmt.Errorf("shops fixture is empty: %s", path)
	}

	for _, fs := range file.Shops {
		if fs.ControllerID == "" {
			return fmt.Errorf("fixture shop %q has no controller_id", fs.Name)
		}

		shop := &domain.Shop{
			ControllerID: fs.ControllerID,
			Name:         fs.Name,
			Sell:         materializeFixtureCategories(fs.Sell),
			Buy:          materializeFixtureCategories(fs.Buy),
		}
		shop.RefreshStock()
		shop.AddListener(domain.OfferListenerFunc(logCorrection))
		registry.Put(shop)

		if b.Storage != nil {
			info := &domain.ShopInfo{
				ControllerID: shop.ControllerID,
				Name:         shop.Name,
				SellOffers:   countOffers(shop.Sell),
				BuyOffers:    countOffers(shop.Buy),
				UpdatedAt:    time.Now(),
			}
			if err := b.Storage.UpsertShop(info); err != nil {
				slog.Error("Failed to mirror fixture shop",
					slog.String("controller_id", shop.ControllerID), slog.Any("error", err))
			}
		}
	}

	slog.Info("✅ Shop fixture loaded", slog.String("path", path), slog.Int("shops", registry.Len()))
	return nil
}

func materializeFixtureCategories(cats []fixtureCategory) []*domain.OfferCategory {
	out := make([]*domain.OfferCategory, 0, len(cats))
	for _, c := range cats {
		cat := &domain.OfferCategory{Name: c.Name}
		for _, o := range c.Offers {
			offer := &domain.Offer{ID: o.ID, Price: o.Price}
			if o.ItemID != "" {
				offer.Stack = &domain.ItemStack{
					Item:  &domain.Item{ID: o.ItemID, Name: o.ItemName},
					Count: o.Count,
				}
			}
			cat.Offers = append(cat.Offers, offer)
		}
		out = append(out, cat)
	}
	return out
}

func countOffers(cats []*domain.OfferCategory) int {
	n := 0
	for _, c := range cats {
		n += len(c.Offers)
	}
	return n
}

func logCorrection(shop *domain.Shop, c domain.Correction) {
	slog.Info("Offer corrected",
		slog.String("shop", shop.ControllerID),
		slog.String("offer", c.OfferID),
		slog.String("item", c.ItemID),
		slog.String("side", c.Side.String()),
		slog.String("old", c.OldPrice.String()),
		slog.String("new", c.NewPrice.String()))
}
