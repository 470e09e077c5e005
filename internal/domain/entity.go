package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemInfo mirrors a catalog item for the dashboard
type ItemInfo struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Name         string    `json:"name"`
	IconSlug     string    `json:"icon_slug"`
	IconPath     string    `json:"icon_path"`
	LastSyncedAt time.Time `json:"last_synced_at"` // Last icon sync time
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ShopInfo mirrors a known shop for the dashboard. Live offers stay inside
// the registry; only summary counts are persisted.
type ShopInfo struct {
	ControllerID string    `gorm:"primaryKey" json:"controller_id"`
	Name         string    `json:"name"`
	SellOffers   int       `json:"sell_offers"`
	BuyOffers    int       `json:"buy_offers"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PriceLimitRow persists one configured limit. Side is "sell" or "buy";
// Position preserves the list order across restarts.
type PriceLimitRow struct {
	ItemID    string          `gorm:"primaryKey" json:"item_id"`
	Side      string          `gorm:"primaryKey" json:"side"`
	Price     decimal.Decimal `gorm:"type:text" json:"price"`
	Position  int             `json:"position"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AppConfig represents user-specific configuration (Key-Value)
type AppConfig struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CorrectionRecord is one audit row per clamped offer.
type CorrectionRecord struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	CycleID      string          `gorm:"index" json:"cycle_id"`
	ControllerID string          `gorm:"index" json:"controller_id"`
	Category     string          `json:"category"`
	OfferID      string          `json:"offer_id"`
	ItemID       string          `json:"item_id"`
	Side         string          `json:"side"`
	OldPrice     decimal.Decimal `gorm:"type:text" json:"old_price"`
	NewPrice     decimal.Decimal `gorm:"type:text" json:"new_price"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SweepRecord is one audit row per completed sweep cycle.
type SweepRecord struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CycleID         string    `gorm:"index" json:"cycle_id"`
	Shops           int       `json:"shops"`
	Skipped         int       `json:"skipped"`
	ChangedShops    int       `json:"changed_shops"`
	CorrectedOffers int       `json:"corrected_offers"`
	DurationMS      int64     `json:"duration_ms"`
	CreatedAt       time.Time `json:"created_at"`
}
