package service

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"shopwarden/internal/domain"

	"github.com/shopspring/decimal"
)

// DefaultTickInterval is used until the operator configures one.
const DefaultTickInterval = 60 * time.Second

const tickIntervalKey = "tick_interval_sec"

// LimitStore is the persistence the limit service needs: the two lists,
// plus the tick interval in the generic config KV.
type LimitStore interface {
	SaveLimits(sellFloors, buyCeilings []domain.ItemPriceLimit) error
	LoadLimits() (sellFloors, buyCeilings []domain.ItemPriceLimit, err error)
	SaveConfig(key, value string) error
	LoadConfigMap() (map[string]string, error)
}

// LimitService owns the two ordered limit lists, the tick interval and
// the derived lookup tables. Edits go through this service; every edit
// path ends in OnConfigEdited, which rebuilds the tables and persists.
type LimitService struct {
	mu           sync.RWMutex
	sellFloors   []domain.ItemPriceLimit
	buyCeilings  []domain.ItemPriceLimit
	tickInterval time.Duration
	tables       *domain.LimitTables
	catalog      map[string]bool

	store LimitStore
}

// NewLimitService creates a limit service backed by the given store.
// The store may be nil for embedded use; edits then stay in memory.
func NewLimitService(store LimitStore) *LimitService {
	s := &LimitService{
		tickInterval: DefaultTickInterval,
		catalog:      make(map[string]bool),
		store:        store,
	}
	s.tables = domain.BuildLimitTables(nil, nil)
	return s
}

// SetInitialTickInterval seeds the interval before Load, without
// persisting. A persisted operator value still wins.
func (s *LimitService) SetInitialTickInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.mu.Lock()
	s.tickInterval = interval
	s.mu.Unlock()
}

// Load restores the limit lists and tick interval from storage.
func (s *LimitService) Load() error {
	if s.store == nil {
		return nil
	}

	sell, buy, err := s.store.LoadLimits()
	if err != nil {
		return fmt.Errorf("load limits: %w", err)
	}

	cfg, err := s.store.LoadConfigMap()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s.mu.Lock()
	s.sellFloors = sell
	s.buyCeilings = buy
	if v, ok := cfg[tickIntervalKey]; ok {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			s.tickInterval = time.Duration(sec) * time.Second
		}
	}
	s.mu.Unlock()

	s.RebuildCache()
	return nil
}

// RebuildCache recomputes both lookup tables from the current lists and
// swaps the snapshot reference. Readers holding the old snapshot keep a
// consistent view; the next Tables call returns the new one.
func (s *LimitService) RebuildCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = domain.BuildLimitTables(s.sellFloors, s.buyCeilings)
}

// Tables returns the current lookup snapshot. The snapshot may be stale
// relative to list edits until the next RebuildCache.
func (s *LimitService) Tables() *domain.LimitTables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables
}

// Reconcile appends a default, effectively unbounded entry for every
// catalog item missing from a list. Idempotent; callers follow with
// RebuildCache (or use OnConfigEdited).
func (s *LimitService) Reconcile(itemIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog = make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		s.catalog[id] = true
	}

	inSell := make(map[string]bool, len(s.sellFloors))
	for _, l := range s.sellFloors {
		inSell[l.ItemID] = true
	}
	inBuy := make(map[string]bool, len(s.buyCeilings))
	for _, l := range s.buyCeilings {
		inBuy[l.ItemID] = true
	}

	added := 0
	for _, id := range itemIDs {
		if !inSell[id] {
			s.sellFloors = append(s.sellFloors, domain.ItemPriceLimit{ItemID: id, Price: domain.UnboundedFloor})
			added++
		}
		if !inBuy[id] {
			s.buyCeilings = append(s.buyCeilings, domain.ItemPriceLimit{ItemID: id, Price: domain.UnboundedCeiling})
			added++
		}
	}

	if added > 0 {
		slog.Info("Reconciled price limits against catalog",
			slog.Int("items", len(itemIDs)), slog.Int("added", added))
	}
}

// OnConfigEdited rebuilds the lookup tables and persists the lists and
// interval. Every edit surface must call this after changing either list.
func (s *LimitService) OnConfigEdited() error {
	s.RebuildCache()

	if s.store == nil {
		return nil
	}

	s.mu.RLock()
	sell := append([]domain.ItemPriceLimit(nil), s.sellFloors...)
	buy := append([]domain.ItemPriceLimit(nil), s.buyCeilings...)
	interval := s.tickInterval
	s.mu.RUnlock()

	if err := s.store.SaveLimits(sell, buy); err != nil {
		return fmt.Errorf("persist limits: %w", err)
	}
	sec := int(interval / time.Second)
	if err := s.store.SaveConfig(tickIntervalKey, strconv.Itoa(sec)); err != nil {
		return fmt.Errorf("persist interval: %w", err)
	}
	return nil
}

// SetFloor sets the sell floor for a catalog item.
func (s *LimitService) SetFloor(itemID string, price decimal.Decimal) error {
	if err := s.setLimit(&s.sellFloors, itemID, price); err != nil {
		return err
	}
	return s.OnConfigEdited()
}

// SetCeiling sets the buy ceiling for a catalog item.
func (s *LimitService) SetCeiling(itemID string, price decimal.Decimal) error {
	if err := s.setLimit(&s.buyCeilings, itemID, price); err != nil {
		return err
	}
	return s.OnConfigEdited()
}

func (s *LimitService) setLimit(list *[]domain.ItemPriceLimit, itemID string, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.catalog[itemID] {
		return fmt.Errorf("%w: %s", domain.ErrUnknownItem, itemID)
	}

	for i := range *list {
		if (*list)[i].ItemID == itemID {
			(*list)[i].Price = price
			return nil
		}
	}
	*list = append(*list, domain.ItemPriceLimit{ItemID: itemID, Price: price})
	return nil
}

// Clear resets both limits of an item to the unbounded defaults.
func (s *LimitService) Clear(itemID string) error {
	s.mu.Lock()
	if !s.catalog[itemID] {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrUnknownItem, itemID)
	}
	for i := range s.sellFloors {
		if s.sellFloors[i].ItemID == itemID {
			s.sellFloors[i].Price = domain.UnboundedFloor
		}
	}
	for i := range s.buyCeilings {
		if s.buyCeilings[i].ItemID == itemID {
			s.buyCeilings[i].Price = domain.UnboundedCeiling
		}
	}
	s.mu.Unlock()

	return s.OnConfigEdited()
}

// SetTickInterval updates the sweep interval.
func (s *LimitService) SetTickInterval(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}
	s.mu.Lock()
	s.tickInterval = interval
	s.mu.Unlock()

	return s.OnConfigEdited()
}

// TickInterval returns the configured sweep interval.
func (s *LimitService) TickInterval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tickInterval
}

// LimitsFor returns the configured floor and ceiling of one item from
// the current lookup snapshot. Items never reconciled into the lists
// yield ErrLimitNotFound.
func (s *LimitService) LimitsFor(itemID string) (floor, ceiling decimal.Decimal, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	floor, okFloor := s.tables.SellFloors[itemID]
	ceiling, okCeiling := s.tables.BuyCeilings[itemID]
	if !okFloor && !okCeiling {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("%w: %s", domain.ErrLimitNotFound, itemID)
	}
	if !okFloor {
		floor = domain.UnboundedFloor
	}
	if !okCeiling {
		ceiling = domain.UnboundedCeiling
	}
	return floor, ceiling, nil
}

// Lists returns copies of both limit lists in configured order, for the
// admin surface and the CLI.
func (s *LimitService) Lists() (sellFloors, buyCeilings []domain.ItemPriceLimit) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ItemPriceLimit(nil), s.sellFloors...),
		append([]domain.ItemPriceLimit(nil), s.buyCeilings...)
}
