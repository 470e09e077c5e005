package engine

import (
	"context"
	"testing"
	"time"

	"shopwarden/internal/domain"
	"shopwarden/internal/infra"
	"shopwarden/internal/service"

	"github.com/shopspring/decimal"
)

func testLimits(t *testing.T, floors map[string]int64) *service.LimitService {
	t.Helper()
	limits := service.NewLimitService(nil)

	catalog := make([]string, 0, len(floors))
	for id := range floors {
		catalog = append(catalog, id)
	}
	limits.Reconcile(catalog)
	for id, floor := range floors {
		if err := limits.SetFloor(id, decimal.NewFromInt(floor)); err != nil {
			t.Fatalf("SetFloor failed: %v", err)
		}
	}
	return limits
}

func testShop(controllerID string, prices ...int64) *domain.Shop {
	offers := make([]*domain.Offer, len(prices))
	for i, p := range prices {
		offers[i] = &domain.Offer{
			ID:    controllerID + "-of-" + string(rune('a'+i)),
			Stack: &domain.ItemStack{Item: &domain.Item{ID: "wood"}, Count: 8},
			Price: decimal.NewFromInt(p),
		}
	}
	return &domain.Shop{
		ControllerID: controllerID,
		Name:         "Shop " + controllerID,
		Sell:         []*domain.OfferCategory{{Name: "Goods", Offers: offers}},
	}
}

func newTestSweeper(t *testing.T, limits *service.LimitService, shops ...*domain.Shop) (*Sweeper, *service.Registry) {
	t.Helper()
	infra.GlobalMetrics.Reset()
	t.Cleanup(infra.GlobalMetrics.Reset)

	registry := service.NewRegistry()
	for _, shop := range shops {
		registry.Put(shop)
	}
	s := NewSweeper(registry, limits, service.NewCorrector(nil), nil)
	s.dumpDir = t.TempDir()
	return s, registry
}

func TestSweeper_CycleClampsAndRefreshes(t *testing.T) {
	limits := testLimits(t, map[string]int64{"wood": 10})
	shop := testShop("ctl-1", 5, 12, 3)
	s, _ := newTestSweeper(t, limits, shop)

	s.runCycle(context.Background())

	floor := decimal.NewFromInt(10)
	for _, of := range shop.Sell[0].Offers {
		if of.Price.LessThan(floor) {
			t.Errorf("offer %s below floor after cycle: %v", of.ID, of.Price)
		}
	}
	// Derived state was refreshed for the changed shop.
	if shop.Availability["wood"] != 24 {
		t.Errorf("availability = %v, want wood=24", shop.Availability)
	}

	snap := infra.GlobalMetrics.Snapshot()
	if snap.SweepCycles != 1 {
		t.Errorf("sweep cycles = %d, want 1", snap.SweepCycles)
	}
	if snap.OffersCorrected != 2 {
		t.Errorf("offers corrected = %d, want 2", snap.OffersCorrected)
	}
}

func TestSweeper_NoChangeNoRefresh(t *testing.T) {
	limits := testLimits(t, map[string]int64{"wood": 10})
	shop := testShop("ctl-1", 12)
	s, _ := newTestSweeper(t, limits, shop)

	s.runCycle(context.Background())

	if shop.Availability != nil {
		t.Error("refresh hook fired although nothing changed")
	}
}

func TestSweeper_ReentrantListenerRefused(t *testing.T) {
	limits := testLimits(t, map[string]int64{"wood": 10})
	same := testShop("ctl-1", 5)
	other := testShop("ctl-2", 12)
	s, _ := newTestSweeper(t, limits, same, other)

	var nestedSame, nestedOther []bool
	same.AddListener(domain.OfferListenerFunc(func(shop *domain.Shop, c domain.Correction) {
		// Synchronous callback re-triggering correction of the same shop
		// must be refused; a different shop is unaffected.
		nestedSame = append(nestedSame, s.CorrectShop(shop))
		nestedOther = append(nestedOther, s.CorrectShop(other))
	}))

	s.runCycle(context.Background())

	if len(nestedSame) != 1 {
		t.Fatalf("expected 1 listener invocation, got %d", len(nestedSame))
	}
	if nestedSame[0] {
		t.Error("nested correction of the same shop must report no change")
	}
	if !same.Sell[0].Offers[0].Price.Equal(decimal.NewFromInt(10)) {
		t.Errorf("outer clamp lost: %v", same.Sell[0].Offers[0].Price)
	}

	snap := infra.GlobalMetrics.Snapshot()
	if snap.ShopsSkipped == 0 {
		t.Error("expected the nested attempt to count as a skipped shop")
	}
}

func TestSweeper_PanicDegradesAndRecovers(t *testing.T) {
	limits := testLimits(t, map[string]int64{"wood": 10})
	shop := testShop("ctl-1", 5)
	s, registry := newTestSweeper(t, limits, shop)

	if FallbackInterval != 3600*time.Second {
		t.Fatalf("fallback interval = %v, want 3600s", FallbackInterval)
	}

	poison := domain.OfferListenerFunc(func(*domain.Shop, domain.Correction) {
		panic("listener exploded")
	})
	shop.AddListener(poison)

	s.runCycle(context.Background())

	if !s.isDegraded() {
		t.Error("cycle failure must degrade the sweeper")
	}
	if s.Status() != "Degraded: hourly fallback active." {
		t.Errorf("status = %q", s.Status())
	}
	if _, held := s.guard.Holding(); held {
		t.Error("guard slot must be released after a panic")
	}
	if infra.GlobalMetrics.Snapshot().CycleFailures != 1 {
		t.Error("cycle failure not recorded")
	}

	// Replace the shop with a healthy one: the next clean cycle clears
	// degradation and the loop keeps going.
	registry.Put(testShop("ctl-1", 5))
	s.runCycle(context.Background())

	if s.isDegraded() {
		t.Error("clean cycle must clear degradation")
	}
	if s.Status() != "Ready." {
		t.Errorf("status = %q, want Ready.", s.Status())
	}
}

// brokenRegistry panics on every access, modeling a store left in an
// invalid state. The failure persists across cycles, so the recovery
// path itself must not touch it again.
type brokenRegistry struct{}

func (brokenRegistry) All() []*domain.Shop             { panic("registry in invalid state") }
func (brokenRegistry) Get(string) (*domain.Shop, bool) { panic("registry in invalid state") }

func TestSweeper_BrokenRegistryContained(t *testing.T) {
	limits := testLimits(t, map[string]int64{"wood": 10})
	infra.GlobalMetrics.Reset()
	t.Cleanup(infra.GlobalMetrics.Reset)

	s := NewSweeper(brokenRegistry{}, limits, service.NewCorrector(nil), nil)
	s.dumpDir = t.TempDir()

	// The panic fires in registry.All() itself; recovery must not call
	// back into the registry, or the second panic would escape the
	// cycle and kill the loop goroutine.
	s.runCycle(context.Background())

	if !s.isDegraded() {
		t.Error("broken registry must degrade the sweeper")
	}
	if infra.GlobalMetrics.Snapshot().CycleFailures != 1 {
		t.Error("cycle failure not recorded")
	}

	// The condition is persistent; every following cycle must stay
	// contained the same way.
	s.runCycle(context.Background())
	if infra.GlobalMetrics.Snapshot().CycleFailures != 2 {
		t.Error("second failure not recorded")
	}
}

func TestSweeper_StartStop(t *testing.T) {
	limits := testLimits(t, map[string]int64{"wood": 10})
	if err := limits.SetTickInterval(time.Hour); err != nil {
		t.Fatalf("SetTickInterval failed: %v", err)
	}
	s, _ := newTestSweeper(t, limits, testShop("ctl-1", 5))

	if s.Status() != "Idle." {
		t.Errorf("status before start = %q, want Idle.", s.Status())
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Cancellation during the hour-long sleep must return promptly.
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while sweeper was sleeping")
	}

	if s.Status() != "Stopped." {
		t.Errorf("status after stop = %q, want Stopped.", s.Status())
	}
}

func TestSweeper_FreshTablesEachCycle(t *testing.T) {
	limits := testLimits(t, map[string]int64{"wood": 10})
	shop := testShop("ctl-1", 5)
	s, _ := newTestSweeper(t, limits, shop)

	s.runCycle(context.Background())

	// Operator tightens the floor between cycles; the next cycle must
	// see the new snapshot without any sweeper-side rebuild.
	if err := limits.SetFloor("wood", decimal.NewFromInt(20)); err != nil {
		t.Fatalf("SetFloor failed: %v", err)
	}
	s.runCycle(context.Background())

	if !shop.Sell[0].Offers[0].Price.Equal(decimal.NewFromInt(20)) {
		t.Errorf("price = %v, want 20 after config edit", shop.Sell[0].Offers[0].Price)
	}
}
