package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"shopwarden/internal/domain"
	"shopwarden/internal/event"
	"shopwarden/internal/infra"
	"shopwarden/internal/service"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// FallbackInterval is the self-protective sweep interval used after a
// cycle failure, so a persistently failing condition cannot spin the
// process. A later clean cycle restores the configured interval.
const FallbackInterval = time.Hour

// Sweeper is the periodic correction worker. Each cycle it takes a
// fresh limit-table snapshot, enumerates every registered shop and runs
// a guarded correction pass per shop, then sleeps for the configured
// tick interval. It never lets a cycle failure escape to the host.
type Sweeper struct {
	registry  domain.ShopRegistry
	limits    domain.LimitSource
	corrector *service.Corrector
	guard     *Guard
	inbox     chan<- event.Event
	metrics   *infra.Metrics
	dumpDir   string

	mu       sync.Mutex
	status   string
	degraded bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper creates a sweeper over the given registry and limit
// configuration. The inbox may be nil; sweep events are then skipped.
func NewSweeper(registry domain.ShopRegistry, limits domain.LimitSource, corrector *service.Corrector, inbox chan<- event.Event) *Sweeper {
	return &Sweeper{
		registry:  registry,
		limits:    limits,
		corrector: corrector,
		guard:     NewGuard(),
		inbox:     inbox,
		metrics:   infra.GlobalMetrics,
		dumpDir:   "logs",
		status:    "Idle.",
	}
}

// Start launches the sweep loop.
func (s *Sweeper) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	s.setStatus("Ready.")

	s.wg.Add(1)
	go s.loop(ctx)
	return nil
}

// Stop cancels the loop and waits for it to finish. Clean shutdown, not
// a failure.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
		s.wg.Wait()
	}
	s.setStatus("Stopped.")
}

// Status returns a short human-readable state string. Never blocks on
// sweep work.
func (s *Sweeper) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Sweeper) setStatus(status string) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

func (s *Sweeper) isDegraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Sweeper) setDegraded(degraded bool) {
	s.mu.Lock()
	changed := s.degraded != degraded
	s.degraded = degraded
	if degraded {
		s.status = "Degraded: hourly fallback active."
	} else if changed {
		s.status = "Ready."
	}
	s.mu.Unlock()

	s.metrics.SetDegraded(degraded)
}

func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	for {
		s.runCycle(ctx)

		// Read the interval fresh each loop: operator edits and the
		// degradation state both take effect on the next sleep.
		interval := s.limits.TickInterval()
		if s.isDegraded() {
			interval = FallbackInterval
		}

		select {
		case <-ctx.Done():
			slog.Info("Sweep loop stopped")
			return
		case <-time.After(interval):
		}
	}
}

// runCycle performs one full sweep. Any panic is recovered here: the
// failure is logged, a diagnostic dump is written and the loop degrades
// to the fallback interval instead of terminating.
func (s *Sweeper) runCycle(ctx context.Context) {
	cycleID := uuid.NewString()
	start := time.Now()
	before := s.metrics.Snapshot()

	// Materialized before the sweep so the failure dump never has to
	// call back into the collaborators that may have just panicked.
	var tables *domain.LimitTables
	var shops []*domain.Shop

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Sweep cycle failure recovered",
				slog.String("cycle_id", cycleID), slog.Any("panic", r))
			s.metrics.RecordCycleFailure()
			s.setDegraded(true)
			s.dumpState(cycleID, tables, shops)
		}
	}()

	tables = s.limits.Tables()
	shops = s.registry.All()

	var skipped, changedShops int
	for _, shop := range shops {
		select {
		case <-ctx.Done():
			return
		default:
		}

		entered, changed := s.sweepShop(cycleID, tables, shop)
		if !entered {
			skipped++
			continue
		}
		if changed {
			changedShops++
		}
	}

	// A fully clean cycle restores the configured interval.
	s.setDegraded(false)

	duration := time.Since(start)
	s.metrics.RecordCycle(duration.Nanoseconds())

	corrected := int(s.metrics.Snapshot().OffersCorrected - before.OffersCorrected)
	s.emitSweep(cycleID, len(shops), skipped, changedShops, corrected, duration)

	if changedShops > 0 || skipped > 0 {
		slog.Info("Sweep cycle completed",
			slog.String("cycle_id", cycleID),
			slog.Int("shops", len(shops)),
			slog.Int("changed", changedShops),
			slog.Int("skipped", skipped),
			slog.Int("corrected_offers", corrected),
			slog.Duration("duration", duration))
	}
}

// sweepShop runs both correction directions over one shop under the
// recursion guard. The guard is released on every exit path, including
// a panic inside correction.
func (s *Sweeper) sweepShop(cycleID string, tables *domain.LimitTables, shop *domain.Shop) (entered, changed bool) {
	if !s.guard.TryEnter(shop.ControllerID) {
		s.metrics.RecordSkippedShop()
		return false, false
	}
	defer s.guard.Leave()

	changed = s.corrector.Correct(cycleID, domain.DirectionSellFloor, tables, shop)
	if s.corrector.Correct(cycleID, domain.DirectionBuyCeiling, tables, shop) {
		changed = true
	}

	if changed {
		// Once per shop, not once per offer.
		shop.RefreshStock()
	}
	return true, changed
}

// CorrectShop runs one guarded correction pass over a single shop with
// the current table snapshot, outside the periodic cycle. Used by hosts
// embedding the warden; a listener re-triggering correction of the shop
// being swept is refused by the guard and reports no change.
func (s *Sweeper) CorrectShop(shop *domain.Shop) bool {
	entered, changed := s.sweepShop(uuid.NewString(), s.limits.Tables(), shop)
	return entered && changed
}

func (s *Sweeper) emitSweep(cycleID string, shops, skipped, changedShops, corrected int, duration time.Duration) {
	if s.inbox == nil {
		return
	}

	ev := event.AcquireSweepEvent()
	ev.Seq = event.NextSeq()
	ev.Ts = time.Now().UnixMilli()
	ev.CycleID = cycleID
	ev.Shops = shops
	ev.Skipped = skipped
	ev.ChangedShops = changedShops
	ev.CorrectedOffers = corrected
	ev.DurationMS = duration.Milliseconds()
	ev.Degraded = s.isDegraded()

	select {
	case s.inbox <- ev:
	default:
		event.ReleaseSweepEvent(ev)
		s.metrics.RecordDroppedEvent()
	}
}

// dumpState writes a compressed snapshot of the failed cycle for
// post-mortem analysis. It runs inside the cycle's recover, so it only
// uses data already in hand and contains its own panics: diagnostics
// must never take the loop down with them.
func (s *Sweeper) dumpState(cycleID string, tables *domain.LimitTables, shops []*domain.Shop) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("State dump failed", slog.String("cycle_id", cycleID), slog.Any("panic", r))
		}
	}()

	if err := os.MkdirAll(s.dumpDir, 0755); err != nil {
		slog.Error("Failed to create dump directory", slog.Any("error", err))
		return
	}
	path := filepath.Join(s.dumpDir, fmt.Sprintf("sweep_dump_%s.json.zst", cycleID))
	slog.Info("Dumping sweep state...", slog.String("file", path))

	data := struct {
		CycleID string                `json:"cycle_id"`
		Tables  *domain.LimitTables   `json:"tables"`
		Shops   []*domain.Shop        `json:"shops"`
		Metrics infra.MetricsSnapshot `json:"metrics"`
	}{
		CycleID: cycleID,
		Tables:  tables,
		Shops:   shops,
		Metrics: s.metrics.Snapshot(),
	}

	f, err := os.Create(path)
	if err != nil {
		slog.Error("Failed to create state dump", slog.Any("error", err))
		return
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		slog.Error("Failed to create dump encoder", slog.Any("error", err))
		return
	}
	defer enc.Close()

	if err := json.NewEncoder(enc).Encode(&data); err != nil {
		slog.Error("Failed to encode state dump", slog.Any("error", err))
	}
}
