package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"shopwarden/internal/domain"
	"shopwarden/internal/event"

	"github.com/shopspring/decimal"
)

// RecorderStore is the audit persistence the recorder writes to.
type RecorderStore interface {
	InsertCorrection(rec *domain.CorrectionRecord) error
	InsertSweep(rec *domain.SweepRecord) error
}

// Recorder drains the sweep inbox on its own goroutine: it persists
// audit rows, broadcasts events to live observers and returns pooled
// events. The sweep path never blocks on any of this.
type Recorder struct {
	inbox chan event.Event
	store RecorderStore
	hub   event.Broadcaster

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRecorder creates a recorder with the given inbox capacity. Store
// and hub may each be nil; the corresponding sink is then skipped.
func NewRecorder(inboxSize int, store RecorderStore, hub event.Broadcaster) *Recorder {
	if inboxSize <= 0 {
		inboxSize = 1024
	}
	return &Recorder{
		inbox: make(chan event.Event, inboxSize),
		store: store,
		hub:   hub,
	}
}

// Inbox returns the event channel emitters send into.
func (r *Recorder) Inbox() chan<- event.Event {
	return r.inbox
}

// Start launches the drain loop.
func (r *Recorder) Start(ctx context.Context) error {
	ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Recorder panic recovered", slog.Any("panic", rec))
			}
		}()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Recorder stopped")
				return
			case ev := <-r.inbox:
				r.handle(ev)
			}
		}
	}()

	return nil
}

// Stop cancels the drain loop and waits for it.
func (r *Recorder) Stop() {
	if r.cancel != nil {
		r.cancel()
		r.wg.Wait()
	}
}

func (r *Recorder) handle(ev event.Event) {
	if r.hub != nil {
		r.hub.BroadcastJSON(ev)
	}

	switch e := ev.(type) {
	case *event.CorrectionEvent:
		r.persistCorrection(e)
		event.ReleaseCorrectionEvent(e)
	case *event.SweepEvent:
		r.persistSweep(e)
		event.ReleaseSweepEvent(e)
	default:
		slog.Warn("Unknown event type", slog.String("type", ev.GetType()))
	}
}

func (r *Recorder) persistCorrection(e *event.CorrectionEvent) {
	if r.store == nil {
		return
	}

	oldPrice, err := decimal.NewFromString(e.OldPrice)
	if err != nil {
		slog.Warn("Bad old price in correction event", slog.String("price", e.OldPrice))
		return
	}
	newPrice, err := decimal.NewFromString(e.NewPrice)
	if err != nil {
		slog.Warn("Bad new price in correction event", slog.String("price", e.NewPrice))
		return
	}

	rec := &domain.CorrectionRecord{
		CycleID:      e.CycleID,
		ControllerID: e.ControllerID,
		Category:     e.Category,
		OfferID:      e.OfferID,
		ItemID:       e.ItemID,
		Side:         e.Side,
		OldPrice:     oldPrice,
		NewPrice:     newPrice,
		CreatedAt:    time.UnixMilli(e.Ts),
	}
	if err := r.store.InsertCorrection(rec); err != nil {
		slog.Error("Failed to persist correction", slog.Any("error", err))
	}
}

func (r *Recorder) persistSweep(e *event.SweepEvent) {
	if r.store == nil {
		return
	}

	rec := &domain.SweepRecord{
		CycleID:         e.CycleID,
		Shops:           e.Shops,
		Skipped:         e.Skipped,
		ChangedShops:    e.ChangedShops,
		CorrectedOffers: e.CorrectedOffers,
		DurationMS:      e.DurationMS,
		CreatedAt:       time.UnixMilli(e.Ts),
	}
	if err := r.store.InsertSweep(rec); err != nil {
		slog.Error("Failed to persist sweep", slog.Any("error", err))
	}
}
