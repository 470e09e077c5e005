package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"shopwarden/internal/domain"
	"shopwarden/internal/event"
)

type fakeRecorderStore struct {
	mu          sync.Mutex
	corrections []domain.CorrectionRecord
	sweeps      []domain.SweepRecord
}

func (f *fakeRecorderStore) InsertCorrection(rec *domain.CorrectionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.corrections = append(f.corrections, *rec)
	return nil
}

func (f *fakeRecorderStore) InsertSweep(rec *domain.SweepRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeps = append(f.sweeps, *rec)
	return nil
}

func (f *fakeRecorderStore) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.corrections), len(f.sweeps)
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []any
}

func (f *fakeBroadcaster) BroadcastJSON(v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, v)
}

func (f *fakeBroadcaster) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestRecorder_PersistsAndBroadcasts(t *testing.T) {
	store := &fakeRecorderStore{}
	hub := &fakeBroadcaster{}
	r := NewRecorder(16, store, hub)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop()

	corr := event.AcquireCorrectionEvent()
	corr.Seq = event.NextSeq()
	corr.Ts = time.Now().UnixMilli()
	corr.CycleID = "cycle-1"
	corr.ControllerID = "ctl-1"
	corr.ItemID = "wood"
	corr.Side = "sell_floor"
	corr.OldPrice = "5"
	corr.NewPrice = "10"
	r.Inbox() <- corr

	sweep := event.AcquireSweepEvent()
	sweep.Seq = event.NextSeq()
	sweep.Ts = time.Now().UnixMilli()
	sweep.CycleID = "cycle-1"
	sweep.Shops = 3
	r.Inbox() <- sweep

	waitFor(t, func() bool {
		c, s := store.counts()
		return c == 1 && s == 1
	})

	store.mu.Lock()
	rec := store.corrections[0]
	store.mu.Unlock()
	if rec.CycleID != "cycle-1" || rec.ItemID != "wood" {
		t.Errorf("unexpected correction record: %+v", rec)
	}
	if rec.NewPrice.String() != "10" {
		t.Errorf("new price = %v, want 10", rec.NewPrice)
	}

	if hub.count() != 2 {
		t.Errorf("broadcasts = %d, want 2", hub.count())
	}
}

func TestRecorder_NilSinks(t *testing.T) {
	r := NewRecorder(4, nil, nil)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ev := event.AcquireCorrectionEvent()
	ev.OldPrice = "1"
	ev.NewPrice = "2"
	r.Inbox() <- ev

	// Give the drain loop a beat, then shut down; must not panic.
	time.Sleep(20 * time.Millisecond)
	r.Stop()
}
