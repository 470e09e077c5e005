package event

import "testing"

func TestCorrectionEventPool_ResetOnRelease(t *testing.T) {
	ev := AcquireCorrectionEvent()
	ev.Seq = 42
	ev.CycleID = "cycle-1"
	ev.ItemID = "wood"
	ev.OldPrice = "5"
	ev.NewPrice = "10"

	ReleaseCorrectionEvent(ev)

	// The pool may hand the same object back; it must be zeroed.
	got := AcquireCorrectionEvent()
	defer ReleaseCorrectionEvent(got)

	if got.Seq != 0 || got.CycleID != "" || got.ItemID != "" || got.OldPrice != "" {
		t.Errorf("pooled event not reset: %+v", got)
	}
	if got.Type != TypeCorrection {
		t.Errorf("acquire did not set the type tag: %q", got.Type)
	}
}

func TestReleaseNilEvent(t *testing.T) {
	// Must not panic.
	ReleaseCorrectionEvent(nil)
	ReleaseSweepEvent(nil)
}

func TestNextSeq_Monotonic(t *testing.T) {
	a := NextSeq()
	b := NextSeq()
	if b <= a {
		t.Errorf("NextSeq not monotonic: %d then %d", a, b)
	}
}

func TestEventTypes(t *testing.T) {
	var _ Event = &CorrectionEvent{}
	var _ Event = &SweepEvent{}

	if (&CorrectionEvent{}).GetType() != "correction" {
		t.Error("unexpected correction type tag")
	}
	if (&SweepEvent{}).GetType() != "sweep" {
		t.Error("unexpected sweep type tag")
	}
}
