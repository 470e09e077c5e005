package engine

import "sync"

// Guard is the single-slot reentrancy sentinel for sweep passes.
// Mutating an offer's price notifies listeners synchronously, and a
// listener may re-trigger correction of the same shop before the outer
// pass returns; the guard refuses that nested entry. It holds at most
// one in-progress controller id, which is sufficient because the
// sweeper processes shops sequentially within a cycle.
type Guard struct {
	mu       sync.Mutex
	slot     string
	occupied bool
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{}
}

// TryEnter occupies the slot with the controller id and returns true,
// unless the slot already holds the same id: then the shop's correction
// is already running higher on the call stack and entry is refused.
func (g *Guard) TryEnter(controllerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.occupied && g.slot == controllerID {
		return false
	}
	g.slot = controllerID
	g.occupied = true
	return true
}

// Leave unconditionally empties the slot. Guarded sections must call it
// on every exit path.
func (g *Guard) Leave() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.slot = ""
	g.occupied = false
}

// Holding reports the currently occupied controller id, if any.
func (g *Guard) Holding() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.slot, g.occupied
}
