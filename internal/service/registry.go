package service

import (
	"sort"
	"sync"

	"shopwarden/internal/domain"
)

// Registry is the in-memory shop registry the sweeper enumerates.
// Gateway updates replace whole shop values rather than mutating
// published ones, so the sweep goroutine is the only writer of a
// registered shop's offers.
type Registry struct {
	mu    sync.RWMutex
	shops map[string]*domain.Shop
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		shops: make(map[string]*domain.Shop),
	}
}

// Put registers or replaces a shop keyed by its controller id.
func (r *Registry) Put(shop *domain.Shop) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shops[shop.ControllerID] = shop
}

// Remove drops a shop that left the world.
func (r *Registry) Remove(controllerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.shops, controllerID)
}

// Get returns the shop for a controller id.
func (r *Registry) Get(controllerID string) (*domain.Shop, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	shop, ok := r.shops[controllerID]
	return shop, ok
}

// All returns every registered shop ordered by controller id, so sweep
// cycles visit shops deterministically.
func (r *Registry) All() []*domain.Shop {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Shop, 0, len(r.shops))
	for _, shop := range r.shops {
		result = append(result, shop)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ControllerID < result[j].ControllerID
	})

	return result
}

// Len returns the number of registered shops.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shops)
}
