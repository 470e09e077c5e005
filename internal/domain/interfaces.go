package domain

import (
	"context"
	"time"
)

// ShopRegistry is the live-shop lookup the sweeper enumerates each cycle.
// An embedding host may supply its own implementation.
type ShopRegistry interface {
	// All returns every known shop, ordered by controller id so sweep
	// cycles are deterministic.
	All() []*Shop
	Get(controllerID string) (*Shop, bool)
}

// WorldGateway defines the connector that mirrors live shop state from
// the world server.
type WorldGateway interface {
	Connect(ctx context.Context) error
	Disconnect()
	IsConnected() bool
}

// LimitSource is the read side of the limit configuration the sweeper
// consumes: a fresh table snapshot per cycle plus the tick interval.
type LimitSource interface {
	Tables() *LimitTables
	TickInterval() time.Duration
}
