package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"shopwarden/internal/domain"
	"shopwarden/internal/infra"
	"shopwarden/internal/infra/storage"
	"shopwarden/internal/service"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
	Limits  *service.LimitService
	Icons   *infra.IconSync

	Catalog []infra.CatalogItem
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (DB, catalog, limits)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping ShopWarden...")

	// 1. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	// 4. Load the item catalog
	catalog, err := infra.LoadCatalog(cfg.Warden.CatalogPath)
	if err != nil {
		return err
	}
	b.Catalog = catalog
	slog.Info("✅ Item catalog loaded", slog.Int("items", len(catalog)))

	// 5. Restore limits, reconcile against the catalog and persist the
	// reconciled lists. A persisted tick interval wins over the config one.
	limits := service.NewLimitService(store)
	limits.SetInitialTickInterval(time.Duration(cfg.Warden.TickIntervalSec) * time.Second)
	if err := limits.Load(); err != nil {
		return err
	}
	ids := make([]string, 0, len(catalog))
	for _, item := range catalog {
		ids = append(ids, item.ID)
	}
	limits.Reconcile(ids)
	if err := limits.OnConfigEdited(); err != nil {
		return err
	}
	b.Limits = limits
	slog.Info("✅ Price limits ready", slog.Duration("tick_interval", limits.TickInterval()))

	// 6. Initialize icon sync (optional)
	if cfg.Icons.SyncEnabled {
		icons, err := infra.NewIconSync(cfg.Icons.CDNURL)
		if err != nil {
			return err
		}
		b.Icons = icons
		slog.Info("✅ Icon sync ready")
	}

	return nil
}

// SyncAssets mirrors the catalog into the dashboard item table and
// downloads missing icons in the background.
func (b *Bootstrap) SyncAssets(ctx context.Context) {
	slog.Info("🔄 Starting asset synchronization...")

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5) // Limit concurrent downloads

	for _, entry := range b.Catalog {
		wg.Add(1)
		go func(entry infra.CatalogItem) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			// 1. Upsert to DB
			item := &domain.ItemInfo{
				ID:        entry.ID,
				Name:      entry.Name,
				IconSlug:  entry.Icon,
				UpdatedAt: time.Now(),
			}

			// Preserve a previously downloaded icon path
			if existing, _ := b.Storage.GetItem(entry.ID); existing != nil {
				item.IconPath = existing.IconPath
				item.LastSyncedAt = existing.LastSyncedAt
			}

			if err := b.Storage.UpsertItem(item); err != nil {
				slog.Error("Failed to upsert item", slog.String("item", entry.ID), slog.Any("error", err))
			}

			// 2. Download Icon (if missing)
			if b.Icons == nil {
				return
			}
			path, err := b.Icons.DownloadIcon(entry.ID, entry.Icon)
			if err != nil {
				slog.Warn("Failed to download icon", slog.String("item", entry.ID), slog.Any("error", err))
			} else if path != "" {
				// Update path in DB
				item.IconPath = path
				item.LastSyncedAt = time.Now()
				b.Storage.UpsertItem(item)
			}
		}(entry)
	}

	wg.Wait()
	slog.Info("✨ Asset synchronization completed")
}
