package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"shopwarden/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SideSell and SideBuy tag persisted limit rows.
const (
	SideSell = "sell"
	SideBuy  = "buy"
)

// Storage defines the interface for data persistence
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance. An empty path uses
// the default location under the user config directory.
func NewStorage(path string) (*Storage, error) {
	dbPath := path
	if dbPath == "" {
		var err error
		dbPath, err = getDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
	}

	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(
		&domain.ItemInfo{},
		&domain.ShopInfo{},
		&domain.PriceLimitRow{},
		&domain.AppConfig{},
		&domain.CorrectionRecord{},
		&domain.SweepRecord{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// getDBPath resolves the database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "ShopWarden", "data", "shopwarden.db"), nil
}

// ======================================================================================
// Item Operations
// ======================================================================================

// UpsertItem creates or updates item metadata
func (s *Storage) UpsertItem(item *domain.ItemInfo) error {
	return s.db.Save(item).Error
}

// GetItem retrieves item metadata by id
func (s *Storage) GetItem(id string) (*domain.ItemInfo, error) {
	var item domain.ItemInfo
	err := s.db.First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	return &item, err
}

// GetAllItems retrieves all items
func (s *Storage) GetAllItems() ([]domain.ItemInfo, error) {
	var items []domain.ItemInfo
	err := s.db.Order("id").Find(&items).Error
	return items, err
}

// ======================================================================================
// Shop Operations
// ======================================================================================

// UpsertShop creates or updates the dashboard mirror of a shop
func (s *Storage) UpsertShop(shop *domain.ShopInfo) error {
	return s.db.Save(shop).Error
}

// DeleteShop removes the mirror of a shop that left the world.
// Deleting an unmirrored shop returns ErrShopNotFound.
func (s *Storage) DeleteShop(controllerID string) error {
	res := s.db.Where("controller_id = ?", controllerID).Delete(&domain.ShopInfo{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrShopNotFound, controllerID)
	}
	return nil
}

// GetAllShops retrieves all mirrored shops
func (s *Storage) GetAllShops() ([]domain.ShopInfo, error) {
	var shops []domain.ShopInfo
	err := s.db.Order("controller_id").Find(&shops).Error
	return shops, err
}

// ======================================================================================
// Limit Operations
// ======================================================================================

// SaveLimits replaces both persisted limit lists in one transaction.
func (s *Storage) SaveLimits(sellFloors, buyCeilings []domain.ItemPriceLimit) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.PriceLimitRow{}).Error; err != nil {
			return err
		}
		now := time.Now()
		for i, l := range sellFloors {
			row := domain.PriceLimitRow{ItemID: l.ItemID, Side: SideSell, Price: l.Price, Position: i, UpdatedAt: now}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for i, l := range buyCeilings {
			row := domain.PriceLimitRow{ItemID: l.ItemID, Side: SideBuy, Price: l.Price, Position: i, UpdatedAt: now}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadLimits restores both limit lists in their persisted order.
func (s *Storage) LoadLimits() (sellFloors, buyCeilings []domain.ItemPriceLimit, err error) {
	var rows []domain.PriceLimitRow
	if err := s.db.Order("position").Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	for _, row := range rows {
		limit := domain.ItemPriceLimit{ItemID: row.ItemID, Price: row.Price}
		switch row.Side {
		case SideSell:
			sellFloors = append(sellFloors, limit)
		case SideBuy:
			buyCeilings = append(buyCeilings, limit)
		}
	}
	return sellFloors, buyCeilings, nil
}

// ======================================================================================
// Config Operations
// ======================================================================================

// SaveConfig saves a user configuration
func (s *Storage) SaveConfig(key, value string) error {
	config := domain.AppConfig{
		Key:   key,
		Value: value,
	}
	return s.db.Save(&config).Error
}

// LoadConfigMap loads all user configurations as a map
func (s *Storage) LoadConfigMap() (map[string]string, error) {
	var configs []domain.AppConfig
	if err := s.db.Find(&configs).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, cfg := range configs {
		result[cfg.Key] = cfg.Value
	}
	return result, nil
}

// ======================================================================================
// Audit Operations
// ======================================================================================

// InsertCorrection appends one correction audit row
func (s *Storage) InsertCorrection(rec *domain.CorrectionRecord) error {
	return s.db.Create(rec).Error
}

// RecentCorrections returns the most recent correction rows, newest first
func (s *Storage) RecentCorrections(limit int) ([]domain.CorrectionRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var recs []domain.CorrectionRecord
	err := s.db.Order("id desc").Limit(limit).Find(&recs).Error
	return recs, err
}

// InsertSweep appends one sweep-cycle audit row
func (s *Storage) InsertSweep(rec *domain.SweepRecord) error {
	return s.db.Create(rec).Error
}

// RecentSweeps returns the most recent sweep rows, newest first
func (s *Storage) RecentSweeps(limit int) ([]domain.SweepRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var recs []domain.SweepRecord
	err := s.db.Order("id desc").Limit(limit).Find(&recs).Error
	return recs, err
}
