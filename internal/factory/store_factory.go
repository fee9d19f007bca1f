package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ronnydonkey/subtracker/internal/adapters/store"
	"github.com/ronnydonkey/subtracker/internal/config"
	"github.com/ronnydonkey/subtracker/internal/core"
	"go.uber.org/zap"
)

// StoreFactory creates detection stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateDetectionStore creates a detection store based on the configuration
func (f *StoreFactory) CreateDetectionStore() (core.DetectionStore, error) {
	storeType := f.cfg.GetString("store.type")
	cleanupFreq, err := f.cfg.GetDuration("store.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid store cleanup frequency: %w", err)
	}

	switch storeType {
	case "memory":
		return store.NewMemoryStore(f.logger, cleanupFreq), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("store.sqlite_path")
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return store.NewSQLiteStore(sqlitePath, f.logger, cleanupFreq)
	case "mysql":
		mysqlDSN := f.cfg.GetString("store.mysql_dsn")
		return store.NewMySQLStore(mysqlDSN, f.logger, cleanupFreq)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeType)
	}
}

// GetStoreTTL returns the configured record TTL
func (f *StoreFactory) GetStoreTTL() (time.Duration, error) {
	return f.cfg.GetDuration("store.ttl")
}

// IsStoreEnabled returns whether the detection store is enabled
func (f *StoreFactory) IsStoreEnabled() bool {
	return f.cfg.GetBool("store.enabled")
}
