// Package database manages the sqlite connection backing the committed-order
// archive.
package database

import (
	"fmt"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"paybridge/internal/infrastructure/persistence/models"
	"paybridge/internal/shared/config"
	appLogger "paybridge/internal/shared/logger"
)

var (
	db   *gorm.DB
	dbMu sync.RWMutex
)

// Init opens the archive database and migrates its schema. The archive is a
// single table, so auto-migration replaces a migration toolchain.
func Init(cfg *config.DatabaseConfig) error {
	path := cfg.Path
	if path == "" {
		path = "paybridge.db"
	}

	database, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to open archive database: %w", err)
	}

	if err := database.AutoMigrate(&models.CommittedOrderModel{}); err != nil {
		return fmt.Errorf("failed to migrate archive schema: %w", err)
	}

	dbMu.Lock()
	db = database
	dbMu.Unlock()

	appLogger.Info("archive database ready", "path", path)

	return nil
}

// Get returns the database connection.
func Get() *gorm.DB {
	dbMu.RLock()
	defer dbMu.RUnlock()
	return db
}

// Close closes the database connection.
func Close() error {
	dbMu.RLock()
	currentDB := db
	dbMu.RUnlock()

	if currentDB == nil {
		return nil
	}

	sqlDB, err := currentDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	return sqlDB.Close()
}
