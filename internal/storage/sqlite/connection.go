package sqlite

import (
	"fmt"

	"github.com/joshu-sajeev/notifyqueue/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens the SQLite database at path and migrates the job table.
// ":memory:" gives a private in-memory database.
func Open(path string, level logger.LogLevel, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps an
	// in-memory database alive for the life of the pool.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.NotificationJob{}); err != nil {
		return nil, fmt.Errorf("auto-migration failed: %w", err)
	}

	log.Info("sqlite job store ready", zap.String("path", path))
	return db, nil
}
