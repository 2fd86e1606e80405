package gormstore

import (
	"testing"

	"github.com/joshu-sajeev/notifyqueue/internal/storage/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupTestDB(t *testing.T) *gorm.DB {
	db, err := sqlite.Open(":memory:", logger.Silent, zap.NewNop()) // Disable logs during tests
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
