// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"progresshub/backend/models"
	"progresshub/backend/utils"
)

// DB opens a fresh sqlite database in the test's temp dir with every model migrated.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(utils.SQLiteDSN(path)), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Logger returns a logger that discards output.
func Logger(tb testing.TB) *utils.Logger {
	tb.Helper()
	return utils.NopLogger()
}

// FixedTime is the instant FixedClock reports.
var FixedTime = time.Date(2025, time.March, 14, 10, 30, 0, 0, time.UTC)

// FixedClock always returns FixedTime.
type FixedClock struct{}

func (FixedClock) Now() time.Time { return FixedTime }

// PNG is the smallest header that sniffs as image/png.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
