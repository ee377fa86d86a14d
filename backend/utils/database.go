package utils

import (
	"strings"

	"progresshub/backend/config"
	"progresshub/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// InitDB opens the configured database and migrates every model.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	default:
		dialector = sqlite.Open(SQLiteDSN(cfg.DBPath))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return nil, err
	}
	return db, nil
}

// SQLiteDSN opens transactions with BEGIN IMMEDIATE so writers queue on the busy timeout
// instead of failing a read-to-write lock upgrade with "database is locked".
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_txlock=immediate&_busy_timeout=5000"
}
