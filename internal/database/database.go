package database

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/tamecovita/reservations/internal/config"
	"github.com/tamecovita/reservations/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config, log *zap.Logger) *gorm.DB {
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal("Failed to create database directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	db, err := Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.String("path", cfg.DatabasePath), zap.Error(err))
	}

	return db
}

// Open connects to the sqlite file at path (":memory:" for tests) and
// migrates the schema. The pool holds a single connection so every
// statement runs on the same sqlite handle.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "sql handle")
	}
	sqlDB.SetMaxOpenConns(1)

	// Auto Migrate
	if err := db.AutoMigrate(&models.Reservation{}, &models.ReservationRevision{}); err != nil {
		return nil, errors.Wrap(err, "auto migrate")
	}

	return db, nil
}
