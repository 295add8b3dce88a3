package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"agenda-widget/config"
	"agenda-widget/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenDatabase открывает SQLite или PostgreSQL в зависимости от STORE_BACKEND/REMOTE_BACKEND.
// Для postgres нужен DB_DSN.
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch {
	case cfg.DBDSN != "":
		dialector = postgres.Open(cfg.DBDSN)
	case cfg.StoreBackend == "postgres":
		return nil, fmt.Errorf("DB_DSN is required for postgres")
	default:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite dir: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.SQLitePath)
	}

	level := gormlogger.Warn
	if cfg.Environment == "development" {
		level = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(
			logger.WithFields(logrus.Fields{"component": "gorm"}),
			gormlogger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  level,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
