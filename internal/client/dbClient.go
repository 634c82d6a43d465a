package client

import (
	"fmt"
	"log/slog"
	"time"

	"studio-storefront/internal/config"
	"studio-storefront/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the configured database and migrates the storefront tables.
func InitDB(dbCfg *config.Database, log *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dbCfg.Driver {
	case "mysql":
		dialector = mysql.Open(dbCfg.URL)
	case "sqlite", "":
		dialector = sqlite.Open(dbCfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dbCfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if dbCfg.Driver == "mysql" {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(
		&model.CartRecord{},
		&model.ProcessedEvent{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	log.Info("database ready", "driver", dialector.Name())
	return db, nil
}
