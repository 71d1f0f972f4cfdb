package app

import (
	"fmt"
	"time"

	"mixmodas/internal/config"
	"mixmodas/internal/repositories"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase connects GORM to the configured relational engine.
func OpenDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Type, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)
	if cfg.Type != "sqlite" {
		sqlDB.SetMaxOpenConns(20)
	}

	zap.L().Info("database connected", zap.String("type", cfg.Type))
	return db, nil
}

// Migrate opens the database and creates or updates the store tables.
func Migrate(cfg config.DatabaseConfig) error {
	db, err := OpenDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db)
	return repositories.AutoMigrate(db)
}

func closeDatabase(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		zap.L().Warn("failed to close database", zap.Error(err))
	}
}
