package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"org-service/internal/model"
	"org-service/pkg/config"
)

// Connect opens the master database and migrates the fixed collections. The
// returned handle is passed explicitly into every component that needs it.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	// PreferSimpleProtocol avoids "prepared statement already exists" errors
	// behind connection poolers; TranslateError surfaces unique-index
	// violations as gorm.ErrDuplicatedKey.
	pgConfig := postgres.Config{
		DSN:                  cfg.DB.GetDSN(),
		PreferSimpleProtocol: true,
	}

	db, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger:         logger.Default.LogMode(cfg.DB.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}
	if cfg.DB.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}

	if err := db.AutoMigrate(
		&model.Organization{},
		&model.AdminUser{},
		&model.AuditLog{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
