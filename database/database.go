package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/billing"
	"kidcanvas/internal/domain/children"
	"kidcanvas/internal/domain/families"
	"kidcanvas/internal/domain/plans"
	"kidcanvas/internal/domain/social"
	"kidcanvas/internal/domain/users"
)

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		// core
		&plans.Plan{},
		&users.User{},
		&users.VerificationToken{},
		&billing.Payment{},

		// families
		&families.Family{},
		&families.FamilyMember{},
		&families.Invite{},
		&children.Child{},

		// gallery
		&artworks.Artwork{},
		&social.Reaction{},
		&social.Comment{},
	}
}

// InitDB connects to Postgres and migrates the schema.
func InitDB(dsn string, debug bool) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}
	if debug {
		cfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("database - InitDB - gorm.Open: %w", err)
	}

	// gen_random_uuid()
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return nil, fmt.Errorf("database - InitDB - pgcrypto: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("database - InitDB - AutoMigrate: %w", err)
	}

	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
