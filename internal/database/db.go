package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"evidence-backend/internal/model"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Migrate auto-migrates every model
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Department{},
		&model.User{},
		&model.RefreshToken{},
		&model.Case{},
		&model.EvidenceGroup{},
		&model.MaterialEvidence{},
		&model.MaterialEvidenceEvent{},
		&model.Session{},
		&model.Camera{},
		&model.AuditEntry{},
	)
}
