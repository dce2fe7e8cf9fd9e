package database

import (
	"fmt"
	"time"

	"github.com/inkline/studio-scheduler/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// partialIndexes back the finalisation rules at the storage level: a booking
// holds at most one finalised suggestion, and a slot at most one booking.
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_suggestion_finalized
		ON suggestions (booking_id)
		WHERE status IN ('client_confirmed', 'accepted')`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_slot_reserved
		ON availability_slots (reserved_booking_id)
		WHERE reserved_booking_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_waitlist_due
		ON waitlist_entries (expires_at)
		WHERE status IN ('waiting', 'offer_sent')`,
}

func NewPostgresDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.CityConfig{},
		&models.AvailabilitySlot{},
		&models.Booking{},
		&models.Suggestion{},
		&models.SessionEvent{},
		&models.ActivityLog{},
		&models.WaitlistEntry{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
