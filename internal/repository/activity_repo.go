package repository

import (
	"context"

	"github.com/inkline/studio-scheduler/internal/models"
	"gorm.io/gorm"
)

// ActivityRepository only appends and reads; log entries are never changed.
type ActivityRepository interface {
	Append(ctx context.Context, tx *gorm.DB, entry *models.ActivityLog) error
	FindByBooking(ctx context.Context, bookingID uint) ([]models.ActivityLog, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Append(ctx context.Context, tx *gorm.DB, entry *models.ActivityLog) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *activityRepository) FindByBooking(ctx context.Context, bookingID uint) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
