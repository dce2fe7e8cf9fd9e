package repository

import (
	"context"

	"github.com/inkline/studio-scheduler/internal/models"
	"gorm.io/gorm"
)

type BookingRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error)
	FindUnscheduled(ctx context.Context, tx *gorm.DB) ([]models.Booking, error)
	Update(ctx context.Context, tx *gorm.DB, id uint, updates map[string]any) error
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByIDForUpdate acquires a row-level lock on the booking within the given transaction.
func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := forUpdate(tx, ctx).First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindUnscheduled returns open bookings without a date, oldest first.
func (r *bookingRepository) FindUnscheduled(ctx context.Context, tx *gorm.DB) ([]models.Booking, error) {
	var bookings []models.Booking
	err := tx.WithContext(ctx).
		Where("scheduled_date IS NULL").
		Where("pipeline_stage NOT IN ?", []models.PipelineStage{
			models.StageScheduled, models.StageCompleted, models.StageCancelled,
		}).
		Order("created_at ASC, id ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) Update(ctx context.Context, tx *gorm.DB, id uint, updates map[string]any) error {
	res := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Updates(updates)
	return casResult(res)
}
