package repository

import (
	"context"

	"github.com/inkline/studio-scheduler/internal/models"
	"gorm.io/gorm"
)

// SlotRepository is the slot inventory read by the match engine and the
// reservation point for finalisation.
type SlotRepository interface {
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AvailabilitySlot, error)
	FindAvailable(ctx context.Context, tx *gorm.DB) ([]models.AvailabilitySlot, error)
	Reserve(ctx context.Context, tx *gorm.DB, slotID uint, version int, bookingID uint) error
	Release(ctx context.Context, tx *gorm.DB, slotID uint) error
}

type slotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) SlotRepository {
	return &slotRepository{db: db}
}

func (r *slotRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	if err := tx.WithContext(ctx).First(&slot, id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepository) FindAvailable(ctx context.Context, tx *gorm.DB) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	err := tx.WithContext(ctx).
		Where("is_open = ? AND reserved_booking_id IS NULL", true).
		Order("date ASC, id ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// Reserve claims the slot for a booking only if nobody changed it since it
// was read at the given version.
func (r *slotRepository) Reserve(ctx context.Context, tx *gorm.DB, slotID uint, version int, bookingID uint) error {
	res := tx.WithContext(ctx).
		Model(&models.AvailabilitySlot{}).
		Where("id = ? AND version = ? AND reserved_booking_id IS NULL", slotID, version).
		Updates(map[string]any{
			"reserved_booking_id": bookingID,
			"version":             gorm.Expr("version + 1"),
		})
	return casResult(res)
}

func (r *slotRepository) Release(ctx context.Context, tx *gorm.DB, slotID uint) error {
	return tx.WithContext(ctx).
		Model(&models.AvailabilitySlot{}).
		Where("id = ?", slotID).
		Updates(map[string]any{
			"reserved_booking_id": nil,
			"version":             gorm.Expr("version + 1"),
		}).Error
}
