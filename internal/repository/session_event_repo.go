package repository

import (
	"context"
	"time"

	"github.com/inkline/studio-scheduler/internal/models"
	"gorm.io/gorm"
)

// SessionEventRepository is the event sink for scheduled sessions. Events
// are written in the caller's transaction so scheduling stays all-or-nothing.
type SessionEventRepository interface {
	CreateEvent(ctx context.Context, tx *gorm.DB, bookingID, cityID uint, start, end time.Time, metadata map[string]any) (uint, error)
	FindByBooking(ctx context.Context, bookingID uint) ([]models.SessionEvent, error)
}

type sessionEventRepository struct {
	db *gorm.DB
}

func NewSessionEventRepository(db *gorm.DB) SessionEventRepository {
	return &sessionEventRepository{db: db}
}

func (r *sessionEventRepository) CreateEvent(ctx context.Context, tx *gorm.DB, bookingID, cityID uint, start, end time.Time, metadata map[string]any) (uint, error) {
	ev := &models.SessionEvent{
		BookingID: bookingID,
		CityID:    cityID,
		StartsAt:  start,
		EndsAt:    end,
		Metadata:  metadata,
	}
	if err := tx.WithContext(ctx).Create(ev).Error; err != nil {
		return 0, err
	}
	return ev.ID, nil
}

func (r *sessionEventRepository) FindByBooking(ctx context.Context, bookingID uint) ([]models.SessionEvent, error) {
	var events []models.SessionEvent
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("starts_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
