package service

import (
	"context"
	"fmt"

	"github.com/inkline/studio-scheduler/internal/apperr"
	"github.com/inkline/studio-scheduler/internal/lifecycle"
	"github.com/inkline/studio-scheduler/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PipelineService interface {
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	Transition(ctx context.Context, bookingID uint, target string) (*models.Booking, error)
	UpdateField(ctx context.Context, bookingID uint, field, value string) (*models.Booking, error)
	ListActivity(ctx context.Context, bookingID uint) ([]models.ActivityLog, error)
}

type pipelineService struct {
	repos     Repositories
	stager    *stager
	publisher EventPublisher
	opts      Options
	log       *zap.Logger
}

func NewPipelineService(repos Repositories, publisher EventPublisher, opts Options, log *zap.Logger) PipelineService {
	return &pipelineService{
		repos:     repos,
		stager:    &stager{bookings: repos.Bookings, activity: repos.Activity, strict: opts.StrictPipeline},
		publisher: publisher,
		opts:      opts,
		log:       log,
	}
}

func (s *pipelineService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	b, err := s.repos.Bookings.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrBookingNotFound)
	}
	return b, nil
}

// Transition moves a booking to target. A booking leaving scheduled for any
// stage but completed gives up its date and hands its slot back to the pool.
func (s *pipelineService) Transition(ctx context.Context, bookingID uint, target string) (*models.Booking, error) {
	stage, err := lifecycle.ParseStage(target)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	var (
		booking  *models.Booking
		released *SlotReleasedMessage
	)
	err = s.repos.Tx.Transaction(ctx, func(tx *gorm.DB) error {
		b, err := s.repos.Bookings.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return notFound(err, ErrBookingNotFound)
		}

		extra := map[string]any{}
		meta := map[string]any{}
		var freed *SlotReleasedMessage
		unschedule := !lifecycle.KeepsSchedule(stage) && hasSchedule(b)
		if unschedule {
			if b.SlotID != nil {
				if err := s.repos.Slots.Release(ctx, tx, *b.SlotID); err != nil {
					return fmt.Errorf("release slot %d: %w", *b.SlotID, err)
				}
				freed = &SlotReleasedMessage{SlotID: *b.SlotID, BookingID: b.ID}
				meta["released_slot_id"] = *b.SlotID
			}
			for _, col := range scheduleColumns {
				extra[col] = nil
			}
		}

		if _, err := s.stager.move(ctx, tx, b, stage, extra, meta, now); err != nil {
			return err
		}
		if unschedule {
			b.SlotID, b.ScheduledDate, b.ScheduledTime, b.CityID = nil, nil, nil, nil
		}
		booking, released = b, freed
		return nil
	})
	if err != nil {
		return nil, err
	}

	if released != nil && s.publisher != nil {
		if err := s.publisher.Publish(RouteSlotReleased, released); err != nil {
			s.log.Warn("slot.released not published", zap.Uint("slot_id", released.SlotID), zap.Error(err))
			return booking, apperr.External("publish slot.released", err)
		}
	}
	return booking, nil
}

// scheduleColumns are the booking columns written when a suggestion is finalised.
var scheduleColumns = []string{"slot_id", "scheduled_date", "scheduled_time", "city_id"}

func hasSchedule(b *models.Booking) bool {
	return b.SlotID != nil || b.ScheduledDate != nil
}

func (s *pipelineService) UpdateField(ctx context.Context, bookingID uint, field, value string) (*models.Booking, error) {
	update, err := lifecycle.ParseFieldUpdate(field, value)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	var booking *models.Booking
	err = s.repos.Tx.Transaction(ctx, func(tx *gorm.DB) error {
		b, err := s.repos.Bookings.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return notFound(err, ErrBookingNotFound)
		}

		old := update.Current(b)
		if err := s.repos.Bookings.Update(ctx, tx, b.ID, map[string]any{update.Column: update.Value}); err != nil {
			return err
		}
		update.Apply(b)

		if err := s.repos.Activity.Append(ctx, tx, &models.ActivityLog{
			BookingID:    b.ID,
			ActivityType: models.ActivityFieldUpdate,
			Description:  fmt.Sprintf("Updated %s", field),
			Metadata:     map[string]any{"field": field, "old": old, "new": update.Current(b)},
			CreatedAt:    now,
		}); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *pipelineService) ListActivity(ctx context.Context, bookingID uint) ([]models.ActivityLog, error) {
	if _, err := s.GetBooking(ctx, bookingID); err != nil {
		return nil, err
	}
	return s.repos.Activity.FindByBooking(ctx, bookingID)
}
