package service

import (
	"context"
	"errors"
	"strings"

	"github.com/inkline/studio-scheduler/internal/apperr"
	"github.com/inkline/studio-scheduler/internal/lifecycle"
	"github.com/inkline/studio-scheduler/internal/matching"
	"github.com/inkline/studio-scheduler/internal/models"
	"github.com/inkline/studio-scheduler/internal/notify"
	"github.com/inkline/studio-scheduler/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultDiscountPercent = 15

type WaitlistService interface {
	List(ctx context.Context, status *models.WaitlistStatus) ([]models.WaitlistEntry, error)
	Candidates(ctx context.Context, slotID uint) ([]models.WaitlistEntry, error)
	SendOffer(ctx context.Context, entryID uint, slotID *uint, discount *int) (*models.WaitlistEntry, error)
	OfferFreedSlot(ctx context.Context, slotID uint) (*models.WaitlistEntry, error)
	Convert(ctx context.Context, entryID uint, bookingID *uint) (*models.WaitlistEntry, error)
	Expire(ctx context.Context, entryID uint) (*models.WaitlistEntry, error)
	ExpireDue(ctx context.Context) (int, error)
}

type waitlistService struct {
	repos    Repositories
	notifier notify.Dispatcher
	opts     Options
	log      *zap.Logger
}

func NewWaitlistService(repos Repositories, notifier notify.Dispatcher, opts Options, log *zap.Logger) WaitlistService {
	return &waitlistService{repos: repos, notifier: notifier, opts: opts, log: log}
}

func (s *waitlistService) discount() int {
	if s.opts.DiscountPercent != nil {
		return *s.opts.DiscountPercent
	}
	return defaultDiscountPercent
}

func (s *waitlistService) List(ctx context.Context, status *models.WaitlistStatus) ([]models.WaitlistEntry, error) {
	return s.repos.Waitlist.List(ctx, status)
}

// Candidates ranks waiting entries that would take the slot.
func (s *waitlistService) Candidates(ctx context.Context, slotID uint) ([]models.WaitlistEntry, error) {
	slot, city, err := s.slotWithCity(ctx, s.repos.Tx.GetDB(), slotID)
	if err != nil {
		return nil, err
	}
	entries, err := s.repos.Waitlist.FindWaiting(ctx, s.repos.Tx.GetDB())
	if err != nil {
		return nil, err
	}
	return matching.RankWaitlist(entries, *slot, *city, s.discount()), nil
}

func (s *waitlistService) slotWithCity(ctx context.Context, tx *gorm.DB, slotID uint) (*models.AvailabilitySlot, *models.CityConfig, error) {
	slot, err := s.repos.Slots.FindByID(ctx, tx, slotID)
	if err != nil {
		return nil, nil, notFound(err, ErrSlotNotFound)
	}
	city, err := s.repos.Cities.FindByID(ctx, tx, slot.CityID)
	if err != nil {
		return nil, nil, notFound(err, ErrCityNotFound)
	}
	return slot, city, nil
}

// SendOffer marks the entry as offered and then notifies the client. A failed
// send leaves the offer recorded and is reported as an external error.
func (s *waitlistService) SendOffer(ctx context.Context, entryID uint, slotID *uint, discount *int) (*models.WaitlistEntry, error) {
	pct := s.discount()
	if discount != nil {
		pct = *discount
	}
	if pct < 0 || pct > 100 {
		return nil, ErrInvalidDiscount
	}

	var (
		slot *models.AvailabilitySlot
		city *models.CityConfig
	)
	if slotID != nil {
		var err error
		if slot, city, err = s.slotWithCity(ctx, s.repos.Tx.GetDB(), *slotID); err != nil {
			return nil, err
		}
	}

	now := s.opts.now()
	var entry *models.WaitlistEntry
	err := s.repos.Tx.Transaction(ctx, func(tx *gorm.DB) error {
		e, err := s.repos.Waitlist.FindByIDForUpdate(ctx, tx, entryID)
		if err != nil {
			return notFound(err, ErrWaitlistEntryNotFound)
		}
		to, err := lifecycle.NextWaitlist(e.Status, lifecycle.EvOffer)
		if err != nil {
			return err
		}
		if strings.TrimSpace(e.ClientEmail) == "" {
			return apperr.Validation("waitlist entry %d has no client email", e.ID)
		}

		updates := map[string]any{
			"status":              to,
			"offers_sent_count":   e.OffersSentCount + 1,
			"last_offer_sent_at":  now,
			"last_offer_discount": pct,
			"last_offer_slot_id":  slotID,
		}
		if err := s.repos.Waitlist.UpdateStatus(ctx, tx, e.ID, e.Status, updates); err != nil {
			return staleStatus(err)
		}
		e.Status = to
		e.OffersSentCount++
		e.LastOfferSentAt = &now
		e.LastOfferDiscount = pct
		e.LastOfferSlotID = slotID
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	payload := notify.Payload{
		"entry_id":         entry.ID,
		"client_name":      entry.ClientName,
		"discount_percent": pct,
	}
	if slot != nil {
		payload["slot_id"] = slot.ID
		payload["city"] = city.Name
		payload["date"] = slot.Date.Format("2006-01-02")
		payload["time"] = slot.StartTime
	}
	if err := s.notifier.Send(ctx, notify.KindWaitlistOffer, entry.ClientEmail, payload); err != nil {
		s.log.Warn("waitlist offer not delivered", zap.Uint("entry_id", entry.ID), zap.Error(err))
		return entry, apperr.External("send waitlist offer", err)
	}
	return entry, nil
}

// OfferFreedSlot offers a newly released slot to the best-ranked waiting
// entry. It returns nil when nobody on the waitlist fits.
func (s *waitlistService) OfferFreedSlot(ctx context.Context, slotID uint) (*models.WaitlistEntry, error) {
	slot, err := s.repos.Slots.FindByID(ctx, s.repos.Tx.GetDB(), slotID)
	if err != nil {
		return nil, notFound(err, ErrSlotNotFound)
	}
	if !slot.Available() {
		return nil, ErrSlotTaken
	}

	candidates, err := s.Candidates(ctx, slotID)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		entry, err := s.SendOffer(ctx, c.ID, &slotID, nil)
		if errors.Is(err, apperr.ErrConflict) || errors.Is(err, apperr.ErrValidation) {
			// Entry moved on since ranking or cannot be reached; try the next one.
			continue
		}
		if entry != nil {
			s.log.Info("freed slot offered", zap.Uint("slot_id", slotID), zap.Uint("entry_id", entry.ID))
		}
		return entry, err
	}

	s.log.Info("no waitlist candidate for freed slot", zap.Uint("slot_id", slotID))
	return nil, nil
}

func (s *waitlistService) Convert(ctx context.Context, entryID uint, bookingID *uint) (*models.WaitlistEntry, error) {
	return s.move(ctx, entryID, lifecycle.EvConvert, func(e *models.WaitlistEntry, updates map[string]any) {
		if bookingID != nil {
			updates["converted_booking_id"] = *bookingID
			e.ConvertedBookingID = bookingID
		}
	})
}

func (s *waitlistService) Expire(ctx context.Context, entryID uint) (*models.WaitlistEntry, error) {
	return s.move(ctx, entryID, lifecycle.EvExpire, nil)
}

func (s *waitlistService) move(ctx context.Context, entryID uint, ev lifecycle.WaitlistEvent, extra func(*models.WaitlistEntry, map[string]any)) (*models.WaitlistEntry, error) {
	var entry *models.WaitlistEntry
	err := s.repos.Tx.Transaction(ctx, func(tx *gorm.DB) error {
		e, err := s.repos.Waitlist.FindByIDForUpdate(ctx, tx, entryID)
		if err != nil {
			return notFound(err, ErrWaitlistEntryNotFound)
		}
		to, err := lifecycle.NextWaitlist(e.Status, ev)
		if err != nil {
			return err
		}
		updates := map[string]any{"status": to}
		if extra != nil {
			extra(e, updates)
		}
		if err := s.repos.Waitlist.UpdateStatus(ctx, tx, e.ID, e.Status, updates); err != nil {
			return staleStatus(err)
		}
		e.Status = to
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ExpireDue expires every open entry whose expiry time has passed.
func (s *waitlistService) ExpireDue(ctx context.Context) (int, error) {
	now := s.opts.now()
	expired := 0
	err := s.repos.Tx.Transaction(ctx, func(tx *gorm.DB) error {
		due, err := s.repos.Waitlist.FindDue(ctx, tx, now)
		if err != nil {
			return err
		}
		for _, e := range due {
			to, err := lifecycle.NextWaitlist(e.Status, lifecycle.EvExpire)
			if err != nil {
				continue
			}
			err = s.repos.Waitlist.UpdateStatus(ctx, tx, e.ID, e.Status, map[string]any{"status": to})
			if errors.Is(err, repository.ErrStaleRow) {
				continue
			}
			if err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}
