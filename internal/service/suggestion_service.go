package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inkline/studio-scheduler/internal/apperr"
	"github.com/inkline/studio-scheduler/internal/lifecycle"
	"github.com/inkline/studio-scheduler/internal/models"
	"github.com/inkline/studio-scheduler/internal/notify"
	"github.com/inkline/studio-scheduler/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSessionMinutes = 360

type SuggestionService interface {
	Get(ctx context.Context, id uint) (*models.Suggestion, error)
	Send(ctx context.Context, id uint) (*models.Suggestion, error)
	Confirm(ctx context.Context, id uint) (*models.Suggestion, error)
	Decline(ctx context.Context, id uint) (*models.Suggestion, error)
	Accept(ctx context.Context, id uint) (*models.Suggestion, error)
	Dismiss(ctx context.Context, id uint) (*models.Suggestion, error)
	Reject(ctx context.Context, id uint) (*models.Suggestion, error)
	HandleCallback(ctx context.Context, token string) (*models.Suggestion, error)
}

type suggestionService struct {
	repos     Repositories
	stager    *stager
	notifier  notify.Dispatcher
	publisher EventPublisher
	opts      Options
	log       *zap.Logger
}

func NewSuggestionService(repos Repositories, notifier notify.Dispatcher, publisher EventPublisher, opts Options, log *zap.Logger) SuggestionService {
	return &suggestionService{
		repos:     repos,
		stager:    &stager{bookings: repos.Bookings, activity: repos.Activity, strict: opts.StrictPipeline},
		notifier:  notifier,
		publisher: publisher,
		opts:      opts,
		log:       log,
	}
}

func (s *suggestionService) Get(ctx context.Context, id uint) (*models.Suggestion, error) {
	sg, err := s.repos.Suggestions.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrSuggestionNotFound)
	}
	return sg, nil
}

func (s *suggestionService) Send(ctx context.Context, id uint) (*models.Suggestion, error) {
	return s.apply(ctx, id, lifecycle.EvSend)
}

func (s *suggestionService) Confirm(ctx context.Context, id uint) (*models.Suggestion, error) {
	return s.apply(ctx, id, lifecycle.EvConfirm)
}

func (s *suggestionService) Decline(ctx context.Context, id uint) (*models.Suggestion, error) {
	return s.apply(ctx, id, lifecycle.EvDecline)
}

func (s *suggestionService) Accept(ctx context.Context, id uint) (*models.Suggestion, error) {
	return s.apply(ctx, id, lifecycle.EvAccept)
}

func (s *suggestionService) Dismiss(ctx context.Context, id uint) (*models.Suggestion, error) {
	return s.apply(ctx, id, lifecycle.EvDismiss)
}

func (s *suggestionService) Reject(ctx context.Context, id uint) (*models.Suggestion, error) {
	return s.apply(ctx, id, lifecycle.EvReject)
}

// HandleCallback maps a client's confirm or decline link onto the matching transition.
func (s *suggestionService) HandleCallback(ctx context.Context, token string) (*models.Suggestion, error) {
	sg, err := s.repos.Suggestions.FindByToken(ctx, token)
	if err != nil {
		return nil, notFound(err, ErrSuggestionNotFound)
	}
	if sg.ConfirmToken != nil && *sg.ConfirmToken == token {
		return s.Confirm(ctx, sg.ID)
	}
	return s.Decline(ctx, sg.ID)
}

// committed carries what the transaction decided so effects can run after commit.
type committed struct {
	suggestion *models.Suggestion
	booking    *models.Booking
	transition lifecycle.SuggestionTransition
	scheduled  *SessionScheduledMessage
}

func (s *suggestionService) apply(ctx context.Context, id uint, ev lifecycle.SuggestionEvent) (*models.Suggestion, error) {
	now := s.opts.now()
	var out committed

	err := s.repos.Tx.Transaction(ctx, func(tx *gorm.DB) error {
		sg, err := s.repos.Suggestions.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return notFound(err, ErrSuggestionNotFound)
		}

		tr, err := lifecycle.NextSuggestion(sg.Status, ev)
		if err != nil {
			return err
		}

		booking, err := s.repos.Bookings.FindByIDForUpdate(ctx, tx, sg.BookingID)
		if err != nil {
			return notFound(err, ErrBookingNotFound)
		}

		extra := map[string]any{}
		switch {
		case tr.Has(lifecycle.EffectNotifyClient):
			if strings.TrimSpace(booking.ClientEmail) == "" {
				return ErrMissingClientEmail
			}
			confirm, decline := uuid.NewString(), uuid.NewString()
			extra["confirm_token"] = confirm
			extra["decline_token"] = decline
			extra["sent_at"] = now
			sg.ConfirmToken, sg.DeclineToken, sg.SentAt = &confirm, &decline, &now

		case tr.Has(lifecycle.EffectSchedule):
			msg, err := s.schedule(ctx, tx, sg, booking, now)
			if err != nil {
				return err
			}
			extra["session_event_id"] = msg.SessionEventID
			sg.SessionEventID = &msg.SessionEventID
			out.scheduled = msg
		}
		if tr.To == models.SuggestionClientConfirmed || tr.To == models.SuggestionClientDeclined {
			extra["responded_at"] = now
			sg.RespondedAt = &now
		}

		if err := s.repos.Suggestions.UpdateStatus(ctx, tx, sg.ID, tr.From, tr.To, extra); err != nil {
			if errors.Is(err, repository.ErrStaleRow) {
				return ErrStatusChanged
			}
			return err
		}
		sg.Status = tr.To

		if err := s.repos.Activity.Append(ctx, tx, &models.ActivityLog{
			BookingID:    booking.ID,
			ActivityType: models.ActivityFieldUpdate,
			Description:  fmt.Sprintf("Suggestion #%d moved from %s to %s", sg.ID, tr.From, tr.To),
			Metadata: map[string]any{
				"suggestion_id": sg.ID,
				"field":         "suggestion_status",
				"old":           tr.From,
				"new":           tr.To,
			},
			CreatedAt: now,
		}); err != nil {
			return err
		}

		out.suggestion, out.booking, out.transition = sg, booking, tr
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out.suggestion, s.afterCommit(ctx, out)
}

// schedule is the finalising effect: reserve the slot, write the session
// event and move the booking to scheduled, all in the caller's transaction.
func (s *suggestionService) schedule(ctx context.Context, tx *gorm.DB, sg *models.Suggestion, b *models.Booking, now time.Time) (*SessionScheduledMessage, error) {
	if lifecycle.IsTerminalStage(b.Stage()) {
		return nil, ErrBookingClosed
	}
	if b.SlotID != nil || b.ScheduledDate != nil || b.Stage() == models.StageScheduled {
		return nil, ErrBookingAlreadyScheduled
	}

	city, err := s.repos.Cities.FindByID(ctx, tx, sg.SuggestedCityID)
	if err != nil {
		return nil, notFound(err, ErrCityNotFound)
	}
	slot, err := s.repos.Slots.FindByID(ctx, tx, sg.SlotID)
	if err != nil {
		return nil, notFound(err, ErrSlotNotFound)
	}
	if !slot.Available() {
		return nil, ErrSlotTaken
	}

	start, err := sessionStart(sg.SuggestedDate, sg.SuggestedTime)
	if err != nil {
		return nil, err
	}
	minutes := city.SessionMinutes
	if minutes <= 0 {
		minutes = defaultSessionMinutes
	}
	end := start.Add(time.Duration(minutes) * time.Minute)

	if err := s.repos.Slots.Reserve(ctx, tx, slot.ID, slot.Version, b.ID); err != nil {
		if errors.Is(err, repository.ErrStaleRow) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	eventID, err := s.repos.Sessions.CreateEvent(ctx, tx, b.ID, city.ID, start, end, map[string]any{
		"suggestion_id":    sg.ID,
		"slot_id":          slot.ID,
		"confidence_score": sg.ConfidenceScore,
	})
	if err != nil {
		return nil, fmt.Errorf("create session event: %w", err)
	}

	date, tm := sg.SuggestedDate, sg.SuggestedTime
	extra := map[string]any{
		"scheduled_date": date,
		"scheduled_time": tm,
		"city_id":        city.ID,
		"slot_id":        slot.ID,
	}
	meta := map[string]any{"suggestion_id": sg.ID, "confidence_score": sg.ConfidenceScore}
	if _, err := s.stager.move(ctx, tx, b, models.StageScheduled, extra, meta, now); err != nil {
		return nil, err
	}
	b.ScheduledDate, b.ScheduledTime, b.CityID, b.SlotID = &date, &tm, &city.ID, &slot.ID

	return &SessionScheduledMessage{
		BookingID:      b.ID,
		SuggestionID:   sg.ID,
		SessionEventID: eventID,
		CityID:         city.ID,
		StartsAt:       start,
		EndsAt:         end,
	}, nil
}

func (s *suggestionService) afterCommit(ctx context.Context, out committed) error {
	sg, b := out.suggestion, out.booking

	if out.transition.Has(lifecycle.EffectNotifyClient) {
		payload := notify.Payload{
			"suggestion_id":    sg.ID,
			"booking_id":       b.ID,
			"client_name":      b.ClientName,
			"city":             sg.SuggestedCity,
			"date":             sg.SuggestedDate.Format("2006-01-02"),
			"time":             sg.SuggestedTime,
			"confidence_score": sg.ConfidenceScore,
			"confirm_token":    *sg.ConfirmToken,
			"decline_token":    *sg.DeclineToken,
			"confirm_url":      s.callbackURL(*sg.ConfirmToken),
			"decline_url":      s.callbackURL(*sg.DeclineToken),
		}
		if err := s.notifier.Send(ctx, notify.KindSuggestionProposal, b.ClientEmail, payload); err != nil {
			s.log.Warn("suggestion proposal not delivered",
				zap.Uint("suggestion_id", sg.ID), zap.Uint("booking_id", b.ID), zap.Error(err))
			return apperr.External("send suggestion proposal", err)
		}
		s.recordEmail(ctx, b.ID, fmt.Sprintf("Sent date proposal for %s on %s", sg.SuggestedCity, sg.SuggestedDate.Format("2006-01-02")), sg.ID)
	}

	if out.scheduled != nil && s.publisher != nil {
		if err := s.publisher.Publish(RouteSessionScheduled, out.scheduled); err != nil {
			s.log.Warn("session.scheduled not published",
				zap.Uint("booking_id", b.ID), zap.Uint("session_event_id", out.scheduled.SessionEventID), zap.Error(err))
			return apperr.External("publish session.scheduled", err)
		}
	}
	return nil
}

func (s *suggestionService) recordEmail(ctx context.Context, bookingID uint, description string, suggestionID uint) {
	err := s.repos.Activity.Append(ctx, nil, &models.ActivityLog{
		BookingID:    bookingID,
		ActivityType: models.ActivityEmailSent,
		Description:  description,
		Metadata:     map[string]any{"suggestion_id": suggestionID, "kind": notify.KindSuggestionProposal},
		CreatedAt:    s.opts.now(),
	})
	if err != nil {
		s.log.Warn("email_sent activity not recorded", zap.Uint("booking_id", bookingID), zap.Error(err))
	}
}

func (s *suggestionService) callbackURL(token string) string {
	return strings.TrimRight(s.opts.CallbackBaseURL, "/") + "/api/v1/callbacks/" + token
}

func sessionStart(date time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid session time %q", hhmm)
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
