package service

import (
	"time"

	"github.com/inkline/studio-scheduler/internal/repository"
)

// Repositories bundles the stores the services share.
type Repositories struct {
	Tx          repository.Transactor
	Bookings    repository.BookingRepository
	Slots       repository.SlotRepository
	Cities      repository.CityRepository
	Suggestions repository.SuggestionRepository
	Waitlist    repository.WaitlistRepository
	Activity    repository.ActivityRepository
	Sessions    repository.SessionEventRepository
}

// EventPublisher broadcasts committed changes to other services. Publishing
// happens after commit and never rolls anything back.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type Options struct {
	StrictPipeline  bool
	CallbackBaseURL string
	// DiscountPercent is the waitlist offer discount. Nil means the default;
	// zero is an explicit no-discount offer.
	DiscountPercent *int
	Now             func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

type SessionScheduledMessage struct {
	BookingID      uint      `json:"booking_id"`
	SuggestionID   uint      `json:"suggestion_id"`
	SessionEventID uint      `json:"session_event_id"`
	CityID         uint      `json:"city_id"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
}

type SlotReleasedMessage struct {
	SlotID    uint `json:"slot_id"`
	BookingID uint `json:"booking_id"`
}

// Routing keys for messages published after commit.
const (
	RouteSessionScheduled = "session.scheduled"
	RouteSlotReleased     = "slot.released"
)
