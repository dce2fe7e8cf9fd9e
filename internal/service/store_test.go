package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/inkline/studio-scheduler/internal/models"
	"github.com/inkline/studio-scheduler/internal/notify"
	"github.com/inkline/studio-scheduler/internal/repository"
	"gorm.io/gorm"
)

// --- In-memory store ---
//
// memStore stands in for Postgres. Transaction holds txMu for the whole
// callback, which serialises writers the way row locks do, and restores a
// snapshot when the callback fails.

type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	bookings    map[uint]models.Booking
	slots       map[uint]models.AvailabilitySlot
	cities      map[uint]models.CityConfig
	suggestions map[uint]models.Suggestion
	waitlist    map[uint]models.WaitlistEntry
	activity    []models.ActivityLog
	sessions    []models.SessionEvent
	seq         uint

	sessionErr error
}

type snapshot struct {
	bookings    map[uint]models.Booking
	slots       map[uint]models.AvailabilitySlot
	suggestions map[uint]models.Suggestion
	waitlist    map[uint]models.WaitlistEntry
	activity    []models.ActivityLog
	sessions    []models.SessionEvent
}

func newMemStore() *memStore {
	return &memStore{
		bookings:    map[uint]models.Booking{},
		slots:       map[uint]models.AvailabilitySlot{},
		cities:      map[uint]models.CityConfig{},
		suggestions: map[uint]models.Suggestion{},
		waitlist:    map[uint]models.WaitlistEntry{},
		seq:         1000,
	}
}

func (m *memStore) repos() Repositories {
	return Repositories{
		Tx:          m,
		Bookings:    memBookings{m},
		Slots:       memSlots{m},
		Cities:      memCities{m},
		Suggestions: memSuggestions{m},
		Waitlist:    memWaitlist{m},
		Activity:    memActivity{m},
		Sessions:    memSessions{m},
	}
}

func (m *memStore) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snap := snapshot{
		bookings:    maps.Clone(m.bookings),
		slots:       maps.Clone(m.slots),
		suggestions: maps.Clone(m.suggestions),
		waitlist:    maps.Clone(m.waitlist),
		activity:    slices.Clone(m.activity),
		sessions:    slices.Clone(m.sessions),
	}
	m.mu.Unlock()

	if err := fn(nil); err != nil {
		m.mu.Lock()
		m.bookings, m.slots, m.suggestions = snap.bookings, snap.slots, snap.suggestions
		m.waitlist, m.activity, m.sessions = snap.waitlist, snap.activity, snap.sessions
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) GetDB() *gorm.DB { return nil }

func (m *memStore) nextID() uint {
	m.seq++
	return m.seq
}

// accessors used by assertions

func (m *memStore) booking(id uint) models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookings[id]
}

func (m *memStore) slot(id uint) models.AvailabilitySlot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[id]
}

func (m *memStore) suggestion(id uint) models.Suggestion {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.suggestions[id]
}

func (m *memStore) entry(id uint) models.WaitlistEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waitlist[id]
}

func (m *memStore) activityOf(bookingID uint, typ models.ActivityType) []models.ActivityLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ActivityLog
	for _, a := range m.activity {
		if a.BookingID == bookingID && a.ActivityType == typ {
			out = append(out, a)
		}
	}
	return out
}

func (m *memStore) sessionsOf(bookingID uint) []models.SessionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SessionEvent
	for _, s := range m.sessions {
		if s.BookingID == bookingID {
			out = append(out, s)
		}
	}
	return out
}

// --- Bookings ---

type memBookings struct{ *memStore }

func (r memBookings) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (r memBookings) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r memBookings) FindUnscheduled(ctx context.Context, tx *gorm.DB) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		switch b.Stage() {
		case models.StageScheduled, models.StageCompleted, models.StageCancelled:
			continue
		}
		if b.ScheduledDate == nil {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memBookings) Update(ctx context.Context, tx *gorm.DB, id uint, updates map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return repository.ErrStaleRow
	}
	for col, v := range updates {
		switch col {
		case "pipeline_stage":
			b.PipelineStage = v.(models.PipelineStage)
		case "status":
			b.Status = v.(models.BookingStatus)
		case "deposit_paid":
			b.DepositPaid = v.(bool)
		case "references_requested_at":
			b.ReferencesRequestedAt = timePtr(v)
		case "references_received_at":
			b.ReferencesReceivedAt = timePtr(v)
		case "deposit_requested_at":
			b.DepositRequestedAt = timePtr(v)
		case "deposit_paid_at":
			b.DepositPaidAt = timePtr(v)
		case "scheduled_date":
			b.ScheduledDate = timePtr(v)
		case "scheduled_time":
			if v == nil {
				b.ScheduledTime = nil
			} else {
				s := v.(string)
				b.ScheduledTime = &s
			}
		case "city_id":
			b.CityID = uintPtr(v)
		case "slot_id":
			b.SlotID = uintPtr(v)
		case "notes":
			b.Notes = v.(string)
		case "priority":
			b.Priority = v.(models.Priority)
		case "follow_up_date":
			b.FollowUpDate = timePtr(v)
		case "deposit_amount":
			b.DepositAmount = v.(float64)
		case "total_amount":
			b.TotalAmount = v.(float64)
		default:
			panic(fmt.Sprintf("memBookings: unexpected column %q", col))
		}
	}
	r.bookings[id] = b
	return nil
}

// --- Slots ---

type memSlots struct{ *memStore }

func (r memSlots) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r memSlots) FindAvailable(ctx context.Context, tx *gorm.DB) ([]models.AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AvailabilitySlot
	for _, s := range r.slots {
		if s.Available() {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memSlots) Reserve(ctx context.Context, tx *gorm.DB, slotID uint, version int, bookingID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotID]
	if !ok || s.Version != version || s.ReservedBookingID != nil {
		return repository.ErrStaleRow
	}
	s.ReservedBookingID = &bookingID
	s.Version++
	r.slots[slotID] = s
	return nil
}

func (r memSlots) Release(ctx context.Context, tx *gorm.DB, slotID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotID]
	if !ok {
		return repository.ErrStaleRow
	}
	s.ReservedBookingID = nil
	s.Version++
	r.slots[slotID] = s
	return nil
}

// --- Cities ---

type memCities struct{ *memStore }

func (r memCities) FindAll(ctx context.Context, tx *gorm.DB) ([]models.CityConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.CityConfig, 0, len(r.cities))
	for _, c := range r.cities {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memCities) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.CityConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cities[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

// --- Suggestions ---

type memSuggestions struct{ *memStore }

func (r memSuggestions) DeletePending(ctx context.Context, tx *gorm.DB) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.suggestions {
		if s.Status == models.SuggestionPending {
			delete(r.suggestions, id)
			n++
		}
	}
	return n, nil
}

func (r memSuggestions) CreateBatch(ctx context.Context, tx *gorm.DB, suggestions []models.Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range suggestions {
		suggestions[i].ID = r.nextID()
		r.suggestions[suggestions[i].ID] = suggestions[i]
	}
	return nil
}

func (r memSuggestions) FindByID(ctx context.Context, id uint) (*models.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.suggestions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r memSuggestions) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Suggestion, error) {
	return r.FindByID(ctx, id)
}

func (r memSuggestions) FindByToken(ctx context.Context, token string) (*models.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.suggestions {
		if (s.ConfirmToken != nil && *s.ConfirmToken == token) || (s.DeclineToken != nil && *s.DeclineToken == token) {
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memSuggestions) List(ctx context.Context, status *models.SuggestionStatus) ([]models.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Suggestion
	for _, s := range r.suggestions {
		if status == nil || s.Status == *status {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ConfidenceScore != out[j].ConfidenceScore {
			return out[i].ConfidenceScore > out[j].ConfidenceScore
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memSuggestions) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, from, to models.SuggestionStatus, extra map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.suggestions[id]
	if !ok || s.Status != from {
		return repository.ErrStaleRow
	}
	s.Status = to
	for col, v := range extra {
		switch col {
		case "confirm_token":
			t := v.(string)
			s.ConfirmToken = &t
		case "decline_token":
			t := v.(string)
			s.DeclineToken = &t
		case "sent_at":
			s.SentAt = timePtr(v)
		case "responded_at":
			s.RespondedAt = timePtr(v)
		case "session_event_id":
			s.SessionEventID = uintPtr(v)
		default:
			panic(fmt.Sprintf("memSuggestions: unexpected column %q", col))
		}
	}
	r.suggestions[id] = s
	return nil
}

// --- Waitlist ---

type memWaitlist struct{ *memStore }

func (r memWaitlist) FindByID(ctx context.Context, id uint) (*models.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.waitlist[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (r memWaitlist) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.WaitlistEntry, error) {
	return r.FindByID(ctx, id)
}

func (r memWaitlist) List(ctx context.Context, status *models.WaitlistStatus) ([]models.WaitlistEntry, error) {
	return r.filter(func(e models.WaitlistEntry) bool { return status == nil || e.Status == *status }), nil
}

func (r memWaitlist) FindWaiting(ctx context.Context, tx *gorm.DB) ([]models.WaitlistEntry, error) {
	return r.filter(func(e models.WaitlistEntry) bool { return e.Status == models.WaitlistWaiting }), nil
}

func (r memWaitlist) FindDue(ctx context.Context, tx *gorm.DB, now time.Time) ([]models.WaitlistEntry, error) {
	return r.filter(func(e models.WaitlistEntry) bool {
		open := e.Status == models.WaitlistWaiting || e.Status == models.WaitlistOfferSent
		return open && e.ExpiresAt != nil && e.ExpiresAt.Before(now)
	}), nil
}

func (r memWaitlist) filter(keep func(models.WaitlistEntry) bool) []models.WaitlistEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.WaitlistEntry
	for _, e := range r.waitlist {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memWaitlist) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, from models.WaitlistStatus, updates map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.waitlist[id]
	if !ok || e.Status != from {
		return repository.ErrStaleRow
	}
	for col, v := range updates {
		switch col {
		case "status":
			e.Status = v.(models.WaitlistStatus)
		case "offers_sent_count":
			e.OffersSentCount = v.(int)
		case "last_offer_sent_at":
			e.LastOfferSentAt = timePtr(v)
		case "last_offer_discount":
			e.LastOfferDiscount = v.(int)
		case "last_offer_slot_id":
			e.LastOfferSlotID = uintPtr(v)
		case "converted_booking_id":
			e.ConvertedBookingID = uintPtr(v)
		default:
			panic(fmt.Sprintf("memWaitlist: unexpected column %q", col))
		}
	}
	r.waitlist[id] = e
	return nil
}

// --- Activity and session events ---

type memActivity struct{ *memStore }

func (r memActivity) Append(ctx context.Context, tx *gorm.DB, entry *models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = r.nextID()
	r.activity = append(r.activity, *entry)
	return nil
}

func (r memActivity) FindByBooking(ctx context.Context, bookingID uint) ([]models.ActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ActivityLog
	for _, a := range r.activity {
		if a.BookingID == bookingID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memSessions struct{ *memStore }

func (r memSessions) CreateEvent(ctx context.Context, tx *gorm.DB, bookingID, cityID uint, start, end time.Time, metadata map[string]any) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessionErr != nil {
		return 0, r.sessionErr
	}
	ev := models.SessionEvent{
		ID:        r.nextID(),
		BookingID: bookingID,
		CityID:    cityID,
		StartsAt:  start,
		EndsAt:    end,
		Metadata:  metadata,
	}
	r.sessions = append(r.sessions, ev)
	return ev.ID, nil
}

func (r memSessions) FindByBooking(ctx context.Context, bookingID uint) ([]models.SessionEvent, error) {
	return r.sessionsOf(bookingID), nil
}

func timePtr(v any) *time.Time {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return &t
	case *time.Time:
		return t
	}
	panic(fmt.Sprintf("unexpected time value %T", v))
}

func uintPtr(v any) *uint {
	switch u := v.(type) {
	case nil:
		return nil
	case uint:
		return &u
	case *uint:
		return u
	}
	panic(fmt.Sprintf("unexpected id value %T", v))
}

// --- Notification and publishing fakes ---

type sentMessage struct {
	kind      notify.Kind
	recipient string
	payload   notify.Payload
}

type mockDispatcher struct {
	mu   sync.Mutex
	err  error
	sent []sentMessage
}

func (d *mockDispatcher) Send(ctx context.Context, kind notify.Kind, recipient string, payload notify.Payload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, sentMessage{kind: kind, recipient: recipient, payload: payload})
	return nil
}

type published struct {
	key     string
	payload any
}

type mockPublisher struct {
	mu   sync.Mutex
	err  error
	msgs []published
}

func (p *mockPublisher) Publish(routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{key: routingKey, payload: payload})
	return nil
}
