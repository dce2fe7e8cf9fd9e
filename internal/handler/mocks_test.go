package handler

import (
	"context"

	"github.com/inkline/studio-scheduler/internal/models"
)

// --- Mock MatchService ---

type mockMatchService struct {
	runFn  func(ctx context.Context) ([]models.Suggestion, error)
	listFn func(ctx context.Context, status *models.SuggestionStatus) ([]models.Suggestion, error)
}

func (m *mockMatchService) RunAnalysis(ctx context.Context) ([]models.Suggestion, error) {
	return m.runFn(ctx)
}
func (m *mockMatchService) ListSuggestions(ctx context.Context, status *models.SuggestionStatus) ([]models.Suggestion, error) {
	return m.listFn(ctx, status)
}

// --- Mock SuggestionService ---

type mockSuggestionService struct {
	getFn      func(ctx context.Context, id uint) (*models.Suggestion, error)
	actFn      func(ctx context.Context, action string, id uint) (*models.Suggestion, error)
	callbackFn func(ctx context.Context, token string) (*models.Suggestion, error)
}

func (m *mockSuggestionService) Get(ctx context.Context, id uint) (*models.Suggestion, error) {
	return m.getFn(ctx, id)
}
func (m *mockSuggestionService) Send(ctx context.Context, id uint) (*models.Suggestion, error) {
	return m.actFn(ctx, "send", id)
}
func (m *mockSuggestionService) Confirm(ctx context.Context, id uint) (*models.Suggestion, error) {
	return m.actFn(ctx, "confirm", id)
}
func (m *mockSuggestionService) Decline(ctx context.Context, id uint) (*models.Suggestion, error) {
	return m.actFn(ctx, "decline", id)
}
func (m *mockSuggestionService) Accept(ctx context.Context, id uint) (*models.Suggestion, error) {
	return m.actFn(ctx, "accept", id)
}
func (m *mockSuggestionService) Dismiss(ctx context.Context, id uint) (*models.Suggestion, error) {
	return m.actFn(ctx, "dismiss", id)
}
func (m *mockSuggestionService) Reject(ctx context.Context, id uint) (*models.Suggestion, error) {
	return m.actFn(ctx, "reject", id)
}
func (m *mockSuggestionService) HandleCallback(ctx context.Context, token string) (*models.Suggestion, error) {
	return m.callbackFn(ctx, token)
}

// --- Mock PipelineService ---

type mockPipelineService struct {
	getFn        func(ctx context.Context, id uint) (*models.Booking, error)
	transitionFn func(ctx context.Context, id uint, target string) (*models.Booking, error)
	updateFn     func(ctx context.Context, id uint, field, value string) (*models.Booking, error)
	activityFn   func(ctx context.Context, id uint) ([]models.ActivityLog, error)
}

func (m *mockPipelineService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	return m.getFn(ctx, id)
}
func (m *mockPipelineService) Transition(ctx context.Context, id uint, target string) (*models.Booking, error) {
	return m.transitionFn(ctx, id, target)
}
func (m *mockPipelineService) UpdateField(ctx context.Context, id uint, field, value string) (*models.Booking, error) {
	return m.updateFn(ctx, id, field, value)
}
func (m *mockPipelineService) ListActivity(ctx context.Context, id uint) ([]models.ActivityLog, error) {
	return m.activityFn(ctx, id)
}

// --- Mock WaitlistService ---

type mockWaitlistService struct {
	listFn       func(ctx context.Context, status *models.WaitlistStatus) ([]models.WaitlistEntry, error)
	candidatesFn func(ctx context.Context, slotID uint) ([]models.WaitlistEntry, error)
	offerFn      func(ctx context.Context, id uint, slotID *uint, discount *int) (*models.WaitlistEntry, error)
	convertFn    func(ctx context.Context, id uint, bookingID *uint) (*models.WaitlistEntry, error)
	expireFn     func(ctx context.Context, id uint) (*models.WaitlistEntry, error)
}

func (m *mockWaitlistService) List(ctx context.Context, status *models.WaitlistStatus) ([]models.WaitlistEntry, error) {
	return m.listFn(ctx, status)
}
func (m *mockWaitlistService) Candidates(ctx context.Context, slotID uint) ([]models.WaitlistEntry, error) {
	return m.candidatesFn(ctx, slotID)
}
func (m *mockWaitlistService) SendOffer(ctx context.Context, id uint, slotID *uint, discount *int) (*models.WaitlistEntry, error) {
	return m.offerFn(ctx, id, slotID, discount)
}
func (m *mockWaitlistService) OfferFreedSlot(ctx context.Context, slotID uint) (*models.WaitlistEntry, error) {
	return nil, nil
}
func (m *mockWaitlistService) Convert(ctx context.Context, id uint, bookingID *uint) (*models.WaitlistEntry, error) {
	return m.convertFn(ctx, id, bookingID)
}
func (m *mockWaitlistService) Expire(ctx context.Context, id uint) (*models.WaitlistEntry, error) {
	return m.expireFn(ctx, id)
}
func (m *mockWaitlistService) ExpireDue(ctx context.Context) (int, error) {
	return 0, nil
}
