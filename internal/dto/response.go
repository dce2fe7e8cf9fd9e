package dto

import (
	"time"

	"github.com/inkline/studio-scheduler/internal/models"
)

type SuggestionResponse struct {
	ID              uint                    `json:"id"`
	BookingID       uint                    `json:"booking_id"`
	SlotID          uint                    `json:"slot_id"`
	SuggestedDate   string                  `json:"suggested_date"`
	SuggestedTime   string                  `json:"suggested_time"`
	SuggestedCity   string                  `json:"suggested_city"`
	ConfidenceScore float64                 `json:"confidence_score"`
	Reasoning       string                  `json:"reasoning"`
	Status          models.SuggestionStatus `json:"status"`
	Conflicts       []string                `json:"conflicts,omitempty"`
	SentAt          *time.Time              `json:"sent_at,omitempty"`
	RespondedAt     *time.Time              `json:"responded_at,omitempty"`
	SessionEventID  *uint                   `json:"session_event_id,omitempty"`
	// Warning is set when the change committed but a follow-up delivery failed.
	Warning string `json:"warning,omitempty"`
}

type MatchRunResponse struct {
	Count       int                  `json:"count"`
	Suggestions []SuggestionResponse `json:"suggestions"`
}

type BookingResponse struct {
	ID            uint                 `json:"id"`
	ClientName    string               `json:"client_name"`
	ClientEmail   string               `json:"client_email"`
	RequestedCity string               `json:"requested_city"`
	PipelineStage models.PipelineStage `json:"pipeline_stage"`
	Status        models.BookingStatus `json:"status"`
	Priority      models.Priority      `json:"priority"`
	ScheduledDate string               `json:"scheduled_date,omitempty"`
	ScheduledTime string               `json:"scheduled_time,omitempty"`
	CityID        *uint                `json:"city_id,omitempty"`
	SlotID        *uint                `json:"slot_id,omitempty"`
	DepositPaid   bool                 `json:"deposit_paid"`
	DepositAmount float64              `json:"deposit_amount"`
	TotalAmount   float64              `json:"total_amount"`
	Notes         string               `json:"notes,omitempty"`
	FollowUpDate  string               `json:"follow_up_date,omitempty"`
	UpdatedAt     time.Time            `json:"updated_at"`
	Warning       string               `json:"warning,omitempty"`
}

type ActivityResponse struct {
	ID           uint                `json:"id"`
	ActivityType models.ActivityType `json:"activity_type"`
	Description  string              `json:"description"`
	Metadata     map[string]any      `json:"metadata,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

type WaitlistEntryResponse struct {
	ID                 uint                  `json:"id"`
	ClientName         string                `json:"client_name"`
	ClientEmail        string                `json:"client_email"`
	PreferredCities    []string              `json:"preferred_cities,omitempty"`
	MatchScore         int                   `json:"match_score"`
	Status             models.WaitlistStatus `json:"status"`
	OffersSentCount    int                   `json:"offers_sent_count"`
	LastOfferSentAt    *time.Time            `json:"last_offer_sent_at,omitempty"`
	LastOfferSlotID    *uint                 `json:"last_offer_slot_id,omitempty"`
	LastOfferDiscount  int                   `json:"last_offer_discount,omitempty"`
	ConvertedBookingID *uint                 `json:"converted_booking_id,omitempty"`
	ExpiresAt          *time.Time            `json:"expires_at,omitempty"`
	Warning            string                `json:"warning,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

const dateLayout = "2006-01-02"

func ToSuggestionResponse(s *models.Suggestion) SuggestionResponse {
	return SuggestionResponse{
		ID:              s.ID,
		BookingID:       s.BookingID,
		SlotID:          s.SlotID,
		SuggestedDate:   s.SuggestedDate.Format(dateLayout),
		SuggestedTime:   s.SuggestedTime,
		SuggestedCity:   s.SuggestedCity,
		ConfidenceScore: s.ConfidenceScore,
		Reasoning:       s.Reasoning,
		Status:          s.Status,
		Conflicts:       s.Conflicts,
		SentAt:          s.SentAt,
		RespondedAt:     s.RespondedAt,
		SessionEventID:  s.SessionEventID,
	}
}

func ToSuggestionResponses(list []models.Suggestion) []SuggestionResponse {
	resp := make([]SuggestionResponse, len(list))
	for i := range list {
		resp[i] = ToSuggestionResponse(&list[i])
	}
	return resp
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	resp := BookingResponse{
		ID:            b.ID,
		ClientName:    b.ClientName,
		ClientEmail:   b.ClientEmail,
		RequestedCity: b.RequestedCity,
		PipelineStage: b.Stage(),
		Status:        b.Status,
		Priority:      b.Priority,
		CityID:        b.CityID,
		SlotID:        b.SlotID,
		DepositPaid:   b.DepositPaid,
		DepositAmount: b.DepositAmount,
		TotalAmount:   b.TotalAmount,
		Notes:         b.Notes,
		UpdatedAt:     b.UpdatedAt,
	}
	if b.ScheduledDate != nil {
		resp.ScheduledDate = b.ScheduledDate.Format(dateLayout)
	}
	if b.ScheduledTime != nil {
		resp.ScheduledTime = *b.ScheduledTime
	}
	if b.FollowUpDate != nil {
		resp.FollowUpDate = b.FollowUpDate.Format(dateLayout)
	}
	return resp
}

func ToActivityResponses(list []models.ActivityLog) []ActivityResponse {
	resp := make([]ActivityResponse, len(list))
	for i, a := range list {
		resp[i] = ActivityResponse{
			ID:           a.ID,
			ActivityType: a.ActivityType,
			Description:  a.Description,
			Metadata:     a.Metadata,
			CreatedAt:    a.CreatedAt,
		}
	}
	return resp
}

func ToWaitlistEntryResponse(e *models.WaitlistEntry) WaitlistEntryResponse {
	return WaitlistEntryResponse{
		ID:                 e.ID,
		ClientName:         e.ClientName,
		ClientEmail:        e.ClientEmail,
		PreferredCities:    e.PreferredCities,
		MatchScore:         e.MatchScore,
		Status:             e.Status,
		OffersSentCount:    e.OffersSentCount,
		LastOfferSentAt:    e.LastOfferSentAt,
		LastOfferSlotID:    e.LastOfferSlotID,
		LastOfferDiscount:  e.LastOfferDiscount,
		ConvertedBookingID: e.ConvertedBookingID,
		ExpiresAt:          e.ExpiresAt,
	}
}

func ToWaitlistEntryResponses(list []models.WaitlistEntry) []WaitlistEntryResponse {
	resp := make([]WaitlistEntryResponse, len(list))
	for i := range list {
		resp[i] = ToWaitlistEntryResponse(&list[i])
	}
	return resp
}
