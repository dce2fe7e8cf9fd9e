package models

import "time"

type SuggestionStatus string

const (
	SuggestionPending         SuggestionStatus = "pending"
	SuggestionSentToClient    SuggestionStatus = "sent_to_client"
	SuggestionClientConfirmed SuggestionStatus = "client_confirmed"
	SuggestionClientDeclined  SuggestionStatus = "client_declined"
	SuggestionAccepted        SuggestionStatus = "accepted"
	SuggestionDismissed       SuggestionStatus = "dismissed"
	SuggestionRejected        SuggestionStatus = "rejected"
)

type Suggestion struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	BookingID       uint             `gorm:"not null;index" json:"booking_id"`
	SlotID          uint             `gorm:"not null;index" json:"slot_id"`
	SuggestedDate   time.Time        `gorm:"type:date;not null" json:"suggested_date"`
	SuggestedTime   string           `gorm:"type:varchar(5);not null" json:"suggested_time"`
	SuggestedCityID uint             `gorm:"not null" json:"suggested_city_id"`
	SuggestedCity   string           `json:"suggested_city"`
	ConfidenceScore float64          `gorm:"not null" json:"confidence_score"`
	Reasoning       string           `json:"reasoning"`
	Status          SuggestionStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Conflicts       []string         `gorm:"serializer:json" json:"conflicts,omitempty"`

	ConfirmToken   *string    `gorm:"uniqueIndex" json:"-"`
	DeclineToken   *string    `gorm:"uniqueIndex" json:"-"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	RespondedAt    *time.Time `json:"responded_at,omitempty"`
	SessionEventID *uint      `json:"session_event_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
