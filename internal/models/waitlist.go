package models

import "time"

type WaitlistStatus string

const (
	WaitlistWaiting   WaitlistStatus = "waiting"
	WaitlistOfferSent WaitlistStatus = "offer_sent"
	WaitlistConverted WaitlistStatus = "converted"
	WaitlistExpired   WaitlistStatus = "expired"
)

type WaitlistEntry struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ClientName  string `gorm:"not null" json:"client_name"`
	ClientEmail string `json:"client_email"`
	ClientPhone string `json:"client_phone"`

	PreferredCities []string    `gorm:"serializer:json" json:"preferred_cities"`
	PreferredDates  []time.Time `gorm:"serializer:json" json:"preferred_dates"`
	FlexibilityDays int         `json:"flexibility_days"`
	BudgetMax       float64     `json:"budget_max"`
	Size            string      `json:"size"`
	Style           string      `json:"style"`

	MatchScore int            `json:"match_score"`
	Status     WaitlistStatus `gorm:"type:varchar(20);not null;default:'waiting';index" json:"status"`

	OffersSentCount    int        `gorm:"not null;default:0" json:"offers_sent_count"`
	LastOfferSentAt    *time.Time `json:"last_offer_sent_at,omitempty"`
	LastOfferSlotID    *uint      `json:"last_offer_slot_id,omitempty"`
	LastOfferDiscount  int        `json:"last_offer_discount"`
	ConvertedBookingID *uint      `json:"converted_booking_id,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
