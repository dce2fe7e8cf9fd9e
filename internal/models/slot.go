package models

import "time"

type SlotType string

const (
	SlotRegular   SlotType = "regular"
	SlotGuestSpot SlotType = "guest_spot"
)

// AvailabilitySlot is one offerable (date, city) unit. Version is bumped on
// every reservation change so finalization can compare-and-swap against it.
type AvailabilitySlot struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CityID    uint      `gorm:"not null;index" json:"city_id"`
	Date      time.Time `gorm:"type:date;not null;index" json:"date"`
	StartTime string    `gorm:"type:varchar(5)" json:"start_time,omitempty"`
	SlotType  SlotType  `gorm:"type:varchar(20);not null;default:'regular'" json:"slot_type"`
	IsOpen    bool      `gorm:"not null" json:"is_open"`

	ReservedBookingID *uint `json:"reserved_booking_id,omitempty"`
	Version           int   `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	City *CityConfig `gorm:"foreignKey:CityID" json:"city,omitempty"`
}

func (s *AvailabilitySlot) Available() bool {
	return s.IsOpen && s.ReservedBookingID == nil
}
