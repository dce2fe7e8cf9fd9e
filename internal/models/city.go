package models

import "time"

type CityConfig struct {
	ID                 uint    `gorm:"primaryKey" json:"id"`
	Name               string  `gorm:"not null;uniqueIndex" json:"name"`
	SessionRate        float64 `json:"session_rate"`
	DepositAmount      float64 `json:"deposit_amount"`
	MaxSessionsPerDay  int     `json:"max_sessions_per_day"`
	TravelBufferDays   int     `json:"travel_buffer_days"`
	MinSessionsPerTrip int     `json:"min_sessions_per_trip"`
	SessionMinutes     int     `json:"session_minutes"`
	IsActive           bool    `gorm:"not null" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
