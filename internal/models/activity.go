package models

import "time"

type ActivityType string

const (
	ActivityStageChange ActivityType = "stage_change"
	ActivityFieldUpdate ActivityType = "field_update"
	ActivityEmailSent   ActivityType = "email_sent"
)

// ActivityLog rows are append-only.
type ActivityLog struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	BookingID    uint           `gorm:"not null;index" json:"booking_id"`
	ActivityType ActivityType   `gorm:"type:varchar(20);not null" json:"activity_type"`
	Description  string         `json:"description"`
	Metadata     map[string]any `gorm:"serializer:json" json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
