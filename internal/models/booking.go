package models

import "time"

type PipelineStage string

const (
	StageNewInquiry          PipelineStage = "new_inquiry"
	StageReferencesRequested PipelineStage = "references_requested"
	StageReferencesReceived  PipelineStage = "references_received"
	StageDepositRequested    PipelineStage = "deposit_requested"
	StageDepositPaid         PipelineStage = "deposit_paid"
	StageScheduled           PipelineStage = "scheduled"
	StageCompleted           PipelineStage = "completed"
	StageCancelled           PipelineStage = "cancelled"
)

// BookingStatus is the coarse status kept alongside the pipeline stage.
type BookingStatus string

const (
	StatusActive    BookingStatus = "active"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

type Booking struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ClientName  string `gorm:"not null" json:"client_name"`
	ClientEmail string `json:"client_email"`
	ClientPhone string `json:"client_phone"`

	Description   string `json:"description"`
	Placement     string `json:"placement"`
	Size          string `json:"size"`
	RequestedCity string `json:"requested_city"`

	PipelineStage PipelineStage `gorm:"type:varchar(32);not null;default:'new_inquiry';index" json:"pipeline_stage"`
	Status        BookingStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	Priority      Priority      `gorm:"type:varchar(10);not null;default:'normal'" json:"priority"`

	ScheduledDate *time.Time `gorm:"type:date" json:"scheduled_date,omitempty"`
	ScheduledTime *string    `gorm:"type:varchar(5)" json:"scheduled_time,omitempty"`
	CityID        *uint      `json:"city_id,omitempty"`
	SlotID        *uint      `json:"slot_id,omitempty"`

	DepositPaid   bool    `gorm:"not null" json:"deposit_paid"`
	DepositAmount float64 `json:"deposit_amount"`
	TotalAmount   float64 `json:"total_amount"`

	Notes        string     `json:"notes"`
	FollowUpDate *time.Time `gorm:"type:date" json:"follow_up_date,omitempty"`

	ReferencesRequestedAt *time.Time `json:"references_requested_at,omitempty"`
	ReferencesReceivedAt  *time.Time `json:"references_received_at,omitempty"`
	DepositRequestedAt    *time.Time `json:"deposit_requested_at,omitempty"`
	DepositPaidAt         *time.Time `json:"deposit_paid_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stage returns the pipeline stage, treating an unset stage as a new inquiry.
func (b *Booking) Stage() PipelineStage {
	if b.PipelineStage == "" {
		return StageNewInquiry
	}
	return b.PipelineStage
}
