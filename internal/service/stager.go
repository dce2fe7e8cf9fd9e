package service

import (
	"context"
	"fmt"
	"time"

	"github.com/inkline/studio-scheduler/internal/lifecycle"
	"github.com/inkline/studio-scheduler/internal/models"
	"github.com/inkline/studio-scheduler/internal/repository"
	"gorm.io/gorm"
)

// stager applies pipeline moves inside a caller's transaction: the booking
// row, its side-effect fields and the stage_change log entry are written
// together or not at all.
type stager struct {
	bookings repository.BookingRepository
	activity repository.ActivityRepository
	strict   bool
}

func (s *stager) move(ctx context.Context, tx *gorm.DB, b *models.Booking, target models.PipelineStage, extra map[string]any, meta map[string]any, now time.Time) (lifecycle.StageChange, error) {
	change, err := lifecycle.PlanStage(b.Stage(), target, now, s.strict)
	if err != nil {
		return change, err
	}

	updates := make(map[string]any, len(change.Updates)+len(extra))
	for k, v := range change.Updates {
		updates[k] = v
	}
	for k, v := range extra {
		updates[k] = v
	}
	if err := s.bookings.Update(ctx, tx, b.ID, updates); err != nil {
		return change, err
	}

	metadata := map[string]any{"from_stage": change.From, "to_stage": change.To}
	for k, v := range meta {
		metadata[k] = v
	}
	entry := &models.ActivityLog{
		BookingID:    b.ID,
		ActivityType: models.ActivityStageChange,
		Description:  fmt.Sprintf("Stage changed from %s to %s", change.From, change.To),
		Metadata:     metadata,
		CreatedAt:    now,
	}
	if err := s.activity.Append(ctx, tx, entry); err != nil {
		return change, err
	}

	change.Apply(b)
	return change, nil
}
