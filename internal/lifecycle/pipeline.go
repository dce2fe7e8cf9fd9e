// Package lifecycle holds the pure state machines for bookings, suggestions
// and waitlist entries. Nothing here touches storage or the network: each
// function validates a move and reports the writes and effects it implies.
package lifecycle

import (
	"time"

	"github.com/inkline/studio-scheduler/internal/apperr"
	"github.com/inkline/studio-scheduler/internal/models"
)

var (
	ErrUnknownStage   = apperr.New(apperr.ErrValidation, "unknown pipeline stage")
	ErrTerminalStage  = apperr.New(apperr.ErrConflict, "booking is in a terminal stage")
	ErrBackwardStage  = apperr.New(apperr.ErrConflict, "pipeline stage cannot move backward")
	ErrUnchangedStage = apperr.New(apperr.ErrConflict, "booking is already in that stage")
)

// stageOrder ranks the linear part of the pipeline. Cancelled sits outside it.
var stageOrder = map[models.PipelineStage]int{
	models.StageNewInquiry:          0,
	models.StageReferencesRequested: 1,
	models.StageReferencesReceived:  2,
	models.StageDepositRequested:    3,
	models.StageDepositPaid:         4,
	models.StageScheduled:           5,
	models.StageCompleted:           6,
	models.StageCancelled:           -1,
}

func ParseStage(s string) (models.PipelineStage, error) {
	stage := models.PipelineStage(s)
	if _, ok := stageOrder[stage]; !ok {
		return "", ErrUnknownStage
	}
	return stage, nil
}

func IsTerminalStage(stage models.PipelineStage) bool {
	return stage == models.StageCompleted || stage == models.StageCancelled
}

// KeepsSchedule reports whether a booking entering stage holds on to its
// date and slot. Any other stage hands them back.
func KeepsSchedule(stage models.PipelineStage) bool {
	return stage == models.StageScheduled || stage == models.StageCompleted
}

// StageChange describes one pipeline move: the column writes it needs and
// the stages it connects.
type StageChange struct {
	From    models.PipelineStage
	To      models.PipelineStage
	Updates map[string]any
}

// PlanStage validates a move to target and computes its side-effect writes.
// Permissive mode accepts any known stage from any stage, including backward
// moves and skips. Strict mode additionally refuses to leave a terminal stage,
// to move backward or to re-enter the current stage.
func PlanStage(from, target models.PipelineStage, now time.Time, strict bool) (StageChange, error) {
	if from == "" {
		from = models.StageNewInquiry
	}
	if _, ok := stageOrder[target]; !ok {
		return StageChange{}, ErrUnknownStage
	}
	if _, ok := stageOrder[from]; !ok {
		return StageChange{}, ErrUnknownStage
	}

	if strict {
		switch {
		case IsTerminalStage(from):
			return StageChange{}, ErrTerminalStage
		case from == target:
			return StageChange{}, ErrUnchangedStage
		case target != models.StageCancelled && stageOrder[target] < stageOrder[from]:
			return StageChange{}, ErrBackwardStage
		}
	}

	updates := map[string]any{"pipeline_stage": target}
	switch target {
	case models.StageReferencesRequested:
		updates["references_requested_at"] = now
	case models.StageReferencesReceived:
		updates["references_received_at"] = now
	case models.StageDepositRequested:
		updates["deposit_requested_at"] = now
	case models.StageDepositPaid:
		updates["deposit_paid_at"] = now
		updates["deposit_paid"] = true
	case models.StageCompleted:
		updates["status"] = models.StatusCompleted
	case models.StageCancelled:
		updates["status"] = models.StatusCancelled
	}
	if IsTerminalStage(from) && !IsTerminalStage(target) {
		updates["status"] = models.StatusActive
	}

	return StageChange{From: from, To: target, Updates: updates}, nil
}

// Apply mirrors the change onto an in-memory booking.
func (c StageChange) Apply(b *models.Booking) {
	b.PipelineStage = c.To
	for col, v := range c.Updates {
		switch col {
		case "references_requested_at":
			t := v.(time.Time)
			b.ReferencesRequestedAt = &t
		case "references_received_at":
			t := v.(time.Time)
			b.ReferencesReceivedAt = &t
		case "deposit_requested_at":
			t := v.(time.Time)
			b.DepositRequestedAt = &t
		case "deposit_paid_at":
			t := v.(time.Time)
			b.DepositPaidAt = &t
		case "deposit_paid":
			b.DepositPaid = v.(bool)
		case "status":
			b.Status = v.(models.BookingStatus)
		}
	}
}
