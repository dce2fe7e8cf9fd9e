package lifecycle

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/inkline/studio-scheduler/internal/apperr"
	"github.com/inkline/studio-scheduler/internal/models"
)

var ErrUnknownField = apperr.New(apperr.ErrValidation, "field cannot be updated")

const dateLayout = "2006-01-02"

// FieldUpdate is a parsed edit to one of the booking fields editable outside
// stage transitions.
type FieldUpdate struct {
	Field  string
	Column string
	Value  any
}

func ParsePriority(s string) (models.Priority, error) {
	switch p := models.Priority(s); p {
	case models.PriorityHigh, models.PriorityNormal, models.PriorityLow:
		return p, nil
	}
	return "", apperr.Validation("unknown priority %q", s)
}

func ParseFieldUpdate(field, value string) (FieldUpdate, error) {
	switch field {
	case "notes":
		return FieldUpdate{Field: field, Column: "notes", Value: value}, nil
	case "priority":
		p, err := ParsePriority(value)
		if err != nil {
			return FieldUpdate{}, err
		}
		return FieldUpdate{Field: field, Column: "priority", Value: p}, nil
	case "follow_up_date":
		if strings.TrimSpace(value) == "" {
			return FieldUpdate{Field: field, Column: "follow_up_date", Value: nil}, nil
		}
		d, err := time.Parse(dateLayout, value)
		if err != nil {
			return FieldUpdate{}, apperr.Validation("follow_up_date must be YYYY-MM-DD")
		}
		return FieldUpdate{Field: field, Column: "follow_up_date", Value: d}, nil
	case "deposit_amount", "total_amount":
		amount, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
			return FieldUpdate{}, apperr.Validation("%s must be a non-negative number", field)
		}
		return FieldUpdate{Field: field, Column: field, Value: amount}, nil
	}
	return FieldUpdate{}, ErrUnknownField
}

// Current renders the booking's present value of the field for audit entries.
func (u FieldUpdate) Current(b *models.Booking) string {
	switch u.Field {
	case "notes":
		return b.Notes
	case "priority":
		return string(b.Priority)
	case "follow_up_date":
		if b.FollowUpDate == nil {
			return ""
		}
		return b.FollowUpDate.Format(dateLayout)
	case "deposit_amount":
		return fmt.Sprintf("%.2f", b.DepositAmount)
	case "total_amount":
		return fmt.Sprintf("%.2f", b.TotalAmount)
	}
	return ""
}

func (u FieldUpdate) Apply(b *models.Booking) {
	switch u.Field {
	case "notes":
		b.Notes = u.Value.(string)
	case "priority":
		b.Priority = u.Value.(models.Priority)
	case "follow_up_date":
		if u.Value == nil {
			b.FollowUpDate = nil
			return
		}
		d := u.Value.(time.Time)
		b.FollowUpDate = &d
	case "deposit_amount":
		b.DepositAmount = u.Value.(float64)
	case "total_amount":
		b.TotalAmount = u.Value.(float64)
	}
}
