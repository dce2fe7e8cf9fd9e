// Package matching turns unscheduled bookings and open slots into ranked
// scheduling suggestions, and ranks waitlist entries against a freed slot.
package matching

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/inkline/studio-scheduler/internal/models"
)

const (
	BaseConfidence     = 0.70
	CityMatchBonus     = 0.20
	HighPriorityBonus  = 0.05
	ProximityBonus     = 0.05
	MaxConfidence      = 0.99
	DefaultWindowDays  = 14
	DefaultSessionTime = "11:00"
)

type Options struct {
	// ProximityDays is the window, in calendar days from today, inside which
	// a slot earns the proximity bonus. With the default of 14 a high
	// priority booking matched in its own city ten days out caps at 0.99;
	// a 7 day window leaves the same match at 0.95.
	ProximityDays int
	// DefaultTime is used for slots without their own start time.
	DefaultTime string
	Now         func() time.Time
}

type Engine struct {
	opts Options
}

func NewEngine(opts Options) *Engine {
	if opts.ProximityDays <= 0 {
		opts.ProximityDays = DefaultWindowDays
	}
	if opts.DefaultTime == "" {
		opts.DefaultTime = DefaultSessionTime
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{opts: opts}
}

// Generate matches each booking, in input order, to the earliest available
// slot in its requested city, falling back to the earliest available slot
// anywhere. Bookings are matched independently; a slot may be proposed to
// more than one booking, which is reported in Conflicts.
func (e *Engine) Generate(bookings []models.Booking, slots []models.AvailabilitySlot, cities []models.CityConfig) []models.Suggestion {
	cityByID := make(map[uint]models.CityConfig, len(cities))
	for _, c := range cities {
		cityByID[c.ID] = c
	}

	open := make([]models.AvailabilitySlot, 0, len(slots))
	for _, s := range slots {
		if s.Available() {
			open = append(open, s)
		}
	}

	today := dateOf(e.opts.Now())
	suggestions := make([]models.Suggestion, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]

		var inCity []models.AvailabilitySlot
		if requested := strings.TrimSpace(b.RequestedCity); requested != "" {
			for _, s := range open {
				if sameCity(cityByID[s.CityID].Name, requested) {
					inCity = append(inCity, s)
				}
			}
		}
		candidates := inCity
		if len(candidates) == 0 {
			candidates = open
		}

		slot, ok := earliest(candidates)
		if !ok {
			continue
		}
		suggestions = append(suggestions, e.suggest(b, slot, cityByID[slot.CityID], today))
	}

	annotateConflicts(suggestions, cityByID)
	return suggestions
}

func (e *Engine) suggest(b *models.Booking, slot models.AvailabilitySlot, city models.CityConfig, today time.Time) models.Suggestion {
	score := BaseConfidence
	cityName := city.Name
	if cityName == "" {
		cityName = fmt.Sprintf("city #%d", slot.CityID)
	}
	date := dateOf(slot.Date)

	reasons := []string{fmt.Sprintf("earliest open %s slot in %s on %s", slotLabel(slot.SlotType), cityName, date.Format("2006-01-02"))}

	requested := strings.TrimSpace(b.RequestedCity)
	switch {
	case requested != "" && sameCity(city.Name, requested):
		score += CityMatchBonus
		reasons = append(reasons, "matches the requested city")
	case requested != "":
		reasons = append(reasons, fmt.Sprintf("no open slots in requested city %s", requested))
	default:
		reasons = append(reasons, "no city requested")
	}
	if b.Priority == models.PriorityHigh {
		score += HighPriorityBonus
		reasons = append(reasons, "high priority client")
	}
	days := int(date.Sub(today).Hours() / 24)
	if days >= 0 && days <= e.opts.ProximityDays {
		score += ProximityBonus
		reasons = append(reasons, fmt.Sprintf("within %d days", e.opts.ProximityDays))
	}

	start := slot.StartTime
	if start == "" {
		start = e.opts.DefaultTime
	}

	return models.Suggestion{
		BookingID:       b.ID,
		SlotID:          slot.ID,
		SuggestedDate:   date,
		SuggestedTime:   start,
		SuggestedCityID: slot.CityID,
		SuggestedCity:   city.Name,
		ConfidenceScore: Confidence(score),
		Reasoning:       capitalize(strings.Join(reasons, "; ")) + ".",
		Status:          models.SuggestionPending,
	}
}

// Confidence rounds to two decimals and caps the score below 1.
func Confidence(score float64) float64 {
	score = math.Round(score*100) / 100
	return math.Min(score, MaxConfidence)
}

// earliest returns the first slot with the smallest date, keeping input order
// among slots that share a date.
func earliest(slots []models.AvailabilitySlot) (models.AvailabilitySlot, bool) {
	if len(slots) == 0 {
		return models.AvailabilitySlot{}, false
	}
	best := slots[0]
	for _, s := range slots[1:] {
		if dateOf(s.Date).Before(dateOf(best.Date)) {
			best = s
		}
	}
	return best, true
}

func annotateConflicts(suggestions []models.Suggestion, cityByID map[uint]models.CityConfig) {
	type dayKey struct {
		city uint
		date time.Time
	}
	perSlot := make(map[uint]int)
	perDay := make(map[dayKey]int)
	for _, s := range suggestions {
		perSlot[s.SlotID]++
		perDay[dayKey{s.SuggestedCityID, s.SuggestedDate}]++
	}

	for i := range suggestions {
		s := &suggestions[i]
		date := s.SuggestedDate.Format("2006-01-02")
		city, known := cityByID[s.SuggestedCityID]
		if !known {
			s.Conflicts = append(s.Conflicts, fmt.Sprintf("no city configuration for city #%d", s.SuggestedCityID))
		} else if !city.IsActive {
			s.Conflicts = append(s.Conflicts, fmt.Sprintf("%s is not an active city", city.Name))
		}
		if n := perSlot[s.SlotID]; n > 1 {
			s.Conflicts = append(s.Conflicts, fmt.Sprintf("slot #%d on %s proposed to %d bookings in this run", s.SlotID, date, n))
		}
		if n := perDay[dayKey{s.SuggestedCityID, s.SuggestedDate}]; known && city.MaxSessionsPerDay > 0 && n > city.MaxSessionsPerDay {
			s.Conflicts = append(s.Conflicts, fmt.Sprintf("%s on %s exceeds %d sessions per day", city.Name, date, city.MaxSessionsPerDay))
		}
	}
}

func sameCity(a, b string) bool {
	return a != "" && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func slotLabel(t models.SlotType) string {
	if t == models.SlotGuestSpot {
		return "guest-spot"
	}
	return "regular"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
