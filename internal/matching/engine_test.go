package matching

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/inkline/studio-scheduler/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func day(n int) time.Time {
	return time.Date(2026, 10, 15+n, 0, 0, 0, 0, time.UTC)
}

func cities() []models.CityConfig {
	return []models.CityConfig{
		{ID: 1, Name: "LA", MaxSessionsPerDay: 1, IsActive: true},
		{ID: 2, Name: "Austin", MaxSessionsPerDay: 2, IsActive: true},
		{ID: 3, Name: "Denver", MaxSessionsPerDay: 1, IsActive: false},
	}
}

func openSlot(id, cityID uint, d time.Time) models.AvailabilitySlot {
	return models.AvailabilitySlot{ID: id, CityID: cityID, Date: d, SlotType: models.SlotRegular, IsOpen: true, Version: 1}
}

func newTestEngine(window int) *Engine {
	return NewEngine(Options{ProximityDays: window, Now: func() time.Time { return today }})
}

func TestGenerate_RequestedCityWins(t *testing.T) {
	// Austin at day+10 sits inside the default 14-day window, so every bonus
	// applies and the score is capped.
	bookings := []models.Booking{{ID: 1, RequestedCity: "Austin", Priority: models.PriorityHigh}}
	slots := []models.AvailabilitySlot{openSlot(10, 1, day(3)), openSlot(11, 2, day(10))}

	got := newTestEngine(14).Generate(bookings, slots, cities())

	require.Len(t, got, 1)
	assert.Equal(t, "Austin", got[0].SuggestedCity)
	assert.Equal(t, uint(11), got[0].SlotID)
	assert.Equal(t, day(10), got[0].SuggestedDate)
	assert.InDelta(t, 0.99, got[0].ConfidenceScore, 1e-9)
	assert.Equal(t, models.SuggestionPending, got[0].Status)
}

func TestGenerate_RequestedCityOutsideProximityWindow(t *testing.T) {
	bookings := []models.Booking{{ID: 1, RequestedCity: "Austin", Priority: models.PriorityHigh}}
	slots := []models.AvailabilitySlot{openSlot(10, 1, day(3)), openSlot(11, 2, day(10))}

	got := newTestEngine(7).Generate(bookings, slots, cities())

	require.Len(t, got, 1)
	assert.Equal(t, "Austin", got[0].SuggestedCity)
	assert.InDelta(t, 0.95, got[0].ConfidenceScore, 1e-9)
	assert.Contains(t, got[0].Reasoning, "matches the requested city")
	assert.Contains(t, got[0].Reasoning, "high priority client")
	assert.NotContains(t, got[0].Reasoning, "within")
}

func TestGenerate_NoRequestedCityUsesEarliest(t *testing.T) {
	bookings := []models.Booking{{ID: 2, RequestedCity: "", Priority: models.PriorityNormal}}
	slots := []models.AvailabilitySlot{openSlot(10, 1, day(3)), openSlot(11, 2, day(10))}

	got := newTestEngine(14).Generate(bookings, slots, cities())

	require.Len(t, got, 1)
	assert.Equal(t, "LA", got[0].SuggestedCity)
	assert.Equal(t, day(3), got[0].SuggestedDate)
	assert.InDelta(t, 0.75, got[0].ConfidenceScore, 1e-9)
	assert.Equal(t, DefaultSessionTime, got[0].SuggestedTime)
}

func TestGenerate_UnmatchedCityFallsBack(t *testing.T) {
	bookings := []models.Booking{{ID: 3, RequestedCity: "Portland"}}
	slots := []models.AvailabilitySlot{openSlot(10, 2, day(30)), openSlot(11, 1, day(20))}

	got := newTestEngine(14).Generate(bookings, slots, cities())

	require.Len(t, got, 1)
	assert.Equal(t, uint(11), got[0].SlotID)
	assert.InDelta(t, 0.70, got[0].ConfidenceScore, 1e-9)
	assert.Contains(t, got[0].Reasoning, "no open slots in requested city Portland")
}

func TestGenerate_CityNameComparisonIgnoresCase(t *testing.T) {
	bookings := []models.Booking{{ID: 1, RequestedCity: " austin "}}
	slots := []models.AvailabilitySlot{openSlot(10, 1, day(3)), openSlot(11, 2, day(40))}

	got := newTestEngine(14).Generate(bookings, slots, cities())

	require.Len(t, got, 1)
	assert.Equal(t, "Austin", got[0].SuggestedCity)
}

func TestGenerate_SameDateKeepsInputOrder(t *testing.T) {
	bookings := []models.Booking{{ID: 1}}
	slots := []models.AvailabilitySlot{openSlot(21, 2, day(5)), openSlot(20, 1, day(5)), openSlot(22, 1, day(9))}

	got := newTestEngine(14).Generate(bookings, slots, cities())

	require.Len(t, got, 1)
	assert.Equal(t, uint(21), got[0].SlotID)
}

func TestGenerate_NoSlotsSkipsBooking(t *testing.T) {
	got := newTestEngine(14).Generate([]models.Booking{{ID: 1}, {ID: 2}}, nil, cities())
	assert.Empty(t, got)
}

func TestGenerate_IgnoresClosedAndReservedSlots(t *testing.T) {
	reservedFor := uint(99)
	closed := openSlot(10, 2, day(2))
	closed.IsOpen = false
	reserved := openSlot(11, 2, day(3))
	reserved.ReservedBookingID = &reservedFor

	got := newTestEngine(14).Generate(
		[]models.Booking{{ID: 1, RequestedCity: "Austin"}},
		[]models.AvailabilitySlot{closed, reserved, openSlot(12, 2, day(8))},
		cities(),
	)

	require.Len(t, got, 1)
	assert.Equal(t, uint(12), got[0].SlotID)
}

func TestGenerate_SlotStartTimeOverridesDefault(t *testing.T) {
	s := openSlot(10, 1, day(3))
	s.StartTime = "14:30"

	got := newTestEngine(14).Generate([]models.Booking{{ID: 1}}, []models.AvailabilitySlot{s}, cities())

	require.Len(t, got, 1)
	assert.Equal(t, "14:30", got[0].SuggestedTime)
}

func TestGenerate_PastSlotGetsNoProximityBonus(t *testing.T) {
	got := newTestEngine(14).Generate([]models.Booking{{ID: 1}}, []models.AvailabilitySlot{openSlot(10, 1, day(-2))}, cities())

	require.Len(t, got, 1)
	assert.InDelta(t, 0.70, got[0].ConfidenceScore, 1e-9)
}

func TestGenerate_FlagsOverbookedSlotsAndInactiveCities(t *testing.T) {
	bookings := []models.Booking{{ID: 1, RequestedCity: "LA"}, {ID: 2, RequestedCity: "LA"}, {ID: 3, RequestedCity: "Denver"}}
	slots := []models.AvailabilitySlot{openSlot(10, 1, day(4)), openSlot(11, 3, day(6))}

	got := newTestEngine(14).Generate(bookings, slots, cities())

	require.Len(t, got, 3)
	assert.Equal(t, got[0].SlotID, got[1].SlotID, "greedy matching proposes the same slot twice")
	require.Len(t, got[0].Conflicts, 2)
	assert.Contains(t, got[0].Conflicts[0], "proposed to 2 bookings")
	assert.Contains(t, got[0].Conflicts[1], "exceeds 1 sessions per day")
	require.Len(t, got[2].Conflicts, 1)
	assert.Contains(t, got[2].Conflicts[0], "Denver is not an active city")
}

func TestGenerate_SharedSlotFlaggedWithinDayCapacity(t *testing.T) {
	bookings := []models.Booking{{ID: 1, RequestedCity: "Austin"}, {ID: 2, RequestedCity: "Austin"}}
	slots := []models.AvailabilitySlot{openSlot(10, 2, day(4)), openSlot(11, 2, day(4))}

	got := newTestEngine(14).Generate(bookings, slots, cities())

	require.Len(t, got, 2)
	assert.Equal(t, uint(10), got[1].SlotID)
	assert.Equal(t, []string{"slot #10 on 2026-10-19 proposed to 2 bookings in this run"}, got[0].Conflicts)
}

func TestGenerate_DistinctSlotsHaveNoConflicts(t *testing.T) {
	bookings := []models.Booking{{ID: 1, RequestedCity: "Austin"}, {ID: 2, RequestedCity: "LA"}}
	slots := []models.AvailabilitySlot{openSlot(10, 2, day(4)), openSlot(11, 1, day(4))}

	got := newTestEngine(14).Generate(bookings, slots, cities())

	require.Len(t, got, 2)
	assert.Empty(t, got[0].Conflicts)
	assert.Empty(t, got[1].Conflicts)
}

func TestGenerate_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	names := []string{"LA", "Austin", "Denver", "Portland", ""}
	eng := newTestEngine(14)

	for round := 0; round < 200; round++ {
		var slots []models.AvailabilitySlot
		for i := 0; i < rng.Intn(6); i++ {
			slots = append(slots, openSlot(uint(i+1), uint(rng.Intn(3)+1), day(rng.Intn(40)-5)))
		}
		var bookings []models.Booking
		for i := 0; i < rng.Intn(5)+1; i++ {
			p := models.PriorityNormal
			if rng.Intn(2) == 0 {
				p = models.PriorityHigh
			}
			bookings = append(bookings, models.Booking{ID: uint(i + 1), RequestedCity: names[rng.Intn(len(names))], Priority: p})
		}

		got := eng.Generate(bookings, slots, cities())
		if len(slots) == 0 {
			assert.Empty(t, got)
			continue
		}
		require.Len(t, got, len(bookings), "round %d", round)

		for i, s := range got {
			b := bookings[i]
			assert.GreaterOrEqual(t, s.ConfidenceScore, 0.70)
			assert.LessOrEqual(t, s.ConfidenceScore, 0.99)

			var inCity, all []models.AvailabilitySlot
			for _, sl := range slots {
				all = append(all, sl)
				if b.RequestedCity != "" && cities()[sl.CityID-1].Name == b.RequestedCity {
					inCity = append(inCity, sl)
				}
			}
			if len(inCity) > 0 {
				assert.Equal(t, b.RequestedCity, s.SuggestedCity, fmt.Sprintf("round %d booking %d", round, b.ID))
				want, _ := earliest(inCity)
				assert.Equal(t, dateOf(want.Date), s.SuggestedDate)
			} else {
				want, _ := earliest(all)
				assert.Equal(t, dateOf(want.Date), s.SuggestedDate)
			}
		}
	}
}

func TestConfidence_Caps(t *testing.T) {
	assert.Equal(t, 0.99, Confidence(1.0))
	assert.Equal(t, 0.95, Confidence(0.70+0.20+0.05))
}
