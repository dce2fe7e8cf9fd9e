package service

import (
	"time"

	"github.com/inkline/studio-scheduler/internal/models"
)

var testNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func testOptions() Options {
	return Options{
		CallbackBaseURL: "https://studio.test/",
		DiscountPercent: intPtr(15),
		Now:             func() time.Time { return testNow },
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seededStore holds one Austin slot, one booking waiting on a date and one
// suggestion for it already sent to the client.
func seededStore() *memStore {
	m := newMemStore()
	m.cities[1] = models.CityConfig{ID: 1, Name: "LA", SessionRate: 900, MaxSessionsPerDay: 1, SessionMinutes: 360, IsActive: true}
	m.cities[2] = models.CityConfig{ID: 2, Name: "Austin", SessionRate: 800, MaxSessionsPerDay: 2, SessionMinutes: 300, IsActive: true}

	m.slots[20] = models.AvailabilitySlot{ID: 20, CityID: 2, Date: date(2026, 10, 25), SlotType: models.SlotRegular, IsOpen: true, Version: 1}
	m.slots[21] = models.AvailabilitySlot{ID: 21, CityID: 1, Date: date(2026, 10, 18), SlotType: models.SlotRegular, IsOpen: true, Version: 1}

	m.bookings[1] = models.Booking{
		ID:            1,
		ClientName:    "Jordan Lee",
		ClientEmail:   "jordan@example.com",
		RequestedCity: "Austin",
		PipelineStage: models.StageDepositPaid,
		Status:        models.StatusActive,
		Priority:      models.PriorityNormal,
		CreatedAt:     testNow.Add(-72 * time.Hour),
	}
	m.suggestions[100] = models.Suggestion{
		ID:              100,
		BookingID:       1,
		SlotID:          20,
		SuggestedDate:   date(2026, 10, 25),
		SuggestedTime:   "11:00",
		SuggestedCityID: 2,
		SuggestedCity:   "Austin",
		ConfidenceScore: 0.95,
		Status:          models.SuggestionSentToClient,
	}
	return m
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }
