package matching

import (
	"sort"
	"strings"
	"time"

	"github.com/inkline/studio-scheduler/internal/models"
)

// RankWaitlist returns the waiting entries that fit the freed slot, best
// first. Scores are taken as given; this only filters and orders.
func RankWaitlist(entries []models.WaitlistEntry, slot models.AvailabilitySlot, city models.CityConfig, discountPercent int) []models.WaitlistEntry {
	slotDate := dateOf(slot.Date)
	price := city.SessionRate * float64(100-discountPercent) / 100

	var fits []models.WaitlistEntry
	for _, e := range entries {
		if e.Status != models.WaitlistWaiting {
			continue
		}
		if !prefersCity(e.PreferredCities, city.Name) {
			continue
		}
		if !prefersDate(e.PreferredDates, e.FlexibilityDays, slotDate) {
			continue
		}
		if e.BudgetMax > 0 && price > e.BudgetMax {
			continue
		}
		fits = append(fits, e)
	}

	sort.SliceStable(fits, func(i, j int) bool {
		if fits[i].MatchScore != fits[j].MatchScore {
			return fits[i].MatchScore > fits[j].MatchScore
		}
		if !fits[i].CreatedAt.Equal(fits[j].CreatedAt) {
			return fits[i].CreatedAt.Before(fits[j].CreatedAt)
		}
		return fits[i].ID < fits[j].ID
	})
	return fits
}

func prefersCity(preferred []string, city string) bool {
	if len(preferred) == 0 {
		return true
	}
	for _, p := range preferred {
		if strings.EqualFold(strings.TrimSpace(p), city) {
			return true
		}
	}
	return false
}

func prefersDate(preferred []time.Time, flexDays int, slotDate time.Time) bool {
	if len(preferred) == 0 {
		return true
	}
	if flexDays < 0 {
		flexDays = 0
	}
	for _, p := range preferred {
		diff := int(slotDate.Sub(dateOf(p)).Hours() / 24)
		if diff < 0 {
			diff = -diff
		}
		if diff <= flexDays {
			return true
		}
	}
	return false
}
