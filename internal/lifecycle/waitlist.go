package lifecycle

import (
	"github.com/inkline/studio-scheduler/internal/apperr"
	"github.com/inkline/studio-scheduler/internal/models"
)

type WaitlistEvent string

const (
	EvOffer   WaitlistEvent = "offer"
	EvConvert WaitlistEvent = "convert"
	EvExpire  WaitlistEvent = "expire"
)

// waitlistEdges maps event -> allowed source statuses. Repeat offers are
// allowed so a client can receive a newer freed slot.
var waitlistEdges = map[WaitlistEvent]struct {
	from []models.WaitlistStatus
	to   models.WaitlistStatus
}{
	EvOffer:   {from: []models.WaitlistStatus{models.WaitlistWaiting, models.WaitlistOfferSent}, to: models.WaitlistOfferSent},
	EvConvert: {from: []models.WaitlistStatus{models.WaitlistOfferSent}, to: models.WaitlistConverted},
	EvExpire:  {from: []models.WaitlistStatus{models.WaitlistWaiting, models.WaitlistOfferSent, models.WaitlistConverted}, to: models.WaitlistExpired},
}

func ParseWaitlistStatus(s string) (models.WaitlistStatus, error) {
	switch st := models.WaitlistStatus(s); st {
	case models.WaitlistWaiting, models.WaitlistOfferSent, models.WaitlistConverted, models.WaitlistExpired:
		return st, nil
	}
	return "", apperr.Validation("unknown waitlist status %q", s)
}

func NextWaitlist(from models.WaitlistStatus, ev WaitlistEvent) (models.WaitlistStatus, error) {
	if _, err := ParseWaitlistStatus(string(from)); err != nil {
		return "", err
	}
	edge, ok := waitlistEdges[ev]
	if !ok {
		return "", apperr.Validation("unknown waitlist event %q", ev)
	}
	for _, st := range edge.from {
		if st == from {
			return edge.to, nil
		}
	}
	return "", apperr.Conflict("cannot %s a waitlist entry that is %s", ev, from)
}
