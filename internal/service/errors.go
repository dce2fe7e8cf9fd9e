package service

import (
	"errors"

	"github.com/inkline/studio-scheduler/internal/apperr"
	"github.com/inkline/studio-scheduler/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound       = apperr.New(apperr.ErrNotFound, "booking not found")
	ErrSuggestionNotFound    = apperr.New(apperr.ErrNotFound, "suggestion not found")
	ErrSlotNotFound          = apperr.New(apperr.ErrNotFound, "availability slot not found")
	ErrCityNotFound          = apperr.New(apperr.ErrNotFound, "city not found")
	ErrWaitlistEntryNotFound = apperr.New(apperr.ErrNotFound, "waitlist entry not found")

	ErrBookingAlreadyScheduled = apperr.New(apperr.ErrConflict, "booking is already scheduled")
	ErrBookingClosed           = apperr.New(apperr.ErrConflict, "booking is completed or cancelled")
	ErrSlotTaken               = apperr.New(apperr.ErrConflict, "slot has already been reserved")
	ErrStatusChanged           = apperr.New(apperr.ErrConflict, "status changed concurrently, re-fetch and retry")

	ErrMissingClientEmail = apperr.New(apperr.ErrValidation, "booking has no client email")
	ErrInvalidDiscount    = apperr.New(apperr.ErrValidation, "discount must be between 0 and 100")
)

// notFound maps gorm's missing-row error to the given domain error.
func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

// staleStatus reports a lost compare-and-swap as a conflict.
func staleStatus(err error) error {
	if errors.Is(err, repository.ErrStaleRow) {
		return ErrStatusChanged
	}
	return err
}
