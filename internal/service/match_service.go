package service

import (
	"context"
	"fmt"

	"github.com/inkline/studio-scheduler/internal/matching"
	"github.com/inkline/studio-scheduler/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MatchService interface {
	RunAnalysis(ctx context.Context) ([]models.Suggestion, error)
	ListSuggestions(ctx context.Context, status *models.SuggestionStatus) ([]models.Suggestion, error)
}

type matchService struct {
	repos  Repositories
	engine *matching.Engine
	log    *zap.Logger
}

func NewMatchService(repos Repositories, engine *matching.Engine, log *zap.Logger) MatchService {
	return &matchService{repos: repos, engine: engine, log: log}
}

// RunAnalysis replaces every pending suggestion with a fresh set. Clearing
// and inserting share one transaction, so a failed run leaves the previous
// set in place.
func (s *matchService) RunAnalysis(ctx context.Context) ([]models.Suggestion, error) {
	var result []models.Suggestion

	err := s.repos.Tx.Transaction(ctx, func(tx *gorm.DB) error {
		cleared, err := s.repos.Suggestions.DeletePending(ctx, tx)
		if err != nil {
			return fmt.Errorf("clear pending suggestions: %w", err)
		}

		bookings, err := s.repos.Bookings.FindUnscheduled(ctx, tx)
		if err != nil {
			return fmt.Errorf("load unscheduled bookings: %w", err)
		}
		slots, err := s.repos.Slots.FindAvailable(ctx, tx)
		if err != nil {
			return fmt.Errorf("load availability: %w", err)
		}
		cities, err := s.repos.Cities.FindAll(ctx, tx)
		if err != nil {
			return fmt.Errorf("load cities: %w", err)
		}

		suggestions := s.engine.Generate(bookings, slots, cities)
		if err := s.repos.Suggestions.CreateBatch(ctx, tx, suggestions); err != nil {
			return fmt.Errorf("save suggestions: %w", err)
		}

		s.log.Info("matching run complete",
			zap.Int64("cleared", cleared),
			zap.Int("bookings", len(bookings)),
			zap.Int("slots", len(slots)),
			zap.Int("suggestions", len(suggestions)),
		)
		result = suggestions
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *matchService) ListSuggestions(ctx context.Context, status *models.SuggestionStatus) ([]models.Suggestion, error) {
	return s.repos.Suggestions.List(ctx, status)
}
