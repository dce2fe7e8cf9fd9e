package repository

import (
	"context"

	"github.com/inkline/studio-scheduler/internal/models"
	"gorm.io/gorm"
)

type SuggestionRepository interface {
	DeletePending(ctx context.Context, tx *gorm.DB) (int64, error)
	CreateBatch(ctx context.Context, tx *gorm.DB, suggestions []models.Suggestion) error
	FindByID(ctx context.Context, id uint) (*models.Suggestion, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Suggestion, error)
	FindByToken(ctx context.Context, token string) (*models.Suggestion, error)
	List(ctx context.Context, status *models.SuggestionStatus) ([]models.Suggestion, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, from, to models.SuggestionStatus, extra map[string]any) error
}

type suggestionRepository struct {
	db *gorm.DB
}

func NewSuggestionRepository(db *gorm.DB) SuggestionRepository {
	return &suggestionRepository{db: db}
}

func (r *suggestionRepository) DeletePending(ctx context.Context, tx *gorm.DB) (int64, error) {
	res := tx.WithContext(ctx).
		Where("status = ?", models.SuggestionPending).
		Delete(&models.Suggestion{})
	return res.RowsAffected, res.Error
}

func (r *suggestionRepository) CreateBatch(ctx context.Context, tx *gorm.DB, suggestions []models.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&suggestions).Error
}

func (r *suggestionRepository) FindByID(ctx context.Context, id uint) (*models.Suggestion, error) {
	var s models.Suggestion
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *suggestionRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Suggestion, error) {
	var s models.Suggestion
	if err := forUpdate(tx, ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByToken resolves either callback token issued when the suggestion was sent.
func (r *suggestionRepository) FindByToken(ctx context.Context, token string) (*models.Suggestion, error) {
	var s models.Suggestion
	err := r.db.WithContext(ctx).
		Where("confirm_token = ? OR decline_token = ?", token, token).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *suggestionRepository) List(ctx context.Context, status *models.SuggestionStatus) ([]models.Suggestion, error) {
	var suggestions []models.Suggestion
	q := r.db.WithContext(ctx)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("confidence_score DESC, id ASC").Find(&suggestions).Error; err != nil {
		return nil, err
	}
	return suggestions, nil
}

// UpdateStatus moves the suggestion only if it is still in the expected status.
func (r *suggestionRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, from, to models.SuggestionStatus, extra map[string]any) error {
	updates := map[string]any{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := tx.WithContext(ctx).
		Model(&models.Suggestion{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return casResult(res)
}
