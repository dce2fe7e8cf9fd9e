package repository

import (
	"context"
	"time"

	"github.com/inkline/studio-scheduler/internal/models"
	"gorm.io/gorm"
)

type WaitlistRepository interface {
	FindByID(ctx context.Context, id uint) (*models.WaitlistEntry, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.WaitlistEntry, error)
	List(ctx context.Context, status *models.WaitlistStatus) ([]models.WaitlistEntry, error)
	FindWaiting(ctx context.Context, tx *gorm.DB) ([]models.WaitlistEntry, error)
	FindDue(ctx context.Context, tx *gorm.DB, now time.Time) ([]models.WaitlistEntry, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, from models.WaitlistStatus, updates map[string]any) error
}

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (r *waitlistRepository) FindByID(ctx context.Context, id uint) (*models.WaitlistEntry, error) {
	var e models.WaitlistEntry
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *waitlistRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.WaitlistEntry, error) {
	var e models.WaitlistEntry
	if err := forUpdate(tx, ctx).First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *waitlistRepository) List(ctx context.Context, status *models.WaitlistStatus) ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry
	q := r.db.WithContext(ctx)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("match_score DESC, created_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *waitlistRepository) FindWaiting(ctx context.Context, tx *gorm.DB) ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry
	err := tx.WithContext(ctx).
		Where("status = ?", models.WaitlistWaiting).
		Order("match_score DESC, created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// FindDue locks and returns entries still in play whose expiry has passed.
func (r *waitlistRepository) FindDue(ctx context.Context, tx *gorm.DB, now time.Time) ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry
	err := forUpdate(tx, ctx).
		Where("status IN ? AND expires_at IS NOT NULL AND expires_at < ?",
			[]models.WaitlistStatus{models.WaitlistWaiting, models.WaitlistOfferSent}, now).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// UpdateStatus writes updates only while the entry is still in status from.
func (r *waitlistRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, from models.WaitlistStatus, updates map[string]any) error {
	res := tx.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return casResult(res)
}
