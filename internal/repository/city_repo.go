package repository

import (
	"context"

	"github.com/inkline/studio-scheduler/internal/models"
	"gorm.io/gorm"
)

type CityRepository interface {
	FindAll(ctx context.Context, tx *gorm.DB) ([]models.CityConfig, error)
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.CityConfig, error)
}

type cityRepository struct {
	db *gorm.DB
}

func NewCityRepository(db *gorm.DB) CityRepository {
	return &cityRepository{db: db}
}

func (r *cityRepository) FindAll(ctx context.Context, tx *gorm.DB) ([]models.CityConfig, error) {
	var cities []models.CityConfig
	if err := tx.WithContext(ctx).Order("id ASC").Find(&cities).Error; err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *cityRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.CityConfig, error) {
	var city models.CityConfig
	if err := tx.WithContext(ctx).First(&city, id).Error; err != nil {
		return nil, err
	}
	return &city, nil
}
