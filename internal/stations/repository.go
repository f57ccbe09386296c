package stations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, station *Station) error
	GetByID(ctx context.Context, id uuid.UUID) (*Station, error)
	List(ctx context.Context, activeOnly bool) ([]Station, error)
	Update(ctx context.Context, station *Station) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, station *Station) error {
	return r.db.WithContext(ctx).Create(station).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Station, error) {
	var station Station
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&station).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	return &station, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Station, error) {
	var result []Station
	query := r.db.WithContext(ctx).Model(&Station{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("city ASC, name ASC").Find(&result).Error
	return result, err
}

func (r *repository) Update(ctx context.Context, station *Station) error {
	return r.db.WithContext(ctx).Save(station).Error
}
