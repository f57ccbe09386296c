package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"transitly/internal/shared/apperrors"
)

type Repository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	GetByIDWithRelations(ctx context.Context, id uuid.UUID) (*Session, error)
	HasOpenSessionForDriver(ctx context.Context, driverID uuid.UUID) (bool, error)
	List(ctx context.Context, query SessionListQuery) ([]Session, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID, status string) ([]Session, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, endedAt *time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, session *Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	var session Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Session not found")
		}
		return nil, err
	}
	return &session, nil
}

func (r *repository) GetByIDWithRelations(ctx context.Context, id uuid.UUID) (*Session, error) {
	var session Session
	err := r.db.WithContext(ctx).
		Preload("Driver").
		Preload("Route").
		Preload("Station").
		Where("id = ?", id).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Session not found")
		}
		return nil, err
	}
	return &session, nil
}

func (r *repository) HasOpenSessionForDriver(ctx context.Context, driverID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Session{}).
		Where("driver_id = ?", driverID).
		Where("status IN ?", []Status{StatusActive, StatusFull}).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) List(ctx context.Context, query SessionListQuery) ([]Session, error) {
	var result []Session

	baseQuery := r.db.WithContext(ctx).
		Preload("Driver").
		Preload("Route").
		Preload("Station").
		Model(&Session{})

	if query.Status != "" {
		baseQuery = baseQuery.Where("status = ?", query.Status)
	} else {
		baseQuery = baseQuery.Where("status = ?", StatusActive)
	}
	if query.RouteID != "" {
		if routeID, err := uuid.Parse(query.RouteID); err == nil {
			baseQuery = baseQuery.Where("route_id = ?", routeID)
		}
	}
	if query.StationID != "" {
		if stationID, err := uuid.Parse(query.StationID); err == nil {
			baseQuery = baseQuery.Where("station_id = ?", stationID)
		}
	}

	err := baseQuery.Order("started_at DESC").Find(&result).Error
	return result, err
}

func (r *repository) ListByDriver(ctx context.Context, driverID uuid.UUID, status string) ([]Session, error) {
	var result []Session

	baseQuery := r.db.WithContext(ctx).
		Preload("Route").
		Preload("Station").
		Model(&Session{}).
		Where("driver_id = ?", driverID)

	if status != "" {
		baseQuery = baseQuery.Where("status = ?", status)
	}

	err := baseQuery.Order("started_at DESC").Find(&result).Error
	return result, err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, endedAt *time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if endedAt != nil {
		updates["ended_at"] = *endedAt
	}

	return r.db.WithContext(ctx).
		Model(&Session{}).
		Where("id = ?", id).
		Updates(updates).Error
}
