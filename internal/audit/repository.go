package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, entry *Log) error
	List(ctx context.Context, query ListQuery) ([]Log, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, entry *Log) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListQuery represents audit log filters
type ListQuery struct {
	ActorID string     `form:"actor_id"`
	Path    string     `form:"path"`
	Since   *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Page    int        `form:"page"`
	Limit   int        `form:"limit"`
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]Log, int64, error) {
	var entries []Log
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 || query.Limit > 200 {
		query.Limit = 50
	}

	baseQuery := r.db.WithContext(ctx).Model(&Log{})
	if query.ActorID != "" {
		if actorID, err := uuid.Parse(query.ActorID); err == nil {
			baseQuery = baseQuery.Where("actor_id = ?", actorID)
		}
	}
	if query.Path != "" {
		baseQuery = baseQuery.Where("path LIKE ?", query.Path+"%")
	}
	if query.Since != nil {
		baseQuery = baseQuery.Where("created_at >= ?", *query.Since)
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&entries).Error

	return entries, totalCount, err
}
