package drivers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"transitly/internal/shared/apperrors"
)

type Repository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	List(ctx context.Context, status VerificationStatus) ([]Profile, error)
	Update(ctx context.Context, profile *Profile) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, profile *Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return apperrors.Conflict("Driver profile already exists")
		}
		return fmt.Errorf("failed to create driver profile: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var profile Profile
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Driver profile not found")
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var profile Profile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Driver profile not found")
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repository) List(ctx context.Context, status VerificationStatus) ([]Profile, error) {
	query := r.db.WithContext(ctx).Preload("User").Order("created_at ASC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var profiles []Profile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list driver profiles: %w", err)
	}
	return profiles, nil
}

func (r *repository) Update(ctx context.Context, profile *Profile) error {
	result := r.db.WithContext(ctx).
		Model(&Profile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]interface{}{
			"license_number": profile.LicenseNumber,
			"vehicle_model":  profile.VehicleModel,
			"vehicle_plate":  profile.VehiclePlate,
			"status":         profile.Status,
			"review_note":    profile.ReviewNote,
			"reviewed_by":    profile.ReviewedBy,
			"reviewed_at":    profile.ReviewedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update driver profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("Driver profile not found")
	}
	return nil
}
