package drivers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"transitly/internal/shared/apperrors"
	"transitly/pkg/logger"
)

// Service interface defines the contract for driver verification logic
type Service interface {
	SubmitProfile(ctx context.Context, userID uuid.UUID, req SubmitProfileRequest) (*Profile, error)
	GetProfileByUser(ctx context.Context, userID uuid.UUID) (*Profile, error)
	ListProfiles(ctx context.Context, status string) ([]Profile, error)
	ReviewProfile(ctx context.Context, profileID, reviewerID uuid.UUID, req ReviewProfileRequest) (*Profile, error)

	// IsApprovedDriver gates session starts.
	IsApprovedDriver(ctx context.Context, userID uuid.UUID) (bool, error)

	// OnboardDriver files a pending profile during registration.
	OnboardDriver(ctx context.Context, userID uuid.UUID, licenseNumber, vehicleModel, vehiclePlate string) error
}

type service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService creates a new driver verification service instance
func NewService(repo Repository) Service {
	return &service{
		repo:   repo,
		logger: logger.GetDefault(),
	}
}

// SubmitProfile files the driver's details for verification. A
// rejected profile can be resubmitted, which puts it back in review;
// an approved profile is immutable.
func (s *service) SubmitProfile(ctx context.Context, userID uuid.UUID, req SubmitProfileRequest) (*Profile, error) {
	existing, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if apperrors.CodeOf(err) != apperrors.CodeNotFound {
			return nil, err
		}
		profile := &Profile{
			UserID:        userID,
			LicenseNumber: req.LicenseNumber,
			VehicleModel:  req.VehicleModel,
			VehiclePlate:  req.VehiclePlate,
			Status:        StatusPending,
		}
		if err := s.repo.Create(ctx, profile); err != nil {
			return nil, err
		}
		return profile, nil
	}

	if existing.Status == StatusApproved {
		return nil, apperrors.Conflict("Driver profile is already approved")
	}

	existing.LicenseNumber = req.LicenseNumber
	existing.VehicleModel = req.VehicleModel
	existing.VehiclePlate = req.VehiclePlate
	existing.Status = StatusPending
	existing.ReviewNote = ""
	existing.ReviewedBy = nil
	existing.ReviewedAt = nil
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *service) GetProfileByUser(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) ListProfiles(ctx context.Context, status string) ([]Profile, error) {
	filter := VerificationStatus(status)
	if status != "" && !filter.IsValid() {
		return nil, apperrors.NotFound("Unknown verification status")
	}
	return s.repo.List(ctx, filter)
}

// ReviewProfile records an admin's verification decision. Only
// profiles still in review can be decided; resubmission is the path
// back into review after a rejection.
func (s *service) ReviewProfile(ctx context.Context, profileID, reviewerID uuid.UUID, req ReviewProfileRequest) (*Profile, error) {
	profile, err := s.repo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.Status != StatusPending {
		return nil, apperrors.Conflict("Driver profile has already been reviewed")
	}

	now := time.Now()
	profile.Status = VerificationStatus(req.Decision)
	profile.ReviewNote = req.Note
	profile.ReviewedBy = &reviewerID
	profile.ReviewedAt = &now
	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.InfoWithContext(ctx, "Driver Profile Reviewed", map[string]interface{}{
		"profile_id":  profile.ID.String(),
		"driver_id":   profile.UserID.String(),
		"decision":    req.Decision,
		"reviewed_by": reviewerID.String(),
	})
	return profile, nil
}

// IsApprovedDriver reports whether the driver may start sessions. No
// profile means not approved, not an error.
func (s *service) IsApprovedDriver(ctx context.Context, userID uuid.UUID) (bool, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeNotFound {
			return false, nil
		}
		return false, err
	}
	return profile.Status == StatusApproved, nil
}

// OnboardDriver files the pending profile created during driver
// registration.
func (s *service) OnboardDriver(ctx context.Context, userID uuid.UUID, licenseNumber, vehicleModel, vehiclePlate string) error {
	_, err := s.SubmitProfile(ctx, userID, SubmitProfileRequest{
		LicenseNumber: licenseNumber,
		VehicleModel:  vehicleModel,
		VehiclePlate:  vehiclePlate,
	})
	return err
}
