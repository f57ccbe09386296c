package drivers

import (
	"time"

	"github.com/google/uuid"

	"transitly/internal/users"
)

// VerificationStatus represents the review state of a driver profile
type VerificationStatus string

const (
	StatusPending  VerificationStatus = "PENDING"
	StatusApproved VerificationStatus = "APPROVED"
	StatusRejected VerificationStatus = "REJECTED"
)

func (s VerificationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// Profile holds a driver's license and vehicle details. A driver
// cannot start sessions until an admin approves the profile.
type Profile struct {
	ID            uuid.UUID          `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	UserID        uuid.UUID          `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	LicenseNumber string             `json:"license_number" gorm:"size:64;not null"`
	VehicleModel  string             `json:"vehicle_model" gorm:"size:100;not null"`
	VehiclePlate  string             `json:"vehicle_plate" gorm:"size:20;not null"`
	Status        VerificationStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	ReviewNote    string             `json:"review_note,omitempty" gorm:"size:500"`
	ReviewedBy    *uuid.UUID         `json:"reviewed_by,omitempty" gorm:"type:uuid"`
	ReviewedAt    *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`

	// Relationships
	User *users.User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Profile) TableName() string {
	return "driver_profiles"
}
