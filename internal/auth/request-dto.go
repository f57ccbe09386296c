package auth

// login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// registration request payload. Admin accounts are provisioned
// directly, never self-registered. Driver registrations carry the
// license and vehicle details that seed the verification profile.
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=100"`
	LastName  string `json:"last_name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"` // PASSENGER (default) or DRIVER

	// Driver verification details, required when Role is DRIVER.
	LicenseNumber string `json:"license_number,omitempty" validate:"omitempty,min=4,max=64"`
	VehicleModel  string `json:"vehicle_model,omitempty" validate:"omitempty,max=100"`
	VehiclePlate  string `json:"vehicle_plate,omitempty" validate:"omitempty,min=2,max=20"`
}

// represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// represents change password request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// represents logout request
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}
