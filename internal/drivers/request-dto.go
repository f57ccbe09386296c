package drivers

// SubmitProfileRequest carries license and vehicle details for
// verification. Resubmitting after a rejection puts the profile back
// in review.
type SubmitProfileRequest struct {
	LicenseNumber string `json:"license_number" binding:"required,min=4,max=64"`
	VehicleModel  string `json:"vehicle_model" binding:"required,max=100"`
	VehiclePlate  string `json:"vehicle_plate" binding:"required,min=2,max=20"`
}

// ReviewProfileRequest is the admin verification decision
type ReviewProfileRequest struct {
	Decision string `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	Note     string `json:"note" binding:"omitempty,max=500"`
}
