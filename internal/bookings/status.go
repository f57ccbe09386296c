package bookings

// Status represents the state of a booking
type Status string

const (
	// StatusPending covers the gap between hold conversion starting and
	// the payment settling; bookings are created confirmed today, but
	// the state is part of the wire contract.
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}
