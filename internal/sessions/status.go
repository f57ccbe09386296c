package sessions

// Status represents the lifecycle state of a session
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusFull      Status = "FULL"
	StatusClosed    Status = "CLOSED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusFull, StatusClosed, StatusCancelled:
		return true
	default:
		return false
	}
}
