package database

import (
	"strings"

	"gorm.io/gorm"
)

// MigrateConstraints adds critical database constraints for concurrency control
func MigrateConstraints(db *gorm.DB) error {
	// One unexpired hold per (session, passenger) is enforced in the hold
	// transaction; this index keeps the lookup cheap.
	err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_seat_holds_session_passenger
		ON seat_holds (session_id, passenger_id);
	`).Error
	if err != nil {
		return err
	}

	// Expiry reaper scans by expires_at.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_seat_holds_expires_at
		ON seat_holds (expires_at);
	`).Error
	if err != nil {
		return err
	}

	// availableSeats can never go negative, even if application checks regress.
	err = db.Exec(`
		ALTER TABLE sessions
		ADD CONSTRAINT chk_sessions_available_seats
		CHECK (available_seats >= 0 AND available_seats <= total_seats);
	`).Error
	if err != nil && !isDuplicateConstraint(err) {
		return err
	}

	return nil
}

func isDuplicateConstraint(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already exists")
}
