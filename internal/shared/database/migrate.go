package database

import (
	"transitly/internal/audit"
	"transitly/internal/bookings"
	"transitly/internal/drivers"
	"transitly/internal/notifications"
	"transitly/internal/payments"
	"transitly/internal/routes"
	"transitly/internal/sessions"
	"transitly/internal/stations"
	"transitly/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&users.User{},
		&drivers.Profile{},
		&routes.Route{},
		&stations.Station{},
		&sessions.Session{},
		&bookings.SeatHold{},
		&bookings.Booking{},
		&payments.Payment{},
		&audit.Log{},
		&notifications.Notification{},
	); err != nil {
		return err
	}

	return MigrateConstraints(db)
}
