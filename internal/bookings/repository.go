package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"transitly/internal/sessions"
	"transitly/internal/shared/apperrors"
)

type Repository interface {
	// Hold operations. Each one settles the session seat counter and the
	// hold row in a single transaction.
	CreateHoldWithSeatCheck(ctx context.Context, hold *SeatHold) error
	ReleaseHold(ctx context.Context, holdID, passengerID uuid.UUID) (*SeatHold, error)
	ReclaimExpiredHolds(ctx context.Context, batchSize int) ([]SeatHold, error)
	GetHoldByID(ctx context.Context, id uuid.UUID) (*SeatHold, error)
	GetUserHolds(ctx context.Context, passengerID uuid.UUID) ([]SeatHold, error)

	// Booking queries
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetBookingByIDWithRelations(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetUserBookings(ctx context.Context, passengerID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)
	GetBookingsBySessionID(ctx context.Context, sessionID uuid.UUID) ([]Booking, error)

	// Session lifecycle support
	CountConfirmedBySession(ctx context.Context, sessionID uuid.UUID) (int64, error)
	DeleteHoldsBySession(ctx context.Context, sessionID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// lockedSession reads a session row under FOR UPDATE so concurrent
// transactions serialize on the seat counter.
func lockedSession(tx *gorm.DB, sessionID uuid.UUID) (*sessions.Session, error) {
	var session sessions.Session
	err := tx.
		Set("gorm:query_option", "FOR UPDATE").
		Where("id = ?", sessionID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Session not found")
		}
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}
	return &session, nil
}

// CreateHoldWithSeatCheck creates a hold atomically with seat validation.
// The seats leave the available pool in the same transaction.
func (r *repository) CreateHoldWithSeatCheck(ctx context.Context, hold *SeatHold) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := lockedSession(tx, hold.SessionID)
		if err != nil {
			return err
		}

		if session.Status != sessions.StatusActive {
			return apperrors.Conflict("Session is not accepting holds")
		}

		// One live hold per passenger per session.
		var existing int64
		err = tx.Model(&SeatHold{}).
			Where("session_id = ? AND passenger_id = ?", hold.SessionID, hold.PassengerID).
			Where("expires_at > ?", time.Now()).
			Count(&existing).Error
		if err != nil {
			return fmt.Errorf("failed to check existing holds: %w", err)
		}
		if existing > 0 {
			return apperrors.Conflict("You already have an active hold on this session")
		}

		if session.AvailableSeats < hold.SeatsCount {
			if session.AvailableSeats <= 0 {
				return apperrors.Conflict("Session is fully booked")
			}
			return apperrors.Conflict(fmt.Sprintf("Only %d seats available, requested %d",
				session.AvailableSeats, hold.SeatsCount))
		}

		if err := tx.Create(hold).Error; err != nil {
			return fmt.Errorf("failed to create hold: %w", err)
		}

		remaining := session.AvailableSeats - hold.SeatsCount
		updates := map[string]interface{}{"available_seats": remaining}
		if remaining == 0 {
			updates["status"] = sessions.StatusFull
		}
		err = tx.Model(&sessions.Session{}).
			Where("id = ?", hold.SessionID).
			Updates(updates).Error
		if err != nil {
			return fmt.Errorf("failed to update available seats: %w", err)
		}

		return nil
	})
}

// ReleaseHold deletes a hold and returns its seats to the pool.
// Returns the released hold so callers can report seat counts.
func (r *repository) ReleaseHold(ctx context.Context, holdID, passengerID uuid.UUID) (*SeatHold, error) {
	var released SeatHold

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the hold row first. A concurrent settle (conversion, reap,
		// double release) blocks here and sees the row gone once we
		// commit, instead of restoring the seats a second time.
		var hold SeatHold
		err := tx.
			Set("gorm:query_option", "FOR UPDATE").
			Where("id = ?", holdID).
			First(&hold).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Hold not found")
			}
			return err
		}
		if hold.PassengerID != passengerID {
			return apperrors.Conflict("Not authorized to release this hold")
		}

		session, err := lockedSession(tx, hold.SessionID)
		if err != nil {
			return err
		}

		res := tx.Delete(&SeatHold{}, "id = ?", hold.ID)
		if res.Error != nil {
			return fmt.Errorf("failed to delete hold: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Settled by a concurrent transaction while we waited on the
			// session lock. Its seats moved exactly once, there.
			return apperrors.NotFound("Hold not found")
		}

		// Terminal sessions keep their counters frozen.
		if !session.IsTerminal() {
			if err := restoreSeats(tx, session, hold.SeatsCount); err != nil {
				return err
			}
		}

		released = hold
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &released, nil
}

// ReclaimExpiredHolds sweeps holds whose window has passed, returning
// their seats to the pool. Each hold settles in its own transaction so
// one poisoned row cannot wedge the whole sweep.
func (r *repository) ReclaimExpiredHolds(ctx context.Context, batchSize int) ([]SeatHold, error) {
	var expired []SeatHold
	err := r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Limit(batchSize).
		Find(&expired).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired holds: %w", err)
	}

	reclaimed := make([]SeatHold, 0, len(expired))
	for i := range expired {
		hold := expired[i]
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			// Re-check under a row lock: the hold may have been converted
			// or released since the scan, and the lock keeps a concurrent
			// settle from slipping between this read and the delete.
			var current SeatHold
			err := tx.
				Set("gorm:query_option", "FOR UPDATE").
				Where("id = ? AND expires_at <= ?", hold.ID, time.Now()).
				First(&current).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}

			session, err := lockedSession(tx, current.SessionID)
			if err != nil {
				return err
			}

			res := tx.Delete(&SeatHold{}, "id = ?", current.ID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			if !session.IsTerminal() {
				if err := restoreSeats(tx, session, current.SeatsCount); err != nil {
					return err
				}
			}
			reclaimed = append(reclaimed, current)
			return nil
		})
		if err != nil {
			return reclaimed, err
		}
	}
	return reclaimed, nil
}

// restoreSeats adds seats back to a locked session and reopens a FULL
// session. Callers must hold the session row lock.
func restoreSeats(tx *gorm.DB, session *sessions.Session, seats int) error {
	restored := session.AvailableSeats + seats
	if restored > session.TotalSeats {
		return apperrors.Internal("seat counter overflow", nil)
	}
	updates := map[string]interface{}{"available_seats": restored}
	if session.Status == sessions.StatusFull && restored > 0 {
		updates["status"] = sessions.StatusActive
	}
	err := tx.Model(&sessions.Session{}).
		Where("id = ?", session.ID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to restore seats: %w", err)
	}
	return nil
}

func (r *repository) GetHoldByID(ctx context.Context, id uuid.UUID) (*SeatHold, error) {
	var hold SeatHold
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&hold).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Hold not found")
		}
		return nil, err
	}
	return &hold, nil
}

func (r *repository) GetUserHolds(ctx context.Context, passengerID uuid.UUID) ([]SeatHold, error) {
	var holds []SeatHold
	err := r.db.WithContext(ctx).
		Where("passenger_id = ?", passengerID).
		Where("expires_at > ?", time.Now()).
		Order("created_at DESC").
		Find(&holds).Error
	return holds, err
}

func (r *repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Booking not found")
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetBookingByIDWithRelations(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Passenger").
		Preload("Session").
		Preload("Session.Route").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Booking not found")
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetUserBookings(ctx context.Context, passengerID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	var bookings []Booking
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("passenger_id = ?", passengerID)

	if query.Status != "" {
		baseQuery = baseQuery.Where("status = ?", query.Status)
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("Session").
		Preload("Session.Route").
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&bookings).Error

	return bookings, totalCount, err
}

func (r *repository) GetBookingsBySessionID(ctx context.Context, sessionID uuid.UUID) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Preload("Passenger").
		Where("session_id = ?", sessionID).
		Where("status = ?", StatusConfirmed).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) CountConfirmedBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("session_id = ? AND status = ?", sessionID, StatusConfirmed).
		Count(&count).Error
	return count, err
}

// DeleteHoldsBySession drops all holds of a session without touching
// the seat counter. Only valid once the session is terminal.
func (r *repository) DeleteHoldsBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&SeatHold{})
	return result.RowsAffected, result.Error
}
