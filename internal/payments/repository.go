package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"transitly/internal/bookings"
	"transitly/internal/sessions"
	"transitly/internal/shared/apperrors"
)

// ConvertParams carries the payment details for a hold conversion
type ConvertParams struct {
	IdempotencyKey   string
	Method           string
	GatewayReference string
}

type Repository interface {
	GetByIdempotencyKey(ctx context.Context, key string) (*Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error)
	GetUserPayments(ctx context.Context, passengerID uuid.UUID) ([]Payment, error)

	// ConvertHold settles a payment and its booking in one transaction.
	ConvertHold(ctx context.Context, holdID, passengerID uuid.UUID, params ConvertParams) (*Payment, error)

	// RefundByBooking reverses a payment: refund, cancellation, and seat
	// restoration in one transaction.
	RefundByBooking(ctx context.Context, bookingID, passengerID uuid.UUID) (*Payment, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByIdempotencyKey(ctx context.Context, key string) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).
		Preload("Booking").
		Where("idempotency_key = ?", key).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Payment not found")
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).
		Preload("Booking").
		Where("id = ?", id).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Payment not found")
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Payment not found")
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) GetUserPayments(ctx context.Context, passengerID uuid.UUID) ([]Payment, error) {
	var list []Payment
	err := r.db.WithContext(ctx).
		Preload("Booking").
		Where("passenger_id = ?", passengerID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return list, nil
}

// ConvertHold converts a live hold into a confirmed booking with its
// payment, deleting the hold in the same transaction. The seats were
// already subtracted when the hold was created, so the counter does
// not move here. An expired hold is released on the spot before the
// conflict is reported, so its seats return to the pool immediately
// instead of waiting for the reaper.
func (r *repository) ConvertHold(ctx context.Context, holdID, passengerID uuid.UUID, params ConvertParams) (*Payment, error) {
	var result Payment
	expired := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var hold bookings.SeatHold
		err := tx.
			Set("gorm:query_option", "FOR UPDATE").
			Where("id = ?", holdID).
			First(&hold).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Hold not found or already settled")
			}
			return fmt.Errorf("failed to lock hold: %w", err)
		}

		if hold.PassengerID != passengerID {
			return apperrors.NotFound("Hold not found or already settled")
		}
		if hold.IsExpired() {
			// Release inside this transaction, commit, and report the
			// conflict afterwards.
			expired = true
			return r.releaseExpiredHold(tx, &hold)
		}

		booking := bookings.Booking{
			SessionID:   hold.SessionID,
			PassengerID: hold.PassengerID,
			SeatsCount:  hold.SeatsCount,
			TotalAmount: hold.TotalAmount,
			Status:      bookings.StatusConfirmed,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		payment := Payment{
			BookingID:        booking.ID,
			PassengerID:      hold.PassengerID,
			IdempotencyKey:   params.IdempotencyKey,
			FareAmount:       hold.BaseFare * float64(hold.SeatsCount),
			ServiceFee:       hold.ServiceFee * float64(hold.SeatsCount),
			TotalAmount:      hold.TotalAmount,
			Method:           params.Method,
			GatewayReference: params.GatewayReference,
			Status:           StatusSuccess,
		}
		if err := tx.Create(&payment).Error; err != nil {
			if isUniqueViolation(err) {
				// A concurrent replay with the same key won the race.
				return apperrors.Conflict("Payment already processed for this key")
			}
			return fmt.Errorf("failed to create payment: %w", err)
		}

		if err := tx.Delete(&bookings.SeatHold{}, "id = ?", hold.ID).Error; err != nil {
			return fmt.Errorf("failed to settle hold: %w", err)
		}

		payment.Booking = &booking
		result = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, apperrors.Conflict("Hold has expired, please hold seats again")
	}
	return &result, nil
}

// releaseExpiredHold deletes the hold and returns its seats to the
// pool, mirroring what the reaper would do on its next pass.
func (r *repository) releaseExpiredHold(tx *gorm.DB, hold *bookings.SeatHold) error {
	if err := tx.Delete(&bookings.SeatHold{}, "id = ?", hold.ID).Error; err != nil {
		return fmt.Errorf("failed to release expired hold: %w", err)
	}

	var session sessions.Session
	err := tx.
		Set("gorm:query_option", "FOR UPDATE").
		Where("id = ?", hold.SessionID).
		First(&session).Error
	if err != nil {
		return fmt.Errorf("failed to lock session: %w", err)
	}

	if session.IsTerminal() {
		return nil
	}
	restored := session.AvailableSeats + hold.SeatsCount
	if restored > session.TotalSeats {
		return apperrors.Internal("seat counter overflow", nil)
	}
	updates := map[string]interface{}{"available_seats": restored}
	if session.Status == sessions.StatusFull && restored > 0 {
		updates["status"] = sessions.StatusActive
	}
	if err := tx.Model(&sessions.Session{}).
		Where("id = ?", session.ID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to restore seats: %w", err)
	}
	return nil
}

// RefundByBooking marks the payment refunded, cancels the booking, and
// returns its seats to the pool, all in one transaction.
func (r *repository) RefundByBooking(ctx context.Context, bookingID, passengerID uuid.UUID) (*Payment, error) {
	var result Payment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking bookings.Booking
		err := tx.
			Set("gorm:query_option", "FOR UPDATE").
			Where("id = ?", bookingID).
			First(&booking).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Booking not found")
			}
			return fmt.Errorf("failed to lock booking: %w", err)
		}

		if booking.PassengerID != passengerID {
			return apperrors.NotFound("Booking not found")
		}
		if booking.Status != bookings.StatusConfirmed {
			return apperrors.Conflict("Booking is not refundable")
		}

		var payment Payment
		err = tx.Where("booking_id = ?", bookingID).First(&payment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Payment not found for booking")
			}
			return err
		}
		if payment.Status != StatusSuccess {
			return apperrors.Conflict("Payment already refunded")
		}

		now := time.Now()
		err = tx.Model(&bookings.Booking{}).
			Where("id = ?", bookingID).
			Updates(map[string]interface{}{
				"status":       bookings.StatusCancelled,
				"cancelled_at": now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		err = tx.Model(&Payment{}).
			Where("id = ?", payment.ID).
			Update("status", StatusRefunded).Error
		if err != nil {
			return fmt.Errorf("failed to refund payment: %w", err)
		}

		var session sessions.Session
		err = tx.
			Set("gorm:query_option", "FOR UPDATE").
			Where("id = ?", booking.SessionID).
			First(&session).Error
		if err != nil {
			return fmt.Errorf("failed to lock session: %w", err)
		}

		// Terminal sessions keep their counters frozen.
		if !session.IsTerminal() {
			restored := session.AvailableSeats + booking.SeatsCount
			if restored > session.TotalSeats {
				return apperrors.Internal("seat counter overflow", nil)
			}
			updates := map[string]interface{}{"available_seats": restored}
			if session.Status == sessions.StatusFull && restored > 0 {
				updates["status"] = sessions.StatusActive
			}
			err = tx.Model(&sessions.Session{}).
				Where("id = ?", session.ID).
				Updates(updates).Error
			if err != nil {
				return fmt.Errorf("failed to restore seats: %w", err)
			}
		}

		payment.Status = StatusRefunded
		result = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}
