package payments

import (
	"context"

	"github.com/google/uuid"

	"transitly/internal/realtime"
	"transitly/internal/shared/apperrors"
	"transitly/pkg/logger"
)

// HoldEvicter drops a settled hold from the Redis hold mirror
// (implemented by the bookings hold cache).
type HoldEvicter interface {
	Delete(ctx context.Context, holdID string)
}

// Service interface defines the contract for payment logic
type Service interface {
	ProcessPayment(ctx context.Context, passengerID uuid.UUID, req ProcessPaymentRequest) (*Payment, error)
	GetPayment(ctx context.Context, paymentID, passengerID uuid.UUID) (*Payment, error)
	ListUserPayments(ctx context.Context, passengerID uuid.UUID) ([]Payment, error)
	RefundForBooking(ctx context.Context, bookingID, passengerID uuid.UUID) error

	// RefundPayment reverses a payment by its ID on behalf of the
	// paying passenger. Admin-facing.
	RefundPayment(ctx context.Context, paymentID uuid.UUID) (*Payment, error)
}

type service struct {
	repo        Repository
	broadcaster realtime.Broadcaster
	holds       HoldEvicter
	logger      *logger.Logger
}

// NewService creates a new payment service instance
func NewService(repo Repository, broadcaster realtime.Broadcaster, holds HoldEvicter) Service {
	return &service{
		repo:        repo,
		broadcaster: broadcaster,
		holds:       holds,
		logger:      logger.GetDefault(),
	}
}

// ProcessPayment converts a live hold into a confirmed booking. The
// idempotency key is checked before any work: a replayed request gets
// the original payment back, never a second charge.
func (s *service) ProcessPayment(ctx context.Context, passengerID uuid.UUID, req ProcessPaymentRequest) (*Payment, error) {
	existing, err := s.repo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
	if err == nil {
		if existing.PassengerID != passengerID {
			return nil, apperrors.Conflict("Idempotency key already used")
		}
		return existing, nil
	}
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		return nil, err
	}

	holdID, err := uuid.Parse(req.HoldID)
	if err != nil {
		return nil, apperrors.NotFound("Hold not found or already settled")
	}

	payment, err := s.repo.ConvertHold(ctx, holdID, passengerID, ConvertParams{
		IdempotencyKey:   req.IdempotencyKey,
		Method:           req.Method,
		GatewayReference: req.GatewayReference,
	})
	if err != nil {
		// Either outcome behind a conflict settled the hold: a
		// concurrent replay converted it, or it was expired and
		// released. The mirror entry is stale in both cases.
		if apperrors.CodeOf(err) == apperrors.CodeConflict {
			s.holds.Delete(ctx, req.HoldID)
			if settled, lookupErr := s.repo.GetByIdempotencyKey(ctx, req.IdempotencyKey); lookupErr == nil {
				if settled.PassengerID == passengerID {
					return settled, nil
				}
			}
		}
		return nil, err
	}

	// The hold row is gone; drop its mirror entry so reads stop serving
	// a hold that became a booking.
	s.holds.Delete(ctx, req.HoldID)

	s.logger.LogPaymentProcessed(ctx, payment.ID.String(), payment.BookingID.String(), payment.TotalAmount)
	if payment.Booking != nil {
		s.logger.LogBookingConfirmed(ctx, payment.BookingID.String(),
			payment.Booking.SessionID.String(), passengerID.String())
		s.broadcaster.Publish(ctx, realtime.TopicSeatBooked, payment.Booking.SessionID.String(), map[string]interface{}{
			"session_id":   payment.Booking.SessionID,
			"passenger_id": payment.PassengerID,
			"booking_id":   payment.BookingID,
			"seats_count":  payment.Booking.SeatsCount,
		})
	}
	s.broadcaster.Publish(ctx, realtime.TopicPaymentSuccess, payment.ID.String(), map[string]interface{}{
		"payment_id": payment.ID,
		"booking_id": payment.BookingID,
		"amount":     payment.TotalAmount,
	})

	return payment, nil
}

func (s *service) GetPayment(ctx context.Context, paymentID, passengerID uuid.UUID) (*Payment, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.PassengerID != passengerID {
		return nil, apperrors.NotFound("Payment not found")
	}
	return payment, nil
}

func (s *service) ListUserPayments(ctx context.Context, passengerID uuid.UUID) ([]Payment, error) {
	return s.repo.GetUserPayments(ctx, passengerID)
}

// RefundForBooking reverses the payment behind a booking. Satisfies the
// booking side's cancellation contract.
func (s *service) RefundForBooking(ctx context.Context, bookingID, passengerID uuid.UUID) error {
	payment, err := s.repo.RefundByBooking(ctx, bookingID, passengerID)
	if err != nil {
		return err
	}

	s.logger.InfoWithContext(ctx, "Payment Refunded", map[string]interface{}{
		"payment_id": payment.ID.String(),
		"booking_id": bookingID.String(),
		"amount":     payment.TotalAmount,
	})
	return nil
}

// RefundPayment reverses a settled payment by its ID. It reuses the
// booking refund path so cancellation and seat restoration stay in one
// transaction.
func (s *service) RefundPayment(ctx context.Context, paymentID uuid.UUID) (*Payment, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != StatusSuccess {
		return nil, apperrors.Conflict("Payment is not refundable")
	}

	refunded, err := s.repo.RefundByBooking(ctx, payment.BookingID, payment.PassengerID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoWithContext(ctx, "Payment Refunded", map[string]interface{}{
		"payment_id": refunded.ID.String(),
		"booking_id": refunded.BookingID.String(),
		"amount":     refunded.TotalAmount,
	})
	return refunded, nil
}
