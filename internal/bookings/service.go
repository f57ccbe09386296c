package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"transitly/internal/locks"
	"transitly/internal/realtime"
	"transitly/internal/sessions"
	"transitly/internal/shared/apperrors"
	"transitly/internal/shared/config"
	"transitly/internal/shared/constants"
	"transitly/pkg/logger"
)

// FareProvider resolves the base fare of a route (implemented by the
// routes service).
type FareProvider interface {
	GetBaseFare(ctx context.Context, routeID uuid.UUID) (float64, error)
}

// Refunder settles a booking cancellation: payment refund, booking
// status, and seat restoration in one transaction (implemented by the
// payments service and injected after construction to avoid a cycle).
type Refunder interface {
	RefundForBooking(ctx context.Context, bookingID, passengerID uuid.UUID) error
}

// HoldMirror is the best-effort Redis mirror of live holds. Entries
// are advisory; readers confirm against the database before trusting
// one.
type HoldMirror interface {
	Put(ctx context.Context, hold *SeatHold)
	Get(ctx context.Context, holdID string) *SeatHold
	Delete(ctx context.Context, holdID string)
}

// Service interface defines the contract for seat hold and booking logic
type Service interface {
	CreateHold(ctx context.Context, passengerID uuid.UUID, req CreateHoldRequest) (*SeatHold, error)
	ReleaseHold(ctx context.Context, holdID, passengerID uuid.UUID) error
	GetHold(ctx context.Context, holdID, passengerID uuid.UUID) (*SeatHold, error)
	ListUserHolds(ctx context.Context, passengerID uuid.UUID) ([]SeatHold, error)

	GetBooking(ctx context.Context, bookingID, passengerID uuid.UUID) (*Booking, error)
	ListUserBookings(ctx context.Context, passengerID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)
	CancelBooking(ctx context.Context, bookingID, passengerID uuid.UUID) (*Booking, error)

	ReclaimExpired(ctx context.Context) (int, error)
	SetRefunder(refunder Refunder)
}

type service struct {
	repo         Repository
	sessionRepo  sessions.Repository
	fareProvider FareProvider
	locker       locks.Locker
	cache        HoldMirror
	broadcaster  realtime.Broadcaster
	refunder     Refunder
	cfg          *config.Config
	logger       *logger.Logger
}

// NewService creates a new booking service instance
func NewService(
	repo Repository,
	sessionRepo sessions.Repository,
	fareProvider FareProvider,
	locker locks.Locker,
	cache HoldMirror,
	broadcaster realtime.Broadcaster,
	cfg *config.Config,
) Service {
	return &service{
		repo:         repo,
		sessionRepo:  sessionRepo,
		fareProvider: fareProvider,
		locker:       locker,
		cache:        cache,
		broadcaster:  broadcaster,
		cfg:          cfg,
		logger:       logger.GetDefault(),
	}
}

// SetRefunder wires the payment-side cancellation handler. Called once
// during router setup.
func (s *service) SetRefunder(refunder Refunder) {
	s.refunder = refunder
}

// CreateHold places seats on hold for a passenger. The advisory lock
// thins out stampedes on hot sessions; the row-locked transaction in
// the repository is what actually prevents oversell.
func (s *service) CreateHold(ctx context.Context, passengerID uuid.UUID, req CreateHoldRequest) (*SeatHold, error) {
	if req.SeatsCount > s.cfg.Booking.MaxSeatsPerHold {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot hold more than %d seats at once",
			s.cfg.Booking.MaxSeatsPerHold))
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, apperrors.NotFound("Session not found")
	}

	lockKey := constants.SessionLockKey(sessionID.String())
	if !s.locker.Acquire(ctx, lockKey, s.cfg.Lock.TTL) {
		s.logger.LogLockContention(ctx, sessionID.String())
		return nil, apperrors.Busy("Seats are being held by another passenger, please retry")
	}
	defer s.locker.Release(ctx, lockKey)

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != sessions.StatusActive {
		return nil, apperrors.Conflict("Session is not accepting holds")
	}

	baseFare, err := s.fareProvider.GetBaseFare(ctx, session.RouteID)
	if err != nil {
		return nil, err
	}

	fee := s.cfg.Booking.ServiceFee
	hold := &SeatHold{
		SessionID:   sessionID,
		PassengerID: passengerID,
		SeatsCount:  req.SeatsCount,
		BaseFare:    baseFare,
		ServiceFee:  fee,
		TotalAmount: (baseFare + fee) * float64(req.SeatsCount),
		ExpiresAt:   time.Now().Add(s.cfg.Booking.HoldTTL),
	}

	if err := s.repo.CreateHoldWithSeatCheck(ctx, hold); err != nil {
		return nil, err
	}

	s.cache.Put(ctx, hold)
	s.logger.LogHoldCreated(ctx, hold.ID.String(), sessionID.String(), passengerID.String(), hold.SeatsCount)
	s.publishSessionState(ctx, sessionID)

	return hold, nil
}

// ReleaseHold gives the held seats back. Releasing a hold that no
// longer exists is a no-op: expiry or conversion already settled it.
func (s *service) ReleaseHold(ctx context.Context, holdID, passengerID uuid.UUID) error {
	hold, err := s.repo.ReleaseHold(ctx, holdID, passengerID)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeNotFound {
			return nil
		}
		return err
	}

	s.cache.Delete(ctx, holdID.String())
	s.logger.LogHoldReleased(ctx, holdID.String(), hold.SessionID.String(), hold.SeatsCount)
	s.broadcaster.Publish(ctx, realtime.TopicSeatReleased, hold.SessionID.String(), map[string]interface{}{
		"session_id":   hold.SessionID,
		"passenger_id": hold.PassengerID,
		"seats_count":  hold.SeatsCount,
		"reason":       "released",
	})
	s.publishSessionState(ctx, hold.SessionID)
	return nil
}

// GetHold reads a hold, preferring the Redis mirror. A mirror hit is
// only trusted once the database row is confirmed to still exist: the
// hold may have been converted or released after the entry was
// written.
func (s *service) GetHold(ctx context.Context, holdID, passengerID uuid.UUID) (*SeatHold, error) {
	if cached := s.cache.Get(ctx, holdID.String()); cached != nil && cached.PassengerID == passengerID {
		if _, err := s.repo.GetHoldByID(ctx, holdID); err != nil {
			s.cache.Delete(ctx, holdID.String())
			return nil, err
		}
		return cached, nil
	}

	hold, err := s.repo.GetHoldByID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if hold.PassengerID != passengerID {
		return nil, apperrors.NotFound("Hold not found")
	}
	return hold, nil
}

func (s *service) ListUserHolds(ctx context.Context, passengerID uuid.UUID) ([]SeatHold, error) {
	return s.repo.GetUserHolds(ctx, passengerID)
}

func (s *service) GetBooking(ctx context.Context, bookingID, passengerID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetBookingByIDWithRelations(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PassengerID != passengerID {
		return nil, apperrors.NotFound("Booking not found")
	}
	return booking, nil
}

func (s *service) ListUserBookings(ctx context.Context, passengerID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	return s.repo.GetUserBookings(ctx, passengerID, query)
}

// CancelBooking cancels a confirmed booking. The refund transaction
// restores the seats and marks the payment refunded.
func (s *service) CancelBooking(ctx context.Context, bookingID, passengerID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PassengerID != passengerID {
		return nil, apperrors.NotFound("Booking not found")
	}
	if booking.Status != StatusConfirmed {
		return nil, apperrors.Conflict("Only confirmed bookings can be cancelled")
	}

	if s.refunder == nil {
		return nil, apperrors.Internal("refund handler not configured", nil)
	}
	if err := s.refunder.RefundForBooking(ctx, bookingID, passengerID); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.broadcaster.Publish(ctx, realtime.TopicSeatReleased, booking.SessionID.String(), map[string]interface{}{
		"session_id":   booking.SessionID,
		"passenger_id": booking.PassengerID,
		"seats_count":  booking.SeatsCount,
		"reason":       "cancelled",
	})
	s.publishSessionState(ctx, booking.SessionID)
	return updated, nil
}

// ReclaimExpired sweeps expired holds back into the seat pool.
func (s *service) ReclaimExpired(ctx context.Context) (int, error) {
	reclaimed, err := s.repo.ReclaimExpiredHolds(ctx, 100)
	for i := range reclaimed {
		hold := &reclaimed[i]
		s.cache.Delete(ctx, hold.ID.String())
		s.broadcaster.Publish(ctx, realtime.TopicSeatReleased, hold.SessionID.String(), map[string]interface{}{
			"session_id":   hold.SessionID,
			"passenger_id": hold.PassengerID,
			"seats_count":  hold.SeatsCount,
			"reason":       "expired",
		})
		s.publishSessionState(ctx, hold.SessionID)
	}
	return len(reclaimed), err
}

// publishSessionState broadcasts the current seat counts of a session,
// and session.full when the pool just emptied.
func (s *service) publishSessionState(ctx context.Context, sessionID uuid.UUID) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return
	}

	s.broadcaster.Publish(ctx, realtime.TopicSessionUpdated, sessionID.String(), map[string]interface{}{
		"session_id":      session.ID,
		"available_seats": session.AvailableSeats,
		"total_seats":     session.TotalSeats,
		"status":          session.Status,
	})
	if session.Status == sessions.StatusFull {
		s.broadcaster.Publish(ctx, realtime.TopicSessionFull, sessionID.String(), map[string]interface{}{
			"session_id": session.ID,
		})
	}
}
