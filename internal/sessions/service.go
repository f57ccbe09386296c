package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"

	"transitly/internal/realtime"
	"transitly/internal/routes"
	"transitly/internal/shared/apperrors"
	"transitly/internal/shared/constants"
	"transitly/internal/stations"
	"transitly/pkg/cache"
)

// DriverGate reports whether a driver's profile passed verification
// (implemented by the drivers service).
type DriverGate interface {
	IsApprovedDriver(ctx context.Context, userID uuid.UUID) (bool, error)
}

// BookingCounter reports confirmed bookings per session (implemented by
// the bookings repository, injected to avoid a package cycle).
type BookingCounter interface {
	CountConfirmedBySession(ctx context.Context, sessionID uuid.UUID) (int64, error)
}

// HoldSweeper removes all outstanding holds of a session (implemented
// by the bookings repository).
type HoldSweeper interface {
	DeleteHoldsBySession(ctx context.Context, sessionID uuid.UUID) (int64, error)
}

// Service interface defines the contract for session lifecycle logic
type Service interface {
	StartSession(ctx context.Context, driverID uuid.UUID, req StartSessionRequest) (*Session, error)
	CloseSession(ctx context.Context, sessionID, driverID uuid.UUID) (*Session, error)
	CancelSession(ctx context.Context, sessionID, driverID uuid.UUID) (*Session, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*Session, error)
	ListSessions(ctx context.Context, query SessionListQuery) ([]Session, error)
	ListDriverSessions(ctx context.Context, driverID uuid.UUID, status string) ([]Session, error)
}

type service struct {
	repo           Repository
	routeService   routes.Service
	stationService stations.Service
	driverGate     DriverGate
	bookingCounter BookingCounter
	holdSweeper    HoldSweeper
	broadcaster    realtime.Broadcaster
	cache          cache.Service
}

// NewService creates a new session service instance
func NewService(
	repo Repository,
	routeService routes.Service,
	stationService stations.Service,
	driverGate DriverGate,
	bookingCounter BookingCounter,
	holdSweeper HoldSweeper,
	broadcaster realtime.Broadcaster,
	cacheService cache.Service,
) Service {
	return &service{
		repo:           repo,
		routeService:   routeService,
		stationService: stationService,
		driverGate:     driverGate,
		bookingCounter: bookingCounter,
		holdSweeper:    holdSweeper,
		broadcaster:    broadcaster,
		cache:          cacheService,
	}
}

func (s *service) StartSession(ctx context.Context, driverID uuid.UUID, req StartSessionRequest) (*Session, error) {
	approved, err := s.driverGate.IsApprovedDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, apperrors.Conflict("Driver profile has not been approved")
	}

	open, err := s.repo.HasOpenSessionForDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, apperrors.Conflict("Driver already has an active session")
	}

	routeID, err := uuid.Parse(req.RouteID)
	if err != nil {
		return nil, apperrors.NotFound("Route not found or inactive")
	}
	route, err := s.routeService.GetRoute(ctx, routeID)
	if err != nil || !route.IsActive {
		return nil, apperrors.NotFound("Route not found or inactive")
	}

	stationID, err := uuid.Parse(req.StationID)
	if err != nil {
		return nil, apperrors.NotFound("Station not found or inactive")
	}
	station, err := s.stationService.GetStation(ctx, stationID)
	if err != nil || !station.IsActive {
		return nil, apperrors.NotFound("Station not found or inactive")
	}

	session := &Session{
		DriverID:       driverID,
		RouteID:        routeID,
		StationID:      stationID,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
		Status:         StatusActive,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	created, err := s.repo.GetByIDWithRelations(ctx, session.ID)
	if err != nil {
		return session, nil
	}

	s.invalidate(ctx, session.ID)
	s.broadcaster.Publish(ctx, realtime.TopicSessionUpdated, created.ID.String(), created)
	return created, nil
}

func (s *service) CloseSession(ctx context.Context, sessionID, driverID uuid.UUID) (*Session, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.DriverID != driverID {
		return nil, apperrors.Conflict("Not authorized to close this session")
	}
	if session.IsTerminal() {
		return nil, apperrors.Conflict("Session already closed")
	}

	now := time.Now()
	if err := s.repo.UpdateStatus(ctx, sessionID, StatusClosed, &now); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByIDWithRelations(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, sessionID)
	s.broadcaster.Publish(ctx, realtime.TopicSessionUpdated, updated.ID.String(), updated)
	return updated, nil
}

func (s *service) CancelSession(ctx context.Context, sessionID, driverID uuid.UUID) (*Session, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.DriverID != driverID {
		return nil, apperrors.Conflict("Not authorized to cancel this session")
	}
	if session.Status != StatusActive {
		return nil, apperrors.Conflict("Can only cancel active sessions")
	}

	confirmed, err := s.bookingCounter.CountConfirmedBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if confirmed > 0 {
		return nil, apperrors.Conflict("Cannot cancel session with confirmed bookings")
	}

	now := time.Now()
	if err := s.repo.UpdateStatus(ctx, sessionID, StatusCancelled, &now); err != nil {
		return nil, err
	}

	// Session is terminal; outstanding holds are void either way.
	if _, err := s.holdSweeper.DeleteHoldsBySession(ctx, sessionID); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByIDWithRelations(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, sessionID)
	s.broadcaster.Publish(ctx, realtime.TopicSessionUpdated, updated.ID.String(), updated)
	return updated, nil
}

// GetSession serves reads through a short-lived snapshot cache. Seat
// counts may lag by up to the snapshot TTL; booking decisions never
// read from here.
func (s *service) GetSession(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	var session Session
	err := s.cache.GetOrSet(ctx, constants.SessionSnapshotKey(sessionID.String()), constants.TTLSessionSnapshot,
		func() (interface{}, error) {
			return s.repo.GetByIDWithRelations(ctx, sessionID)
		}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *service) ListSessions(ctx context.Context, query SessionListQuery) ([]Session, error) {
	// Only the default listing is hot enough to cache.
	if query.RouteID == "" && query.StationID == "" && query.Status == "" {
		var result []Session
		err := s.cache.GetOrSet(ctx, constants.ActiveSessionsKey(), constants.TTLActiveSessions,
			func() (interface{}, error) {
				return s.repo.List(ctx, query)
			}, &result)
		return result, err
	}
	return s.repo.List(ctx, query)
}

func (s *service) ListDriverSessions(ctx context.Context, driverID uuid.UUID, status string) ([]Session, error) {
	return s.repo.ListByDriver(ctx, driverID, status)
}

func (s *service) invalidate(ctx context.Context, sessionID uuid.UUID) {
	_ = s.cache.Delete(ctx, constants.SessionSnapshotKey(sessionID.String()), constants.ActiveSessionsKey())
}
