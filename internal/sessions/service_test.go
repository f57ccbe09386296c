package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitly/internal/realtime"
	"transitly/internal/routes"
	"transitly/internal/shared/apperrors"
	"transitly/internal/stations"
	"transitly/pkg/cache"
)

type fakeRepo struct {
	sessions map[uuid.UUID]*Session
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[uuid.UUID]*Session)}
}

func (f *fakeRepo) Create(ctx context.Context, session *Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	session.StartedAt = time.Now()
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, apperrors.NotFound("Session not found")
	}
	copied := *session
	return &copied, nil
}

func (f *fakeRepo) GetByIDWithRelations(ctx context.Context, id uuid.UUID) (*Session, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRepo) HasOpenSessionForDriver(ctx context.Context, driverID uuid.UUID) (bool, error) {
	for _, session := range f.sessions {
		if session.DriverID == driverID && !session.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) List(ctx context.Context, query SessionListQuery) ([]Session, error) {
	var result []Session
	for _, session := range f.sessions {
		result = append(result, *session)
	}
	return result, nil
}

func (f *fakeRepo) ListByDriver(ctx context.Context, driverID uuid.UUID, status string) ([]Session, error) {
	var result []Session
	for _, session := range f.sessions {
		if session.DriverID == driverID {
			result = append(result, *session)
		}
	}
	return result, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, endedAt *time.Time) error {
	if session, ok := f.sessions[id]; ok {
		session.Status = status
		session.EndedAt = endedAt
	}
	return nil
}

type fakeRouteService struct {
	routes map[uuid.UUID]*routes.Route
}

func (f *fakeRouteService) CreateRoute(ctx context.Context, req routes.CreateRouteRequest) (*routes.Route, error) {
	return nil, nil
}

func (f *fakeRouteService) GetRoute(ctx context.Context, id uuid.UUID) (*routes.Route, error) {
	route, ok := f.routes[id]
	if !ok {
		return nil, routes.ErrRouteNotFound
	}
	return route, nil
}

func (f *fakeRouteService) ListRoutes(ctx context.Context, activeOnly bool) ([]routes.Route, error) {
	return nil, nil
}

func (f *fakeRouteService) UpdateRoute(ctx context.Context, id uuid.UUID, req routes.UpdateRouteRequest) (*routes.Route, error) {
	return nil, nil
}

func (f *fakeRouteService) GetBaseFare(ctx context.Context, id uuid.UUID) (float64, error) {
	route, ok := f.routes[id]
	if !ok {
		return 0, routes.ErrRouteNotFound
	}
	return route.BaseFare, nil
}

type fakeStationService struct {
	stations map[uuid.UUID]*stations.Station
}

func (f *fakeStationService) CreateStation(ctx context.Context, req stations.CreateStationRequest) (*stations.Station, error) {
	return nil, nil
}

func (f *fakeStationService) GetStation(ctx context.Context, id uuid.UUID) (*stations.Station, error) {
	station, ok := f.stations[id]
	if !ok {
		return nil, stations.ErrStationNotFound
	}
	return station, nil
}

func (f *fakeStationService) ListStations(ctx context.Context, activeOnly bool) ([]stations.Station, error) {
	return nil, nil
}

func (f *fakeStationService) UpdateStation(ctx context.Context, id uuid.UUID, req stations.UpdateStationRequest) (*stations.Station, error) {
	return nil, nil
}

type fakeDriverGate struct {
	approved map[uuid.UUID]bool
}

func (f *fakeDriverGate) IsApprovedDriver(ctx context.Context, userID uuid.UUID) (bool, error) {
	return f.approved[userID], nil
}

type fakeBookingCounter struct {
	confirmed int64
}

func (f *fakeBookingCounter) CountConfirmedBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	return f.confirmed, nil
}

type fakeHoldSweeper struct {
	swept int64
}

func (f *fakeHoldSweeper) DeleteHoldsBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	f.swept++
	return 2, nil
}

type fixture struct {
	repo      *fakeRepo
	routeID   uuid.UUID
	stationID uuid.UUID
	gate      *fakeDriverGate
	counter   *fakeBookingCounter
	sweeper   *fakeHoldSweeper
	svc       Service
}

func newFixture() *fixture {
	repo := newFakeRepo()
	routeID := uuid.New()
	stationID := uuid.New()
	gate := &fakeDriverGate{approved: make(map[uuid.UUID]bool)}
	counter := &fakeBookingCounter{}
	sweeper := &fakeHoldSweeper{}

	routeSvc := &fakeRouteService{routes: map[uuid.UUID]*routes.Route{
		routeID: {ID: routeID, Name: "Downtown Express", BaseFare: 4.5, IsActive: true},
	}}
	stationSvc := &fakeStationService{stations: map[uuid.UUID]*stations.Station{
		stationID: {ID: stationID, Name: "Central Station", IsActive: true},
	}}

	svc := NewService(repo, routeSvc, stationSvc, gate, counter, sweeper,
		realtime.NoopBroadcaster{}, cache.NewService(nil))

	return &fixture{
		repo:      repo,
		routeID:   routeID,
		stationID: stationID,
		gate:      gate,
		counter:   counter,
		sweeper:   sweeper,
		svc:       svc,
	}
}

// approvedDriver registers a driver the gate will wave through.
func (fx *fixture) approvedDriver() uuid.UUID {
	driverID := uuid.New()
	fx.gate.approved[driverID] = true
	return driverID
}

func TestStartSessionInitializesSeatPool(t *testing.T) {
	fx := newFixture()

	session, err := fx.svc.StartSession(context.Background(), fx.approvedDriver(), StartSessionRequest{
		RouteID:    fx.routeID.String(),
		StationID:  fx.stationID.String(),
		TotalSeats: 12,
	})
	require.NoError(t, err)

	assert.Equal(t, 12, session.TotalSeats)
	assert.Equal(t, 12, session.AvailableSeats, "all seats start available")
	assert.Equal(t, StatusActive, session.Status)
}

func TestStartSessionRejectsSecondActive(t *testing.T) {
	fx := newFixture()
	driverID := fx.approvedDriver()

	_, err := fx.svc.StartSession(context.Background(), driverID, StartSessionRequest{
		RouteID:    fx.routeID.String(),
		StationID:  fx.stationID.String(),
		TotalSeats: 8,
	})
	require.NoError(t, err)

	_, err = fx.svc.StartSession(context.Background(), driverID, StartSessionRequest{
		RouteID:    fx.routeID.String(),
		StationID:  fx.stationID.String(),
		TotalSeats: 8,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestStartSessionUnknownRoute(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.StartSession(context.Background(), fx.approvedDriver(), StartSessionRequest{
		RouteID:    uuid.New().String(),
		StationID:  fx.stationID.String(),
		TotalSeats: 8,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestStartSessionUnapprovedDriver(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.StartSession(context.Background(), uuid.New(), StartSessionRequest{
		RouteID:    fx.routeID.String(),
		StationID:  fx.stationID.String(),
		TotalSeats: 8,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
	assert.Empty(t, fx.repo.sessions, "no session for an unverified driver")
}

func TestCloseSessionOnlyByOwner(t *testing.T) {
	fx := newFixture()
	driverID := fx.approvedDriver()

	session, err := fx.svc.StartSession(context.Background(), driverID, StartSessionRequest{
		RouteID:    fx.routeID.String(),
		StationID:  fx.stationID.String(),
		TotalSeats: 8,
	})
	require.NoError(t, err)

	_, err = fx.svc.CloseSession(context.Background(), session.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))

	closed, err := fx.svc.CloseSession(context.Background(), session.ID, driverID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, closed.Status)
	assert.NotNil(t, closed.EndedAt)
}

func TestCloseSessionTwiceRejected(t *testing.T) {
	fx := newFixture()
	driverID := fx.approvedDriver()

	session, err := fx.svc.StartSession(context.Background(), driverID, StartSessionRequest{
		RouteID:    fx.routeID.String(),
		StationID:  fx.stationID.String(),
		TotalSeats: 8,
	})
	require.NoError(t, err)

	_, err = fx.svc.CloseSession(context.Background(), session.ID, driverID)
	require.NoError(t, err)

	_, err = fx.svc.CloseSession(context.Background(), session.ID, driverID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestCancelSessionSweepsHolds(t *testing.T) {
	fx := newFixture()
	driverID := fx.approvedDriver()

	session, err := fx.svc.StartSession(context.Background(), driverID, StartSessionRequest{
		RouteID:    fx.routeID.String(),
		StationID:  fx.stationID.String(),
		TotalSeats: 8,
	})
	require.NoError(t, err)

	cancelled, err := fx.svc.CancelSession(context.Background(), session.ID, driverID)
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, int64(1), fx.sweeper.swept, "outstanding holds dropped")
}

func TestCancelSessionWithConfirmedBookings(t *testing.T) {
	fx := newFixture()
	fx.counter.confirmed = 3
	driverID := fx.approvedDriver()

	session, err := fx.svc.StartSession(context.Background(), driverID, StartSessionRequest{
		RouteID:    fx.routeID.String(),
		StationID:  fx.stationID.String(),
		TotalSeats: 8,
	})
	require.NoError(t, err)

	_, err = fx.svc.CancelSession(context.Background(), session.ID, driverID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))

	current, err := fx.repo.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, current.Status, "session untouched on rejected cancel")
}
