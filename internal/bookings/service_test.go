package bookings

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitly/internal/realtime"
	"transitly/internal/sessions"
	"transitly/internal/shared/apperrors"
	"transitly/internal/shared/config"
)

// memStore backs the in-memory fakes with the same transactional
// semantics the SQL repository enforces: every seat mutation happens
// under one lock together with its hold mutation.
type memStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*sessions.Session
	holds    map[uuid.UUID]*SeatHold
	bookings map[uuid.UUID]*Booking
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[uuid.UUID]*sessions.Session),
		holds:    make(map[uuid.UUID]*SeatHold),
		bookings: make(map[uuid.UUID]*Booking),
	}
}

func (m *memStore) addSession(totalSeats int, status sessions.Status) *sessions.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	session := &sessions.Session{
		ID:             uuid.New(),
		DriverID:       uuid.New(),
		RouteID:        uuid.New(),
		StationID:      uuid.New(),
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		Status:         status,
		StartedAt:      time.Now(),
	}
	m.sessions[session.ID] = session
	return session
}

type fakeBookingRepo struct {
	store *memStore
}

func (f *fakeBookingRepo) CreateHoldWithSeatCheck(ctx context.Context, hold *SeatHold) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	session, ok := f.store.sessions[hold.SessionID]
	if !ok {
		return apperrors.NotFound("Session not found")
	}
	if session.Status != sessions.StatusActive {
		return apperrors.Conflict("Session is not accepting holds")
	}
	for _, existing := range f.store.holds {
		if existing.SessionID == hold.SessionID && existing.PassengerID == hold.PassengerID &&
			existing.ExpiresAt.After(time.Now()) {
			return apperrors.Conflict("You already have an active hold on this session")
		}
	}
	if session.AvailableSeats < hold.SeatsCount {
		return apperrors.Conflict("not enough seats")
	}

	hold.ID = uuid.New()
	hold.CreatedAt = time.Now()
	f.store.holds[hold.ID] = hold

	session.AvailableSeats -= hold.SeatsCount
	if session.AvailableSeats == 0 {
		session.Status = sessions.StatusFull
	}
	return nil
}

func (f *fakeBookingRepo) ReleaseHold(ctx context.Context, holdID, passengerID uuid.UUID) (*SeatHold, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	hold, ok := f.store.holds[holdID]
	if !ok {
		return nil, apperrors.NotFound("Hold not found")
	}
	if hold.PassengerID != passengerID {
		return nil, apperrors.Conflict("Not authorized to release this hold")
	}
	delete(f.store.holds, holdID)

	session := f.store.sessions[hold.SessionID]
	if session != nil && !session.IsTerminal() {
		session.AvailableSeats += hold.SeatsCount
		if session.Status == sessions.StatusFull && session.AvailableSeats > 0 {
			session.Status = sessions.StatusActive
		}
	}
	return hold, nil
}

func (f *fakeBookingRepo) ReclaimExpiredHolds(ctx context.Context, batchSize int) ([]SeatHold, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var reclaimed []SeatHold
	for id, hold := range f.store.holds {
		if !hold.ExpiresAt.After(time.Now()) {
			delete(f.store.holds, id)
			session := f.store.sessions[hold.SessionID]
			if session != nil && !session.IsTerminal() {
				session.AvailableSeats += hold.SeatsCount
				if session.Status == sessions.StatusFull && session.AvailableSeats > 0 {
					session.Status = sessions.StatusActive
				}
			}
			reclaimed = append(reclaimed, *hold)
		}
	}
	return reclaimed, nil
}

func (f *fakeBookingRepo) GetHoldByID(ctx context.Context, id uuid.UUID) (*SeatHold, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	hold, ok := f.store.holds[id]
	if !ok {
		return nil, apperrors.NotFound("Hold not found")
	}
	copied := *hold
	return &copied, nil
}

func (f *fakeBookingRepo) GetUserHolds(ctx context.Context, passengerID uuid.UUID) ([]SeatHold, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var result []SeatHold
	for _, hold := range f.store.holds {
		if hold.PassengerID == passengerID && hold.ExpiresAt.After(time.Now()) {
			result = append(result, *hold)
		}
	}
	return result, nil
}

func (f *fakeBookingRepo) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	booking, ok := f.store.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("Booking not found")
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingRepo) GetBookingByIDWithRelations(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return f.GetBookingByID(ctx, id)
}

func (f *fakeBookingRepo) GetUserBookings(ctx context.Context, passengerID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var result []Booking
	for _, booking := range f.store.bookings {
		if booking.PassengerID == passengerID {
			result = append(result, *booking)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeBookingRepo) GetBookingsBySessionID(ctx context.Context, sessionID uuid.UUID) ([]Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) CountConfirmedBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var count int64
	for _, booking := range f.store.bookings {
		if booking.SessionID == sessionID && booking.Status == StatusConfirmed {
			count++
		}
	}
	return count, nil
}

func (f *fakeBookingRepo) DeleteHoldsBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var deleted int64
	for id, hold := range f.store.holds {
		if hold.SessionID == sessionID {
			delete(f.store.holds, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeSessionRepo struct {
	store *memStore
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *sessions.Session) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*sessions.Session, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	session, ok := f.store.sessions[id]
	if !ok {
		return nil, apperrors.NotFound("Session not found")
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessionRepo) GetByIDWithRelations(ctx context.Context, id uuid.UUID) (*sessions.Session, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeSessionRepo) HasOpenSessionForDriver(ctx context.Context, driverID uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeSessionRepo) List(ctx context.Context, query sessions.SessionListQuery) ([]sessions.Session, error) {
	return nil, nil
}

func (f *fakeSessionRepo) ListByDriver(ctx context.Context, driverID uuid.UUID, status string) ([]sessions.Session, error) {
	return nil, nil
}

func (f *fakeSessionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status sessions.Status, endedAt *time.Time) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if session, ok := f.store.sessions[id]; ok {
		session.Status = status
		session.EndedAt = endedAt
	}
	return nil
}

type stubLocker struct {
	allow bool
}

func (s *stubLocker) Acquire(ctx context.Context, key string, ttl time.Duration) bool { return s.allow }
func (s *stubLocker) Release(ctx context.Context, key string)                         {}

type stubFareProvider struct {
	fare float64
}

func (s *stubFareProvider) GetBaseFare(ctx context.Context, routeID uuid.UUID) (float64, error) {
	return s.fare, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Booking: config.BookingConfig{
			HoldTTL:         5 * time.Minute,
			MaxSeatsPerHold: 4,
			ServiceFee:      1.0,
			ReaperInterval:  time.Minute,
		},
		Lock: config.LockConfig{
			TTL:      10 * time.Second,
			FailOpen: true,
		},
	}
}

func newTestService(store *memStore, locker *stubLocker) Service {
	return NewService(
		&fakeBookingRepo{store: store},
		&fakeSessionRepo{store: store},
		&stubFareProvider{fare: 4.5},
		locker,
		NewHoldCache(nil),
		realtime.NoopBroadcaster{},
		testConfig(),
	)
}

func TestCreateHoldQuote(t *testing.T) {
	store := newMemStore()
	session := store.addSession(10, sessions.StatusActive)
	svc := newTestService(store, &stubLocker{allow: true})

	hold, err := svc.CreateHold(context.Background(), uuid.New(), CreateHoldRequest{
		SessionID:  session.ID.String(),
		SeatsCount: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, hold.SeatsCount)
	assert.InDelta(t, 4.5, hold.BaseFare, 0.001)
	assert.InDelta(t, 1.0, hold.ServiceFee, 0.001)
	assert.InDelta(t, 16.5, hold.TotalAmount, 0.001) // (4.5 + 1.0) * 3
	assert.True(t, hold.ExpiresAt.After(time.Now()))

	assert.Equal(t, 7, store.sessions[session.ID].AvailableSeats)
}

func TestCreateHoldConcurrentNoOversell(t *testing.T) {
	store := newMemStore()
	session := store.addSession(10, sessions.StatusActive)
	svc := newTestService(store, &stubLocker{allow: true})

	const attempts = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateHold(context.Background(), uuid.New(), CreateHoldRequest{
				SessionID:  session.ID.String(),
				SeatsCount: 1,
			})
			if err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, granted)
	assert.Equal(t, 0, store.sessions[session.ID].AvailableSeats)
	assert.Equal(t, sessions.StatusFull, store.sessions[session.ID].Status)
}

func TestCreateHoldSeatConservation(t *testing.T) {
	store := newMemStore()
	session := store.addSession(20, sessions.StatusActive)
	svc := newTestService(store, &stubLocker{allow: true})

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(seats int) {
			defer wg.Done()
			_, _ = svc.CreateHold(context.Background(), uuid.New(), CreateHoldRequest{
				SessionID:  session.ID.String(),
				SeatsCount: seats,
			})
		}(i%3 + 1)
	}
	wg.Wait()

	store.mu.Lock()
	defer store.mu.Unlock()
	held := 0
	for _, hold := range store.holds {
		held += hold.SeatsCount
	}
	assert.Equal(t, session.TotalSeats, store.sessions[session.ID].AvailableSeats+held,
		"available + held must equal total")
	assert.GreaterOrEqual(t, store.sessions[session.ID].AvailableSeats, 0)
}

func TestCreateHoldDuplicatePassenger(t *testing.T) {
	store := newMemStore()
	session := store.addSession(10, sessions.StatusActive)
	svc := newTestService(store, &stubLocker{allow: true})
	passengerID := uuid.New()

	_, err := svc.CreateHold(context.Background(), passengerID, CreateHoldRequest{
		SessionID:  session.ID.String(),
		SeatsCount: 2,
	})
	require.NoError(t, err)

	_, err = svc.CreateHold(context.Background(), passengerID, CreateHoldRequest{
		SessionID:  session.ID.String(),
		SeatsCount: 1,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
	assert.Equal(t, 8, store.sessions[session.ID].AvailableSeats)
}

func TestCreateHoldExceedsPerHoldLimit(t *testing.T) {
	store := newMemStore()
	session := store.addSession(10, sessions.StatusActive)
	svc := newTestService(store, &stubLocker{allow: true})

	_, err := svc.CreateHold(context.Background(), uuid.New(), CreateHoldRequest{
		SessionID:  session.ID.String(),
		SeatsCount: 5, // config caps at 4
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
	assert.Equal(t, 10, store.sessions[session.ID].AvailableSeats)
}

func TestCreateHoldLockContention(t *testing.T) {
	store := newMemStore()
	session := store.addSession(10, sessions.StatusActive)
	svc := newTestService(store, &stubLocker{allow: false})

	_, err := svc.CreateHold(context.Background(), uuid.New(), CreateHoldRequest{
		SessionID:  session.ID.String(),
		SeatsCount: 1,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeBusy, apperrors.CodeOf(err))
	assert.True(t, apperrors.IsRetryable(err))
	assert.Equal(t, 10, store.sessions[session.ID].AvailableSeats, "no seats consumed on contention")
}

func TestCreateHoldInactiveSession(t *testing.T) {
	store := newMemStore()
	session := store.addSession(10, sessions.StatusClosed)
	svc := newTestService(store, &stubLocker{allow: true})

	_, err := svc.CreateHold(context.Background(), uuid.New(), CreateHoldRequest{
		SessionID:  session.ID.String(),
		SeatsCount: 1,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestReleaseHoldRestoresSeatsAndReopens(t *testing.T) {
	store := newMemStore()
	session := store.addSession(2, sessions.StatusActive)
	svc := newTestService(store, &stubLocker{allow: true})
	passengerID := uuid.New()

	hold, err := svc.CreateHold(context.Background(), passengerID, CreateHoldRequest{
		SessionID:  session.ID.String(),
		SeatsCount: 2,
	})
	require.NoError(t, err)
	require.Equal(t, sessions.StatusFull, store.sessions[session.ID].Status)

	require.NoError(t, svc.ReleaseHold(context.Background(), hold.ID, passengerID))

	assert.Equal(t, 2, store.sessions[session.ID].AvailableSeats)
	assert.Equal(t, sessions.StatusActive, store.sessions[session.ID].Status)
}

func TestReleaseHoldIdempotent(t *testing.T) {
	store := newMemStore()
	session := store.addSession(5, sessions.StatusActive)
	svc := newTestService(store, &stubLocker{allow: true})
	passengerID := uuid.New()

	hold, err := svc.CreateHold(context.Background(), passengerID, CreateHoldRequest{
		SessionID:  session.ID.String(),
		SeatsCount: 2,
	})
	require.NoError(t, err)

	require.NoError(t, svc.ReleaseHold(context.Background(), hold.ID, passengerID))
	// Second release: the hold is gone, which is fine.
	require.NoError(t, svc.ReleaseHold(context.Background(), hold.ID, passengerID))

	assert.Equal(t, 5, store.sessions[session.ID].AvailableSeats, "seats restored exactly once")
}

func TestReleaseHoldWrongPassenger(t *testing.T) {
	store := newMemStore()
	session := store.addSession(5, sessions.StatusActive)
	svc := newTestService(store, &stubLocker{allow: true})

	hold, err := svc.CreateHold(context.Background(), uuid.New(), CreateHoldRequest{
		SessionID:  session.ID.String(),
		SeatsCount: 1,
	})
	require.NoError(t, err)

	err = svc.ReleaseHold(context.Background(), hold.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestReclaimExpiredRestoresSeats(t *testing.T) {
	store := newMemStore()
	session := store.addSession(5, sessions.StatusActive)
	svc := newTestService(store, &stubLocker{allow: true})

	// Plant an already-expired hold with its seats deducted.
	store.mu.Lock()
	expired := &SeatHold{
		ID:          uuid.New(),
		SessionID:   session.ID,
		PassengerID: uuid.New(),
		SeatsCount:  3,
		ExpiresAt:   time.Now().Add(-time.Minute),
	}
	store.holds[expired.ID] = expired
	store.sessions[session.ID].AvailableSeats = 2
	store.mu.Unlock()

	count, err := svc.ReclaimExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 5, store.sessions[session.ID].AvailableSeats)
}

func TestReclaimLeavesLiveHoldsAlone(t *testing.T) {
	store := newMemStore()
	session := store.addSession(5, sessions.StatusActive)
	svc := newTestService(store, &stubLocker{allow: true})

	_, err := svc.CreateHold(context.Background(), uuid.New(), CreateHoldRequest{
		SessionID:  session.ID.String(),
		SeatsCount: 2,
	})
	require.NoError(t, err)

	count, err := svc.ReclaimExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 3, store.sessions[session.ID].AvailableSeats)
}

func TestCreateHoldUnknownSession(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &stubLocker{allow: true})

	_, err := svc.CreateHold(context.Background(), uuid.New(), CreateHoldRequest{
		SessionID:  uuid.New().String(),
		SeatsCount: 1,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestCreateHoldManySessionsIndependent(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &stubLocker{allow: true})

	for i := 0; i < 5; i++ {
		session := store.addSession(3, sessions.StatusActive)
		for j := 0; j < 3; j++ {
			_, err := svc.CreateHold(context.Background(), uuid.New(), CreateHoldRequest{
				SessionID:  session.ID.String(),
				SeatsCount: 1,
			})
			require.NoError(t, err, fmt.Sprintf("session %d hold %d", i, j))
		}
		assert.Equal(t, sessions.StatusFull, store.sessions[session.ID].Status)
	}
}

// memHoldMirror is an in-memory stand-in for the Redis hold mirror.
type memHoldMirror struct {
	mu      sync.Mutex
	entries map[string]*SeatHold
}

func newMemHoldMirror() *memHoldMirror {
	return &memHoldMirror{entries: make(map[string]*SeatHold)}
}

func (m *memHoldMirror) Put(ctx context.Context, hold *SeatHold) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *hold
	m.entries[hold.ID.String()] = &copied
}

func (m *memHoldMirror) Get(ctx context.Context, holdID string) *SeatHold {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[holdID]
}

func (m *memHoldMirror) Delete(ctx context.Context, holdID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, holdID)
}

func newTestServiceWithMirror(store *memStore, mirror HoldMirror) Service {
	return NewService(
		&fakeBookingRepo{store: store},
		&fakeSessionRepo{store: store},
		&stubFareProvider{fare: 4.5},
		&stubLocker{allow: true},
		mirror,
		realtime.NoopBroadcaster{},
		testConfig(),
	)
}

func TestGetHoldStaleMirrorEntry(t *testing.T) {
	store := newMemStore()
	session := store.addSession(5, sessions.StatusActive)
	mirror := newMemHoldMirror()
	svc := newTestServiceWithMirror(store, mirror)
	passengerID := uuid.New()

	hold, err := svc.CreateHold(context.Background(), passengerID, CreateHoldRequest{
		SessionID:  session.ID.String(),
		SeatsCount: 2,
	})
	require.NoError(t, err)
	require.NotNil(t, mirror.Get(context.Background(), hold.ID.String()))

	// The hold settles behind the mirror's back, as a payment
	// conversion would.
	store.mu.Lock()
	delete(store.holds, hold.ID)
	store.mu.Unlock()

	_, err = svc.GetHold(context.Background(), hold.ID, passengerID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	assert.Nil(t, mirror.Get(context.Background(), hold.ID.String()), "stale entry dropped")
}

func TestGetHoldFreshMirrorEntry(t *testing.T) {
	store := newMemStore()
	session := store.addSession(5, sessions.StatusActive)
	mirror := newMemHoldMirror()
	svc := newTestServiceWithMirror(store, mirror)
	passengerID := uuid.New()

	hold, err := svc.CreateHold(context.Background(), passengerID, CreateHoldRequest{
		SessionID:  session.ID.String(),
		SeatsCount: 2,
	})
	require.NoError(t, err)

	got, err := svc.GetHold(context.Background(), hold.ID, passengerID)
	require.NoError(t, err)
	assert.Equal(t, hold.ID, got.ID)
}

func TestConcurrentReleaseAndReapSettleOnce(t *testing.T) {
	store := newMemStore()
	session := store.addSession(5, sessions.StatusActive)
	svc := newTestService(store, &stubLocker{allow: true})
	passengerID := uuid.New()

	// Plant an expired hold with its seats still deducted, then race
	// explicit releases against the reaper. The seats must come back
	// exactly once.
	store.mu.Lock()
	expired := &SeatHold{
		ID:          uuid.New(),
		SessionID:   session.ID,
		PassengerID: passengerID,
		SeatsCount:  3,
		ExpiresAt:   time.Now().Add(-time.Minute),
	}
	store.holds[expired.ID] = expired
	store.sessions[session.ID].AvailableSeats = 2
	store.mu.Unlock()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.ReleaseHold(context.Background(), expired.ID, passengerID)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.ReclaimExpired(context.Background())
		}()
	}
	wg.Wait()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.holds)
	assert.Equal(t, 5, store.sessions[session.ID].AvailableSeats,
		"held seats restored exactly once across release and reap")
}
