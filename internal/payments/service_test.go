package payments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitly/internal/bookings"
	"transitly/internal/realtime"
	"transitly/internal/sessions"
	"transitly/internal/shared/apperrors"
)

// fakePaymentRepo mirrors the SQL repository's transactional behavior
// in memory: key uniqueness, hold settlement, and seat restoration all
// happen under one lock.
type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*Payment // by idempotency key
	holds    map[uuid.UUID]*bookings.SeatHold
	bookings map[uuid.UUID]*bookings.Booking
	sessions map[uuid.UUID]*sessions.Session
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		payments: make(map[string]*Payment),
		holds:    make(map[uuid.UUID]*bookings.SeatHold),
		bookings: make(map[uuid.UUID]*bookings.Booking),
		sessions: make(map[uuid.UUID]*sessions.Session),
	}
}

func (f *fakePaymentRepo) addHold(passengerID uuid.UUID, seats int, baseFare, serviceFee float64, expiresAt time.Time) *bookings.SeatHold {
	f.mu.Lock()
	defer f.mu.Unlock()
	session := &sessions.Session{
		ID:             uuid.New(),
		TotalSeats:     10,
		AvailableSeats: 10 - seats,
		Status:         sessions.StatusActive,
	}
	f.sessions[session.ID] = session
	hold := &bookings.SeatHold{
		ID:          uuid.New(),
		SessionID:   session.ID,
		PassengerID: passengerID,
		SeatsCount:  seats,
		BaseFare:    baseFare,
		ServiceFee:  serviceFee,
		TotalAmount: (baseFare + serviceFee) * float64(seats),
		ExpiresAt:   expiresAt,
	}
	f.holds[hold.ID] = hold
	return hold
}

func (f *fakePaymentRepo) GetByIdempotencyKey(ctx context.Context, key string) (*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[key]
	if !ok {
		return nil, apperrors.NotFound("Payment not found")
	}
	copied := *payment
	return &copied, nil
}

func (f *fakePaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, payment := range f.payments {
		if payment.ID == id {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("Payment not found")
}

func (f *fakePaymentRepo) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, payment := range f.payments {
		if payment.BookingID == bookingID {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("Payment not found")
}

func (f *fakePaymentRepo) GetUserPayments(ctx context.Context, passengerID uuid.UUID) ([]Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []Payment
	for _, payment := range f.payments {
		if payment.PassengerID == passengerID {
			list = append(list, *payment)
		}
	}
	return list, nil
}

func (f *fakePaymentRepo) ConvertHold(ctx context.Context, holdID, passengerID uuid.UUID, params ConvertParams) (*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.payments[params.IdempotencyKey]; exists {
		return nil, apperrors.Conflict("Payment already processed for this key")
	}

	hold, ok := f.holds[holdID]
	if !ok || hold.PassengerID != passengerID {
		return nil, apperrors.NotFound("Hold not found or already settled")
	}
	if hold.IsExpired() {
		// Release on the spot, like the SQL repository does.
		delete(f.holds, holdID)
		session := f.sessions[hold.SessionID]
		if session != nil && !session.IsTerminal() {
			session.AvailableSeats += hold.SeatsCount
			if session.Status == sessions.StatusFull && session.AvailableSeats > 0 {
				session.Status = sessions.StatusActive
			}
		}
		return nil, apperrors.Conflict("Hold has expired, please hold seats again")
	}

	booking := &bookings.Booking{
		ID:          uuid.New(),
		SessionID:   hold.SessionID,
		PassengerID: hold.PassengerID,
		SeatsCount:  hold.SeatsCount,
		TotalAmount: hold.TotalAmount,
		Status:      bookings.StatusConfirmed,
	}
	f.bookings[booking.ID] = booking

	payment := &Payment{
		ID:               uuid.New(),
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
	f.payments[params.IdempotencyKey] = payment
	delete(f.holds, holdID)

	copied := *payment
	bookingCopy := *booking
	copied.Booking = &bookingCopy
	return &copied, nil
}

func (f *fakePaymentRepo) RefundByBooking(ctx context.Context, bookingID, passengerID uuid.UUID) (*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[bookingID]
	if !ok || booking.PassengerID != passengerID {
		return nil, apperrors.NotFound("Booking not found")
	}
	if booking.Status != bookings.StatusConfirmed {
		return nil, apperrors.Conflict("Booking is not refundable")
	}

	var payment *Payment
	for _, p := range f.payments {
		if p.BookingID == bookingID {
			payment = p
			break
		}
	}
	if payment == nil {
		return nil, apperrors.NotFound("Payment not found for booking")
	}
	if payment.Status != StatusSuccess {
		return nil, apperrors.Conflict("Payment already refunded")
	}

	booking.Status = bookings.StatusCancelled
	payment.Status = StatusRefunded

	session := f.sessions[booking.SessionID]
	if session != nil && !session.IsTerminal() {
		session.AvailableSeats += booking.SeatsCount
		if session.Status == sessions.StatusFull && session.AvailableSeats > 0 {
			session.Status = sessions.StatusActive
		}
	}

	copied := *payment
	return &copied, nil
}

// fakeHoldEvicter records which mirror entries were dropped.
type fakeHoldEvicter struct {
	mu      sync.Mutex
	evicted []string
}

func (f *fakeHoldEvicter) Delete(ctx context.Context, holdID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evicted = append(f.evicted, holdID)
}

func TestProcessPaymentConvertsHold(t *testing.T) {
	repo := newFakePaymentRepo()
	evicter := &fakeHoldEvicter{}
	svc := NewService(repo, realtime.NoopBroadcaster{}, evicter)
	passengerID := uuid.New()
	hold := repo.addHold(passengerID, 2, 5.0, 0.5, time.Now().Add(5*time.Minute))

	payment, err := svc.ProcessPayment(context.Background(), passengerID, ProcessPaymentRequest{
		HoldID:         hold.ID.String(),
		IdempotencyKey: "key-12345678",
		Method:         "CARD",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, payment.Status)
	assert.InDelta(t, 10.0, payment.FareAmount, 0.001)
	assert.InDelta(t, 1.0, payment.ServiceFee, 0.001)
	assert.InDelta(t, 11.0, payment.TotalAmount, 0.001)
	assert.Equal(t, "CARD", payment.Method)
	require.NotNil(t, payment.Booking)
	assert.Equal(t, bookings.StatusConfirmed, payment.Booking.Status)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Empty(t, repo.holds, "hold settled by conversion")
	assert.Len(t, repo.bookings, 1)
	assert.Contains(t, evicter.evicted, hold.ID.String(), "mirror entry dropped after conversion")
}

func TestProcessPaymentIdempotentReplay(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := NewService(repo, realtime.NoopBroadcaster{}, &fakeHoldEvicter{})
	passengerID := uuid.New()
	hold := repo.addHold(passengerID, 1, 5.0, 0.5, time.Now().Add(5*time.Minute))

	req := ProcessPaymentRequest{
		HoldID:         hold.ID.String(),
		IdempotencyKey: "replay-key-001",
		Method:         "UPI",
	}

	first, err := svc.ProcessPayment(context.Background(), passengerID, req)
	require.NoError(t, err)

	second, err := svc.ProcessPayment(context.Background(), passengerID, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "replay returns the original payment")

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Len(t, repo.payments, 1, "exactly one payment per key")
	assert.Len(t, repo.bookings, 1, "exactly one booking per key")
}

func TestProcessPaymentConcurrentSameKey(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := NewService(repo, realtime.NoopBroadcaster{}, &fakeHoldEvicter{})
	passengerID := uuid.New()
	hold := repo.addHold(passengerID, 1, 5.0, 0.5, time.Now().Add(5*time.Minute))

	req := ProcessPaymentRequest{
		HoldID:         hold.ID.String(),
		IdempotencyKey: "race-key-001",
		Method:         "CARD",
	}

	const workers = 8
	results := make(chan uuid.UUID, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			payment, err := svc.ProcessPayment(context.Background(), passengerID, req)
			if err == nil {
				results <- payment.ID
			}
		}()
	}
	wg.Wait()
	close(results)

	var ids []uuid.UUID
	for id := range results {
		ids = append(ids, id)
	}
	require.Len(t, ids, workers, "every replay succeeds")
	for _, id := range ids {
		assert.Equal(t, ids[0], id, "all replays resolve to one payment")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Len(t, repo.payments, 1)
	assert.Len(t, repo.bookings, 1)
}

func TestProcessPaymentExpiredHoldReleased(t *testing.T) {
	repo := newFakePaymentRepo()
	evicter := &fakeHoldEvicter{}
	svc := NewService(repo, realtime.NoopBroadcaster{}, evicter)
	passengerID := uuid.New()
	hold := repo.addHold(passengerID, 3, 5.0, 0.5, time.Now().Add(-time.Second))
	sessionID := hold.SessionID

	_, err := svc.ProcessPayment(context.Background(), passengerID, ProcessPaymentRequest{
		HoldID:         hold.ID.String(),
		IdempotencyKey: "expired-key-01",
		Method:         "CARD",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Empty(t, repo.payments, "no payment for an expired hold")
	assert.Empty(t, repo.bookings)
	assert.Empty(t, repo.holds, "expired hold released on conversion attempt")
	assert.Equal(t, 10, repo.sessions[sessionID].AvailableSeats, "held seats returned to the pool")
	assert.Contains(t, evicter.evicted, hold.ID.String(), "stale mirror entry dropped")
}

func TestProcessPaymentForeignKeyRejected(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := NewService(repo, realtime.NoopBroadcaster{}, &fakeHoldEvicter{})
	owner := uuid.New()
	hold := repo.addHold(owner, 1, 5.0, 0.5, time.Now().Add(5*time.Minute))

	req := ProcessPaymentRequest{
		HoldID:         hold.ID.String(),
		IdempotencyKey: "shared-key-01",
		Method:         "CARD",
	}
	_, err := svc.ProcessPayment(context.Background(), owner, req)
	require.NoError(t, err)

	// A different passenger replaying the same key must not see the
	// owner's payment.
	_, err = svc.ProcessPayment(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestRefundRestoresSeats(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := NewService(repo, realtime.NoopBroadcaster{}, &fakeHoldEvicter{})
	passengerID := uuid.New()
	hold := repo.addHold(passengerID, 3, 5.0, 0.5, time.Now().Add(5*time.Minute))
	sessionID := hold.SessionID

	payment, err := svc.ProcessPayment(context.Background(), passengerID, ProcessPaymentRequest{
		HoldID:         hold.ID.String(),
		IdempotencyKey: "refund-key-01",
		Method:         "CARD",
	})
	require.NoError(t, err)

	require.NoError(t, svc.RefundForBooking(context.Background(), payment.BookingID, passengerID))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, 10, repo.sessions[sessionID].AvailableSeats, "cancelled seats return to the pool")
	assert.Equal(t, StatusRefunded, repo.payments["refund-key-01"].Status)
	assert.Equal(t, bookings.StatusCancelled, repo.bookings[payment.BookingID].Status)
}

func TestRefundTwiceRejected(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := NewService(repo, realtime.NoopBroadcaster{}, &fakeHoldEvicter{})
	passengerID := uuid.New()
	hold := repo.addHold(passengerID, 1, 5.0, 0.5, time.Now().Add(5*time.Minute))

	payment, err := svc.ProcessPayment(context.Background(), passengerID, ProcessPaymentRequest{
		HoldID:         hold.ID.String(),
		IdempotencyKey: "double-refund-1",
		Method:         "CARD",
	})
	require.NoError(t, err)

	require.NoError(t, svc.RefundForBooking(context.Background(), payment.BookingID, passengerID))

	err = svc.RefundForBooking(context.Background(), payment.BookingID, passengerID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestRefundPaymentByID(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := NewService(repo, realtime.NoopBroadcaster{}, &fakeHoldEvicter{})
	passengerID := uuid.New()
	hold := repo.addHold(passengerID, 2, 5.0, 0.5, time.Now().Add(5*time.Minute))
	sessionID := hold.SessionID

	payment, err := svc.ProcessPayment(context.Background(), passengerID, ProcessPaymentRequest{
		HoldID:         hold.ID.String(),
		IdempotencyKey: "admin-refund-01",
		Method:         "CARD",
	})
	require.NoError(t, err)

	refunded, err := svc.RefundPayment(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, refunded.Status)

	// A second attempt hits the refundability check before touching the
	// booking.
	_, err = svc.RefundPayment(context.Background(), payment.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, 10, repo.sessions[sessionID].AvailableSeats)
}

func TestListUserPayments(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := NewService(repo, realtime.NoopBroadcaster{}, &fakeHoldEvicter{})
	passengerID := uuid.New()
	other := uuid.New()

	for i, key := range []string{"list-key-0001", "list-key-0002"} {
		hold := repo.addHold(passengerID, i+1, 5.0, 0.5, time.Now().Add(5*time.Minute))
		_, err := svc.ProcessPayment(context.Background(), passengerID, ProcessPaymentRequest{
			HoldID:         hold.ID.String(),
			IdempotencyKey: key,
			Method:         "UPI",
		})
		require.NoError(t, err)
	}
	otherHold := repo.addHold(other, 1, 5.0, 0.5, time.Now().Add(5*time.Minute))
	_, err := svc.ProcessPayment(context.Background(), other, ProcessPaymentRequest{
		HoldID:         otherHold.ID.String(),
		IdempotencyKey: "list-key-0003",
		Method:         "CARD",
	})
	require.NoError(t, err)

	list, err := svc.ListUserPayments(context.Background(), passengerID)
	require.NoError(t, err)
	assert.Len(t, list, 2, "only the requesting passenger's payments")
}
