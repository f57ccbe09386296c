package drivers

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitly/internal/shared/apperrors"
)

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*Profile // by profile ID
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]*Profile)}
}

func (f *fakeProfileRepo) Create(ctx context.Context, profile *Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.profiles {
		if existing.UserID == profile.UserID {
			return apperrors.Conflict("Driver profile already exists")
		}
	}
	profile.ID = uuid.New()
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[id]
	if !ok {
		return nil, apperrors.NotFound("Driver profile not found")
	}
	copied := *profile
	return &copied, nil
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, profile := range f.profiles {
		if profile.UserID == userID {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("Driver profile not found")
}

func (f *fakeProfileRepo) List(ctx context.Context, status VerificationStatus) ([]Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []Profile
	for _, profile := range f.profiles {
		if status == "" || profile.Status == status {
			result = append(result, *profile)
		}
	}
	return result, nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, profile *Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.profiles[profile.ID]
	if !ok {
		return apperrors.NotFound("Driver profile not found")
	}
	*stored = *profile
	return nil
}

func submitReq() SubmitProfileRequest {
	return SubmitProfileRequest{
		LicenseNumber: "DL-99-20210012345",
		VehicleModel:  "City Minibus 12",
		VehiclePlate:  "KA-01-AB-1234",
	}
}

func TestSubmitProfileStartsPending(t *testing.T) {
	svc := NewService(newFakeProfileRepo())
	driverID := uuid.New()

	profile, err := svc.SubmitProfile(context.Background(), driverID, submitReq())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, profile.Status)
	assert.Equal(t, driverID, profile.UserID)

	approved, err := svc.IsApprovedDriver(context.Background(), driverID)
	require.NoError(t, err)
	assert.False(t, approved, "unreviewed drivers are not approved")
}

func TestReviewApprovesDriver(t *testing.T) {
	svc := NewService(newFakeProfileRepo())
	driverID := uuid.New()
	adminID := uuid.New()

	profile, err := svc.SubmitProfile(context.Background(), driverID, submitReq())
	require.NoError(t, err)

	reviewed, err := svc.ReviewProfile(context.Background(), profile.ID, adminID, ReviewProfileRequest{
		Decision: string(StatusApproved),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, adminID, *reviewed.ReviewedBy)

	approved, err := svc.IsApprovedDriver(context.Background(), driverID)
	require.NoError(t, err)
	assert.True(t, approved)
}

func TestReviewTwiceRejected(t *testing.T) {
	svc := NewService(newFakeProfileRepo())
	adminID := uuid.New()

	profile, err := svc.SubmitProfile(context.Background(), uuid.New(), submitReq())
	require.NoError(t, err)

	_, err = svc.ReviewProfile(context.Background(), profile.ID, adminID, ReviewProfileRequest{
		Decision: string(StatusRejected),
		Note:     "plate does not match the license",
	})
	require.NoError(t, err)

	_, err = svc.ReviewProfile(context.Background(), profile.ID, adminID, ReviewProfileRequest{
		Decision: string(StatusApproved),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestResubmitAfterRejectionReentersReview(t *testing.T) {
	svc := NewService(newFakeProfileRepo())
	driverID := uuid.New()
	adminID := uuid.New()

	profile, err := svc.SubmitProfile(context.Background(), driverID, submitReq())
	require.NoError(t, err)

	_, err = svc.ReviewProfile(context.Background(), profile.ID, adminID, ReviewProfileRequest{
		Decision: string(StatusRejected),
		Note:     "license expired",
	})
	require.NoError(t, err)

	req := submitReq()
	req.LicenseNumber = "DL-99-20260054321"
	resubmitted, err := svc.SubmitProfile(context.Background(), driverID, req)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, resubmitted.Status)
	assert.Equal(t, "DL-99-20260054321", resubmitted.LicenseNumber)
	assert.Empty(t, resubmitted.ReviewNote)
	assert.Nil(t, resubmitted.ReviewedBy)
}

func TestResubmitApprovedProfileRejected(t *testing.T) {
	svc := NewService(newFakeProfileRepo())
	driverID := uuid.New()

	profile, err := svc.SubmitProfile(context.Background(), driverID, submitReq())
	require.NoError(t, err)

	_, err = svc.ReviewProfile(context.Background(), profile.ID, uuid.New(), ReviewProfileRequest{
		Decision: string(StatusApproved),
	})
	require.NoError(t, err)

	_, err = svc.SubmitProfile(context.Background(), driverID, submitReq())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestIsApprovedDriverWithoutProfile(t *testing.T) {
	svc := NewService(newFakeProfileRepo())

	approved, err := svc.IsApprovedDriver(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, approved, "missing profile means not approved, not an error")
}

func TestListProfilesFiltersByStatus(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewService(repo)
	adminID := uuid.New()

	first, err := svc.SubmitProfile(context.Background(), uuid.New(), submitReq())
	require.NoError(t, err)
	_, err = svc.SubmitProfile(context.Background(), uuid.New(), submitReq())
	require.NoError(t, err)

	_, err = svc.ReviewProfile(context.Background(), first.ID, adminID, ReviewProfileRequest{
		Decision: string(StatusApproved),
	})
	require.NoError(t, err)

	pending, err := svc.ListProfiles(context.Background(), string(StatusPending))
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = svc.ListProfiles(context.Background(), "SOMEDAY")
	require.Error(t, err)
}

func TestOnboardDriverFilesPendingProfile(t *testing.T) {
	svc := NewService(newFakeProfileRepo())
	driverID := uuid.New()

	err := svc.OnboardDriver(context.Background(), driverID, "DL-99-20210012345", "City Minibus 12", "KA-01-AB-1234")
	require.NoError(t, err)

	profile, err := svc.GetProfileByUser(context.Background(), driverID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, profile.Status)
}
