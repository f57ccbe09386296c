package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Name  string `json:"name"`
	Seats int    `json:"seats"`
}

func TestNilClientGetMisses(t *testing.T) {
	svc := NewService(nil)

	var dest snapshot
	err := svc.Get(context.Background(), "some:key", &dest)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNilClientSetAndDeleteAreNoOps(t *testing.T) {
	svc := NewService(nil)

	assert.NoError(t, svc.Set(context.Background(), "some:key", snapshot{Name: "a"}, time.Minute))
	assert.NoError(t, svc.Delete(context.Background(), "some:key", "other:key"))
	assert.NoError(t, svc.DeletePattern(context.Background(), "some:*"))
}

func TestNilClientPingFails(t *testing.T) {
	svc := NewService(nil)
	assert.Error(t, svc.Ping(context.Background()))
}

func TestGetOrSetInvokesFetcherOnMiss(t *testing.T) {
	svc := NewService(nil)

	calls := 0
	var dest snapshot
	err := svc.GetOrSet(context.Background(), "session:42", time.Minute,
		func() (interface{}, error) {
			calls++
			return &snapshot{Name: "Downtown Express", Seats: 12}, nil
		}, &dest)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "Downtown Express", dest.Name)
	assert.Equal(t, 12, dest.Seats)
}

func TestGetOrSetPropagatesFetcherError(t *testing.T) {
	svc := NewService(nil)

	boom := errors.New("db down")
	var dest snapshot
	err := svc.GetOrSet(context.Background(), "session:42", time.Minute,
		func() (interface{}, error) {
			return nil, boom
		}, &dest)
	assert.ErrorIs(t, err, boom)
}
