package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NissesSenap/interest-sync/internal/reconciler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateListDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	sub, err := s.CreateSubscription(ctx, reconciler.CreateRequest{
		Interest:     "Rock",
		Notification: reconciler.Notification{AlertBody: "rock!", SoundName: "default"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, reconciler.Interest("Rock"), sub.Interest)

	subs, err := s.ListSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, sub, subs[0])

	require.NoError(t, s.DeleteSubscription(ctx, sub.ID))
	err = s.DeleteSubscription(ctx, sub.ID)
	assert.ErrorIs(t, err, reconciler.ErrNotFound)

	subs, err = s.ListSubscriptions(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestStore_RejectsInvalidInterest(t *testing.T) {
	s := New()

	_, err := s.CreateSubscription(context.Background(), reconciler.CreateRequest{Interest: ""})
	assert.ErrorIs(t, err, reconciler.ErrInvalidInterest)
	assert.Empty(t, s.Interests())
}

func TestStore_Faults(t *testing.T) {
	s := New()
	s.Seed("Jazz")
	boom := errors.New("boom")
	s.SetFaults(Faults{
		OnList:   func() error { return boom },
		OnCreate: func(reconciler.Interest) error { return boom },
		OnDelete: func(string) error { return boom },
	})
	ctx := context.Background()

	_, err := s.ListSubscriptions(ctx)
	assert.Equal(t, boom, err)
	_, err = s.CreateSubscription(ctx, reconciler.CreateRequest{Interest: "Pop"})
	assert.Equal(t, boom, err)
	assert.Equal(t, boom, s.DeleteSubscription(ctx, "whatever"))

	calls := s.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, reconciler.OpList, calls[0].Operation)
	assert.Equal(t, reconciler.OpCreate, calls[1].Operation)
	assert.Equal(t, "Pop", calls[1].Target)
	assert.Equal(t, reconciler.OpDelete, calls[2].Operation)
	for _, c := range calls {
		assert.Equal(t, boom, c.Err)
	}
	assert.Equal(t, []reconciler.Interest{"Jazz"}, s.Interests())
}

func TestStore_LatencyRespectsContext(t *testing.T) {
	s := New()
	s.SetLatency(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := s.ListSubscriptions(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestStore_ListOrderedByCreation(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, i := range []reconciler.Interest{"c", "a", "b"} {
		_, err := s.CreateSubscription(ctx, reconciler.CreateRequest{Interest: i})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	subs, err := s.ListSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, reconciler.Interest("c"), subs[0].Interest)
	assert.Equal(t, reconciler.Interest("a"), subs[1].Interest)
	assert.Equal(t, reconciler.Interest("b"), subs[2].Interest)
}
