package pricestore_test

import (
	"errors"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haeli05/4626/internal/pricestore"
	"github.com/haeli05/4626/internal/types"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*pricestore.Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return pricestore.New(pricestore.WithClock(clock.Now)), clock
}

func TestAddSubject(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.AddSubject("vault-a", sdkmath.NewInt(1_000_000), time.Hour)
	require.NoError(t, err)

	price, err := store.GetPrice("vault-a")
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(1_000_000), price)

	t.Run("duplicate", func(t *testing.T) {
		err := store.AddSubject("vault-a", sdkmath.NewInt(2_000_000), time.Hour)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrAlreadyActive))
	})

	t.Run("zero price", func(t *testing.T) {
		err := store.AddSubject("vault-b", sdkmath.ZeroInt(), time.Hour)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrInvalidPrice))
	})

	t.Run("nil price", func(t *testing.T) {
		err := store.AddSubject("vault-b", sdkmath.Int{}, time.Hour)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrInvalidPrice))
	})

	t.Run("zero interval", func(t *testing.T) {
		err := store.AddSubject("vault-b", sdkmath.NewInt(1), 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrInvalidInterval))
	})
}

func TestUpdatePrice(t *testing.T) {
	store, clock := newTestStore(t)
	require.NoError(t, store.AddSubject("vault-a", sdkmath.NewInt(1_000_000), time.Hour))

	t.Run("strictly before the boundary fails", func(t *testing.T) {
		clock.Advance(time.Hour - time.Nanosecond)
		_, err := store.UpdatePrice("vault-a", sdkmath.NewInt(1_100_000))
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrTooFrequent))
	})

	t.Run("exactly at the boundary succeeds", func(t *testing.T) {
		clock.Advance(time.Nanosecond)
		prev, err := store.UpdatePrice("vault-a", sdkmath.NewInt(1_100_000))
		require.NoError(t, err)
		assert.Equal(t, sdkmath.NewInt(1_000_000), prev)

		price, err := store.GetPrice("vault-a")
		require.NoError(t, err)
		assert.Equal(t, sdkmath.NewInt(1_100_000), price)
	})

	t.Run("timestamp resets after update", func(t *testing.T) {
		clock.Advance(time.Minute)
		_, err := store.UpdatePrice("vault-a", sdkmath.NewInt(1_200_000))
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrTooFrequent))
	})

	t.Run("unknown subject", func(t *testing.T) {
		_, err := store.UpdatePrice("missing", sdkmath.NewInt(1))
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrNotActive))
	})

	t.Run("invalid price", func(t *testing.T) {
		clock.Advance(time.Hour)
		_, err := store.UpdatePrice("vault-a", sdkmath.NewInt(-5))
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrInvalidPrice))
	})

	t.Run("interval check wins over the price check", func(t *testing.T) {
		_, err := store.UpdatePrice("vault-a", sdkmath.NewInt(1_300_000))
		require.NoError(t, err)

		// inside the interval with a bad price: the caller should see
		// the state precondition, not the value error
		_, err = store.UpdatePrice("vault-a", sdkmath.NewInt(-5))
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrTooFrequent))
	})
}

func TestRemoveSubject(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AddSubject("vault-a", sdkmath.NewInt(1), time.Hour))

	require.NoError(t, store.RemoveSubject("vault-a"))

	_, err := store.GetPrice("vault-a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrNotActive))

	err = store.RemoveSubject("vault-a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrNotActive))

	// removed subjects can be re-added
	require.NoError(t, store.AddSubject("vault-a", sdkmath.NewInt(2), time.Hour))
}

func TestSetUpdateInterval(t *testing.T) {
	store, clock := newTestStore(t)
	require.NoError(t, store.AddSubject("vault-a", sdkmath.NewInt(1_000_000), time.Hour))

	// shrinking the interval does not reset the heartbeat: the elapsed 30
	// minutes count against the new 20 minute window
	clock.Advance(30 * time.Minute)
	require.NoError(t, store.SetUpdateInterval("vault-a", 20*time.Minute))

	_, err := store.UpdatePrice("vault-a", sdkmath.NewInt(1_100_000))
	require.NoError(t, err)

	t.Run("invalid interval", func(t *testing.T) {
		err := store.SetUpdateInterval("vault-a", -time.Minute)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrInvalidInterval))
	})

	t.Run("unknown subject", func(t *testing.T) {
		err := store.SetUpdateInterval("missing", time.Minute)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrNotActive))
	})
}

func TestUpdateDue(t *testing.T) {
	store, clock := newTestStore(t)
	require.NoError(t, store.AddSubject("vault-a", sdkmath.NewInt(1_000_000), time.Hour))

	assert.False(t, store.UpdateDue("vault-a"))

	clock.Advance(time.Hour - time.Nanosecond)
	assert.False(t, store.UpdateDue("vault-a"))

	clock.Advance(time.Nanosecond)
	assert.True(t, store.UpdateDue("vault-a"))

	// a fresh update closes the window again
	_, err := store.UpdatePrice("vault-a", sdkmath.NewInt(1_050_000))
	require.NoError(t, err)
	assert.False(t, store.UpdateDue("vault-a"))

	assert.True(t, store.UpdateDue("missing"))
}

func TestRestore(t *testing.T) {
	store, clock := newTestStore(t)

	rec := pricestore.Record{
		Price:          sdkmath.NewInt(2_500_000),
		LastUpdateTime: clock.Now().Add(-30 * time.Minute),
		UpdateInterval: time.Hour,
		Active:         true,
	}
	store.Restore("vault-a", rec)

	price, err := store.GetPrice("vault-a")
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(2_500_000), price)
	assert.False(t, store.UpdateDue("vault-a"))

	got, ok := store.Get("vault-a")
	require.True(t, ok)
	assert.Equal(t, rec, got)

	assert.Equal(t, []string{"vault-a"}, store.Subjects())
}
