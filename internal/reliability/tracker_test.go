package reliability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func smeAwareStore() *InMemoryStore {
	return NewInMemoryStore(func(brainName string) float64 {
		if brainName == "sme_security" {
			return DefaultSMEMultiplier
		}
		return DefaultMultiplier
	})
}

func TestTrackerDefaults(t *testing.T) {
	tracker := NewTracker(smeAwareStore(), zap.NewNop())
	ctx := context.Background()

	assert.Equal(t, 1.0, tracker.Multiplier(ctx, "planner"))
	assert.Equal(t, 1.1, tracker.Multiplier(ctx, "sme_security"))
	assert.Equal(t, 1.0, tracker.Multiplier(ctx, "never_seen"))
}

func TestRecordOutcome(t *testing.T) {
	ctx := context.Background()

	t.Run("success nudges toward 1.1 weighted by accuracy", func(t *testing.T) {
		tracker := NewTracker(smeAwareStore(), zap.NewNop())

		next, err := tracker.RecordOutcome(ctx, "planner", true, 0.5)
		require.NoError(t, err)
		assert.InDelta(t, 1.0+(1.1-1.0)*0.5, next, 1e-9)
	})

	t.Run("failure nudges toward 0.9", func(t *testing.T) {
		tracker := NewTracker(smeAwareStore(), zap.NewNop())

		next, err := tracker.RecordOutcome(ctx, "planner", false, 1.0)
		require.NoError(t, err)
		assert.InDelta(t, 0.9, next, 1e-9)
	})

	t.Run("zero accuracy leaves the multiplier unchanged", func(t *testing.T) {
		tracker := NewTracker(smeAwareStore(), zap.NewNop())

		next, err := tracker.RecordOutcome(ctx, "planner", false, 0)
		require.NoError(t, err)
		assert.Equal(t, 1.0, next)
	})

	t.Run("multiplier never leaves its bounds", func(t *testing.T) {
		tracker := NewTracker(smeAwareStore(), zap.NewNop())

		for i := 0; i < 50; i++ {
			next, err := tracker.RecordOutcome(ctx, "planner", false, 1.0)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, next, MinMultiplier)
		}
		for i := 0; i < 50; i++ {
			next, err := tracker.RecordOutcome(ctx, "planner", true, 1.0)
			require.NoError(t, err)
			assert.LessOrEqual(t, next, MaxMultiplier)
		}
	})

	t.Run("out-of-range accuracy clamps to the unit interval", func(t *testing.T) {
		tracker := NewTracker(smeAwareStore(), zap.NewNop())

		next, err := tracker.RecordOutcome(ctx, "planner", true, 3.0)
		require.NoError(t, err)
		assert.InDelta(t, 1.1, next, 1e-9)
	})
}

func TestSnapshot(t *testing.T) {
	tracker := NewTracker(smeAwareStore(), zap.NewNop())
	ctx := context.Background()

	_, err := tracker.RecordOutcome(ctx, "planner", true, 1.0)
	require.NoError(t, err)

	snap, err := tracker.Snapshot(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1.1, snap["planner"], 1e-9)
	assert.NotContains(t, snap, "never_seen")
}
