package knowledge

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustItem(t *testing.T, source, typ string, contexts []string, rate float64) *Item {
	t.Helper()
	item, err := NewItem(source, typ, contexts, rate)
	require.NoError(t, err)
	return item
}

func TestShare(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	t.Run("stores items under their source brain", func(t *testing.T) {
		item := mustItem(t, "planner", "pattern", []string{"deployment"}, 0.8)
		require.NoError(t, store.Share(ctx, item))

		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("same ID overwrites instead of duplicating", func(t *testing.T) {
		item := mustItem(t, "planner", "pattern", []string{"deployment"}, 0.8)
		require.NoError(t, store.Share(ctx, item))
		item.SuccessRate = 0.9
		require.NoError(t, store.Share(ctx, item))

		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n) // the one from the previous subtest plus this one
	})

	t.Run("rejects invalid items", func(t *testing.T) {
		assert.ErrorIs(t, store.Share(ctx, nil), ErrInvalidItem)
		assert.ErrorIs(t, store.Share(ctx, &Item{ID: "x"}), ErrInvalidItem)

		_, err := NewItem("", "pattern", nil, 0.5)
		assert.ErrorIs(t, err, ErrInvalidItem)
		_, err = NewItem("planner", "pattern", nil, 1.5)
		assert.ErrorIs(t, err, ErrInvalidItem)
	})
}

func TestMatch(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	a := mustItem(t, "planner", "pattern", []string{"Deployment"}, 0.9)
	b := mustItem(t, "sme_security", "pattern", []string{"deployment", "rollback"}, 0.7)
	c := mustItem(t, "planner", "procedure", []string{"deployment"}, 0.95)
	d := mustItem(t, "planner", "pattern", []string{"migration"}, 0.99)
	for _, item := range []*Item{a, b, c, d} {
		require.NoError(t, store.Share(ctx, item))
	}

	t.Run("matches same type with context intersection, ranked by success rate", func(t *testing.T) {
		got, err := store.Match(ctx, &Request{Type: "pattern", Contexts: []string{"DEPLOYMENT"}})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, a.ID, got[0].ID) // 0.9 beats 0.7
		assert.Equal(t, b.ID, got[1].ID)
	})

	t.Run("type mismatch excludes", func(t *testing.T) {
		got, err := store.Match(ctx, &Request{Type: "runbook", Contexts: []string{"deployment"}})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("no contexts matches nothing", func(t *testing.T) {
		got, err := store.Match(ctx, &Request{Type: "pattern"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("usage count breaks success-rate ties", func(t *testing.T) {
		tied := NewInMemoryStore()
		x := mustItem(t, "planner", "pattern", []string{"ops"}, 0.8)
		y := mustItem(t, "planner", "pattern", []string{"ops"}, 0.8)
		require.NoError(t, tied.Share(ctx, x))
		require.NoError(t, tied.Share(ctx, y))
		_, err := tied.Transfer(ctx, y.ID)
		require.NoError(t, err)

		got, err := tied.Match(ctx, &Request{Type: "pattern", Contexts: []string{"ops"}})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, y.ID, got[0].ID)
	})

	t.Run("results cap at ten", func(t *testing.T) {
		big := NewInMemoryStore()
		for i := 0; i < 15; i++ {
			item := mustItem(t, "planner", "pattern", []string{"ops"}, float64(i)/20)
			item.ID = fmt.Sprintf("item-%02d", i)
			require.NoError(t, big.Share(ctx, item))
		}
		got, err := big.Match(ctx, &Request{Type: "pattern", Contexts: []string{"ops"}})
		require.NoError(t, err)
		assert.Len(t, got, 10)
	})
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	item := mustItem(t, "planner", "pattern", []string{"ops"}, 0.8)
	require.NoError(t, store.Share(ctx, item))

	t.Run("bumps usage accounting but never the success rate", func(t *testing.T) {
		got, err := store.Transfer(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.UsageCount)
		assert.False(t, got.LastUsed.IsZero())
		assert.Equal(t, 0.8, got.SuccessRate)

		got, err = store.Transfer(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.UsageCount)
	})

	t.Run("unknown item fails", func(t *testing.T) {
		_, err := store.Transfer(ctx, "missing")
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}
