package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

func TestNewSessionStore(t *testing.T) {
	t.Run("custom max history", func(t *testing.T) {
		store := NewSessionStore(5)
		assert.Equal(t, 5, store.maxHistory)
	})

	t.Run("invalid max history falls back to default", func(t *testing.T) {
		store := NewSessionStore(0)
		assert.Equal(t, DefaultMaxHistory, store.maxHistory)
	})
}

func TestSessionStore_Append_FIFOTruncation(t *testing.T) {
	store := NewSessionStore(2)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		err := store.Append(ctx, "s1", domain.Exchange{
			Query:  fmt.Sprintf("question %d", i),
			Answer: fmt.Sprintf("answer %d", i),
		})
		require.NoError(t, err)
	}

	exchanges, err := store.Exchanges(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, exchanges, 2)

	// Oldest exchanges evicted, chronological order preserved.
	assert.Equal(t, "question 3", exchanges[0].Query)
	assert.Equal(t, "question 4", exchanges[1].Query)
}

func TestSessionStore_Append_EmptySessionID(t *testing.T) {
	store := NewSessionStore(2)
	err := store.Append(context.Background(), "", domain.Exchange{Query: "q", Answer: "a"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSessionStore_Exchanges_UnknownSession(t *testing.T) {
	store := NewSessionStore(2)
	exchanges, err := store.Exchanges(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, exchanges)
}

func TestSessionStore_NoCrossSessionLeakage(t *testing.T) {
	store := NewSessionStore(2)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", domain.Exchange{Query: "q1", Answer: "a1"}))
	require.NoError(t, store.Append(ctx, "s2", domain.Exchange{Query: "q2", Answer: "a2"}))

	e1, err := store.Exchanges(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, e1, 1)
	assert.Equal(t, "q1", e1[0].Query)

	e2, err := store.Exchanges(ctx, "s2")
	require.NoError(t, err)
	require.Len(t, e2, 1)
	assert.Equal(t, "q2", e2[0].Query)
}

func TestSessionStore_Clear(t *testing.T) {
	store := NewSessionStore(2)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", domain.Exchange{Query: "q", Answer: "a"}))
	require.NoError(t, store.Clear(ctx, "s1"))

	exchanges, err := store.Exchanges(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, exchanges)
}

func TestSessionStore_ExchangesReturnsCopy(t *testing.T) {
	store := NewSessionStore(2)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", domain.Exchange{Query: "q", Answer: "a"}))

	exchanges, err := store.Exchanges(ctx, "s1")
	require.NoError(t, err)
	exchanges[0].Query = "mutated"

	fresh, err := store.Exchanges(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "q", fresh[0].Query)
}
