package idx_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tablechat/tablechat/pkg/idx"
)

func TestNewIsSortable(t *testing.T) {
	a := idx.New()
	b := idx.New()
	require.NotEqual(t, a, b)
	require.Less(t, a.String(), b.String())
}

func TestParse(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		id := idx.New()
		parsed, err := idx.Parse(id.String())
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := idx.Parse("not-a-ulid")
		require.ErrorIs(t, err, idx.ErrInvalid)
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := idx.Parse("  ")
		require.ErrorIs(t, err, idx.ErrInvalid)
	})
}

func TestTime(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	id := idx.NewAt(at)
	require.WithinDuration(t, at, id.Time(), time.Millisecond)
	require.True(t, idx.Zero.Time().IsZero())
}
