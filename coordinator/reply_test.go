package coordinator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DanielBremont/pachi/game"
)

func TestParseReply(t *testing.T) {
	t.Run("full reply", func(t *testing.T) {
		r, err := ParseReply("=7 100 500 4 1\nC3 50 0.6 10 0.55\nD4 80 0.4 5 0.3", 9)
		require.NoError(t, err)
		require.Equal(t, 7, r.ID)
		require.Equal(t, 100, r.Played)
		require.Equal(t, 500, r.Playouts)
		require.Equal(t, 4, r.Threads)
		require.True(t, r.KeepLooking)

		require.Len(t, r.Moves, 2)
		require.Equal(t, game.CoordXY(2, 2, 9), r.Moves[0].Coord)
		require.Equal(t, 50, r.Moves[0].Playouts)
		require.InDelta(t, 0.6, r.Moves[0].Value, 1e-9)
		require.Equal(t, 10, r.Moves[0].AmafPlayouts)
		require.InDelta(t, 0.55, r.Moves[0].AmafValue, 1e-9)
		require.Equal(t, game.CoordXY(3, 3, 9), r.Moves[1].Coord)
	})

	t.Run("stop voting", func(t *testing.T) {
		r, err := ParseReply("=7 100 500 4 0", 9)
		require.NoError(t, err)
		require.False(t, r.KeepLooking)
		require.Empty(t, r.Moves)
	})

	t.Run("reserved header fields are ignored", func(t *testing.T) {
		r, err := ParseReply("=7 100 500 4 1 0", 9)
		require.NoError(t, err)
		require.Equal(t, 7, r.ID)
		require.True(t, r.KeepLooking)
	})

	t.Run("malformed candidate lines are skipped", func(t *testing.T) {
		r, err := ParseReply("=7 100 500 4 1\nZ99 50 0.6 10 0.55\nD4 80\nD4 80 0.4 5 0.3", 9)
		require.NoError(t, err)
		require.Len(t, r.Moves, 1)
		require.Equal(t, game.CoordXY(3, 3, 9), r.Moves[0].Coord)
	})

	t.Run("candidates stop at the blank line", func(t *testing.T) {
		r, err := ParseReply("=7 100 500 4 1\nC3 50 0.6 10 0.55\n\nD4 80 0.4 5 0.3", 9)
		require.NoError(t, err)
		require.Len(t, r.Moves, 1)
	})

	t.Run("malformed header voids the reply", func(t *testing.T) {
		_, err := ParseReply("=7 100 500", 9)
		require.Error(t, err)
		_, err = ParseReply("? unknown command", 9)
		require.Error(t, err)
	})
}

func TestReplyID(t *testing.T) {
	id, ok := replyID("=12 100 500 4 1\nC3 50 0.6 10 0.55")
	require.True(t, ok)
	require.Equal(t, 12, id)

	_, ok = replyID("? error")
	require.False(t, ok)
	_, ok = replyID("=")
	require.False(t, ok)
}
