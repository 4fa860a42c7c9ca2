package coordinator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJournal(t *testing.T) {
	t.Run("append assigns increasing ids", func(t *testing.T) {
		j := NewJournal()
		require.Equal(t, 1, j.Append("boardsize", "9\n").ID)
		require.Equal(t, 2, j.Append("komi", "7.5\n").ID)
		require.Equal(t, 3, j.Append("play", "b C3\n").ID)
		require.Equal(t, 3, j.Len())

		head, ok := j.Head()
		require.True(t, ok)
		require.Equal(t, 3, head.ID)
		require.Equal(t, "play", head.Verb)
	})

	t.Run("rewrite keeps the id in place", func(t *testing.T) {
		j := NewJournal()
		j.Append("genmoves", "b 0\n\n")
		before := j.version

		e := j.Rewrite("genmoves", "b 500\nC3 500 0.6000000 10 0.5500000\n\n", false)
		require.Equal(t, 1, e.ID)
		require.Equal(t, 1, j.Len())
		require.Greater(t, j.version, before)

		head, _ := j.Head()
		require.Equal(t, "b 500\nC3 500 0.6000000 10 0.5500000\n\n", head.Args)
	})

	t.Run("rewrite with advance takes a fresh id", func(t *testing.T) {
		j := NewJournal()
		j.Append("genmoves", "b 0\n\n")

		e := j.Rewrite("play", "b C3\n", true)
		require.Equal(t, 2, e.ID)
		require.Equal(t, "play", e.Verb)
		require.Equal(t, 1, j.Len())

		// The next command continues past the advanced id.
		require.Equal(t, 3, j.Append("genmoves", "w 0\n\n").ID)
	})

	t.Run("rewrite without a command panics", func(t *testing.T) {
		require.Panics(t, func() { NewJournal().Rewrite("play", "b C3\n", false) })
	})

	t.Run("since returns the missed suffix in order", func(t *testing.T) {
		j := NewJournal()
		j.Append("boardsize", "9\n")
		j.Append("komi", "7.5\n")
		j.Append("play", "b C3\n")
		j.Append("genmoves", "w 0\n\n")

		suffix := j.Since(1)
		require.Len(t, suffix, 3)
		require.Equal(t, []int{2, 3, 4}, []int{suffix[0].ID, suffix[1].ID, suffix[2].ID})
		require.Equal(t, "genmoves", suffix[2].Verb)

		require.Len(t, j.Since(0), 4)
		require.Nil(t, j.Since(4))
	})
}

func TestEntryWire(t *testing.T) {
	require.Equal(t, "5 quit\n", Entry{ID: 5, Verb: "quit"}.wire())
	require.Equal(t, "5 play b C3\n", Entry{ID: 5, Verb: "play", Args: "b C3\n"}.wire())
	require.Equal(t, "7 genmoves b 0\n\n", Entry{ID: 7, Verb: "genmoves", Args: "b 0\n\n"}.wire())
}
