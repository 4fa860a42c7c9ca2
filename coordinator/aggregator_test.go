package coordinator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregator(t *testing.T) {
	t.Run("add replaces an earlier reply from the same worker", func(t *testing.T) {
		var a Aggregator
		a.Add(1, "=1 old")
		a.Add(2, "=1 other")
		a.Add(1, "=1 new")

		require.Equal(t, 2, a.Count())
		require.Equal(t, []string{"=1 new", "=1 other"}, a.Texts())
	})

	t.Run("clear resets between commands", func(t *testing.T) {
		var a Aggregator
		a.Add(1, "=1")
		a.Clear()
		require.Equal(t, 0, a.Count())
		_, ok := a.MostCommon()
		require.False(t, ok)
	})

	t.Run("most common picks the majority answer", func(t *testing.T) {
		var a Aggregator
		a.Add(1, "=9 C3 E5\nD7")
		a.Add(2, "=9 C3")
		a.Add(3, "=9 C3 E5\nD7")
		a.Add(4, "=9 D7")
		a.Add(5, "=9 C3 E5\nD7")

		text, ok := a.MostCommon()
		require.True(t, ok)
		require.Equal(t, "=9 C3 E5\nD7", text)
	})

	t.Run("ties go to the first candidate in sorted order", func(t *testing.T) {
		var a Aggregator
		a.Add(1, "=9 D7")
		a.Add(2, "=9 C3")

		text, ok := a.MostCommon()
		require.True(t, ok)
		require.Equal(t, "=9 C3", text)
	})
}
