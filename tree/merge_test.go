package tree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DanielBremont/pachi/game"
)

// seedStats gives a node an absolute total and a baseline below it.
func seedStats(n *Node, basePlayouts, playouts int, value float64) {
	n.U.Add(value, playouts)
	n.BaseU = Stats{Playouts: basePlayouts, Wins: value * float64(basePlayouts)}
	n.BaseU.update()
}

func TestMerge(t *testing.T) {
	size := 9
	c3 := game.CoordXY(2, 2, size)
	d4 := game.CoordXY(3, 3, size)

	t.Run("adds only the delta beyond the shared baseline", func(t *testing.T) {
		dest := New(size, game.Black, game.NoSymmetry(size))
		src := New(size, game.Black, game.NoSymmetry(size))
		seedStats(dest.Root(), 3, 10, 0.5)
		seedStats(src.Root(), 3, 7, 0.5)

		dc := addChild(dest, dest.Root(), c3, 8)
		sc := addChild(src, src.Root(), c3, 5)
		dc.BaseU = Stats{}
		sc.BaseU = Stats{}

		dest.Merge(src)

		// 10 + (7 - 3) at the root, 8 + 5 at the child.
		require.Equal(t, 14, dest.Root().U.Playouts)
		require.Equal(t, 13, dest.Root().Child(c3).U.Playouts)
		// Baselines stay where they were; only Normalize re-snapshots.
		require.Equal(t, 3, dest.Root().BaseU.Playouts)
	})

	t.Run("splices src-only children at sorted positions", func(t *testing.T) {
		dest := New(size, game.Black, game.NoSymmetry(size))
		src := New(size, game.Black, game.NoSymmetry(size))
		seedStats(dest.Root(), 0, 4, 0.5)
		seedStats(src.Root(), 0, 6, 0.5)

		addChild(dest, dest.Root(), d4, 4)
		spliced := addChild(src, src.Root(), c3, 6)

		dest.Merge(src)

		children := dest.Root().Children()
		require.Len(t, children, 2)
		require.Same(t, spliced, children[0], "src child moved, not copied")
		require.Same(t, dest.Root(), spliced.Parent(), "spliced child re-parented")
		require.Equal(t, d4, children[1].Coord)
	})

	t.Run("dest-only children are left untouched", func(t *testing.T) {
		dest := New(size, game.Black, game.NoSymmetry(size))
		src := New(size, game.Black, game.NoSymmetry(size))
		seedStats(dest.Root(), 0, 4, 0.5)
		seedStats(src.Root(), 0, 6, 0.5)

		kept := addChild(dest, dest.Root(), c3, 4)
		addChild(src, src.Root(), d4, 6)

		dest.Merge(src)

		require.Same(t, kept, dest.Root().Child(c3))
		require.Equal(t, 4, kept.U.Playouts)
	})

	t.Run("untouched src subtree is skipped", func(t *testing.T) {
		dest := New(size, game.Black, game.NoSymmetry(size))
		src := New(size, game.Black, game.NoSymmetry(size))
		seedStats(dest.Root(), 2, 9, 0.5)
		// src never moved past its baseline.
		seedStats(src.Root(), 2, 2, 0.5)

		dest.Merge(src)

		require.Equal(t, 9, dest.Root().U.Playouts)
	})

	t.Run("pairwise merge order does not change totals", func(t *testing.T) {
		build := func(playouts int, value float64) *Tree {
			tr := New(size, game.Black, game.NoSymmetry(size))
			tr.Root().U.Add(value, playouts)
			n := addChild(tr, tr.Root(), c3, playouts)
			n.BaseU = Stats{}
			return tr
		}

		a := build(3, 1.0)
		a.Merge(build(5, 0.0))
		a.Merge(build(7, 1.0))

		b := build(7, 1.0)
		b.Merge(build(3, 1.0))
		b.Merge(build(5, 0.0))

		require.Equal(t, a.Root().U.Playouts, b.Root().U.Playouts)
		require.InDelta(t, a.Root().U.Wins, b.Root().U.Wins, 1e-9)
		require.Equal(t, a.Root().Child(c3).U.Playouts, b.Root().Child(c3).U.Playouts)
		require.InDelta(t, a.Root().Child(c3).U.Wins, b.Root().Child(c3).U.Wins, 1e-9)
	})

	t.Run("diverged baselines panic", func(t *testing.T) {
		dest := New(size, game.Black, game.NoSymmetry(size))
		src := New(size, game.Black, game.NoSymmetry(size))
		seedStats(dest.Root(), 3, 10, 0.5)
		seedStats(src.Root(), 4, 10, 0.5)

		require.Panics(t, func() { dest.Merge(src) })
	})

	t.Run("diverged priors panic", func(t *testing.T) {
		dest := New(size, game.Black, game.NoSymmetry(size))
		src := New(size, game.Black, game.NoSymmetry(size))
		seedStats(dest.Root(), 0, 10, 0.5)
		seedStats(src.Root(), 0, 10, 0.5)
		dest.Root().Prior.Add(0.5, 10)
		src.Root().Prior.Add(0.5, 20)

		require.Panics(t, func() { dest.Merge(src) })
	})
}

func TestNormalize(t *testing.T) {
	size := 9

	t.Run("divides the delta and re-snapshots", func(t *testing.T) {
		tr := New(size, game.Black, game.NoSymmetry(size))
		n := addChild(tr, tr.Root(), game.CoordXY(2, 2, size), 0)
		n.BaseU = Stats{Playouts: 10, Wins: 6}
		n.U = Stats{Playouts: 30, Wins: 18}
		n.U.update()

		tr.Normalize(2)

		require.Equal(t, 20, n.U.Playouts)
		require.InDelta(t, 12.0, n.U.Wins, 1e-9)
		require.Equal(t, n.U, n.BaseU)
	})

	t.Run("second normalize finds no delta", func(t *testing.T) {
		tr := New(size, game.Black, game.NoSymmetry(size))
		n := addChild(tr, tr.Root(), game.CoordXY(2, 2, size), 0)
		n.BaseU = Stats{Playouts: 10, Wins: 6}
		n.U = Stats{Playouts: 30, Wins: 18}
		n.U.update()

		tr.Normalize(2)
		before := n.U
		tr.Normalize(2)

		require.Equal(t, before, n.U)
	})

	t.Run("non-positive factor panics", func(t *testing.T) {
		tr := New(size, game.Black, game.NoSymmetry(size))
		require.Panics(t, func() { tr.Normalize(0) })
	})
}

func TestAbsorbStats(t *testing.T) {
	size := 9
	c3 := game.CoordXY(2, 2, size)
	d4 := game.CoordXY(3, 3, size)

	tr := New(size, game.Black, game.NoSymmetry(size))
	addChild(tr, tr.Root(), d4, 2).snapshot()

	tr.AbsorbStats(map[game.Coord]*Stats2{
		c3: {U: Stats{Playouts: 50, Value: 0.6}, AMAF: Stats{Playouts: 10, Value: 0.55}},
		d4: {U: Stats{Playouts: 80, Value: 0.4}},
	})

	children := tr.Root().Children()
	require.Len(t, children, 2)
	require.Equal(t, c3, children[0].Coord, "new child inserted in sorted position")

	nc := tr.Root().Child(c3)
	require.Equal(t, 50, nc.U.Playouts)
	require.InDelta(t, 0.6, nc.U.Value, 1e-9)
	require.Equal(t, 10, nc.AMAF.Playouts)
	require.Equal(t, nc.U, nc.BaseU, "baseline re-snapshots after absorption")

	nd := tr.Root().Child(d4)
	require.Equal(t, 82, nd.U.Playouts)
}
