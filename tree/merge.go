package tree

import (
	"golang.org/x/exp/slices"

	"github.com/DanielBremont/pachi/game"
)

// Merge folds src into t, destructively consuming src. Both trees must
// have grown from the same position and share baseline snapshots at
// every matched node pair; only the statistics accumulated beyond the
// baseline are transferred, so pairwise merging of many sources in any
// order yields the same totals.
func (t *Tree) Merge(src *Tree) {
	if src.maxDepth > t.maxDepth {
		t.maxDepth = src.maxDepth
	}
	mergeNode(t.root, src.root)
	src.root = nil
}

func mergeNode(dest, src *Node) {
	if dest.BaseU.Playouts != src.BaseU.Playouts || dest.BaseAMAF.Playouts != src.BaseAMAF.Playouts {
		panic("tree: merging nodes with diverged baselines")
	}

	// Untouched since the sync point: nothing to transfer.
	if src.U.Playouts-src.BaseU.Playouts == 0 && src.AMAF.Playouts-src.BaseAMAF.Playouts == 0 {
		return
	}

	dest.Hints |= src.Hints

	// Zip the coordinate-sorted sibling lists. Matches recurse;
	// src-only children are spliced over by pointer, not copied.
	if len(src.children) > 0 {
		merged := make([]*Node, 0, len(dest.children))
		di, si := 0, 0
		for di < len(dest.children) && si < len(src.children) {
			dc, sc := dest.children[di], src.children[si]
			switch {
			case dc.Coord == sc.Coord:
				mergeNode(dc, sc)
				merged = append(merged, dc)
				di++
				si++
			case dc.Coord < sc.Coord:
				merged = append(merged, dc)
				di++
			default:
				sc.parent = dest
				merged = append(merged, sc)
				si++
			}
		}
		merged = append(merged, dest.children[di:]...)
		for _, sc := range src.children[si:] {
			sc.parent = dest
			merged = append(merged, sc)
		}
		dest.children = merged
		src.children = nil
	}

	if dest.Prior != src.Prior {
		panic("tree: merging nodes with diverged priors")
	}

	dest.U.Playouts += src.U.Playouts - src.BaseU.Playouts
	dest.U.Wins += src.U.Wins - src.BaseU.Wins
	dest.U.update()

	dest.AMAF.Playouts += src.AMAF.Playouts - src.BaseAMAF.Playouts
	dest.AMAF.Wins += src.AMAF.Wins - src.BaseAMAF.Wins
	dest.AMAF.update()
}

// Normalize divides every node's delta since baseline by factor and
// re-snapshots the baseline at the result. Old evidence carried over
// from a previous decision is thereby down-weighted against fresh
// simulations without disturbing the tree shape.
func (t *Tree) Normalize(factor int) {
	if factor <= 0 {
		panic("tree: normalize factor must be positive")
	}
	normalizeNode(t.root, factor)
}

func normalizeNode(n *Node, factor int) {
	for _, ni := range n.children {
		normalizeNode(ni, factor)
	}

	norm := func(base Stats, s *Stats) {
		s.Playouts = base.Playouts + (s.Playouts-base.Playouts)/factor
		s.Wins = base.Wins + (s.Wins-base.Wins)/float64(factor)
		s.update()
	}
	norm(n.BaseAMAF, &n.AMAF)
	norm(n.BaseU, &n.U)
	n.snapshot()
}

// AbsorbStats folds one decision's combined per-coordinate statistics
// into the root's children, creating missing children in coordinate
// order. The amounts are fresh deltas beyond the workers' last sync
// point, so each touched child re-snapshots its baseline afterwards.
func (t *Tree) AbsorbStats(stats map[game.Coord]*Stats2) {
	coords := make([]game.Coord, 0, len(stats))
	for c := range stats {
		coords = append(coords, c)
	}
	slices.Sort(coords)

	for _, c := range coords {
		s := stats[c]
		ni := t.root.Child(c)
		if ni == nil {
			ni = t.insertChild(t.root, c)
		}
		ni.U.Add(s.U.Value, s.U.Playouts)
		ni.AMAF.Add(s.AMAF.Value, s.AMAF.Playouts)
		ni.snapshot()
	}
}

// insertChild places a new child at its sorted position.
func (t *Tree) insertChild(n *Node, c game.Coord) *Node {
	ni := t.newNode(c, n.Depth+1)
	ni.parent = n
	at := len(n.children)
	for i, existing := range n.children {
		if existing.Coord > c {
			at = i
			break
		}
	}
	n.children = slices.Insert(n.children, at, ni)
	return ni
}
