package tree

import (
	"github.com/rs/zerolog/log"

	"github.com/DanielBremont/pachi/game"
)

// Tree owns a node graph rooted at a virtual pass move. It is not safe
// for unsynchronized concurrent mutation; callers serialize access.
type Tree struct {
	size     int
	root     *Node
	maxDepth int

	// rootColor is the color to move at the virtual root, i.e. the
	// opponent of the color the next decision is for: statistics at
	// depth 1 describe that opponent's replies... which are our moves.
	rootColor    game.Color
	rootSymmetry game.Symmetry
}

// New creates a fresh tree for deciding color's next move.
func New(size int, color game.Color, sym game.Symmetry) *Tree {
	return &Tree{
		size:         size,
		root:         newNode(game.Pass, 0),
		rootColor:    color.Other(),
		rootSymmetry: sym,
	}
}

func (t *Tree) Root() *Node             { return t.root }
func (t *Tree) Size() int               { return t.size }
func (t *Tree) MaxDepth() int           { return t.maxDepth }
func (t *Tree) RootColor() game.Color   { return t.rootColor }
func (t *Tree) Symmetry() game.Symmetry { return t.rootSymmetry }

func (t *Tree) newNode(c game.Coord, depth int) *Node {
	n := newNode(c, depth)
	if depth > t.maxDepth {
		t.maxDepth = depth
	}
	return n
}

// Expand creates children for every candidate move of a leaf: the pass
// move plus each empty, legal point of the symmetry playground,
// optionally narrowed to a locality radius around existing stones.
// Children are created in raster order so the sibling list comes out
// coordinate-sorted, which Merge relies on. Priors, when available, are
// preloaded into each child.
func (t *Tree) Expand(n *Node, pos game.Position, color game.Color, radius int, priors game.PriorEvaluator) {
	if len(n.children) > 0 {
		panic("tree: expanding a non-leaf node")
	}

	s := t.rootSymmetry
	consider := []game.Coord{game.Pass}
	for y := s.Y1; y <= s.Y2; y++ {
		for x := s.X1; x <= s.X2; x++ {
			if s.Diag {
				xx := x
				if s.Down {
					xx = t.size - 1 - x
				}
				if xx > y {
					continue
				}
			}
			c := game.CoordXY(x, y, t.size)
			if !pos.Empty(c) {
				continue
			}
			if radius > 0 && pos.Occupied() && !pos.NearStones(c, radius) {
				continue
			}
			if !pos.Legal(color, c) {
				continue
			}
			consider = append(consider, c)
		}
	}

	var estimates map[game.Coord]game.Prior
	if priors != nil {
		estimates = priors.Priors(pos, color, consider)
	}

	n.children = make([]*Node, 0, len(consider))
	for _, c := range consider {
		ni := t.newNode(c, n.Depth+1)
		ni.parent = n
		if p, ok := estimates[c]; ok && p.Playouts > 0 {
			ni.Prior.Add(p.Value, p.Playouts)
		}
		n.children = append(n.children, ni)
	}
}

// flipCoord maps a coordinate through the given board transforms.
func flipCoord(c game.Coord, size int, horiz, vert, diag bool) game.Coord {
	x, y := c.X(size), c.Y(size)
	if diag {
		x, y = y, x
	}
	if horiz {
		x = size - 1 - x
	}
	if vert {
		y = size - 1 - y
	}
	return game.CoordXY(x, y, size)
}

// FixSymmetry maps a played coordinate falling outside the canonical
// playground back into it by rewriting every node's coordinate with the
// required flips. Tree shape and statistics are untouched.
func (t *Tree) FixSymmetry(c game.Coord) {
	if c == game.Pass || c == game.Resign {
		return
	}

	s := t.rootSymmetry
	cx, cy := c.X(t.size), c.Y(t.size)

	horiz := cx < s.X1 || cx > s.X2
	vert := cy < s.Y1 || cy > s.Y2

	diag := false
	if s.Diag {
		x := cx
		if (s.Down != horiz) != vert {
			x = t.size - 1 - cx
		}
		if vert {
			diag = x < cy
		} else {
			diag = x > cy
		}
	}

	if !horiz && !vert && !diag {
		return
	}
	log.Debug().Msgf("tree: symmetry fix for %s: flip horiz=%v vert=%v diag=%v",
		c.Text(t.size), horiz, vert, diag)
	fixNodeSymmetry(t.root, t.size, horiz, vert, diag)
}

func fixNodeSymmetry(n *Node, size int, horiz, vert, diag bool) {
	if !n.Coord.IsPass() && n.Coord != game.Resign {
		n.Coord = flipCoord(n.Coord, size, horiz, vert, diag)
	}
	for _, ni := range n.children {
		fixNodeSymmetry(ni, size, horiz, vert, diag)
	}
}

// PromoteAt advances the root to the child playing c, applying any
// symmetry fix-up first. Every other subtree is discarded, the root
// color flips, and the playground is re-derived for the new position.
// A false return means no such child exists and the caller should start
// a fresh tree; the tree is left unchanged in that case.
func (t *Tree) PromoteAt(c game.Coord) bool {
	t.FixSymmetry(c)

	ni := t.root.Child(c)
	if ni == nil {
		return false
	}
	ni.unlink()
	t.root.children = nil
	t.root = ni
	t.rootColor = t.rootColor.Other()
	t.rootSymmetry.Update(t.size, c)
	return true
}

// Delete unlinks a node and drops its subtree.
func (t *Tree) Delete(n *Node) {
	if n == t.root {
		panic("tree: deleting the root")
	}
	n.unlink()
}

// NodeCount is the number of nodes in the tree, for diagnostics.
func (t *Tree) NodeCount() int {
	return t.root.size()
}
