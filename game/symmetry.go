package game

// Symmetry describes the canonical playground of a position: the
// rectangle of points worth expanding, optionally folded along a
// diagonal. On a symmetric board only moves inside the playground are
// considered; symmetric duplicates are mapped back into it.
type Symmetry struct {
	X1, Y1, X2, Y2 int

	// Diag folds the rectangle along a diagonal; Down selects the
	// top-left to bottom-right diagonal instead of the main one.
	Diag, Down bool
}

// FullSymmetry is the playground of an empty board: one quadrant,
// folded along the main diagonal.
func FullSymmetry(size int) Symmetry {
	center := size / 2
	return Symmetry{X1: 0, Y1: 0, X2: center, Y2: center, Diag: true}
}

// NoSymmetry spans the whole board.
func NoSymmetry(size int) Symmetry {
	return Symmetry{X1: 0, Y1: 0, X2: size - 1, Y2: size - 1}
}

// Contains reports whether the point lies inside the playground,
// honoring the diagonal fold.
func (s Symmetry) Contains(size int, c Coord) bool {
	if c == Pass || c == Resign {
		return true
	}
	x, y := c.X(size), c.Y(size)
	if x < s.X1 || x > s.X2 || y < s.Y1 || y > s.Y2 {
		return false
	}
	if s.Diag {
		xx := x
		if s.Down {
			xx = size - 1 - x
		}
		if xx > y {
			return false
		}
	}
	return true
}

// Update shrinks the playground after a stone appears at c. A stone
// fixed by the current symmetry keeps it (a center stone keeps the full
// quadrant, a diagonal stone keeps the fold, an axis stone keeps the
// half board); any other stone leaves no symmetry to exploit.
func (s *Symmetry) Update(size int, c Coord) {
	if c == Pass || c == Resign {
		return
	}
	x, y := c.X(size), c.Y(size)
	center := size / 2

	if *s == FullSymmetry(size) {
		switch {
		case x == center && y == center:
			// Tengen preserves every symmetry.
		case x == y:
			*s = Symmetry{X1: 0, Y1: 0, X2: size - 1, Y2: size - 1, Diag: true}
		case x+y == size-1:
			*s = Symmetry{X1: 0, Y1: 0, X2: size - 1, Y2: size - 1, Diag: true, Down: true}
		case x == center:
			*s = Symmetry{X1: 0, Y1: 0, X2: center, Y2: size - 1}
		case y == center:
			*s = Symmetry{X1: 0, Y1: 0, X2: size - 1, Y2: center}
		default:
			*s = NoSymmetry(size)
		}
		return
	}

	if !s.fixes(size, x, y) {
		*s = NoSymmetry(size)
	}
}

// fixes reports whether a stone at (x, y) is invariant under the
// remaining symmetry.
func (s Symmetry) fixes(size, x, y int) bool {
	center := size / 2
	switch {
	case s.Diag && !s.Down:
		return x == y
	case s.Diag && s.Down:
		return x+y == size-1
	case s.X2 == center && s.Y2 == size-1:
		return x == center
	case s.Y2 == center && s.X2 == size-1:
		return y == center
	}
	return false
}
