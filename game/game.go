// Package game holds the collaborator types the search coordinator and
// the statistics tree are written against: colors, coordinates, the
// symmetry playground, and the interfaces through which board legality,
// prior estimation and time accounting are consumed.
package game

// Position is the board oracle. The coordinator and tree never reason
// about captures or ko themselves; they ask.
type Position interface {
	Size() int
	Komi() float64
	Handicap() int

	// Empty reports whether the point carries no stone.
	Empty(c Coord) bool
	// Legal reports whether color may play at c.
	Legal(color Color, c Coord) bool
	// NearStones reports whether any stone lies within radius of c,
	// used to weed out far-away candidates on large boards.
	NearStones(c Coord, radius int) bool
	// Occupied reports whether the board holds any stone at all.
	Occupied() bool
}

// Prior is an externally supplied first estimate for a candidate move:
// an expected value and the pseudo-playout weight to give it.
type Prior struct {
	Value    float64
	Playouts int
}

// PriorEvaluator produces prior estimates for a set of candidate moves.
type PriorEvaluator interface {
	Priors(pos Position, toPlay Color, consider []Coord) map[Coord]Prior
}
