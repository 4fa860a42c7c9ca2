// Package tree implements the shared search tree: per-node statistics
// with baseline snapshots, expansion within a symmetry playground,
// root promotion, incremental merging and normalization, and opening
// book persistence.
package tree

// Stats is one statistic channel of a node: a playout count, the summed
// outcome of those playouts, and the cached mean value in [0, 1].
type Stats struct {
	Playouts int
	Wins     float64
	Value    float64
}

// Add folds playouts with the given mean value into the accumulator and
// refreshes the cached mean.
func (s *Stats) Add(value float64, playouts int) {
	if playouts == 0 {
		return
	}
	s.Playouts += playouts
	s.Wins += value * float64(playouts)
	s.update()
}

func (s *Stats) update() {
	if s.Playouts == 0 {
		s.Value = 0
		return
	}
	s.Value = s.Wins / float64(s.Playouts)
}

// Stats2 bundles the raw and all-moves-as-first channels, the shape in
// which per-move statistics travel between coordinator and workers.
type Stats2 struct {
	U    Stats
	AMAF Stats
}
