package coordinator

import (
	"time"

	"github.com/DanielBremont/pachi/game"
)

// DecisionMetric summarizes one committed decision: how much evidence
// went into it and how fast the worker pool produced it.
type DecisionMetric struct {
	Color    game.Color
	Move     game.Coord
	Value    float64
	Played   int
	Playouts int
	Workers  int
	Threads  int
	Rounds   int
	Duration time.Duration
}

// GamesPerSecond is the pool's aggregate simulation throughput for the
// decision.
func (m DecisionMetric) GamesPerSecond() float64 {
	secs := m.Duration.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(m.Played) / secs
}

// PerWorker is the mean throughput contribution of one worker.
func (m DecisionMetric) PerWorker() float64 {
	if m.Workers == 0 {
		return 0
	}
	return m.GamesPerSecond() / float64(m.Workers)
}
