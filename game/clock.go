package game

import "time"

// estMovesLeft is the crude game-length estimate used when slicing the
// remaining main time for a single decision. The workers run their own
// finer-grained time control; the coordinator only needs a worst case.
const estMovesLeft = 30

// DefaultGames is the sample budget used when no time settings are
// given. It is a total across all workers.
const DefaultGames = 80000

// TimeInfo carries the clock state for one decision: either a total
// sample budget, or wall-clock settings in the Canadian/byoyomi style.
type TimeInfo struct {
	Games int

	Main    time.Duration
	Byoyomi time.Duration
	Periods int
	Stones  int
}

// Walltime reports whether this decision runs against the clock rather
// than against a sample count.
func (ti TimeInfo) Walltime() bool {
	return ti.Main > 0 || ti.Byoyomi > 0
}

// Budget is the worst-case allotment for one decision. Exactly one
// field is meaningful: Time when playing against the clock, Games
// otherwise.
type Budget struct {
	Time  time.Duration
	Games int
}

// Budget derives a worst-case allotment from the clock state.
func (ti TimeInfo) Budget() Budget {
	if ti.Walltime() {
		worst := ti.Main / estMovesLeft
		if ti.Byoyomi > 0 {
			worst += ti.Byoyomi
		}
		return Budget{Time: worst}
	}
	games := ti.Games
	if games <= 0 {
		games = DefaultGames
	}
	return Budget{Games: games}
}
