// Package meta holds the coordinator's tuning knobs.
package meta

import "time"

// StatsUpdateInterval is how often combined statistics are pushed back
// to the workers during a decision.
const StatsUpdateInterval = 100 * time.Millisecond

// MaxCmdWait bounds the wait for replies to commands other than the
// statistics rounds.
const MaxCmdWait = time.Second

// DefaultMaxWorkers caps the number of simultaneously connected workers.
const DefaultMaxWorkers = 100

// CandidateDivisor sets the dynamic reporting threshold: candidates
// with more than best-move-playouts/CandidateDivisor playouts are
// echoed back to the workers.
const CandidateDivisor = 100
