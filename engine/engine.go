// Package engine runs complete games between agents.
package engine

import (
	"montecarlo/experiments/metrics"
	"montecarlo/game"
)

const MaxMoves = 10000

type Engine interface {
	// Run plays until the game ends or the move cap is reached, in which case
	// the rules are asked for a forced verdict.
	Run() (winner game.Status, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
