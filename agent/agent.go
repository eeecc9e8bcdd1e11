// Package agent wraps move selection strategies behind a common interface so
// that engines can pit them against each other.
package agent

import (
	"golang.org/x/exp/rand"

	"montecarlo/game"
	"montecarlo/searcher"
)

type Agent interface {
	// FindMove returns the chosen move and the metrics of the search that
	// produced it, if any.
	FindMove(position game.Position) (searcher.Result, error)
}

// randomAction picks a legal action uniformly. Chance outcomes are then
// redrawn by probability among the outcomes of the same event.
func randomAction(actions []game.Action, rng *rand.Rand) game.Action {
	action := actions[rng.Intn(len(actions))]
	if !game.IsChance(action) {
		return action
	}
	return game.DrawOutcome(actions, action, rng.Float64())
}
