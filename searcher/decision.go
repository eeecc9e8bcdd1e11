package searcher

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"montecarlo/game"
)

// Budget bounds a search by iteration count or by wall-clock duration.
type Budget struct {
	Iterations int
	Duration   time.Duration
}

type limiter struct {
	iterations int
	deadline   time.Time
}

func (b Budget) start() limiter {
	return limiter{iterations: b.Iterations, deadline: time.Now().Add(b.Duration)}
}

func (l limiter) ok(iterations int) bool {
	if l.iterations > 0 {
		return iterations < l.iterations
	}
	return time.Now().Before(l.deadline)
}

// decision is the outcome of the budget decision: either a move that was
// played without searching, or the budget to search with.
type decision struct {
	skipped  bool
	position game.Position
	action   game.Action
	budget   Budget
}

// decide plays a move right away when only random moves are allowed or when a
// single action is legal, and otherwise sizes the search budget.
func (m *MCTS) decide(searchID string, position game.Position, player game.Player, actions []game.Action) (decision, error) {
	if len(actions) == 0 {
		return decision{}, fmt.Errorf("position %s has no legal actions: %w", position.ID(), ErrEmptyChildSet)
	}

	var action game.Action
	switch {
	case m.cfg.OnlyRandomMoves:
		action = chooseRandomAction(actions, m.cfg.UseRandomActionType, m.rng)
		log.Info().Str("search", searchID).Int("player", int(player)).Str("action", action.Type()).Msg("played random move")
	case len(actions) == 1:
		action = actions[0]
		log.Info().Str("search", searchID).Int("player", int(player)).Str("action", action.Type()).Msg("skipped search for single legal action")
	default:
		iterations, duration := m.cfg.Budget(len(actions))
		return decision{budget: Budget{Iterations: iterations, Duration: duration}}, nil
	}

	next, err := m.rules.Apply(position.Clone(), action)
	if err != nil {
		return decision{}, fmt.Errorf("failed to apply %s to position %s: %w", action.Type(), position.ID(), err)
	}
	return decision{
		skipped:  true,
		position: next,
		action:   action,
		budget:   Budget{Duration: m.cfg.SkippedSimulation},
	}, nil
}
