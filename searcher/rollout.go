package searcher

import (
	"fmt"

	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"

	"montecarlo/game"
)

// rollout plays random actions from a copy of stats until the rules render a
// verdict, forcing one once the search depth is exhausted.
func (m *MCTS) rollout(stats Stats) (game.Status, error) {
	state := stats.clone()
	depth := m.cfg.SearchDepth
	status := m.rules.Status(state.Position, false)
	forced := false

	for status == m.cfg.OngoingGame {
		if depth <= 0 {
			forced = true
			if status = m.rules.Status(state.Position, true); status == m.cfg.OngoingGame {
				return status, fmt.Errorf("position %s: %w", state.Position.ID(), ErrUnterminatedPlayout)
			}
			break
		}
		depth--

		next, _, err := m.playRandom(state.Position)
		if err != nil {
			return status, err
		}
		state.Position = next
		state.Player = m.rules.CurrentPlayer(next)
		status = m.rules.Status(next, false)
	}

	if forced {
		m.metrics.AddCutoffPlayout()
	} else {
		m.metrics.AddFullPlayout()
	}
	return status, nil
}

// playRandom applies a random legal action. A position without legal actions
// is returned unchanged.
func (m *MCTS) playRandom(position game.Position) (game.Position, game.Action, error) {
	actions := m.rules.LegalActions(position)
	if len(actions) == 0 {
		return position, nil, nil
	}

	action := chooseRandomAction(actions, m.cfg.UseRandomActionType, m.rng)
	next, err := m.rules.Apply(position, action)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to apply %s to position %s: %w", action.Type(), position.ID(), err)
	}
	return next, action, nil
}

// chooseRandomAction picks uniformly among actions. With byType, an action type
// is drawn first so that types with many actions do not dominate. A chance
// outcome is then redrawn by probability among the outcomes of its event.
func chooseRandomAction(actions []game.Action, byType bool, rng *rand.Rand) game.Action {
	if byType {
		var types []string
		for _, action := range actions {
			if !slices.Contains(types, action.Type()) {
				types = append(types, action.Type())
			}
		}
		kind := types[rng.Intn(len(types))]

		ofKind := make([]game.Action, 0, len(actions))
		for _, action := range actions {
			if action.Type() == kind {
				ofKind = append(ofKind, action)
			}
		}
		actions = ofKind
	}
	action := actions[rng.Intn(len(actions))]
	if !game.IsChance(action) {
		return action
	}
	return game.DrawOutcome(actions, action, rng.Float64())
}
