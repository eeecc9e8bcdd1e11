package agent

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"montecarlo/config"
	"montecarlo/game"
	"montecarlo/game/nim"
	"montecarlo/game/pig"
	"montecarlo/game/skirmish"
	"montecarlo/searcher"
)

func TestRandomAction(t *testing.T) {
	t.Run("drawing chance outcomes by probability", func(t *testing.T) {
		rules := skirmish.NewRules(6)
		position := &skirmish.Position{Troops: [2]int{2, 3}, Turn: 1, Phase: skirmish.BattlePhase, Dice: 1}
		actions := rules.LegalActions(position)
		require.Len(t, actions, 2)

		rng := rand.New(rand.NewSource(1))
		const draws = 10000
		wins := 0
		for i := 0; i < draws; i++ {
			if randomAction(actions, rng).(skirmish.Battle).DefenderLosses == 1 {
				wins++
			}
		}

		// One die against two wins 55 of 216 rolls.
		require.InDelta(t, 55.0/216, float64(wins)/draws, 0.02)
	})

	t.Run("keeping plain actions", func(t *testing.T) {
		actions := nim.NewRules().LegalActions(nim.NewPosition(2))
		rng := rand.New(rand.NewSource(1))

		for i := 0; i < 100; i++ {
			require.Contains(t, actions, randomAction(actions, rng))
		}
	})
}

func TestRandomAgent(t *testing.T) {
	t.Run("playing a legal action", func(t *testing.T) {
		rules := nim.NewRules()
		start := nim.NewPosition(3, 1)

		result, err := NewRandomAgent(rules, 1).FindMove(start)

		require.NoError(t, err)
		require.Contains(t, rules.LegalActions(start), result.Action)
		require.True(t, result.Skipped)
		require.True(t, result.Metric.Skipped)
		require.Equal(t, "3,1@1", start.ID(), "Agent should not mutate the position")
	})

	t.Run("failing without legal actions", func(t *testing.T) {
		_, err := NewRandomAgent(nim.NewRules(), 1).FindMove(nim.NewPosition(0, 0))

		require.ErrorIs(t, err, searcher.ErrEmptyChildSet)
	})
}

// brokenRules reports an impossible chance event so every search fails.
type brokenRules struct {
	*pig.Rules
}

type brokenRoll struct {
	game.Chance
}

func (brokenRoll) Type() string { return "broken" }

func (r brokenRules) LegalActions(p game.Position) []game.Action {
	return []game.Action{brokenRoll{game.Chance{P: 0.001}}, brokenRoll{game.Chance{P: 0.001}}, pig.NewRoll(2)}
}

func (r brokenRules) Apply(p game.Position, a game.Action) (game.Position, error) {
	if _, ok := a.(brokenRoll); ok {
		return p.Clone(), nil
	}
	return r.Rules.Apply(p, a)
}

func TestEvaluationAgent(t *testing.T) {
	t.Run("playing the searched move", func(t *testing.T) {
		cfg := config.Default()
		cfg.NumberOfSimulations = 300
		m, err := searcher.NewMCTS(nim.NewRules(), cfg, searcher.WithSeed(1), searcher.WithMetrics())
		require.NoError(t, err)

		result, err := NewEvaluationAgent(m, 1).FindMove(nim.NewPosition(0, 2))

		require.NoError(t, err)
		require.Equal(t, "0,0@2", result.Position.ID())
		require.Equal(t, 300, result.Metric.Iterations)
	})

	t.Run("falling back to a random action when the search fails", func(t *testing.T) {
		cfg := config.Default()
		cfg.NumberOfSimulations = 100
		cfg.UseRandomActionType = true
		rules := brokenRules{pig.NewRules(20)}
		m, err := searcher.NewMCTS(rules, cfg, searcher.WithSeed(1))
		require.NoError(t, err)
		_, searchErr := m.FindNextMove(pig.NewPosition())
		require.ErrorIs(t, searchErr, searcher.ErrProbabilityMassExhausted)

		result, err := NewEvaluationAgent(m, 1).FindMove(pig.NewPosition())

		require.NoError(t, err)
		require.True(t, result.Skipped)
		require.Contains(t, rules.LegalActions(pig.NewPosition()), result.Action)
	})
}
