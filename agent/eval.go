package agent

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"montecarlo/game"
	"montecarlo/searcher"
)

type evaluationAgent struct {
	mcts *searcher.MCTS
	rng  *rand.Rand
}

// NewEvaluationAgent returns an agent that plays the move found by mcts. A
// failed search falls back to a random legal action.
func NewEvaluationAgent(mcts *searcher.MCTS, seed uint64) Agent {
	return &evaluationAgent{mcts: mcts, rng: rand.New(rand.NewSource(seed))}
}

func (a *evaluationAgent) FindMove(position game.Position) (searcher.Result, error) {
	result, err := a.mcts.FindNextMove(position)
	if err == nil {
		return result, nil
	}

	log.Warn().Err(err).Str("position", position.ID()).Msg("search failed, playing a random legal action")
	fallback, fallbackErr := playRandom(a.mcts.Rules(), position, a.rng)
	if fallbackErr != nil {
		return searcher.Result{}, fmt.Errorf("%w (fallback: %w)", err, fallbackErr)
	}
	return fallback, nil
}

type randomAgent struct {
	rules game.Rules
	rng   *rand.Rand
}

// NewRandomAgent returns an agent playing uniformly random legal actions.
func NewRandomAgent(rules game.Rules, seed uint64) Agent {
	return &randomAgent{rules: rules, rng: rand.New(rand.NewSource(seed))}
}

func (a *randomAgent) FindMove(position game.Position) (searcher.Result, error) {
	return playRandom(a.rules, position, a.rng)
}

func playRandom(rules game.Rules, position game.Position, rng *rand.Rand) (searcher.Result, error) {
	start := time.Now()
	actions := rules.LegalActions(position)
	if len(actions) == 0 {
		return searcher.Result{}, fmt.Errorf("position %s: %w", position.ID(), searcher.ErrEmptyChildSet)
	}

	action := randomAction(actions, rng)
	next, err := rules.Apply(position.Clone(), action)
	if err != nil {
		return searcher.Result{}, fmt.Errorf("failed to apply %s to position %s: %w", action.Type(), position.ID(), err)
	}

	result := searcher.Result{Position: next, Action: action, Skipped: true}
	result.Metric.Skipped = true
	result.Metric.Duration = time.Since(start)
	return result, nil
}
