package searcher

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"montecarlo/config"
	"montecarlo/experiments/metrics"
	"montecarlo/game"
)

type Option func(mcts *MCTS)

// WithRand injects the random source used by every random decision of the
// search. MCTS is not safe for concurrent use, so neither is the source.
func WithRand(rng *rand.Rand) Option {
	return func(m *MCTS) {
		if rng != nil {
			m.rng = rng
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func WithCollector(collector metrics.Collector) Option {
	return func(m *MCTS) {
		if collector != nil {
			m.metrics = collector
		}
	}
}

type MCTS struct {
	rules   game.Rules
	cfg     config.Config
	rng     *rand.Rand
	metrics metrics.Collector
}

// Result is the move chosen by a search.
type Result struct {
	Position game.Position
	Action   game.Action
	// Skipped is set when the move was played without searching. Budget then
	// holds the configured skipped simulation marker.
	Skipped bool
	Budget  Budget
	Metric  metrics.SearchMetric
}

func NewMCTS(rules game.Rules, cfg config.Config, options ...Option) (*MCTS, error) {
	if rules == nil {
		return nil, errors.New("rules must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search config: %w", err)
	}

	m := &MCTS{ // Default values
		rules:   rules,
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		metrics: metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	return m, nil
}

func (m *MCTS) Config() config.Config {
	return m.cfg
}

func (m *MCTS) Rules() game.Rules {
	return m.rules
}

// FindNextMove searches on behalf of the player to move in position.
func (m *MCTS) FindNextMove(position game.Position) (Result, error) {
	return m.Search(position, m.rules.CurrentPlayer(position))
}

// Search builds a fresh tree rooted at position and returns the best move for
// player. The tree is discarded afterwards.
func (m *MCTS) Search(position game.Position, player game.Player) (Result, error) {
	searchID := uuid.NewString()
	m.metrics.Start(searchID)

	actions := m.rules.LegalActions(position)
	d, err := m.decide(searchID, position, player, actions)
	if err != nil {
		return Result{}, err
	}
	if d.skipped {
		m.metrics.SetSkipped()
		return Result{
			Position: d.position,
			Action:   d.action,
			Skipped:  true,
			Budget:   d.budget,
			Metric:   m.metrics.Complete(0),
		}, nil
	}

	start := time.Now()
	tree := newTree(position, player)
	iterations, err := m.iterate(tree, d.budget)
	if err != nil {
		return Result{}, fmt.Errorf("search %s failed after %d iterations: %w", searchID, iterations, err)
	}

	best, err := m.best(tree, iterations)
	if err != nil {
		return Result{}, fmt.Errorf("search %s: %w", searchID, err)
	}
	stats := tree.Stats(best)

	log.Info().
		Str("search", searchID).
		Int("player", int(player)).
		Int("iterations", iterations).
		Int("nodes", tree.Size()).
		Dur("elapsed", time.Since(start)).
		Str("action", stats.Action.Type()).
		Msgf("simulated %d games", iterations)

	return Result{
		Position: stats.Position.Clone(),
		Action:   stats.Action,
		Budget:   d.budget,
		Metric:   m.metrics.Complete(tree.Size()),
	}, nil
}

// iterate runs simulations until the budget is spent. The budget is checked
// before every iteration.
func (m *MCTS) iterate(tree *Tree, budget Budget) (int, error) {
	limit := budget.start()
	iterations := 0
	for limit.ok(iterations) {
		if err := m.simulate(tree); err != nil {
			return iterations, err
		}
		iterations++
		m.metrics.AddIteration()
	}
	return iterations, nil
}

func (m *MCTS) simulate(tree *Tree) error {
	promising, err := m.selectPromising(tree)
	if err != nil {
		return err
	}

	if m.rules.Status(tree.nodes[promising].stats.Position, false) == m.cfg.OngoingGame {
		if err := m.expand(tree, promising); err != nil {
			return err
		}
		m.metrics.AddExpansion()
	}

	explore := promising
	if tree.hasChildren(promising) {
		if explore, err = tree.RandomChild(promising, m.rng); err != nil {
			return err
		}
		if explore, err = m.resolveRandom(tree, explore); err != nil {
			return err
		}
	}

	result, err := m.rollout(tree.nodes[explore].stats)
	if err != nil {
		return err
	}
	m.backup(tree, explore, result)
	return nil
}

// selectPromising descends from the root to a childless node, drawing through
// chance nodes and following UCT elsewhere.
func (m *MCTS) selectPromising(tree *Tree) (NodeID, error) {
	node := tree.Root()
	var err error
	for tree.hasChildren(node) {
		if tree.IsChance(node) {
			node, err = tree.ChildByProbability(node, m.rng)
		} else {
			node, err = tree.bestChildByUCT(node, m.cfg.LearningRate)
		}
		if err != nil {
			return noParent, err
		}
	}
	return node, nil
}

// resolveRandom steps through container nodes until it reaches an action node.
// Groups are resolved at random: their children have no scores yet.
func (m *MCTS) resolveRandom(tree *Tree, id NodeID) (NodeID, error) {
	var err error
	for err == nil && (tree.IsChance(id) || tree.IsGroup(id)) {
		if tree.IsChance(id) {
			id, err = tree.ChildByProbability(id, m.rng)
		} else {
			id, err = tree.RandomChild(id, m.rng)
		}
	}
	return id, err
}

// backup records the playout result on every node from id up to the root.
func (m *MCTS) backup(tree *Tree, id NodeID, result game.Status) {
	bonus := 0.0
	if m.cfg.UseOtherMetrics {
		bonus = m.rules.VirtualWinBonus(tree.nodes[id].stats.Position)
	}

	for id != noParent {
		n := &tree.nodes[id]
		n.stats.Visits++
		if game.Winner(n.stats.Player) == result {
			n.stats.Score += m.cfg.WinScore + bonus
		} else if result == m.cfg.Draw {
			n.stats.Score += m.cfg.DrawScore + bonus
		}
		id = n.parent
	}
}

func (m *MCTS) best(tree *Tree, iterations int) (NodeID, error) {
	if iterations == 0 {
		return noParent, fmt.Errorf("no iteration completed within budget: %w", ErrUnvisitedChild)
	}
	return tree.ChildWithMaxScore(tree.Root(), m.rng)
}
