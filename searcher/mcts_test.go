package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"montecarlo/config"
	"montecarlo/experiments/metrics"
	"montecarlo/game"
)

func newTestMCTS(t *testing.T, rules game.Rules, cfg config.Config, options ...Option) *MCTS {
	t.Helper()
	m, err := NewMCTS(rules, cfg, append([]Option{WithSeed(7)}, options...)...)
	require.NoError(t, err)
	return m
}

func searchConfig(iterations int) config.Config {
	cfg := config.Default()
	cfg.NumberOfSimulations = iterations
	cfg.SearchDepth = 20
	return cfg
}

func TestNewMCTS(t *testing.T) {
	t.Run("failing without rules", func(t *testing.T) {
		_, err := NewMCTS(nil, config.Default())

		require.Error(t, err)
	})

	t.Run("failing with an invalid config", func(t *testing.T) {
		cfg := config.Default()
		cfg.SearchDepth = 0

		_, err := NewMCTS(&mockRules{}, cfg)

		require.ErrorContains(t, err, "searchDepth")
	})

	t.Run("exposing the config", func(t *testing.T) {
		cfg := searchConfig(42)

		m := newTestMCTS(t, &mockRules{}, cfg)

		require.Equal(t, cfg, m.Config())
	})
}

// line builds root -> a -> b where a was played by player 1 and b by player 2.
func line() (*Tree, NodeID, NodeID) {
	tree := newTree(&mockPosition{id: "r"}, 1)
	a := tree.add(tree.Root(), Stats{Position: &mockPosition{id: "r/a"}, Action: move("a"), Player: 1}, false, false)
	b := tree.add(a, Stats{Position: &mockPosition{id: "r/a/b"}, Action: move("b"), Player: 2}, false, false)
	return tree, a, b
}

func TestBackup(t *testing.T) {
	scores := func(tree *Tree) []float64 {
		var result []float64
		for id := range tree.nodes {
			result = append(result, tree.Stats(NodeID(id)).Score)
		}
		return result
	}

	t.Run("rewarding the nodes of the winner", func(t *testing.T) {
		tree, _, b := line()
		m := newTestMCTS(t, &mockRules{}, config.Default())

		m.backup(tree, b, game.Winner(1))

		require.Equal(t, []float64{1, 1, 0}, scores(tree))
		for id := range tree.nodes {
			require.Equal(t, 1, tree.Stats(NodeID(id)).Visits)
		}
	})

	t.Run("rewarding every node on a draw", func(t *testing.T) {
		tree, _, b := line()
		m := newTestMCTS(t, &mockRules{}, config.Default())

		m.backup(tree, b, game.Draw)

		require.Equal(t, []float64{0.5, 0.5, 0.5}, scores(tree))
	})

	t.Run("adding the virtual win bonus", func(t *testing.T) {
		cfg := config.Default()
		cfg.UseOtherMetrics = true
		tree, _, b := line()
		m := newTestMCTS(t, &mockRules{bonus: 0.25}, cfg)

		m.backup(tree, b, game.Winner(2))
		m.backup(tree, b, game.Draw)

		require.Equal(t, []float64{0.75, 0.75, 2}, scores(tree))
	})

	t.Run("ignoring the bonus unless enabled", func(t *testing.T) {
		tree, _, b := line()
		m := newTestMCTS(t, &mockRules{bonus: 0.25}, config.Default())

		m.backup(tree, b, game.Winner(2))

		require.Equal(t, []float64{0, 0, 1}, scores(tree))
	})

	t.Run("counting visits on containers", func(t *testing.T) {
		tree := newTree(&mockPosition{id: "r"}, 1)
		group := tree.add(tree.Root(), Stats{Player: 1}, false, true)
		member := tree.add(group, Stats{Position: &mockPosition{id: "r/g"}, Action: pick("g", "g"), Player: 1}, false, false)
		m := newTestMCTS(t, &mockRules{}, config.Default())

		m.backup(tree, member, game.Winner(1))

		require.Equal(t, 1, tree.Stats(group).Visits)
		require.Equal(t, 1.0, tree.Stats(group).Score)
		require.Equal(t, 1, tree.Stats(tree.Root()).Visits)
	})
}

// branchingRules mixes groups, chance events and plain actions over three plies.
func TestSelectPromising(t *testing.T) {
	const draws = 2000

	t.Run("drawing through a chance node by probability", func(t *testing.T) {
		tree, _, outcomes := chanceTree(0.1, 0.9)
		// UCT alone would always pick the unvisited unlikely outcome.
		tree.nodes[outcomes[1]].stats.Score = 100
		tree.nodes[outcomes[1]].stats.Visits = 100
		m := newTestMCTS(t, &mockRules{}, config.Default())

		likely := 0
		for i := 0; i < draws; i++ {
			node, err := m.selectPromising(tree)
			require.NoError(t, err)
			require.Contains(t, outcomes, node)
			if node == outcomes[1] {
				likely++
			}
		}

		require.InDelta(t, 0.9, float64(likely)/draws, 0.03)
	})

	t.Run("following UCT through a group", func(t *testing.T) {
		tree := newTree(&mockPosition{id: "root"}, 1)
		tree.nodes[tree.Root()].stats.Visits = 20
		group := tree.add(tree.Root(), Stats{Player: 1, Visits: 20}, false, true)
		leaf(tree, group, "strong", 20, 20)
		fresh := leaf(tree, group, "fresh", 0, 0)
		m := newTestMCTS(t, &mockRules{}, config.Default())

		for i := 0; i < 10; i++ {
			node, err := m.selectPromising(tree)
			require.NoError(t, err)
			require.Equal(t, fresh, node)
		}
	})
}

func TestResolveRandom(t *testing.T) {
	const draws = 3000

	t.Run("reaching every group member regardless of score", func(t *testing.T) {
		tree := newTree(&mockPosition{id: "root"}, 1)
		group := tree.add(tree.Root(), Stats{Player: 1, Visits: 30}, false, true)
		members := []NodeID{
			leaf(tree, group, "best", 30, 30),
			leaf(tree, group, "worst", 0, 30),
			leaf(tree, group, "unvisited", 0, 0),
		}
		m := newTestMCTS(t, &mockRules{}, config.Default())

		counts := make(map[NodeID]int)
		for i := 0; i < draws; i++ {
			node, err := m.resolveRandom(tree, group)
			require.NoError(t, err)
			counts[node]++
		}

		for _, member := range members {
			require.InDelta(t, 1.0/3, float64(counts[member])/draws, 0.04, "member %d", member)
		}
	})

	t.Run("drawing chance outcomes by probability", func(t *testing.T) {
		tree, chance, outcomes := chanceTree(0.25, 0.75)
		m := newTestMCTS(t, &mockRules{}, config.Default())

		first := 0
		for i := 0; i < draws; i++ {
			node, err := m.resolveRandom(tree, chance)
			require.NoError(t, err)
			if node == outcomes[0] {
				first++
			}
		}

		require.InDelta(t, 0.25, float64(first)/draws, 0.03)
	})

	t.Run("keeping an action node", func(t *testing.T) {
		tree := newTree(&mockPosition{id: "root"}, 1)
		a := leaf(tree, tree.Root(), "a", 0, 0)
		m := newTestMCTS(t, &mockRules{}, config.Default())

		node, err := m.resolveRandom(tree, a)

		require.NoError(t, err)
		require.Equal(t, a, node)
	})
}

func branchingRules() *mockRules {
	branch := []game.Action{
		pick("g", "g1"), pick("g", "g2"),
		roll("die", "d1", 0.5), roll("die", "d2", 0.5),
		move("a"), move("b"),
	}
	return &mockRules{
		actions: map[string][]game.Action{
			"r":      branch,
			"r/g1":   branch,
			"r/d2":   branch,
			"r/a":    branch,
			"r/a/b":  branch,
			"r/g1/a": branch,
		},
		statuses: map[string]game.Status{
			"r/b":     game.Winner(1),
			"r/d1":    game.Winner(2),
			"r/g2/a":  game.Draw,
			"r/a/d1":  game.Winner(1),
			"r/g1/d2": game.Winner(2),
		},
		forced: game.Draw,
	}
}

func TestIterate(t *testing.T) {
	t.Run("visits add up across the tree", func(t *testing.T) {
		m := newTestMCTS(t, branchingRules(), searchConfig(500))
		tree := newTree(&mockPosition{id: "r"}, 1)

		iterations, err := m.iterate(tree, Budget{Iterations: 500})

		require.NoError(t, err)
		require.Equal(t, 500, iterations)
		require.Equal(t, 500, tree.Stats(tree.Root()).Visits, "Every simulation should reach the root")
		for i := range tree.nodes {
			id := NodeID(i)
			sum := 0
			for _, child := range tree.Children(id) {
				sum += tree.Stats(child).Visits
			}
			stats := tree.Stats(id)
			if tree.IsChance(id) || tree.IsGroup(id) {
				require.Equal(t, stats.Visits, sum, "Container %d visits should equal its children's", id)
			} else {
				require.GreaterOrEqual(t, stats.Visits, sum, "Node %d visits should cover its children's", id)
			}
			require.LessOrEqual(t, stats.Score, float64(stats.Visits), "Node %d score is bounded by its visits", id)
		}
	})

	t.Run("collecting search metrics", func(t *testing.T) {
		collector := metrics.NewCollector()
		m := newTestMCTS(t, branchingRules(), searchConfig(300), WithCollector(collector))

		result, err := m.Search(&mockPosition{id: "r"}, 1)

		require.NoError(t, err)
		require.NotEmpty(t, result.Metric.SearchID)
		require.Equal(t, 300, result.Metric.Iterations)
		require.Equal(t, 300, result.Metric.FullPlayouts+result.Metric.CutoffPlayouts)
		require.Positive(t, result.Metric.Expansions)
		require.Greater(t, result.Metric.TreeSize, 1)
	})

	t.Run("failing on an exhausted probability mass", func(t *testing.T) {
		rules := &mockRules{
			actions: map[string][]game.Action{"r": {roll("die", "d1", 0.01), roll("die", "d2", 0.01)}},
		}
		m := newTestMCTS(t, rules, searchConfig(200))
		tree := newTree(&mockPosition{id: "r"}, 1)

		_, err := m.iterate(tree, Budget{Iterations: 200})

		require.ErrorIs(t, err, ErrProbabilityMassExhausted)
	})
}

func TestSearch(t *testing.T) {
	t.Run("picking the winning move", func(t *testing.T) {
		rules := &mockRules{
			actions: map[string][]game.Action{"r": {move("lose"), move("win"), move("draw")}},
			statuses: map[string]game.Status{
				"r/lose": game.Winner(2),
				"r/win":  game.Winner(1),
				"r/draw": game.Draw,
			},
		}
		m := newTestMCTS(t, rules, searchConfig(100), WithMetrics())

		result, err := m.Search(&mockPosition{id: "r"}, 1)

		require.NoError(t, err)
		require.False(t, result.Skipped)
		require.Equal(t, "r/win", result.Position.ID())
		require.Equal(t, "win", nameOf(result.Action))
		require.Equal(t, Budget{Iterations: 100}, result.Budget)
		require.Equal(t, 1, result.Metric.Expansions, "Only the root has legal actions")
		require.Equal(t, 100, result.Metric.FullPlayouts)
		require.Equal(t, 4, result.Metric.TreeSize)
	})

	t.Run("avoiding a move the opponent can refute", func(t *testing.T) {
		rules := &mockRules{
			actions: map[string][]game.Action{
				"r":   {move("a"), move("b")},
				"r/a": {move("x"), move("y")},
				"r/b": {move("x"), move("y")},
			},
			statuses: map[string]game.Status{
				"r/a/x": game.Winner(2),
				"r/a/y": game.Winner(1),
				"r/b/x": game.Winner(1),
				"r/b/y": game.Winner(1),
			},
		}
		m := newTestMCTS(t, rules, searchConfig(2000))

		result, err := m.FindNextMove(&mockPosition{id: "r"})

		require.NoError(t, err)
		require.Equal(t, "r/b", result.Position.ID())
	})

	t.Run("preferring a safe draw over an unlikely win", func(t *testing.T) {
		rules := &mockRules{
			actions: map[string][]game.Action{
				"r": {move("safe"), roll("die", "six", 1.0/6), roll("die", "other", 5.0/6)},
			},
			statuses: map[string]game.Status{
				"r/safe":  game.Draw,
				"r/six":   game.Winner(1),
				"r/other": game.Winner(2),
			},
		}
		m := newTestMCTS(t, rules, searchConfig(1000))

		result, err := m.Search(&mockPosition{id: "r"}, 1)

		require.NoError(t, err)
		require.Equal(t, "r/safe", result.Position.ID())
	})

	t.Run("drawing the outcome of a favourable gamble", func(t *testing.T) {
		rules := &mockRules{
			actions: map[string][]game.Action{
				"r": {move("safe"), roll("die", "hit", 5.0/6), roll("die", "miss", 1.0/6)},
			},
			statuses: map[string]game.Status{
				"r/safe": game.Draw,
				"r/hit":  game.Winner(1),
				"r/miss": game.Winner(2),
			},
		}
		m := newTestMCTS(t, rules, searchConfig(1000))

		result, err := m.Search(&mockPosition{id: "r"}, 1)

		require.NoError(t, err)
		require.True(t, game.IsChance(result.Action), "Should commit to the chance event")
		require.Contains(t, []string{"r/hit", "r/miss"}, result.Position.ID())
	})

	t.Run("resolving the best member of a group", func(t *testing.T) {
		rules := &mockRules{
			actions: map[string][]game.Action{"r": {pick("g", "g1"), pick("g", "g2"), move("a")}},
			statuses: map[string]game.Status{
				"r/g1": game.Winner(2),
				"r/g2": game.Winner(1),
				"r/a":  game.Winner(2),
			},
		}
		m := newTestMCTS(t, rules, searchConfig(200))

		result, err := m.Search(&mockPosition{id: "r"}, 1)

		require.NoError(t, err)
		require.Equal(t, "r/g2", result.Position.ID())
	})

	t.Run("returning a copy of the chosen position", func(t *testing.T) {
		rules := &mockRules{
			actions:  map[string][]game.Action{"r": {move("a"), move("b")}},
			statuses: map[string]game.Status{"r/a": game.Winner(1), "r/b": game.Winner(2)},
		}
		m := newTestMCTS(t, rules, searchConfig(50))
		position := &mockPosition{id: "r"}

		result, err := m.Search(position, 1)

		require.NoError(t, err)
		require.Equal(t, "r", position.ID(), "Input position should be left untouched")
		require.Equal(t, "r/a", result.Position.ID())
	})

	t.Run("failing without completed iterations", func(t *testing.T) {
		m := newTestMCTS(t, &mockRules{}, config.Default())
		tree := newTree(&mockPosition{id: "r"}, 1)

		_, err := m.best(tree, 0)

		require.ErrorIs(t, err, ErrUnvisitedChild)
	})
}
