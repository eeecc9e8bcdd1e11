package searcher

import (
	"fmt"
	"math"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"montecarlo/game"
)

// outcome is a position reachable in one ply.
type outcome struct {
	position game.Position
	action   game.Action
	player   game.Player // Player who played action
}

func (o outcome) stats() Stats {
	return Stats{
		Position:    o.position,
		Action:      o.action,
		Player:      o.player,
		Probability: game.Probability(o.action),
	}
}

// nextStates applies every legal action of position. The actions are applied
// concurrently; the outcomes keep the order of the legal actions.
func (m *MCTS) nextStates(position game.Position) ([]outcome, error) {
	player := m.rules.CurrentPlayer(position)
	actions := m.rules.LegalActions(position)
	outcomes := make([]outcome, len(actions))

	workers := m.cfg.ExpansionWorkers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, action := range actions {
		i, action := i, action
		g.Go(func() error {
			next, err := m.rules.Apply(position.Clone(), action)
			if err != nil {
				return fmt.Errorf("failed to apply %s to position %s: %w", action.Type(), position.ID(), err)
			}
			outcomes[i] = outcome{position: next, action: action, player: player}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// expand attaches one child per outcome of id's position, clustering grouped
// and chance actions under container nodes when enabled.
func (m *MCTS) expand(t *Tree, id NodeID) error {
	outcomes, err := m.nextStates(t.nodes[id].stats.Position)
	if err != nil {
		return err
	}

	if m.cfg.UseGroupNodes {
		outcomes = createContainers(t, id, outcomes, game.IsGrouped, false, true)
	}
	if m.cfg.UseChanceNodes {
		before := t.Size()
		outcomes = createContainers(t, id, outcomes, game.IsChance, true, false)
		checkMass(t, NodeID(before))
	}
	for _, o := range outcomes {
		t.add(id, o.stats(), false, false)
	}

	log.Debug().Int("node", int(id)).Int("children", len(t.nodes[id].children)).Msg("expanded node")
	return nil
}

// createContainers adds one container per distinct action type among the
// outcomes matching isMember, and returns the outcomes left over.
func createContainers(t *Tree, parent NodeID, outcomes []outcome, isMember func(game.Action) bool, isChance, isGroup bool) []outcome {
	var types []string
	for _, o := range outcomes {
		if isMember(o.action) && !slices.Contains(types, o.action.Type()) {
			types = append(types, o.action.Type())
		}
	}

	for _, kind := range types {
		var members []outcome
		for _, o := range outcomes {
			if isMember(o.action) && o.action.Type() == kind {
				members = append(members, o)
			}
		}
		container := t.add(parent, Stats{Player: members[0].player}, isChance, isGroup)
		for _, o := range members {
			t.add(container, o.stats(), false, false)
		}
	}

	return slices.DeleteFunc(outcomes, func(o outcome) bool {
		return isMember(o.action)
	})
}

// checkMass warns about chance nodes created from index first onwards whose
// probabilities do not add up to 1. The error itself surfaces on a bad draw.
func checkMass(t *Tree, first NodeID) {
	for id := first; int(id) < t.Size(); id++ {
		if !t.nodes[id].isChance {
			continue
		}
		probabilities := make([]float64, len(t.nodes[id].children))
		for i, child := range t.nodes[id].children {
			probabilities[i] = t.nodes[child].stats.Probability
		}
		if mass := floats.Sum(probabilities); math.Abs(mass-1) > massTolerance {
			log.Warn().Int("node", int(id)).Float64("mass", mass).Msg("chance node probabilities do not add up to 1")
		}
	}
}
