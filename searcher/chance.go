package searcher

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Absorbs rounding when probabilities such as 1/6 are accumulated.
const massTolerance = 1e-9

// ChildByProbability draws a child of a chance node, weighted by the
// children's probabilities.
func (t *Tree) ChildByProbability(id NodeID, rng *rand.Rand) (NodeID, error) {
	if !t.nodes[id].isChance {
		return noParent, fmt.Errorf("probability draw on node %d: %w", id, ErrNotAChanceNode)
	}
	return t.pickByProbability(id, rng.Float64())
}

// pickByProbability returns the first child whose cumulative probability
// reaches the draw r.
func (t *Tree) pickByProbability(id NodeID, r float64) (NodeID, error) {
	children := t.nodes[id].children
	if len(children) == 0 {
		return noParent, fmt.Errorf("probability draw on node %d: %w", id, ErrEmptyChildSet)
	}

	cumulative := 0.0
	for _, child := range children {
		cumulative += t.nodes[child].stats.Probability
		if r <= cumulative {
			return child, nil
		}
	}
	if r <= cumulative+massTolerance {
		return children[len(children)-1], nil
	}

	kind := ""
	if action := t.nodes[children[0]].stats.Action; action != nil {
		kind = action.Type()
	}
	return noParent, fmt.Errorf("chance node %d (%s) drew %.6f from total mass %.6f: %w",
		id, kind, r, cumulative, ErrProbabilityMassExhausted)
}
