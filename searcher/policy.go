package searcher

import (
	"fmt"
	"math"
)

// uct scores the children of one parent: q/n + c*sqrt(ln(N)/n).
type uct struct {
	c    float64
	logN float64
}

func newUCT(c float64, parentVisits int) uct {
	return uct{c: c, logN: math.Log(float64(parentVisits))}
}

// evaluate prioritises unvisited children over every visited one.
func (u uct) evaluate(score float64, visits int) float64 {
	if visits == 0 {
		return math.MaxFloat64
	}
	n := float64(visits)
	return score/n + u.c*math.Sqrt(u.logN/n)
}

func uctScore(c float64, parentVisits int, score float64, visits int) float64 {
	return newUCT(c, parentVisits).evaluate(score, visits)
}

// bestChildByUCT returns the child with the highest UCT value. Ties go to the
// earliest child.
func (t *Tree) bestChildByUCT(id NodeID, c float64) (NodeID, error) {
	children := t.nodes[id].children
	if len(children) == 0 {
		return noParent, fmt.Errorf("uct selection on node %d: %w", id, ErrEmptyChildSet)
	}

	policy := newUCT(c, t.nodes[id].stats.Visits)
	best := children[0]
	bestScore := math.Inf(-1)
	for _, child := range children {
		stats := t.nodes[child].stats
		if score := policy.evaluate(stats.Score, stats.Visits); score > bestScore {
			best = child
			bestScore = score
		}
	}
	return best, nil
}
