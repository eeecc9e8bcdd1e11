package searcher

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"

	"montecarlo/game"
)

// NodeID is a handle to a node stored in a Tree.
type NodeID int32

const noParent NodeID = -1

// Stats is the statistics record of a node.
type Stats struct {
	Position    game.Position // nil for chance and group nodes
	Action      game.Action   // nil at the root
	Player      game.Player   // Player who moved into this node
	Visits      int
	Score       float64
	Probability float64 // Only meaningful for children of a chance node
}

// clone deep copies the record so that changes to the copy's position are
// never observed by the tree.
func (s Stats) clone() Stats {
	if s.Position != nil {
		s.Position = s.Position.Clone()
	}
	return s
}

type node struct {
	stats    Stats
	parent   NodeID
	children []NodeID
	isChance bool
	isGroup  bool
}

// Tree stores its nodes in a flat arena. Parents are referenced by handle and
// only followed during backpropagation.
type Tree struct {
	nodes []node
}

func newTree(position game.Position, player game.Player) *Tree {
	t := &Tree{nodes: make([]node, 0, 64)}
	t.add(noParent, Stats{Position: position.Clone(), Player: player}, false, false)
	return t
}

func (t *Tree) add(parent NodeID, stats Stats, isChance, isGroup bool) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{
		stats:    stats,
		parent:   parent,
		isChance: isChance,
		isGroup:  isGroup,
	})
	if parent != noParent {
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}
	return id
}

func (t *Tree) Root() NodeID {
	return 0
}

// Size is the number of nodes in the tree, containers included.
func (t *Tree) Size() int {
	return len(t.nodes)
}

func (t *Tree) Stats(id NodeID) Stats {
	return t.nodes[id].stats
}

// Parent returns false for the root.
func (t *Tree) Parent(id NodeID) (NodeID, bool) {
	parent := t.nodes[id].parent
	return parent, parent != noParent
}

func (t *Tree) Children(id NodeID) []NodeID {
	return slices.Clone(t.nodes[id].children)
}

func (t *Tree) IsChance(id NodeID) bool {
	return t.nodes[id].isChance
}

func (t *Tree) IsGroup(id NodeID) bool {
	return t.nodes[id].isGroup
}

func (t *Tree) hasChildren(id NodeID) bool {
	return len(t.nodes[id].children) > 0
}

// RandomChild picks a child uniformly at random.
func (t *Tree) RandomChild(id NodeID, rng *rand.Rand) (NodeID, error) {
	children := t.nodes[id].children
	if len(children) == 0 {
		return noParent, fmt.Errorf("random child of node %d: %w", id, ErrEmptyChildSet)
	}
	return children[rng.Intn(len(children))], nil
}

// ChildWithMaxScore returns the child with the highest average score. Chance
// winners are resolved by a probability draw and group winners by their own
// best child, so the result is always an action node.
func (t *Tree) ChildWithMaxScore(id NodeID, rng *rand.Rand) (NodeID, error) {
	children := t.nodes[id].children
	if len(children) == 0 {
		return noParent, fmt.Errorf("best child of node %d: %w", id, ErrEmptyChildSet)
	}

	best := noParent
	bestScore := math.Inf(-1)
	for _, child := range children {
		stats := t.nodes[child].stats
		if stats.Visits == 0 {
			return noParent, fmt.Errorf("best child of node %d: node %d: %w", id, child, ErrUnvisitedChild)
		}
		score := stats.Score / float64(stats.Visits)
		if best == noParent || score > bestScore {
			best = child
			bestScore = score
		}
	}

	switch {
	case t.nodes[best].isChance:
		return t.ChildByProbability(best, rng)
	case t.nodes[best].isGroup:
		return t.ChildWithMaxScore(best, rng)
	}
	return best, nil
}
