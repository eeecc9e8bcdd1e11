// Package searcher implements Monte Carlo Tree Search over any game.Rules.
//
// A search grows a tree from the current position by repeating selection,
// expansion, a random playout and backpropagation until the budget runs out.
// Stochastic events are modelled by chance nodes whose children carry
// probabilities, and related actions can be clustered under group nodes.
package searcher

import "errors"

var (
	// ErrEmptyChildSet is returned when a child is requested from a childless node.
	ErrEmptyChildSet = errors.New("node has no children")
	// ErrNotAChanceNode is returned when a probability draw targets a non-chance node.
	ErrNotAChanceNode = errors.New("node is not a chance node")
	// ErrProbabilityMassExhausted means the probabilities of a chance node's
	// children do not add up to 1.
	ErrProbabilityMassExhausted = errors.New("chance probabilities do not add up to 1")
	// ErrUnvisitedChild is returned when scores are compared before every
	// child has been simulated at least once.
	ErrUnvisitedChild = errors.New("child has not been visited")
	// ErrUnterminatedPlayout means the rules kept a playout ongoing after the
	// depth limit asked for a verdict.
	ErrUnterminatedPlayout = errors.New("playout did not terminate at depth limit")
)
