// Package pig implements the Pig dice race. Players take turns rolling a die,
// adding the face to a turn total that is banked on hold and lost on a 1.
package pig

import (
	"errors"
	"fmt"
	"math"

	"montecarlo/game"
)

const (
	Faces         = 6
	DefaultTarget = 100
)

var ErrIllegalAction = errors.New("illegal action")

type Position struct {
	Scores  [2]int // Banked scores, indexed by player - 1
	Pending int    // Turn total of the current player
	Turn    game.Player
}

func NewPosition() *Position {
	return &Position{Turn: 1}
}

func (p *Position) ID() string {
	return fmt.Sprintf("%d:%d+%d@%d", p.Scores[0], p.Scores[1], p.Pending, p.Turn)
}

func (p *Position) Clone() game.Position {
	c := *p
	return &c
}

func (p *Position) Score(player game.Player) int {
	return p.Scores[player-1]
}

type Hold struct {
	game.Normal
}

func (Hold) Type() string { return "hold" }

type Roll struct {
	game.Chance
	Face int
}

func (Roll) Type() string { return "roll" }

func NewRoll(face int) Roll {
	return Roll{Chance: game.Chance{P: 1.0 / Faces}, Face: face}
}

// Rules reports its verdicts with the embedded Markers.
type Rules struct {
	game.Markers
	Target int
}

func NewRules(target int) *Rules {
	return &Rules{Markers: game.DefaultMarkers, Target: target}
}

func position(p game.Position) *Position {
	pos, ok := p.(*Position)
	if !ok {
		panic("unexpected position type")
	}
	return pos
}

func other(player game.Player) game.Player {
	return 3 - player
}

// LegalActions offers hold once something is at stake, and the die's faces.
func (r *Rules) LegalActions(p game.Position) []game.Action {
	if r.Status(p, false) != r.Ongoing {
		return nil
	}
	pos := position(p)
	actions := make([]game.Action, 0, Faces+1)
	if pos.Pending > 0 {
		actions = append(actions, Hold{})
	}
	for face := 1; face <= Faces; face++ {
		actions = append(actions, NewRoll(face))
	}
	return actions
}

func (r *Rules) Apply(p game.Position, a game.Action) (game.Position, error) {
	next := position(p.Clone())
	switch a := a.(type) {
	case Hold:
		if next.Pending == 0 {
			return nil, fmt.Errorf("hold with nothing at stake: %w", ErrIllegalAction)
		}
		next.Scores[next.Turn-1] += next.Pending
		next.Pending = 0
		next.Turn = other(next.Turn)
	case Roll:
		if a.Face < 1 || a.Face > Faces {
			return nil, fmt.Errorf("roll of %d: %w", a.Face, ErrIllegalAction)
		}
		if a.Face == 1 {
			next.Pending = 0
			next.Turn = other(next.Turn)
		} else {
			next.Pending += a.Face
		}
	default:
		return nil, fmt.Errorf("unknown action %T: %w", a, ErrIllegalAction)
	}
	return next, nil
}

func (r *Rules) CurrentPlayer(p game.Position) game.Player {
	return position(p).Turn
}

// Status awards the game to the first banked score reaching the target. A
// forced verdict goes to the higher banked score.
func (r *Rules) Status(p game.Position, forceTerminal bool) game.Status {
	pos := position(p)
	for _, player := range []game.Player{1, 2} {
		if pos.Score(player) >= r.Target {
			return game.Winner(player)
		}
	}
	if !forceTerminal {
		return r.Ongoing
	}
	switch {
	case pos.Scores[0] > pos.Scores[1]:
		return game.Winner(1)
	case pos.Scores[1] > pos.Scores[0]:
		return game.Winner(2)
	}
	return r.Draw
}

// VirtualWinBonus rewards wide margins, up to 0.1 for a full target lead.
func (r *Rules) VirtualWinBonus(p game.Position) float64 {
	pos := position(p)
	margin := math.Abs(float64(pos.Scores[0] - pos.Scores[1]))
	return 0.1 * math.Min(margin/float64(r.Target), 1)
}
