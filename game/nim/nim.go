// Package nim implements normal-play Nim: players alternately remove tokens
// from a single heap and whoever takes the last token wins.
package nim

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"montecarlo/game"
)

var ErrIllegalAction = errors.New("illegal action")

type Position struct {
	Heaps []int
	Turn  game.Player
}

func NewPosition(heaps ...int) *Position {
	return &Position{Heaps: slices.Clone(heaps), Turn: 1}
}

func (p *Position) ID() string {
	var b strings.Builder
	for i, heap := range p.Heaps {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(heap))
	}
	fmt.Fprintf(&b, "@%d", p.Turn)
	return b.String()
}

func (p *Position) Clone() game.Position {
	return &Position{Heaps: slices.Clone(p.Heaps), Turn: p.Turn}
}

func (p *Position) empty() bool {
	return !slices.ContainsFunc(p.Heaps, func(heap int) bool { return heap > 0 })
}

// Take removes Count tokens from a heap. Takes from the same heap share a
// group node.
type Take struct {
	game.Grouped
	Heap  int
	Count int
}

func (t Take) Type() string {
	return fmt.Sprintf("take-heap-%d", t.Heap)
}

// Rules reports its verdicts with the embedded Markers.
type Rules struct {
	game.Markers
}

func NewRules() *Rules {
	return &Rules{Markers: game.DefaultMarkers}
}

func position(p game.Position) *Position {
	pos, ok := p.(*Position)
	if !ok {
		panic("unexpected position type")
	}
	return pos
}

func (r *Rules) LegalActions(p game.Position) []game.Action {
	pos := position(p)
	var actions []game.Action
	for heap, tokens := range pos.Heaps {
		for count := 1; count <= tokens; count++ {
			actions = append(actions, Take{Heap: heap, Count: count})
		}
	}
	return actions
}

func (r *Rules) Apply(p game.Position, a game.Action) (game.Position, error) {
	take, ok := a.(Take)
	if !ok {
		return nil, fmt.Errorf("unknown action %T: %w", a, ErrIllegalAction)
	}
	next := position(p.Clone())
	if take.Heap < 0 || take.Heap >= len(next.Heaps) || take.Count < 1 || take.Count > next.Heaps[take.Heap] {
		return nil, fmt.Errorf("take %d from heap %d of %s: %w", take.Count, take.Heap, next.ID(), ErrIllegalAction)
	}
	next.Heaps[take.Heap] -= take.Count
	next.Turn = 3 - next.Turn
	return next, nil
}

func (r *Rules) CurrentPlayer(p game.Position) game.Player {
	return position(p).Turn
}

// Status credits the player who emptied the last heap. Unfinished games are
// drawn when a verdict is forced.
func (r *Rules) Status(p game.Position, forceTerminal bool) game.Status {
	pos := position(p)
	if pos.empty() {
		return game.Winner(3 - pos.Turn)
	}
	if forceTerminal {
		return r.Draw
	}
	return r.Ongoing
}

func (r *Rules) VirtualWinBonus(p game.Position) float64 {
	return 0
}
