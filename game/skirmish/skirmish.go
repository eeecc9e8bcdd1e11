// Package skirmish implements a battle over a single Risk border. The player to
// move attacks with up to three dice or fortifies and passes the turn. Dice
// are resolved by chance outcomes with exact probabilities.
package skirmish

import (
	"errors"
	"fmt"
	"math"

	"montecarlo/game"
)

var ErrIllegalAction = errors.New("illegal action")

type Phase int

const (
	DeclarePhase Phase = iota
	BattlePhase
)

type Position struct {
	Troops [2]int // Indexed by player - 1
	Turn   game.Player
	Phase  Phase
	Dice   int // Attacker dice of the declared attack
}

func NewPosition(troops1, troops2 int) *Position {
	return &Position{Troops: [2]int{troops1, troops2}, Turn: 1}
}

func (p *Position) ID() string {
	return fmt.Sprintf("%d:%d@%d/%d/%d", p.Troops[0], p.Troops[1], p.Turn, p.Phase, p.Dice)
}

func (p *Position) Clone() game.Position {
	c := *p
	return &c
}

func (p *Position) troops(player game.Player) *int {
	return &p.Troops[player-1]
}

func opponent(player game.Player) game.Player {
	return 3 - player
}

// Attack declares an attack. The dice counts share a group node.
type Attack struct {
	game.Grouped
	Dice int
}

func (Attack) Type() string { return "attack" }

// Fortify reinforces the border by one troop and ends the turn.
type Fortify struct {
	game.Normal
}

func (Fortify) Type() string { return "fortify" }

// Battle is one result of a declared attack.
type Battle struct {
	game.Chance
	AttackerLosses int
	DefenderLosses int
}

func (Battle) Type() string { return "battle" }

// Rules reports its verdicts with the embedded Markers.
type Rules struct {
	game.Markers
	Cap      int // Troop limit for fortification
	outcomes map[[2]int][]Battle
}

func NewRules(troopCap int) *Rules {
	r := &Rules{Markers: game.DefaultMarkers, Cap: troopCap, outcomes: make(map[[2]int][]Battle)}
	for attack := 1; attack <= MaxAttackDice; attack++ {
		for defend := 1; defend <= MaxDefendDice; defend++ {
			r.outcomes[[2]int{attack, defend}] = battleOutcomes(attack, defend)
		}
	}
	return r
}

// Outcomes returns the possible results of attackDice against defendDice.
func (r *Rules) Outcomes(attackDice, defendDice int) []Battle {
	return r.outcomes[[2]int{attackDice, defendDice}]
}

func position(p game.Position) *Position {
	pos, ok := p.(*Position)
	if !ok {
		panic("unexpected position type")
	}
	return pos
}

func (r *Rules) LegalActions(p game.Position) []game.Action {
	if r.Status(p, false) != r.Ongoing {
		return nil
	}
	pos := position(p)

	var actions []game.Action
	switch pos.Phase {
	case DeclarePhase:
		// One troop must stay behind
		for dice := 1; dice <= min(MaxAttackDice, *pos.troops(pos.Turn)-1); dice++ {
			actions = append(actions, Attack{Dice: dice})
		}
		actions = append(actions, Fortify{})
	case BattlePhase:
		defend := min(MaxDefendDice, *pos.troops(opponent(pos.Turn)))
		for _, battle := range r.Outcomes(pos.Dice, defend) {
			actions = append(actions, battle)
		}
	}
	return actions
}

func (r *Rules) Apply(p game.Position, a game.Action) (game.Position, error) {
	next := position(p.Clone())
	attacker := next.troops(next.Turn)
	defender := next.troops(opponent(next.Turn))

	switch a := a.(type) {
	case Attack:
		if next.Phase != DeclarePhase || a.Dice < 1 || a.Dice > MaxAttackDice || a.Dice >= *attacker {
			return nil, fmt.Errorf("attack with %d dice from %s: %w", a.Dice, next.ID(), ErrIllegalAction)
		}
		next.Phase = BattlePhase
		next.Dice = a.Dice
	case Battle:
		if next.Phase != BattlePhase || a.AttackerLosses > next.Dice || a.DefenderLosses > *defender {
			return nil, fmt.Errorf("battle losing %d:%d from %s: %w", a.AttackerLosses, a.DefenderLosses, next.ID(), ErrIllegalAction)
		}
		*attacker -= a.AttackerLosses
		*defender -= a.DefenderLosses
		next.Phase = DeclarePhase
		next.Dice = 0
	case Fortify:
		if next.Phase != DeclarePhase {
			return nil, fmt.Errorf("fortify from %s: %w", next.ID(), ErrIllegalAction)
		}
		*attacker = min(*attacker+1, max(r.Cap, *attacker))
		next.Turn = opponent(next.Turn)
	default:
		return nil, fmt.Errorf("unknown action %T: %w", a, ErrIllegalAction)
	}
	return next, nil
}

func (r *Rules) CurrentPlayer(p game.Position) game.Player {
	return position(p).Turn
}

// Status awards the game to the last army standing. A forced verdict goes to
// the larger army.
func (r *Rules) Status(p game.Position, forceTerminal bool) game.Status {
	pos := position(p)
	switch {
	case pos.Troops[0] == 0:
		return game.Winner(2)
	case pos.Troops[1] == 0:
		return game.Winner(1)
	case !forceTerminal:
		return r.Ongoing
	case pos.Troops[0] > pos.Troops[1]:
		return game.Winner(1)
	case pos.Troops[1] > pos.Troops[0]:
		return game.Winner(2)
	}
	return r.Draw
}

// VirtualWinBonus rewards a lopsided troop balance, up to 0.1.
func (r *Rules) VirtualWinBonus(p game.Position) float64 {
	pos := position(p)
	total := pos.Troops[0] + pos.Troops[1]
	if total == 0 {
		return 0
	}
	return 0.1 * math.Abs(float64(pos.Troops[0]-pos.Troops[1])) / float64(total)
}
