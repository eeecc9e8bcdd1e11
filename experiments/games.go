package experiments

import (
	"fmt"

	"golang.org/x/exp/slices"

	"montecarlo/game"
	"montecarlo/game/nim"
	"montecarlo/game/pig"
	"montecarlo/game/skirmish"
)

// Game is a reference game experiments can be played on. Rules report their
// verdicts with Markers.
type Game struct {
	Name    string
	Rules   game.Rules
	Markers game.Markers
	Start   func() game.Position
}

var games = map[string]func(game.Markers) Game{
	"pig": func(m game.Markers) Game {
		rules := pig.NewRules(pig.DefaultTarget)
		rules.Markers = m
		return Game{Name: "pig", Rules: rules, Markers: m, Start: func() game.Position { return pig.NewPosition() }}
	},
	"nim": func(m game.Markers) Game {
		rules := nim.NewRules()
		rules.Markers = m
		return Game{Name: "nim", Rules: rules, Markers: m, Start: func() game.Position { return nim.NewPosition(3, 4, 5) }}
	},
	"skirmish": func(m game.Markers) Game {
		rules := skirmish.NewRules(12)
		rules.Markers = m
		return Game{Name: "skirmish", Rules: rules, Markers: m, Start: func() game.Position { return skirmish.NewPosition(6, 6) }}
	},
}

func GameNames() []string {
	names := make([]string, 0, len(games))
	for name := range games {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LookupGame builds the named game reporting its verdicts with markers,
// usually config.Config.Markers.
func LookupGame(name string, markers game.Markers) (Game, error) {
	newGame, ok := games[name]
	if !ok {
		return Game{}, fmt.Errorf("unknown game %q, expected one of %v", name, GameNames())
	}
	return newGame(markers), nil
}
