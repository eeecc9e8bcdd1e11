package game

// Player identifies a participant. Players are numbered from 1.
type Player int

// Status is the verdict of Rules.Status: either the ongoing marker, the draw
// marker or the winning Player.
type Status int

const (
	Ongoing Status = -1
	Draw    Status = 0
)

// Markers are the statuses a game reports while unfinished and when drawn.
// Both must stay below 1 so they never collide with a Player.
type Markers struct {
	Ongoing Status
	Draw    Status
}

var DefaultMarkers = Markers{Ongoing: Ongoing, Draw: Draw}

// Winner reports the status of a game won by p.
func Winner(p Player) Status {
	return Status(p)
}

// Position should be treated as immutable by the searcher. Clone must return a
// deep copy so that branches of the search tree never share mutable state.
type Position interface {
	ID() string
	Clone() Position
}

// Rules is the game model consumed by the searcher. Implementations must be
// safe for concurrent use and must never mutate the Position they are given.
type Rules interface {
	LegalActions(p Position) []Action
	// Apply returns the position reached by playing a from p.
	Apply(p Position, a Action) (Position, error)
	CurrentPlayer(p Position) Player
	// Status renders a verdict for p. When forceTerminal is set the rollout
	// depth is exhausted and the result must not be ongoing.
	Status(p Position, forceTerminal bool) Status
	// VirtualWinBonus adds domain knowledge to a playout result. Only called
	// when the searcher is configured to use other metrics.
	VirtualWinBonus(p Position) float64
}
