package game

// Kind enumerates the closed set of action variants.
type Kind int

const (
	NormalKind Kind = iota
	ChanceKind
	GroupedKind
)

func (k Kind) String() string {
	switch k {
	case NormalKind:
		return "normal"
	case ChanceKind:
		return "chance"
	case GroupedKind:
		return "grouped"
	}
	return "unknown"
}

// Variant is what the searcher knows about an action beyond its type.
type Variant struct {
	Kind        Kind
	Probability float64
}

// Action is implemented by embedding exactly one of Normal, Chance or Grouped.
// Type names the action class: actions sharing a Type share a chance node,
// a group node and a slot in random action type selection.
type Action interface {
	Type() string
	variant() Variant
}

// Normal marks an action that applies directly to a position.
type Normal struct{}

func (Normal) variant() Variant { return Variant{Kind: NormalKind} }

// Chance marks one outcome of a stochastic event.
type Chance struct {
	P float64
}

func (c Chance) variant() Variant { return Variant{Kind: ChanceKind, Probability: c.P} }

// Grouped marks an action clustered with the other actions of its Type under a
// single decision point.
type Grouped struct{}

func (Grouped) variant() Variant { return Variant{Kind: GroupedKind} }

func VariantOf(a Action) Variant {
	return a.variant()
}

func IsChance(a Action) bool {
	return a != nil && a.variant().Kind == ChanceKind
}

func IsGrouped(a Action) bool {
	return a != nil && a.variant().Kind == GroupedKind
}

// Probability returns the probability of a chance action and 0 otherwise.
func Probability(a Action) float64 {
	if !IsChance(a) {
		return 0
	}
	return a.variant().Probability
}

// DrawOutcome returns the outcome of event's stochastic event that r, a
// uniform draw in [0, 1), falls on among the chance actions in actions.
// Events that are not chance actions are returned as is.
func DrawOutcome(actions []Action, event Action, r float64) Action {
	if !IsChance(event) {
		return event
	}
	cumulative := 0.0
	last := event
	for _, outcome := range actions {
		if !IsChance(outcome) || outcome.Type() != event.Type() {
			continue
		}
		cumulative += Probability(outcome)
		last = outcome
		if r < cumulative {
			return outcome
		}
	}
	return last
}
