package skirmish

import (
	"sort"

	"golang.org/x/exp/slices"

	"montecarlo/game"
)

const (
	Faces         = 6
	MaxAttackDice = 3
	MaxDefendDice = 2
)

// DetermineAttackOutcome compares the highest dice of both sides pairwise,
// ties going to the defender. Rolls must be sorted in descending order.
func DetermineAttackOutcome(attackerRolls, defenderRolls []int) (attackerLosses, defenderLosses int) {
	battles := min(len(attackerRolls), len(defenderRolls))
	for i := 0; i < battles; i++ {
		if attackerRolls[i] > defenderRolls[i] {
			defenderLosses++
		} else {
			attackerLosses++
		}
	}
	return
}

// battleOutcomes enumerates every roll of the given dice and returns one
// Battle per distinct result, ordered by attacker losses.
func battleOutcomes(attackDice, defendDice int) []Battle {
	counts := make(map[[2]int]int)
	total := 0

	rolls := make([]int, attackDice+defendDice)
	var enumerate func(i int)
	enumerate = func(i int) {
		if i == len(rolls) {
			attackerRolls := slices.Clone(rolls[:attackDice])
			defenderRolls := slices.Clone(rolls[attackDice:])
			sort.Sort(sort.Reverse(sort.IntSlice(attackerRolls)))
			sort.Sort(sort.Reverse(sort.IntSlice(defenderRolls)))

			attackerLosses, defenderLosses := DetermineAttackOutcome(attackerRolls, defenderRolls)
			counts[[2]int{attackerLosses, defenderLosses}]++
			total++
			return
		}
		for face := 1; face <= Faces; face++ {
			rolls[i] = face
			enumerate(i + 1)
		}
	}
	enumerate(0)

	outcomes := make([]Battle, 0, len(counts))
	for losses, count := range counts {
		outcomes = append(outcomes, Battle{
			Chance:         game.Chance{P: float64(count) / float64(total)},
			AttackerLosses: losses[0],
			DefenderLosses: losses[1],
		})
	}
	slices.SortFunc(outcomes, func(a, b Battle) int {
		return a.AttackerLosses - b.AttackerLosses
	})
	return outcomes
}
