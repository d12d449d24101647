package combat

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/rng"
)

const (
	// simRoundCap is the maximum number of rounds before a duel is decided
	// on remaining HP.
	simRoundCap = 20
	// escapeChanceCap bounds the faster side's flee probability.
	escapeChanceCap = 0.5
)

// SimResult is the outcome of a fully simulated, turn-capped duel.
type SimResult struct {
	// WinnerID is the victor's combatant ID; empty on escape or draw.
	WinnerID string
	// Escaped is true when the faster side fled before the first round.
	Escaped bool
	// Draw is true when the round cap was hit with both sides on equal HP.
	Draw bool
	// Rounds is the number of rounds fought.
	Rounds int
	// RemainingHP maps combatant ID to HP at the end of the duel.
	RemainingHP map[string]int
	// Narrative is the ordered human-readable duel log.
	Narrative []string
}

// simDamage is the simplified per-turn formula for simulated duels:
// (weapon power - defender total defense) * (primary stat * level / 128 + 2),
// floored at 1.
func simDamage(attacker, defender Snapshot) int {
	statMultiplier := float64(attacker.PrimaryStat*attacker.Level)/128.0 + 2.0
	dmg := int(float64(attacker.WeaponPower()-defender.Defense) * statMultiplier)
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// escapeChance returns the faster side's flee probability: the relative speed
// gap (fast-slow)/fast, capped at escapeChanceCap. Equal or inverted speeds
// yield zero.
func escapeChance(fast, slow int) float64 {
	if fast <= 0 || fast <= slow {
		return 0
	}
	p := float64(fast-slow) / float64(fast)
	if p > escapeChanceCap {
		p = escapeChanceCap
	}
	return p
}

// Simulate resolves an entire duel synchronously. The faster combatant first
// gets an escape roll; if it fails, alternating turns (faster side first)
// apply the simplified damage formula until one side reaches 0 HP or the
// round cap is hit. On cap, the side with strictly more remaining HP wins and
// equal HP is declared a draw.
//
// Precondition: a.ID != b.ID; src must be non-nil.
// Postcondition: Exactly one of WinnerID != "", Escaped, or Draw holds.
// Neither snapshot is mutated; HP bookkeeping is local to the result.
func Simulate(a, b Snapshot, src rng.Source) SimResult {
	res := SimResult{
		RemainingHP: map[string]int{a.ID: a.HP, b.ID: b.HP},
	}

	first, second := a, b
	if b.Speed > a.Speed {
		first, second = b, a
	}

	if p := escapeChance(first.Speed, second.Speed); p > 0 && rng.Chance(src, p) {
		res.Escaped = true
		res.Narrative = append(res.Narrative,
			fmt.Sprintf("%s flees before the first exchange.", first.Name))
		return res
	}

	hp := map[string]int{a.ID: a.HP, b.ID: b.HP}
	for round := 1; round <= simRoundCap; round++ {
		res.Rounds = round
		for _, pair := range [2][2]Snapshot{{first, second}, {second, first}} {
			attacker, defender := pair[0], pair[1]
			if hp[attacker.ID] <= 0 {
				continue
			}
			dmg := simDamage(attacker, defender)
			hp[defender.ID] -= dmg
			if hp[defender.ID] < 0 {
				hp[defender.ID] = 0
			}
			res.Narrative = append(res.Narrative,
				fmt.Sprintf("round %d: %s hits %s for %d.", round, attacker.Name, defender.Name, dmg))
			if hp[defender.ID] <= 0 {
				res.WinnerID = attacker.ID
				res.Narrative = append(res.Narrative,
					fmt.Sprintf("%s falls. %s wins in round %d.", defender.Name, attacker.Name, round))
				res.RemainingHP = hp
				return res
			}
		}
	}

	// Round cap reached: strictly higher HP wins, equal HP is an explicit
	// draw rather than an arbitrary side preference.
	res.RemainingHP = hp
	switch {
	case hp[first.ID] > hp[second.ID]:
		res.WinnerID = first.ID
	case hp[second.ID] > hp[first.ID]:
		res.WinnerID = second.ID
	default:
		res.Draw = true
	}
	if res.Draw {
		res.Narrative = append(res.Narrative,
			fmt.Sprintf("the duel ends after %d rounds with no victor.", simRoundCap))
	} else {
		res.Narrative = append(res.Narrative,
			fmt.Sprintf("the duel ends after %d rounds on remaining strength.", simRoundCap))
	}
	return res
}
