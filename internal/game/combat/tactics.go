package combat

import "github.com/cory-johannsen/skirmish/internal/game/gear"

// TacticsOutcome is the result of the pre-combat stance exchange.
type TacticsOutcome int

const (
	TacticsDraw TacticsOutcome = iota
	TacticsWin
	TacticsLose
)

// String returns a human-readable outcome label.
func (o TacticsOutcome) String() string {
	switch o {
	case TacticsWin:
		return "win"
	case TacticsLose:
		return "lose"
	default:
		return "draw"
	}
}

// TacticsResult carries the multipliers the damage formula applies after the
// stance exchange, always expressed from the attacker's perspective.
type TacticsResult struct {
	// Outcome is the attacker's result of the exchange.
	Outcome TacticsOutcome
	// AttackBuff multiplies the attacker's total base power.
	AttackBuff float64
	// DefenseBuff multiplies the defender's defense. Zero nullifies it.
	DefenseBuff float64
	// GuardBreak forces the defender's effective defense to zero for this
	// exchange regardless of DefenseBuff.
	GuardBreak bool
}

// beats reports whether tactic a wins the cycle against b:
// power beats speed, speed beats skill, skill beats power.
func beats(a, b gear.Tactic) bool {
	switch a {
	case gear.TacticPower:
		return b == gear.TacticSpeed
	case gear.TacticSpeed:
		return b == gear.TacticSkill
	case gear.TacticSkill:
		return b == gear.TacticPower
	}
	return false
}

// ResolveTactics resolves the stance exchange between attacker and defender.
// Identical tactics draw; otherwise exactly one side wins the cycle.
//
// Postcondition: Win yields AttackBuff 1.2, DefenseBuff 1.1, GuardBreak true.
// Lose yields AttackBuff 0.9, DefenseBuff 0.0, GuardBreak false.
// Draw yields AttackBuff 1.0, DefenseBuff 1.0, GuardBreak false.
// The relation is antisymmetric: ResolveTactics(a, b) wins iff
// ResolveTactics(b, a) loses, and draws occur iff a == b.
func ResolveTactics(attacker, defender gear.Tactic) TacticsResult {
	switch {
	case attacker == defender:
		return TacticsResult{Outcome: TacticsDraw, AttackBuff: 1.0, DefenseBuff: 1.0}
	case beats(attacker, defender):
		return TacticsResult{Outcome: TacticsWin, AttackBuff: 1.2, DefenseBuff: 1.1, GuardBreak: true}
	default:
		return TacticsResult{Outcome: TacticsLose, AttackBuff: 0.9, DefenseBuff: 0.0}
	}
}
