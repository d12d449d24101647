package combat

import (
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/rng"
)

// criticalMultiplier is applied to the final damage on a critical hit.
const criticalMultiplier = 1.5

// Breakdown records every intermediate value of one damage calculation for
// observability and test verification. It is never consumed downstream.
type Breakdown struct {
	TotalBasePower   int
	AttackBuff       float64
	BuffedPower      float64
	DefenseBuff      float64
	GuardBreak       bool
	EffectiveDefense float64
	ElementalMod     float64
	PhysicsMod       float64
	CriticalMod      float64
	Raw              float64
}

// DamageResult is the outcome of one attack exchange.
type DamageResult struct {
	// Final is the integer damage to apply. Never below 1.
	Final int
	// Critical reports whether the critical roll succeeded.
	Critical bool
	// Breakdown holds all intermediate values of the calculation.
	Breakdown Breakdown
}

// CalculateDamage runs the fixed-order damage formula for one exchange:
//
//  1. total base power = attacker base power + symbol power
//  2. buffed power = total base power * tactics attack buff
//  3. effective defense = 0 when guard broken or the defense buff is zero,
//     otherwise defender defense * tactics defense buff
//  4. critical roll against attacker.CriticalRate (multiplier 1.5)
//  5. final = floor(buffed power - effective defense, scaled by the
//     elemental, physics, and critical multipliers)
//  6. floor: results below 1 clamp to 1
//
// Both affinity modifiers are derived from the same snapshot pair passed in.
//
// Precondition: src must be non-nil.
// Postcondition: Final >= 1 regardless of inputs; neither snapshot is mutated.
func CalculateDamage(attacker, defender Snapshot, tr TacticsResult, src rng.Source) DamageResult {
	mods := ResolveModifiers(attacker.Symbol, defender.Armor)

	totalBase := attacker.BasePower + attacker.SymbolPower()
	buffed := float64(totalBase) * tr.AttackBuff

	var effDefense float64
	if !tr.GuardBreak && tr.DefenseBuff != 0 {
		effDefense = float64(defender.Defense) * tr.DefenseBuff
	}

	critical := rng.Chance(src, attacker.CriticalRate)
	critMod := 1.0
	if critical {
		critMod = criticalMultiplier
	}

	raw := (buffed - effDefense) * mods.Elemental * mods.Physics * critMod
	final := int(math.Floor(raw))
	if final < 1 {
		final = 1
	}

	return DamageResult{
		Final:    final,
		Critical: critical,
		Breakdown: Breakdown{
			TotalBasePower:   totalBase,
			AttackBuff:       tr.AttackBuff,
			BuffedPower:      buffed,
			DefenseBuff:      tr.DefenseBuff,
			GuardBreak:       tr.GuardBreak,
			EffectiveDefense: effDefense,
			ElementalMod:     mods.Elemental,
			PhysicsMod:       mods.Physics,
			CriticalMod:      critMod,
			Raw:              raw,
		},
	}
}
