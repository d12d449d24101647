// Package combat implements the deterministic battle-resolution core: the
// tactics rock-paper-scissors phase, the elemental and physical affinity
// modifiers, the damage formula, and the turn-capped simulated duel. All
// functions are pure with respect to their inputs; randomness is always an
// injected rng.Source.
package combat

import "github.com/cory-johannsen/skirmish/internal/game/gear"

// Snapshot is the per-calculation aggregate of one combatant's stats, built
// fresh from profile data before each calculation. It is never persisted;
// both affinity phases must be computed from the same pair of snapshots so
// a concurrent profile change cannot skew one phase against the other.
type Snapshot struct {
	// ID identifies the combatant for result attribution.
	ID string
	// Name is the display name used in narrative logs.
	Name string
	// BasePower is the combatant's innate attack stat.
	BasePower int
	// CriticalRate is the per-attack critical probability in [0, 1].
	CriticalRate float64
	// Defense is the combatant's flat damage reduction before tactics buffs.
	Defense int
	// Symbol is the equipped attack symbol; nil means bare-handed (power 0).
	Symbol *gear.Symbol
	// Armor is the tag-derived armor descriptor.
	Armor gear.Armor
	// TacticSymbol carries the stance payload; nil defaults to skill.
	TacticSymbol *gear.Symbol
	// HP and MaxHP are the combatant's hit points at snapshot time.
	HP    int
	MaxHP int
	// Level, PrimaryStat, and Speed feed the simulated duel mode.
	Level       int
	PrimaryStat int
	Speed       int
}

// Tactic returns the combatant's stance, defaulting to skill when no tactic
// symbol is equipped.
func (s Snapshot) Tactic() gear.Tactic {
	if s.TacticSymbol == nil {
		return gear.TacticSkill
	}
	return s.TacticSymbol.Tactic
}

// SymbolPower returns the equipped symbol's power, or 0 when bare-handed.
func (s Snapshot) SymbolPower() int {
	if s.Symbol == nil {
		return 0
	}
	return s.Symbol.Power
}

// WeaponPower is the combined attack power used by the simulated duel mode.
//
// Postcondition: Returns BasePower + SymbolPower().
func (s Snapshot) WeaponPower() int {
	return s.BasePower + s.SymbolPower()
}
