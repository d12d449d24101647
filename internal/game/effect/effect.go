// Package effect implements the data-driven effect dispatcher used by
// skills, buildings, and items. Catalog entries arrive as tagged effect
// specs; the dispatcher executes them in order against a mutable battle
// context, tolerating unknown codes and per-entry handler failures so that
// one malformed catalog record never aborts a whole resolution.
package effect

import "github.com/cory-johannsen/skirmish/internal/game/gear"

// Code identifies an effect handler. Catalog strings are parsed into this
// closed set at the boundary; anything unrecognised maps to CodeUnknown.
type Code int

const (
	CodeUnknown Code = iota
	CodeDamagePhysical
	CodeDamageMagic
	CodeHeal
	CodeBuffStat
	CodeDebuffStat
	CodeApplyStatus
	CodeEconomyGenerate
	CodeEconomyConsume
	CodeEconomyBonus
	CodeSummonUnit
	CodeTeleport
	CodeShield
)

var codeNames = map[Code]string{
	CodeUnknown:         "unknown",
	CodeDamagePhysical:  "damage_physical",
	CodeDamageMagic:     "damage_magic",
	CodeHeal:            "heal",
	CodeBuffStat:        "buff_stat",
	CodeDebuffStat:      "debuff_stat",
	CodeApplyStatus:     "apply_status",
	CodeEconomyGenerate: "economy_generate",
	CodeEconomyConsume:  "economy_consume",
	CodeEconomyBonus:    "economy_bonus",
	CodeSummonUnit:      "summon_unit",
	CodeTeleport:        "teleport",
	CodeShield:          "shield",
}

// String returns the catalog name for the code.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCode maps a catalog effect string to a Code, falling back to
// CodeUnknown for anything unrecognised.
func ParseCode(s string) Code {
	for code, name := range codeNames {
		if name == s && code != CodeUnknown {
			return code
		}
	}
	return CodeUnknown
}

// Trigger is a timing tag on an effect entry. The empty trigger marks an
// untagged entry, which runs only when no trigger filter is applied.
type Trigger string

const (
	TriggerOnAttack Trigger = "on_attack"
	TriggerOnDefend Trigger = "on_defend"
	TriggerOnTurn   Trigger = "on_turn"
	TriggerOnBuild  Trigger = "on_build"
)

// Params carries the effect-specific parameters of one catalog entry.
// Only the fields relevant to a given code are read by its handler.
type Params struct {
	// Power scales damage effects against the attacker's relevant stat.
	Power float64
	// Element keys the defender's resistance lookup for damage effects.
	Element gear.Element
	// CritChance is the damage handler's doubling probability in [0, 1].
	CritChance float64
	// Stat names the stat a buff/debuff mutates.
	Stat string
	// Amount is the flat magnitude for heal, buff, economy, and shield.
	Amount float64
	// Percent switches buff/debuff from flat delta to percent-of-current.
	Percent bool
	// Chance is the apply-status success probability in [0, 1].
	Chance float64
	// StatusID and Duration describe the status a successful trial applies.
	StatusID string
	Duration int
	// Resource names the player resource economy effects mutate.
	Resource string
	// X and Y are the teleport destination.
	X, Y int
	// SummonID names the unit a summon effect produces.
	SummonID string
}

// Spec is one ordered entry of an effect list. Owned by the catalog record
// that carries it; the dispatcher never persists it.
type Spec struct {
	Code    Code
	Trigger Trigger
	Params  Params
}
