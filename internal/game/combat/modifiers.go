package combat

import "github.com/cory-johannsen/skirmish/internal/game/gear"

// Modifiers holds the two independent multiplicative affinity factors.
// They are computed together from one attack/defense snapshot pair so that
// neither phase can observe state the other did not.
type Modifiers struct {
	// Elemental is the element-cycle multiplier (0.5, 1.0, or 1.5).
	Elemental float64
	// Physics is the attack-type vs armor-class multiplier (0.8, 1.0, or 1.2).
	Physics float64
}

// elementBeats reports whether attacker's element has the advantage in the
// cycle fire → wind → earth → water → fire.
func elementBeats(attacker, defender gear.Element) bool {
	switch attacker {
	case gear.ElementFire:
		return defender == gear.ElementWind
	case gear.ElementWind:
		return defender == gear.ElementEarth
	case gear.ElementEarth:
		return defender == gear.ElementWater
	case gear.ElementWater:
		return defender == gear.ElementFire
	}
	return false
}

// elementalModifier computes the elemental phase multiplier.
// None on either side is always neutral; matching elements dampen to 0.5.
func elementalModifier(attacker, defender gear.Element) float64 {
	switch {
	case attacker == gear.ElementNone || defender == gear.ElementNone:
		return 1.0
	case attacker == defender:
		return 0.5
	case elementBeats(attacker, defender):
		return 1.5
	default:
		return 1.0
	}
}

// physicsModifier computes the attack-type vs armor multiplier:
// slash beats light and loses to heavy; strike beats heavy and loses to
// medium; shot beats medium and loses to light; magic beats heavy and loses
// to magic-resistant armor. Every other pairing is neutral.
func physicsModifier(attack gear.AttackType, armor gear.Armor) float64 {
	class := armor.Class()
	switch attack {
	case gear.AttackSlash:
		switch class {
		case gear.ArmorLight:
			return 1.2
		case gear.ArmorHeavy:
			return 0.8
		}
	case gear.AttackStrike:
		switch class {
		case gear.ArmorHeavy:
			return 1.2
		case gear.ArmorMedium:
			return 0.8
		}
	case gear.AttackShot:
		switch class {
		case gear.ArmorMedium:
			return 1.2
		case gear.ArmorLight:
			return 0.8
		}
	case gear.AttackMagic:
		if armor.MagicResist() {
			return 0.8
		}
		if class == gear.ArmorHeavy {
			return 1.2
		}
	}
	return 1.0
}

// ResolveModifiers computes both affinity multipliers for symbol against
// armor. A nil symbol is treated as a neutral slash attack with no element.
//
// Postcondition: Idempotent and side-effect free; identical inputs always
// yield identical Modifiers and neither input is mutated.
func ResolveModifiers(symbol *gear.Symbol, armor gear.Armor) Modifiers {
	element := gear.ElementNone
	attack := gear.AttackSlash
	if symbol != nil {
		element = symbol.Element
		attack = symbol.AttackType
	}
	return Modifiers{
		Elemental: elementalModifier(element, armor.Element()),
		Physics:   physicsModifier(attack, armor),
	}
}
