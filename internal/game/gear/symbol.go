// Package gear models the equippable combat symbols, the loadout slots that
// hold them, and the tag-based armor descriptors that combat resolution reads.
// Symbol data originates from the external equipment catalog; this package
// owns the invariants, not the content.
package gear

import "fmt"

// Kind classifies a combat symbol.
type Kind int

const (
	KindPhysical Kind = iota
	KindMagic
	KindPassive
)

// String returns a human-readable kind label.
func (k Kind) String() string {
	switch k {
	case KindPhysical:
		return "physical"
	case KindMagic:
		return "magic"
	case KindPassive:
		return "passive"
	default:
		return "unknown"
	}
}

// Valid reports whether k is a recognised symbol kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPhysical, KindMagic, KindPassive:
		return true
	}
	return false
}

// Element is a combat symbol's elemental alignment.
type Element int

const (
	ElementNone Element = iota
	ElementFire
	ElementWind
	ElementEarth
	ElementWater
)

// String returns a human-readable element label.
func (e Element) String() string {
	switch e {
	case ElementFire:
		return "fire"
	case ElementWind:
		return "wind"
	case ElementEarth:
		return "earth"
	case ElementWater:
		return "water"
	default:
		return "none"
	}
}

// Tactic is the rock-paper-scissors stance carried in a symbol's effect payload.
type Tactic int

const (
	TacticSkill Tactic = iota
	TacticPower
	TacticSpeed
)

// String returns a human-readable tactic label.
func (t Tactic) String() string {
	switch t {
	case TacticPower:
		return "power"
	case TacticSpeed:
		return "speed"
	default:
		return "skill"
	}
}

// AttackType classifies the physical delivery of a symbol's attack.
type AttackType int

const (
	AttackSlash AttackType = iota
	AttackStrike
	AttackShot
	AttackMagic
)

// String returns a human-readable attack type label.
func (a AttackType) String() string {
	switch a {
	case AttackStrike:
		return "strike"
	case AttackShot:
		return "shot"
	case AttackMagic:
		return "magic"
	default:
		return "slash"
	}
}

// ParseKind maps a catalog kind label to a Kind.
// Unrecognised or missing values default to KindPhysical.
func ParseKind(s string) Kind {
	switch s {
	case "magic":
		return KindMagic
	case "passive":
		return KindPassive
	default:
		return KindPhysical
	}
}

// ParseElement maps a catalog element label to an Element.
// Unrecognised or missing values default to ElementNone.
func ParseElement(s string) Element {
	switch s {
	case "fire":
		return ElementFire
	case "wind":
		return ElementWind
	case "earth":
		return ElementEarth
	case "water":
		return ElementWater
	default:
		return ElementNone
	}
}

// ParseTactic maps a catalog payload value to a Tactic.
// Unrecognised or missing values default to TacticSkill.
func ParseTactic(s string) Tactic {
	switch s {
	case "power":
		return TacticPower
	case "speed":
		return TacticSpeed
	default:
		return TacticSkill
	}
}

// ParseAttackType maps a catalog payload value to an AttackType.
// Unrecognised or missing values default to AttackSlash.
func ParseAttackType(s string) AttackType {
	switch s {
	case "strike":
		return AttackStrike
	case "shot":
		return AttackShot
	case "magic":
		return AttackMagic
	default:
		return AttackSlash
	}
}

// Symbol is an equipped combat move. Immutable once constructed; all fields
// are fixed at creation and Clone produces a fully independent copy.
type Symbol struct {
	// ID is the unique catalog identifier. Immutable.
	ID string
	// Kind classifies the symbol (physical, magic, passive).
	Kind Kind
	// Element is the symbol's elemental alignment.
	Element Element
	// Power is the symbol's base attack contribution. Never negative.
	Power int
	// Tactic is the stance extracted from the effect payload (default skill).
	Tactic Tactic
	// AttackType is the delivery type extracted from the payload (default slash).
	AttackType AttackType

	payload map[string]string
}

// NewSymbol constructs a validated Symbol. Tactic and attack type are derived
// from the payload keys "tactic" and "attack_type"; both default when absent.
//
// Precondition: id must be non-empty; kind must be a valid Kind; power >= 0.
// Postcondition: Returns an immutable Symbol holding its own copy of payload,
// or a validation error (never a coerced value).
func NewSymbol(id string, kind Kind, element Element, power int, payload map[string]string) (*Symbol, error) {
	if id == "" {
		return nil, fmt.Errorf("gear: symbol id must not be empty")
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("gear: invalid symbol kind %d for %q", int(kind), id)
	}
	if power < 0 {
		return nil, fmt.Errorf("gear: symbol %q power must be >= 0, got %d", id, power)
	}

	p := make(map[string]string, len(payload))
	for k, v := range payload {
		p[k] = v
	}

	return &Symbol{
		ID:         id,
		Kind:       kind,
		Element:    element,
		Power:      power,
		Tactic:     ParseTactic(p["tactic"]),
		AttackType: ParseAttackType(p["attack_type"]),
		payload:    p,
	}, nil
}

// Payload returns the value stored under key in the effect payload.
func (s *Symbol) Payload(key string) (string, bool) {
	v, ok := s.payload[key]
	return v, ok
}

// Clone returns a deep, independent copy of the symbol including its payload.
//
// Postcondition: Mutating the clone's payload never affects the original.
func (s *Symbol) Clone() *Symbol {
	p := make(map[string]string, len(s.payload))
	for k, v := range s.payload {
		p[k] = v
	}
	cp := *s
	cp.payload = p
	return &cp
}
