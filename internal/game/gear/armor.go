package gear

import "strings"

// ArmorClass is the weight class derived from an armor tag set.
type ArmorClass int

const (
	ArmorMedium ArmorClass = iota
	ArmorLight
	ArmorHeavy
)

// String returns a human-readable armor class label.
func (c ArmorClass) String() string {
	switch c {
	case ArmorLight:
		return "light"
	case ArmorHeavy:
		return "heavy"
	default:
		return "medium"
	}
}

// Armor describes a defender's armor as the raw tag set delivered by the
// content catalog. Element, class, and special resistances are derived by
// prefix and membership lookup; missing or malformed tags fall back to
// defaults rather than failing, because catalog data is outside this
// system's control.
type Armor struct {
	tags map[string]bool
}

const (
	elementTagPrefix = "element_"
	armorTagPrefix   = "armor_type_"
	magicResistTag   = "magic_resist"
)

// NewArmor builds an Armor descriptor from catalog tags.
// Unknown tags are retained but ignored by the derivations.
//
// Postcondition: Returns a descriptor holding its own copy of tags; nil or
// empty tags yield the default armor (None element, Medium class).
func NewArmor(tags []string) Armor {
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		m[t] = true
	}
	return Armor{tags: m}
}

// Element returns the armor's elemental alignment from its element_<id> tag,
// or ElementNone when absent or unrecognised.
func (a Armor) Element() Element {
	for tag := range a.tags {
		if !strings.HasPrefix(tag, elementTagPrefix) {
			continue
		}
		switch strings.TrimPrefix(tag, elementTagPrefix) {
		case "fire":
			return ElementFire
		case "wind":
			return ElementWind
		case "earth":
			return ElementEarth
		case "water":
			return ElementWater
		}
	}
	return ElementNone
}

// Class returns the armor's weight class from its armor_type_* tag,
// defaulting to ArmorMedium.
func (a Armor) Class() ArmorClass {
	switch {
	case a.tags[armorTagPrefix+"light"]:
		return ArmorLight
	case a.tags[armorTagPrefix+"heavy"]:
		return ArmorHeavy
	default:
		return ArmorMedium
	}
}

// MagicResist reports whether the armor carries the magic_resist tag.
func (a Armor) MagicResist() bool {
	return a.tags[magicResistTag]
}

// Has reports whether the raw tag is present.
func (a Armor) Has(tag string) bool {
	return a.tags[tag]
}
