package effect

import "github.com/cory-johannsen/skirmish/internal/game/gear"

// Status is one applied status entry on a unit.
type Status struct {
	ID        string
	Duration  int
	AppliedAt int64
}

// Unit is one combatant's mutable sub-object inside an effect context.
// Handlers mutate HP, stats, statuses, shield, and position in place.
type Unit struct {
	ID    string
	HP    int
	MaxHP int
	// Stats maps stat names (attack, magic, defense, ...) to current values.
	Stats map[string]float64
	// Statuses is the unit's applied status list, append-only per battle.
	Statuses []Status
	// Resist maps elements to resistance factors in [0, 2]; values above 1
	// reduce incoming damage of that element, values below 1 amplify it.
	Resist map[gear.Element]float64
	// ArmorPenetration is subtracted from the opposing defense before the
	// damage reduction step.
	ArmorPenetration float64
	// Shield is the additive damage-absorption counter.
	Shield int
	// X, Y is the unit's battlefield position.
	X, Y int
}

// Stat returns the named stat, or 0 when absent.
func (u *Unit) Stat(name string) float64 {
	if u.Stats == nil {
		return 0
	}
	return u.Stats[name]
}

// Player is the resource-owning side of an effect context.
type Player struct {
	ID string
	// Resources maps resource names to owned quantities.
	Resources map[string]int
	// Summons lists the unit IDs produced by summon effects this resolution.
	Summons []string
}

// Context is the mutable battle state one Process call operates on.
// The attacker is the effect list's owner; heal, buff, teleport, shield,
// and summon effects target the attacker's side, damage, debuff, and
// apply-status effects target the defender.
type Context struct {
	Attacker *Unit
	Defender *Unit
	Player   *Player
	// Now is the timestamp recorded on applied statuses.
	Now int64
}
