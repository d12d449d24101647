package effect

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/rng"
)

// dealDamage is the shared body of the physical and magic damage handlers.
// Base damage is power scaled by the attacker's relevant stat / 100, then
// adjusted by the defender's elemental resistance (damage *= 2 - resist),
// doubled on a successful critical trial, reduced by
// max(0, defense - armor penetration) * 0.5, and floored at 1.
func dealDamage(spec Spec, ctx *Context, src rng.Source, stat string, code Code) (Applied, error) {
	if ctx.Attacker == nil || ctx.Defender == nil {
		return Applied{}, fmt.Errorf("damage effect requires attacker and defender")
	}

	dmg := spec.Params.Power * ctx.Attacker.Stat(stat) / 100.0

	if resist, ok := ctx.Defender.Resist[spec.Params.Element]; ok {
		dmg *= 2 - resist
	}

	if rng.Chance(src, spec.Params.CritChance) {
		dmg *= 2
	}

	reduction := ctx.Defender.Stat("defense") - ctx.Attacker.ArmorPenetration
	if reduction < 0 {
		reduction = 0
	}
	dmg -= reduction * 0.5

	final := int(math.Floor(dmg))
	if final < 1 {
		final = 1
	}

	ctx.Defender.HP -= final
	if ctx.Defender.HP < 0 {
		ctx.Defender.HP = 0
	}

	return Applied{Code: code, Damage: final}, nil
}

func damagePhysical(spec Spec, ctx *Context, src rng.Source) (Applied, error) {
	return dealDamage(spec, ctx, src, "attack", CodeDamagePhysical)
}

func damageMagic(spec Spec, ctx *Context, src rng.Source) (Applied, error) {
	return dealDamage(spec, ctx, src, "magic", CodeDamageMagic)
}

// heal restores the attacker's HP, clamped to MaxHP, reporting the actual
// healed amount and the discarded overheal.
func heal(spec Spec, ctx *Context, _ rng.Source) (Applied, error) {
	if ctx.Attacker == nil {
		return Applied{}, fmt.Errorf("heal effect requires an attacker")
	}
	amount := int(spec.Params.Amount)
	if amount < 0 {
		return Applied{}, fmt.Errorf("heal amount must be >= 0, got %d", amount)
	}

	healed := amount
	overheal := 0
	if ctx.Attacker.HP+amount > ctx.Attacker.MaxHP {
		healed = ctx.Attacker.MaxHP - ctx.Attacker.HP
		overheal = amount - healed
	}
	ctx.Attacker.HP += healed

	return Applied{Code: CodeHeal, Heal: healed, Overheal: overheal}, nil
}

// buffStat raises the named stat on the attacker, either by a flat amount or
// by a percentage of its current value.
func buffStat(spec Spec, ctx *Context, _ rng.Source) (Applied, error) {
	if ctx.Attacker == nil {
		return Applied{}, fmt.Errorf("buff effect requires an attacker")
	}
	if spec.Params.Stat == "" {
		return Applied{}, fmt.Errorf("buff effect requires a stat name")
	}
	if ctx.Attacker.Stats == nil {
		ctx.Attacker.Stats = make(map[string]float64)
	}

	delta := spec.Params.Amount
	if spec.Params.Percent {
		delta = ctx.Attacker.Stats[spec.Params.Stat] * spec.Params.Amount / 100.0
	}
	ctx.Attacker.Stats[spec.Params.Stat] += delta

	return Applied{Code: CodeBuffStat, Note: spec.Params.Stat}, nil
}

// debuffStat lowers the named stat on the defender, flooring at 0.
func debuffStat(spec Spec, ctx *Context, _ rng.Source) (Applied, error) {
	if ctx.Defender == nil {
		return Applied{}, fmt.Errorf("debuff effect requires a defender")
	}
	if spec.Params.Stat == "" {
		return Applied{}, fmt.Errorf("debuff effect requires a stat name")
	}
	if ctx.Defender.Stats == nil {
		ctx.Defender.Stats = make(map[string]float64)
	}

	delta := spec.Params.Amount
	if spec.Params.Percent {
		delta = ctx.Defender.Stats[spec.Params.Stat] * spec.Params.Amount / 100.0
	}
	next := ctx.Defender.Stats[spec.Params.Stat] - delta
	if next < 0 {
		next = 0
	}
	ctx.Defender.Stats[spec.Params.Stat] = next

	return Applied{Code: CodeDebuffStat, Note: spec.Params.Stat}, nil
}

// applyStatus runs one Bernoulli trial against the configured chance and
// appends a status record to the defender only on success.
func applyStatus(spec Spec, ctx *Context, src rng.Source) (Applied, error) {
	if ctx.Defender == nil {
		return Applied{}, fmt.Errorf("apply-status effect requires a defender")
	}
	if spec.Params.StatusID == "" {
		return Applied{}, fmt.Errorf("apply-status effect requires a status id")
	}

	if !rng.Chance(src, spec.Params.Chance) {
		return Applied{Code: CodeApplyStatus, Note: "resisted"}, nil
	}

	st := Status{
		ID:        spec.Params.StatusID,
		Duration:  spec.Params.Duration,
		AppliedAt: ctx.Now,
	}
	ctx.Defender.Statuses = append(ctx.Defender.Statuses, st)

	return Applied{Code: CodeApplyStatus, Status: &st}, nil
}

// economyGenerate adds the configured amount of a resource to the player.
func economyGenerate(spec Spec, ctx *Context, _ rng.Source) (Applied, error) {
	if ctx.Player == nil {
		return Applied{}, fmt.Errorf("economy effect requires a player")
	}
	if spec.Params.Resource == "" {
		return Applied{}, fmt.Errorf("economy effect requires a resource name")
	}
	if ctx.Player.Resources == nil {
		ctx.Player.Resources = make(map[string]int)
	}

	amount := int(spec.Params.Amount)
	ctx.Player.Resources[spec.Params.Resource] += amount

	return Applied{Code: CodeEconomyGenerate, Resource: spec.Params.Resource, ResourceDelta: amount}, nil
}

// economyConsume subtracts a resource; insufficient funds are a structured
// failure payload, not an execution error, and leave the balance untouched.
func economyConsume(spec Spec, ctx *Context, _ rng.Source) (Applied, error) {
	if ctx.Player == nil {
		return Applied{}, fmt.Errorf("economy effect requires a player")
	}
	if spec.Params.Resource == "" {
		return Applied{}, fmt.Errorf("economy effect requires a resource name")
	}

	amount := int(spec.Params.Amount)
	have := ctx.Player.Resources[spec.Params.Resource]
	if have < amount {
		return Applied{
			Code:     CodeEconomyConsume,
			Resource: spec.Params.Resource,
			Failure:  fmt.Sprintf("insufficient %s: have %d, need %d", spec.Params.Resource, have, amount),
		}, nil
	}
	ctx.Player.Resources[spec.Params.Resource] = have - amount

	return Applied{Code: CodeEconomyConsume, Resource: spec.Params.Resource, ResourceDelta: -amount}, nil
}

// economyBonus grants a percentage of the current holding of a resource.
func economyBonus(spec Spec, ctx *Context, _ rng.Source) (Applied, error) {
	if ctx.Player == nil {
		return Applied{}, fmt.Errorf("economy effect requires a player")
	}
	if spec.Params.Resource == "" {
		return Applied{}, fmt.Errorf("economy effect requires a resource name")
	}
	if ctx.Player.Resources == nil {
		ctx.Player.Resources = make(map[string]int)
	}

	bonus := int(math.Floor(float64(ctx.Player.Resources[spec.Params.Resource]) * spec.Params.Amount / 100.0))
	ctx.Player.Resources[spec.Params.Resource] += bonus

	return Applied{Code: CodeEconomyBonus, Resource: spec.Params.Resource, ResourceDelta: bonus}, nil
}

// summonUnit records a summoned unit on the player.
func summonUnit(spec Spec, ctx *Context, _ rng.Source) (Applied, error) {
	if ctx.Player == nil {
		return Applied{}, fmt.Errorf("summon effect requires a player")
	}
	if spec.Params.SummonID == "" {
		return Applied{}, fmt.Errorf("summon effect requires a summon id")
	}
	ctx.Player.Summons = append(ctx.Player.Summons, spec.Params.SummonID)

	return Applied{Code: CodeSummonUnit, Note: spec.Params.SummonID}, nil
}

// teleport moves the attacker to the configured position.
func teleport(spec Spec, ctx *Context, _ rng.Source) (Applied, error) {
	if ctx.Attacker == nil {
		return Applied{}, fmt.Errorf("teleport effect requires an attacker")
	}
	ctx.Attacker.X = spec.Params.X
	ctx.Attacker.Y = spec.Params.Y

	return Applied{Code: CodeTeleport, Note: fmt.Sprintf("(%d,%d)", spec.Params.X, spec.Params.Y)}, nil
}

// shield adds to the attacker's absorption counter.
func shield(spec Spec, ctx *Context, _ rng.Source) (Applied, error) {
	if ctx.Attacker == nil {
		return Applied{}, fmt.Errorf("shield effect requires an attacker")
	}
	amount := int(spec.Params.Amount)
	if amount < 0 {
		return Applied{}, fmt.Errorf("shield amount must be >= 0, got %d", amount)
	}
	ctx.Attacker.Shield += amount

	return Applied{Code: CodeShield, Note: fmt.Sprintf("+%d", amount)}, nil
}
