package effect

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/rng"
)

// Applied records the outcome of one successfully executed effect entry.
type Applied struct {
	Code Code
	// Damage and Heal are the entry's contributions to the aggregates.
	Damage int
	Heal   int
	// Overheal is the healing discarded by the MaxHP clamp.
	Overheal int
	// Status is set when an apply-status trial succeeded.
	Status *Status
	// Resource and ResourceDelta record economy mutations.
	Resource      string
	ResourceDelta int
	// Failure carries a structured, non-fatal error payload (for example
	// an insufficient-resource consume). The batch stays successful.
	Failure string
	// Note is a free-form descriptive detail (teleport target, summon id).
	Note string
}

// Outcome aggregates one Process call.
type Outcome struct {
	// Success is false only when a handler failed with an execution error.
	// Unknown codes and structured failure payloads do not clear it.
	Success bool
	// Effects holds one entry per executed handler, in list order.
	Effects []Applied
	// Logs records skipped or diagnostic entries (unknown codes, handler errors).
	Logs []string
	// Aggregates over all executed entries.
	TotalDamage        int
	TotalHeal          int
	StatusesApplied    []string
	ResourcesGenerated map[string]int
}

// Handler executes one effect entry against the context. Handlers mutate the
// context's units and player in place and return the applied record, or an
// error when the entry cannot be executed at all.
type Handler func(spec Spec, ctx *Context, src rng.Source) (Applied, error)

// Dispatcher holds the fixed code → handler registry.
type Dispatcher struct {
	handlers map[Code]Handler
	logger   *zap.Logger
}

// NewDispatcher creates a Dispatcher with all built-in handlers registered.
//
// Precondition: logger must be non-nil.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[Code]Handler),
		logger:   logger,
	}
	d.handlers[CodeDamagePhysical] = damagePhysical
	d.handlers[CodeDamageMagic] = damageMagic
	d.handlers[CodeHeal] = heal
	d.handlers[CodeBuffStat] = buffStat
	d.handlers[CodeDebuffStat] = debuffStat
	d.handlers[CodeApplyStatus] = applyStatus
	d.handlers[CodeEconomyGenerate] = economyGenerate
	d.handlers[CodeEconomyConsume] = economyConsume
	d.handlers[CodeEconomyBonus] = economyBonus
	d.handlers[CodeSummonUnit] = summonUnit
	d.handlers[CodeTeleport] = teleport
	d.handlers[CodeShield] = shield
	return d
}

// Process executes specs in list order against ctx.
//
// Trigger filtering: when trigger is non-empty, entries whose own trigger
// differs are skipped silently (no log, no side effect); untagged entries
// run only when no filter is given.
//
// Error policy: an unknown code records a log entry and continues without
// clearing Success; an execution error inside a handler clears Success but
// remaining entries still run. Handlers reporting structured failures (for
// example insufficient resources) return a normal Applied with Failure set.
//
// Precondition: ctx and src must be non-nil.
// Postcondition: Returns a non-nil Outcome; aggregates equal the sums over
// Effects.
func (d *Dispatcher) Process(specs []Spec, ctx *Context, trigger Trigger, src rng.Source) *Outcome {
	out := &Outcome{
		Success:            true,
		ResourcesGenerated: make(map[string]int),
	}

	for i, spec := range specs {
		if trigger != "" && spec.Trigger != trigger {
			continue
		}

		h, ok := d.handlers[spec.Code]
		if !ok {
			msg := fmt.Sprintf("entry %d: unknown effect code %q", i, spec.Code)
			out.Logs = append(out.Logs, msg)
			d.logger.Warn("skipping unknown effect code",
				zap.Int("entry", i),
				zap.String("code", spec.Code.String()),
			)
			continue
		}

		applied, err := h(spec, ctx, src)
		if err != nil {
			out.Success = false
			msg := fmt.Sprintf("entry %d: %s failed: %v", i, spec.Code, err)
			out.Logs = append(out.Logs, msg)
			d.logger.Error("effect handler failed",
				zap.Int("entry", i),
				zap.String("code", spec.Code.String()),
				zap.Error(err),
			)
			continue
		}

		out.Effects = append(out.Effects, applied)
		out.TotalDamage += applied.Damage
		out.TotalHeal += applied.Heal
		if applied.Status != nil {
			out.StatusesApplied = append(out.StatusesApplied, applied.Status.ID)
		}
		if applied.Resource != "" && applied.ResourceDelta > 0 {
			out.ResourcesGenerated[applied.Resource] += applied.ResourceDelta
		}
	}

	return out
}
