package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/gear"
)

var allTactics = []gear.Tactic{gear.TacticPower, gear.TacticSpeed, gear.TacticSkill}

func TestResolveTactics_Cycle(t *testing.T) {
	tests := []struct {
		name     string
		attacker gear.Tactic
		defender gear.Tactic
		want     combat.TacticsOutcome
	}{
		{"power beats speed", gear.TacticPower, gear.TacticSpeed, combat.TacticsWin},
		{"speed beats skill", gear.TacticSpeed, gear.TacticSkill, combat.TacticsWin},
		{"skill beats power", gear.TacticSkill, gear.TacticPower, combat.TacticsWin},
		{"speed loses to power", gear.TacticSpeed, gear.TacticPower, combat.TacticsLose},
		{"skill loses to speed", gear.TacticSkill, gear.TacticSpeed, combat.TacticsLose},
		{"power loses to skill", gear.TacticPower, gear.TacticSkill, combat.TacticsLose},
		{"power draws power", gear.TacticPower, gear.TacticPower, combat.TacticsDraw},
		{"speed draws speed", gear.TacticSpeed, gear.TacticSpeed, combat.TacticsDraw},
		{"skill draws skill", gear.TacticSkill, gear.TacticSkill, combat.TacticsDraw},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, combat.ResolveTactics(tc.attacker, tc.defender).Outcome)
		})
	}
}

func TestResolveTactics_Buffs(t *testing.T) {
	win := combat.ResolveTactics(gear.TacticPower, gear.TacticSpeed)
	assert.Equal(t, 1.2, win.AttackBuff)
	assert.Equal(t, 1.1, win.DefenseBuff)
	assert.True(t, win.GuardBreak)

	lose := combat.ResolveTactics(gear.TacticSpeed, gear.TacticPower)
	assert.Equal(t, 0.9, lose.AttackBuff)
	assert.Equal(t, 0.0, lose.DefenseBuff)
	assert.False(t, lose.GuardBreak)

	draw := combat.ResolveTactics(gear.TacticSkill, gear.TacticSkill)
	assert.Equal(t, 1.0, draw.AttackBuff)
	assert.Equal(t, 1.0, draw.DefenseBuff)
	assert.False(t, draw.GuardBreak)
}

// TestResolveTactics_Property_Antisymmetric verifies: exactly one of
// win/lose/draw holds, draws occur iff the tactics are equal, and a win one
// way is always a loss the other way.
func TestResolveTactics_Property_Antisymmetric(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.SampledFrom(allTactics).Draw(rt, "a")
		b := rapid.SampledFrom(allTactics).Draw(rt, "b")

		forward := combat.ResolveTactics(a, b)
		backward := combat.ResolveTactics(b, a)

		if a == b {
			assert.Equal(rt, combat.TacticsDraw, forward.Outcome)
			assert.Equal(rt, combat.TacticsDraw, backward.Outcome)
			return
		}
		assert.NotEqual(rt, combat.TacticsDraw, forward.Outcome, "unequal tactics never draw")
		if forward.Outcome == combat.TacticsWin {
			assert.Equal(rt, combat.TacticsLose, backward.Outcome)
		} else {
			assert.Equal(rt, combat.TacticsWin, backward.Outcome)
		}
	})
}

func TestResolveTactics_DefaultTacticIsSkill(t *testing.T) {
	// A snapshot with no tactic symbol resolves as skill.
	var s combat.Snapshot
	assert.Equal(t, gear.TacticSkill, s.Tactic())
}
