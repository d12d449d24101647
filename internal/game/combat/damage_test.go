package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/gear"
)

// fixedSource returns pre-set values for deterministic combat tests.
type fixedSource struct {
	intn  int
	float float64
}

func (f *fixedSource) Intn(n int) int   { return f.intn % n }
func (f *fixedSource) Float64() float64 { return f.float }

func TestCalculateDamage_GuardBreakScenario(t *testing.T) {
	// Power beats Speed: win with guard break. Fire symbol vs wind armor
	// gives 1.5; slash vs light armor gives 1.2. With base 150, symbol 100,
	// defense nullified and no crit: floor(250*1.2 * 1.5 * 1.2) = 540.
	sym, err := gear.NewSymbol("sym_fireblade", gear.KindPhysical, gear.ElementFire, 100, map[string]string{
		"tactic":      "power",
		"attack_type": "slash",
	})
	require.NoError(t, err)

	attacker := combat.Snapshot{
		ID:           "p1",
		BasePower:    150,
		CriticalRate: 0,
		Symbol:       sym,
		TacticSymbol: sym,
	}
	defender := combat.Snapshot{
		ID:      "p2",
		Defense: 50,
		Armor:   gear.NewArmor([]string{"element_wind", "armor_type_light"}),
	}

	tr := combat.ResolveTactics(attacker.Tactic(), gear.TacticSpeed)
	require.Equal(t, combat.TacticsWin, tr.Outcome)
	require.True(t, tr.GuardBreak)
	require.Equal(t, 1.2, tr.AttackBuff)

	r := combat.CalculateDamage(attacker, defender, tr, &fixedSource{float: 0.99})
	assert.Equal(t, 540, r.Final)
	assert.False(t, r.Critical)
	assert.Equal(t, 250, r.Breakdown.TotalBasePower)
	assert.Equal(t, 1.5, r.Breakdown.ElementalMod)
	assert.Equal(t, 1.2, r.Breakdown.PhysicsMod)
	assert.Equal(t, 0.0, r.Breakdown.EffectiveDefense)
}

func TestCalculateDamage_FloorClampsToOne(t *testing.T) {
	// buffedPower 10, effectiveDefense 50, all modifiers neutral: raw -40.
	attacker := combat.Snapshot{ID: "p1", BasePower: 10}
	defender := combat.Snapshot{ID: "p2", Defense: 50}

	tr := combat.TacticsResult{Outcome: combat.TacticsDraw, AttackBuff: 1.0, DefenseBuff: 1.0}
	r := combat.CalculateDamage(attacker, defender, tr, &fixedSource{float: 0.99})
	assert.Equal(t, 1, r.Final)
	assert.Equal(t, -40.0, r.Breakdown.Raw)
}

func TestCalculateDamage_Critical(t *testing.T) {
	attacker := combat.Snapshot{ID: "p1", BasePower: 100, CriticalRate: 0.25}
	defender := combat.Snapshot{ID: "p2"}
	tr := combat.TacticsResult{AttackBuff: 1.0, DefenseBuff: 1.0}

	hit := combat.CalculateDamage(attacker, defender, tr, &fixedSource{float: 0.1})
	assert.True(t, hit.Critical)
	assert.Equal(t, 150, hit.Final, "crit multiplies by 1.5")

	miss := combat.CalculateDamage(attacker, defender, tr, &fixedSource{float: 0.9})
	assert.False(t, miss.Critical)
	assert.Equal(t, 100, miss.Final)
}

func TestCalculateDamage_ZeroDefenseBuffNullifiesDefense(t *testing.T) {
	// A tactics loss zeroes the defense buff, which also nullifies defense.
	attacker := combat.Snapshot{ID: "p1", BasePower: 100}
	defender := combat.Snapshot{ID: "p2", Defense: 80}
	tr := combat.TacticsResult{Outcome: combat.TacticsLose, AttackBuff: 0.9, DefenseBuff: 0}

	r := combat.CalculateDamage(attacker, defender, tr, &fixedSource{float: 0.99})
	assert.Equal(t, 0.0, r.Breakdown.EffectiveDefense)
	assert.Equal(t, 90, r.Final)
}

// TestCalculateDamage_Property_NeverBelowOne verifies the damage floor for
// arbitrary stats, tactics outcomes, and armor.
func TestCalculateDamage_Property_NeverBelowOne(t *testing.T) {
	tactics := []gear.Tactic{gear.TacticPower, gear.TacticSpeed, gear.TacticSkill}
	rapid.Check(t, func(rt *rapid.T) {
		attacker := combat.Snapshot{
			ID:           "a",
			BasePower:    rapid.IntRange(0, 500).Draw(rt, "base_power"),
			CriticalRate: rapid.Float64Range(0, 1).Draw(rt, "crit_rate"),
		}
		defender := combat.Snapshot{
			ID:      "d",
			Defense: rapid.IntRange(0, 1000).Draw(rt, "defense"),
		}
		tr := combat.ResolveTactics(
			rapid.SampledFrom(tactics).Draw(rt, "atk_tactic"),
			rapid.SampledFrom(tactics).Draw(rt, "def_tactic"),
		)
		src := &fixedSource{float: rapid.Float64Range(0, 0.999).Draw(rt, "roll")}

		r := combat.CalculateDamage(attacker, defender, tr, src)
		assert.GreaterOrEqual(rt, r.Final, 1)
	})
}
