package effect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/skirmish/internal/game/effect"
)

// fixedSource returns pre-set values for deterministic effect tests.
type fixedSource struct {
	intn  int
	float float64
}

func (f *fixedSource) Intn(n int) int   { return f.intn % n }
func (f *fixedSource) Float64() float64 { return f.float }

func newContext() *effect.Context {
	return &effect.Context{
		Attacker: &effect.Unit{
			ID: "attacker", HP: 300, MaxHP: 500,
			Stats: map[string]float64{"attack": 100, "magic": 100},
		},
		Defender: &effect.Unit{
			ID: "defender", HP: 400, MaxHP: 400,
			Stats: map[string]float64{"defense": 0},
		},
		Player: &effect.Player{ID: "player", Resources: map[string]int{}},
		Now:    1000,
	}
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		in   string
		want effect.Code
	}{
		{"damage_physical", effect.CodeDamagePhysical},
		{"damage_magic", effect.CodeDamageMagic},
		{"heal", effect.CodeHeal},
		{"buff_stat", effect.CodeBuffStat},
		{"debuff_stat", effect.CodeDebuffStat},
		{"apply_status", effect.CodeApplyStatus},
		{"economy_generate", effect.CodeEconomyGenerate},
		{"economy_consume", effect.CodeEconomyConsume},
		{"economy_bonus", effect.CodeEconomyBonus},
		{"summon_unit", effect.CodeSummonUnit},
		{"teleport", effect.CodeTeleport},
		{"shield", effect.CodeShield},
		{"explode_planet", effect.CodeUnknown},
		{"", effect.CodeUnknown},
		{"unknown", effect.CodeUnknown},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, effect.ParseCode(tc.in), "in=%q", tc.in)
	}
}

func TestProcess_TriggerFiltering(t *testing.T) {
	d := effect.NewDispatcher(zaptest.NewLogger(t))
	specs := []effect.Spec{
		{Code: effect.CodeHeal, Trigger: effect.TriggerOnAttack, Params: effect.Params{Amount: 10}},
		{Code: effect.CodeHeal, Trigger: effect.TriggerOnDefend, Params: effect.Params{Amount: 20}},
		{Code: effect.CodeHeal, Params: effect.Params{Amount: 40}}, // untagged
	}

	t.Run("filter selects matching entries only", func(t *testing.T) {
		ctx := newContext()
		out := d.Process(specs, ctx, effect.TriggerOnAttack, &fixedSource{})
		require.True(t, out.Success)
		require.Len(t, out.Effects, 1)
		assert.Equal(t, 10, out.TotalHeal, "untagged entries excluded under a filter")
	})

	t.Run("no filter runs everything", func(t *testing.T) {
		ctx := newContext()
		out := d.Process(specs, ctx, "", &fixedSource{})
		require.Len(t, out.Effects, 3)
		assert.Equal(t, 70, out.TotalHeal)
	})

	t.Run("skipped entries leave no log", func(t *testing.T) {
		ctx := newContext()
		out := d.Process(specs, ctx, effect.TriggerOnDefend, &fixedSource{})
		assert.Empty(t, out.Logs)
		assert.Equal(t, 20, out.TotalHeal)
	})
}

func TestProcess_UnknownCodeIsNonFatal(t *testing.T) {
	d := effect.NewDispatcher(zaptest.NewLogger(t))
	ctx := newContext()
	specs := []effect.Spec{
		{Code: effect.CodeUnknown},
		{Code: effect.CodeHeal, Params: effect.Params{Amount: 50}},
	}

	out := d.Process(specs, ctx, "", &fixedSource{})
	assert.True(t, out.Success, "unknown code must not fail the batch")
	require.Len(t, out.Logs, 1)
	assert.Contains(t, out.Logs[0], "unknown effect code")
	assert.Equal(t, 50, out.TotalHeal, "remaining entries still run")
}

func TestProcess_HandlerErrorMarksFailureButContinues(t *testing.T) {
	d := effect.NewDispatcher(zaptest.NewLogger(t))
	ctx := newContext()
	specs := []effect.Spec{
		{Code: effect.CodeHeal, Params: effect.Params{Amount: -5}}, // execution error
		{Code: effect.CodeHeal, Params: effect.Params{Amount: 30}},
	}

	out := d.Process(specs, ctx, "", &fixedSource{})
	assert.False(t, out.Success)
	require.Len(t, out.Logs, 1)
	assert.Contains(t, out.Logs[0], "failed")
	assert.Equal(t, 30, out.TotalHeal, "entries after the failure still run")
	require.Len(t, out.Effects, 1)
}

func TestProcess_Aggregates(t *testing.T) {
	d := effect.NewDispatcher(zaptest.NewLogger(t))
	ctx := newContext()
	specs := []effect.Spec{
		{Code: effect.CodeDamagePhysical, Params: effect.Params{Power: 50}},
		{Code: effect.CodeHeal, Params: effect.Params{Amount: 25}},
		{Code: effect.CodeApplyStatus, Params: effect.Params{StatusID: "burn", Duration: 3, Chance: 1.0}},
		{Code: effect.CodeEconomyGenerate, Params: effect.Params{Resource: "lumber", Amount: 12}},
	}

	out := d.Process(specs, ctx, "", &fixedSource{float: 0.99})
	require.True(t, out.Success)
	require.Len(t, out.Effects, 4)
	assert.Equal(t, 50, out.TotalDamage, "power 50 * attack 100 / 100")
	assert.Equal(t, 25, out.TotalHeal)
	assert.Equal(t, []string{"burn"}, out.StatusesApplied)
	assert.Equal(t, map[string]int{"lumber": 12}, out.ResourcesGenerated)
}

func TestProcess_ConsumeFailureDoesNotClearSuccess(t *testing.T) {
	d := effect.NewDispatcher(zaptest.NewLogger(t))
	ctx := newContext()
	specs := []effect.Spec{
		{Code: effect.CodeEconomyConsume, Params: effect.Params{Resource: "gold", Amount: 100}},
	}

	out := d.Process(specs, ctx, "", &fixedSource{})
	assert.True(t, out.Success, "insufficient funds is a payload, not an execution error")
	require.Len(t, out.Effects, 1)
	assert.Contains(t, out.Effects[0].Failure, "insufficient gold")
	assert.Empty(t, out.ResourcesGenerated)
}
