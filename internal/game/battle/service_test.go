package battle_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/storage/memory"
)

// fixedSource returns pre-set values for deterministic service tests.
type fixedSource struct {
	intn  int
	float float64
}

func (f *fixedSource) Intn(n int) int   { return f.intn % n }
func (f *fixedSource) Float64() float64 { return f.float }

// fakeProfiles serves static profiles keyed by player ID.
type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]battle.Profile
	fetches  int
}

func (f *fakeProfiles) CombatantProfile(_ context.Context, id string) (battle.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return f.profiles[id], nil
}

// fakePresence reports a fixed online flag per player.
type fakePresence struct {
	online map[string]bool
}

func (f *fakePresence) IsOnline(_ context.Context, id string) (bool, error) {
	return f.online[id], nil
}

// fakeRewards records settlement calls.
type fakeRewards struct {
	mu        sync.Mutex
	balance   int
	bounty    int
	transfers []int
	rankings  map[string]int
}

func (f *fakeRewards) Purse(_ context.Context, _ string) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance, f.bounty, nil
}

func (f *fakeRewards) TransferCurrency(_ context.Context, _, _ string, amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transfers = append(f.transfers, amount)
	return nil
}

func (f *fakeRewards) UpdateRanking(_ context.Context, id, metric string, value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rankings == nil {
		f.rankings = make(map[string]int)
	}
	f.rankings[id+":"+metric] += value
	return nil
}

func (f *fakeRewards) transferCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transfers)
}

type fixture struct {
	store    *memory.SessionStore
	rewards  *fakeRewards
	presence *fakePresence
	service  *battle.Service
	session  battle.Session
}

func newFixture(t *testing.T, hp1, hp2 int) *fixture {
	t.Helper()

	store := memory.NewSessionStore()
	profiles := &fakeProfiles{profiles: map[string]battle.Profile{
		"p1": {ID: "p1", DisplayName: "Alice", BasePower: 50, CriticalRate: 0},
		"p2": {ID: "p2", DisplayName: "Bob", BasePower: 50, CriticalRate: 0},
	}}
	presence := &fakePresence{online: map[string]bool{"p1": true, "p2": true}}
	rewards := &fakeRewards{balance: 1000, bounty: 50}

	sess, err := battle.NewSession(
		battle.Participant{PlayerID: "p1", HP: hp1, MaxHP: hp1, Online: true},
		battle.Participant{PlayerID: "p2", HP: hp2, MaxHP: hp2, Online: true},
	)
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), sess))

	svc := battle.NewService(store, profiles, presence, rewards,
		&fixedSource{float: 0.5}, zaptest.NewLogger(t))

	return &fixture{store: store, rewards: rewards, presence: presence, service: svc, session: sess}
}

func TestApplyAction_CommitsDamageAndEvent(t *testing.T) {
	f := newFixture(t, 200, 200)

	// Both profiles draw tactics skill vs skill: draw, attack buff 1.0.
	// Damage = basePower 50, defense 0 -> 50.
	res, err := f.service.ApplyAction(context.Background(), f.session.ID, "p1")
	require.NoError(t, err)
	assert.True(t, res.Committed)
	require.NotNil(t, res.Damage)
	assert.Equal(t, 50, res.Damage.Final)
	assert.Equal(t, 150, res.Session.Participant("p2").HP)
	assert.Equal(t, battle.StatusActive, res.Session.Status)
	require.Len(t, res.Session.Events, 1)
	assert.Contains(t, res.Session.Events[0].Message, "Alice")
	assert.Equal(t, 0, f.rewards.transferCount(), "no settlement before terminal transition")
}

func TestApplyAction_UnknownSession(t *testing.T) {
	f := newFixture(t, 100, 100)
	_, err := f.service.ApplyAction(context.Background(), "no-such-session", "p1")
	assert.ErrorIs(t, err, battle.ErrSessionNotFound)
}

func TestApplyAction_NonParticipant(t *testing.T) {
	f := newFixture(t, 100, 100)
	_, err := f.service.ApplyAction(context.Background(), f.session.ID, "stranger")
	assert.Error(t, err)
}

func TestApplyAction_FinishedSessionIsNoOp(t *testing.T) {
	f := newFixture(t, 200, 40)

	res, err := f.service.ApplyAction(context.Background(), f.session.ID, "p1")
	require.NoError(t, err)
	require.True(t, res.Committed)
	require.Equal(t, battle.StatusFinished, res.Session.Status)
	assert.Equal(t, "p1", res.Session.WinnerID)

	// Any further action is rejected by the same precondition path, with
	// no error surfaced: a no-op conflict signal.
	again, err := f.service.ApplyAction(context.Background(), f.session.ID, "p2")
	require.NoError(t, err)
	assert.False(t, again.Committed)
	assert.Nil(t, again.Damage)
	assert.Equal(t, battle.StatusFinished, again.Session.Status)
}

func TestApplyAction_DeadAttackerCannotAct(t *testing.T) {
	f := newFixture(t, 200, 40)

	res, err := f.service.ApplyAction(context.Background(), f.session.ID, "p1")
	require.NoError(t, err)
	require.True(t, res.Committed)
	require.Equal(t, 0, res.Session.Participant("p2").HP)

	dead, err := f.service.ApplyAction(context.Background(), f.session.ID, "p2")
	require.NoError(t, err)
	assert.False(t, dead.Committed)
}

func TestApplyAction_TerminalTransitionSettlesOnce(t *testing.T) {
	f := newFixture(t, 200, 40)

	res, err := f.service.ApplyAction(context.Background(), f.session.ID, "p1")
	require.NoError(t, err)
	require.True(t, res.Committed)
	require.Equal(t, battle.StatusFinished, res.Session.Status)

	require.Equal(t, 1, f.rewards.transferCount())
	// Balance 1000, fraction 0.1 + 0.5*(0.3-0.1) = 0.2 -> 200, above bounty 50.
	assert.Equal(t, []int{200}, f.rewards.transfers)
	assert.Equal(t, 1, f.rewards.rankings["p1:wins"])
	assert.Equal(t, 1, f.rewards.rankings["p2:losses"])
}

func TestApplyAction_BountyFloorsSettlement(t *testing.T) {
	f := newFixture(t, 200, 40)
	f.rewards.balance = 100
	f.rewards.bounty = 300

	_, err := f.service.ApplyAction(context.Background(), f.session.ID, "p1")
	require.NoError(t, err)
	// floor(100*0.2) = 20 < bounty 300 -> bounty wins.
	assert.Equal(t, []int{300}, f.rewards.transfers)
}

// TestApplyAction_ConcurrentLethalActions verifies the exactly-once terminal
// transition: with both sides one hit from death, concurrent submissions
// from both players produce exactly one Finished commit, one winner, and
// one settlement.
func TestApplyAction_ConcurrentLethalActions(t *testing.T) {
	f := newFixture(t, 30, 30)

	const attempts = 8
	results := make([]battle.ApplyResult, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		attacker := "p1"
		if i%2 == 1 {
			attacker = "p2"
		}
		wg.Add(1)
		go func(idx int, id string) {
			defer wg.Done()
			res, err := f.service.ApplyAction(context.Background(), f.session.ID, id)
			require.NoError(t, err)
			results[idx] = res
		}(i, attacker)
	}
	wg.Wait()

	finishes := 0
	for _, r := range results {
		if r.Committed && r.Session.Status == battle.StatusFinished {
			finishes++
		}
	}
	assert.Equal(t, 1, finishes, "exactly one commit flips the session to Finished")

	final, err := f.store.Read(context.Background(), f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, battle.StatusFinished, final.Status)
	assert.NotEmpty(t, final.WinnerID)
	assert.Equal(t, 1, f.rewards.transferCount(), "settlement runs exactly once")
}

func TestClaimForfeit_RejectedWhileOpponentOnline(t *testing.T) {
	f := newFixture(t, 100, 100)

	res, err := f.service.ClaimForfeit(context.Background(), f.session.ID, "p1")
	require.NoError(t, err)
	assert.False(t, res.Committed)
	assert.Equal(t, battle.StatusActive, res.Session.Status)
}

func TestClaimForfeit_HonoredWhenOpponentOffline(t *testing.T) {
	f := newFixture(t, 100, 100)
	f.presence.online["p2"] = false

	res, err := f.service.ClaimForfeit(context.Background(), f.session.ID, "p1")
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Equal(t, battle.StatusFinished, res.Session.Status)
	assert.Equal(t, "p1", res.Session.WinnerID)
	assert.Equal(t, 1, f.rewards.transferCount())
}

func TestClaimForfeit_AlreadyFinishedIsNoOp(t *testing.T) {
	f := newFixture(t, 200, 40)
	f.presence.online["p2"] = false

	_, err := f.service.ApplyAction(context.Background(), f.session.ID, "p1")
	require.NoError(t, err)

	res, err := f.service.ClaimForfeit(context.Background(), f.session.ID, "p1")
	require.NoError(t, err)
	assert.False(t, res.Committed)
	assert.Equal(t, 1, f.rewards.transferCount(), "no second settlement")
}
