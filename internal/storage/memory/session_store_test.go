package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/storage/memory"
)

func newStoredSession(t *testing.T, store *memory.SessionStore) battle.Session {
	t.Helper()
	sess, err := battle.NewSession(
		battle.Participant{PlayerID: "p1", HP: 100, MaxHP: 100, Online: true},
		battle.Participant{PlayerID: "p2", HP: 100, MaxHP: 100, Online: true},
	)
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), sess))
	return sess
}

func TestSessionStore_CreateAndRead(t *testing.T) {
	store := memory.NewSessionStore()
	sess := newStoredSession(t, store)

	got, err := store.Read(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, battle.StatusActive, got.Status)

	err = store.Create(context.Background(), sess)
	assert.Error(t, err, "duplicate IDs are rejected")
}

func TestSessionStore_ReadUnknown(t *testing.T) {
	store := memory.NewSessionStore()
	_, err := store.Read(context.Background(), "missing")
	assert.ErrorIs(t, err, battle.ErrSessionNotFound)
}

func TestSessionStore_ReadReturnsCopy(t *testing.T) {
	store := memory.NewSessionStore()
	sess := newStoredSession(t, store)

	first, err := store.Read(context.Background(), sess.ID)
	require.NoError(t, err)
	first.Participants[0].HP = 1
	first.Status = battle.StatusFinished

	second, err := store.Read(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, second.Participants[0].HP)
	assert.Equal(t, battle.StatusActive, second.Status)
}

func TestSessionStore_CommitIfAppliesWhenPredicateHolds(t *testing.T) {
	store := memory.NewSessionStore()
	sess := newStoredSession(t, store)

	res, err := store.CommitIf(context.Background(), sess.ID,
		func(s *battle.Session) bool { return s.Status == battle.StatusActive },
		func(s *battle.Session) { s.Participants[1].HP = 40 },
	)
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Equal(t, 40, res.Session.Participants[1].HP)
	assert.Equal(t, uint64(1), store.Version(sess.ID))
}

func TestSessionStore_CommitIfRejectsWithoutMutation(t *testing.T) {
	store := memory.NewSessionStore()
	sess := newStoredSession(t, store)

	mutated := false
	res, err := store.CommitIf(context.Background(), sess.ID,
		func(*battle.Session) bool { return false },
		func(*battle.Session) { mutated = true },
	)
	require.NoError(t, err)
	assert.False(t, res.Committed)
	assert.False(t, mutated, "mutation must not run on a failed precondition")
	assert.Equal(t, uint64(0), store.Version(sess.ID))

	got, err := store.Read(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Participants[1].HP)
}

func TestSessionStore_CommitIfUnknownSession(t *testing.T) {
	store := memory.NewSessionStore()
	_, err := store.CommitIf(context.Background(), "missing",
		func(*battle.Session) bool { return true },
		func(*battle.Session) {},
	)
	assert.ErrorIs(t, err, battle.ErrSessionNotFound)
}

// TestSessionStore_ConcurrentCommitsSerialize hammers one record with
// guarded decrements and checks no update is lost and the terminal flip
// happens exactly once.
func TestSessionStore_ConcurrentCommitsSerialize(t *testing.T) {
	store := memory.NewSessionStore()
	sess := newStoredSession(t, store)

	const workers = 32
	var wg sync.WaitGroup
	flips := make([]bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			res, err := store.CommitIf(context.Background(), sess.ID,
				func(s *battle.Session) bool { return s.Status == battle.StatusActive },
				func(s *battle.Session) {
					s.Participants[1].HP -= 10
					if s.Participants[1].HP <= 0 {
						s.Participants[1].HP = 0
						s.Status = battle.StatusFinished
					}
				},
			)
			require.NoError(t, err)
			flips[idx] = res.Committed && res.Session.Status == battle.StatusFinished
		}(i)
	}
	wg.Wait()

	final, err := store.Read(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, battle.StatusFinished, final.Status)
	assert.Equal(t, 0, final.Participants[1].HP)
	assert.Equal(t, uint64(10), store.Version(sess.ID), "ten commits drain 100 HP, later attempts are rejected")

	flipCount := 0
	for _, f := range flips {
		if f {
			flipCount++
		}
	}
	assert.Equal(t, 1, flipCount)
}
