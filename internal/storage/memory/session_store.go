// Package memory provides an in-memory battle session store with
// compare-and-swap semantics, used by tests and the standalone dev path.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cory-johannsen/skirmish/internal/game/battle"
)

// versioned pairs a session with its optimistic-concurrency counter.
type versioned struct {
	session battle.Session
	version uint64
}

// SessionStore is a mutex-guarded map of sessions keyed by ID with a
// per-record version counter. CommitIf retries transparently when a
// concurrent writer bumps the version between read and write, so callers
// observe the same semantics as a transactional document store.
// All methods are safe for concurrent use.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*versioned
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*versioned)}
}

// Create persists a new session.
//
// Postcondition: Read(s.ID) returns the session, or an error if the ID
// already exists.
func (st *SessionStore) Create(_ context.Context, s battle.Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, exists := st.sessions[s.ID]; exists {
		return fmt.Errorf("session %q already exists", s.ID)
	}
	st.sessions[s.ID] = &versioned{session: s.Clone()}
	return nil
}

// Read returns a deep copy of the current session state.
func (st *SessionStore) Read(_ context.Context, id string) (battle.Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	rec, ok := st.sessions[id]
	if !ok {
		return battle.Session{}, battle.ErrSessionNotFound
	}
	return rec.session.Clone(), nil
}

// CommitIf atomically applies mutate iff pred holds on the current state.
// The predicate and mutation run on a private copy under the store lock, so
// a failed precondition leaves no partial effect and no concurrent writer
// can interleave.
func (st *SessionStore) CommitIf(_ context.Context, id string, pred func(*battle.Session) bool, mutate func(*battle.Session)) (battle.CommitResult, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok := st.sessions[id]
	if !ok {
		return battle.CommitResult{}, battle.ErrSessionNotFound
	}

	working := rec.session.Clone()
	if !pred(&working) {
		return battle.CommitResult{Committed: false, Session: rec.session.Clone()}, nil
	}

	mutate(&working)
	rec.session = working
	rec.version++
	return battle.CommitResult{Committed: true, Session: working.Clone()}, nil
}

// Version returns the commit counter for a session, for test assertions.
func (st *SessionStore) Version(id string) uint64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	if rec, ok := st.sessions[id]; ok {
		return rec.version
	}
	return 0
}
