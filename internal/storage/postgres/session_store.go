package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skirmish/internal/game/battle"
)

// sessionDoc is the JSONB persistence shape of a battle session. Kept
// separate from the domain type so column layout changes never leak into
// the battle package.
type sessionDoc struct {
	ID           string     `json:"id"`
	Participants [2]partDoc `json:"participants"`
	Status       int        `json:"status"`
	WinnerID     string     `json:"winner_id,omitempty"`
	Events       []eventDoc `json:"events,omitempty"`
}

type partDoc struct {
	PlayerID string `json:"player_id"`
	HP       int    `json:"hp"`
	MaxHP    int    `json:"max_hp"`
	Speed    int    `json:"speed"`
	Online   bool   `json:"online"`
}

type eventDoc struct {
	ID      string `json:"id"`
	At      int64  `json:"at"`
	Message string `json:"message"`
}

func encodeSession(s battle.Session) ([]byte, error) {
	doc := sessionDoc{
		ID:       s.ID,
		Status:   int(s.Status),
		WinnerID: s.WinnerID,
	}
	for i, p := range s.Participants {
		doc.Participants[i] = partDoc{
			PlayerID: p.PlayerID,
			HP:       p.HP,
			MaxHP:    p.MaxHP,
			Speed:    p.Speed,
			Online:   p.Online,
		}
	}
	for _, e := range s.Events {
		doc.Events = append(doc.Events, eventDoc{ID: e.ID, At: e.At, Message: e.Message})
	}
	return json.Marshal(doc)
}

func decodeSession(data []byte) (battle.Session, error) {
	var doc sessionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return battle.Session{}, fmt.Errorf("decoding session document: %w", err)
	}
	s := battle.Session{
		ID:       doc.ID,
		Status:   battle.Status(doc.Status),
		WinnerID: doc.WinnerID,
	}
	for i, p := range doc.Participants {
		s.Participants[i] = battle.Participant{
			PlayerID: p.PlayerID,
			HP:       p.HP,
			MaxHP:    p.MaxHP,
			Speed:    p.Speed,
			Online:   p.Online,
		}
	}
	for _, e := range doc.Events {
		s.Events = append(s.Events, battle.Event{ID: e.ID, At: e.At, Message: e.Message})
	}
	return s, nil
}

// SessionStore persists battle sessions as versioned JSONB documents and
// implements battle.Store. CommitIf uses optimistic concurrency: the update
// is guarded by the version read, and a lost race re-reads and retries
// until the precondition fails or the write lands.
type SessionStore struct {
	db *pgxpool.Pool
}

// NewSessionStore creates a SessionStore backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSessionStore(db *pgxpool.Pool) *SessionStore {
	return &SessionStore{db: db}
}

// Create inserts a new session row at version zero.
//
// Postcondition: Read(s.ID) returns the session, or an error if the ID
// already exists.
func (r *SessionStore) Create(ctx context.Context, s battle.Session) error {
	doc, err := encodeSession(s)
	if err != nil {
		return fmt.Errorf("encoding session %q: %w", s.ID, err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO battle_sessions (id, doc, version) VALUES ($1, $2, 0)`,
		s.ID, doc,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("session %q already exists", s.ID)
		}
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// Read returns the current session state.
//
// Postcondition: Returns the session or battle.ErrSessionNotFound.
func (r *SessionStore) Read(ctx context.Context, id string) (battle.Session, error) {
	s, _, err := r.read(ctx, id)
	return s, err
}

func (r *SessionStore) read(ctx context.Context, id string) (battle.Session, int64, error) {
	var (
		data    []byte
		version int64
	)
	err := r.db.QueryRow(ctx,
		`SELECT doc, version FROM battle_sessions WHERE id = $1`,
		id,
	).Scan(&data, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return battle.Session{}, 0, battle.ErrSessionNotFound
		}
		return battle.Session{}, 0, fmt.Errorf("querying session: %w", err)
	}
	s, err := decodeSession(data)
	if err != nil {
		return battle.Session{}, 0, err
	}
	return s, version, nil
}

// CommitIf atomically applies mutate iff pred holds on the current stored
// state. The version-guarded update means a concurrent writer invalidates
// this attempt cleanly; the loop then re-evaluates pred against the fresh
// state, so a precondition that fails after the race returns Committed=false
// rather than clobbering the winner's write.
func (r *SessionStore) CommitIf(ctx context.Context, id string, pred func(*battle.Session) bool, mutate func(*battle.Session)) (battle.CommitResult, error) {
	for {
		if err := ctx.Err(); err != nil {
			return battle.CommitResult{}, err
		}

		current, version, err := r.read(ctx, id)
		if err != nil {
			return battle.CommitResult{}, err
		}

		working := current.Clone()
		if !pred(&working) {
			return battle.CommitResult{Committed: false, Session: current}, nil
		}
		mutate(&working)

		doc, err := encodeSession(working)
		if err != nil {
			return battle.CommitResult{}, fmt.Errorf("encoding session %q: %w", id, err)
		}

		tag, err := r.db.Exec(ctx,
			`UPDATE battle_sessions SET doc = $2, version = version + 1
			 WHERE id = $1 AND version = $3`,
			id, doc, version,
		)
		if err != nil {
			return battle.CommitResult{}, fmt.Errorf("updating session: %w", err)
		}
		if tag.RowsAffected() == 1 {
			return battle.CommitResult{Committed: true, Session: working}, nil
		}
		// Version moved under us; retry against the refreshed state.
	}
}
