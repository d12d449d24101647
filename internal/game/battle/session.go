// Package battle implements the persisted real-time battle state machine:
// the session record, the atomic transition protocol that turns concurrent
// per-player attack submissions into a consistent terminating outcome, and
// the reward settlement that follows the terminal transition. All external
// collaborators (profile data, persistence, presence, rewards) are injected
// interfaces; the package holds no process-wide state.
package battle

import (
	"fmt"

	"github.com/google/uuid"
)

// Status is a session's lifecycle state. The only transition is
// Active → Finished, and it happens at most once per session.
type Status int

const (
	StatusActive Status = iota
	StatusFinished
)

// String returns a human-readable status label.
func (s Status) String() string {
	if s == StatusFinished {
		return "finished"
	}
	return "active"
}

// Participant is one side of a duel as recorded in the session.
// HP and the online flag are authoritative; the action-readiness gauge is
// client-local pacing state and deliberately not part of this record.
type Participant struct {
	PlayerID string
	HP       int
	MaxHP    int
	Speed    int
	Online   bool
}

// Event is one entry of the session's append-only narrative log.
type Event struct {
	// ID is a unique event identifier for client display.
	ID string
	// At is the event timestamp in unix milliseconds. Strictly increasing
	// within a session.
	At int64
	// Message is the narrative text.
	Message string
}

// Session is the authoritative mutable state of one duel. All mutation goes
// through the store's atomic transition function; once Status is Finished
// the record is immutable and exists only for settlement and display.
type Session struct {
	ID           string
	Participants [2]Participant
	Status       Status
	// WinnerID is empty while the session is Active, and after a forfeited
	// escape with no victor.
	WinnerID string
	Events   []Event
}

// NewSession creates an Active session between two players.
//
// Precondition: the player IDs must be distinct and non-empty; hp values > 0.
// Postcondition: Returns a session with a fresh uuid, or a validation error.
func NewSession(p1, p2 Participant) (Session, error) {
	if p1.PlayerID == "" || p2.PlayerID == "" {
		return Session{}, fmt.Errorf("battle: participant ids must be non-empty")
	}
	if p1.PlayerID == p2.PlayerID {
		return Session{}, fmt.Errorf("battle: participants must be distinct, got %q twice", p1.PlayerID)
	}
	if p1.HP <= 0 || p2.HP <= 0 {
		return Session{}, fmt.Errorf("battle: participants must start with positive hp")
	}
	return Session{
		ID:           uuid.NewString(),
		Participants: [2]Participant{p1, p2},
		Status:       StatusActive,
	}, nil
}

// Participant returns a pointer to the participant with the given player ID,
// or nil when the player is not part of the session.
func (s *Session) Participant(playerID string) *Participant {
	for i := range s.Participants {
		if s.Participants[i].PlayerID == playerID {
			return &s.Participants[i]
		}
	}
	return nil
}

// Opponent returns a pointer to the other participant, or nil when playerID
// is not part of the session.
func (s *Session) Opponent(playerID string) *Participant {
	for i := range s.Participants {
		if s.Participants[i].PlayerID != playerID {
			continue
		}
		return &s.Participants[1-i]
	}
	return nil
}

// AppendEvent appends a narrative entry with a strictly increasing
// timestamp: a timestamp at or before the last entry is bumped one
// millisecond past it.
//
// Postcondition: Events timestamps remain strictly increasing.
func (s *Session) AppendEvent(at int64, message string) {
	if n := len(s.Events); n > 0 && at <= s.Events[n-1].At {
		at = s.Events[n-1].At + 1
	}
	s.Events = append(s.Events, Event{
		ID:      uuid.NewString(),
		At:      at,
		Message: message,
	})
}

// Clone returns a deep copy of the session.
//
// Postcondition: Mutating the clone never affects the original.
func (s Session) Clone() Session {
	cp := s
	cp.Events = make([]Event, len(s.Events))
	copy(cp.Events, s.Events)
	return cp
}
