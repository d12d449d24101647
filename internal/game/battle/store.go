package battle

import (
	"context"
	"errors"

	"github.com/cory-johannsen/skirmish/internal/game/gear"
)

// ErrSessionNotFound is returned when a session lookup yields no record.
var ErrSessionNotFound = errors.New("battle session not found")

// CommitResult reports the outcome of one atomic transition attempt.
// A failed precondition is an expected, frequent, non-exceptional outcome
// ("no-op, retry or ignore"), never an error.
type CommitResult struct {
	// Committed is true when the precondition held and the mutation was
	// applied atomically.
	Committed bool
	// Session is the state after the attempt: the mutated state when
	// committed, the unchanged current state otherwise.
	Session Session
}

// Store is the atomic session persistence contract. Implementations must
// provide compare-and-swap or transaction semantics: the mutation applies
// iff the precondition holds against the current stored state, with no
// partial effect otherwise, and a concurrent-writer conflict is retried
// against refreshed state transparently.
type Store interface {
	// Create persists a new session record.
	Create(ctx context.Context, s Session) error
	// Read returns the current session state or ErrSessionNotFound.
	Read(ctx context.Context, id string) (Session, error)
	// CommitIf atomically applies mutate iff pred holds on the current
	// state. pred and mutate may be re-invoked against refreshed state on
	// conflict, so both must be pure functions of the passed-in session.
	CommitIf(ctx context.Context, id string, pred func(*Session) bool, mutate func(*Session)) (CommitResult, error)
}

// Profile is the point-in-time combatant snapshot fetched from the external
// profile service. It can be slightly stale by the time a commit lands; the
// state machine accepts this relaxation by design.
type Profile struct {
	ID           string
	DisplayName  string
	BasePower    int
	Defense      int
	CriticalRate float64
	Level        int
	PrimaryStat  int
	Speed        int
	Symbol       *gear.Symbol
	TacticSymbol *gear.Symbol
	Armor        gear.Armor
}

// ProfileProvider fetches combatant profiles.
type ProfileProvider interface {
	CombatantProfile(ctx context.Context, playerID string) (Profile, error)
}

// PresenceSource reports participant liveness. Used only to gate forfeit
// claims; the flag is trusted to be maintained by the external store's
// disconnect detection.
type PresenceSource interface {
	IsOnline(ctx context.Context, playerID string) (bool, error)
}

// RewardSink settles a finished session. Invoked at most once per terminal
// transition, fire-and-forget: errors are logged by the caller, not retried.
type RewardSink interface {
	// Purse returns the player's current balance and bounty.
	Purse(ctx context.Context, playerID string) (balance, bounty int, err error)
	// TransferCurrency moves amount from one player's balance to the
	// other's bounty.
	TransferCurrency(ctx context.Context, fromID, toID string, amount int) error
	// UpdateRanking adjusts the named ranking metric for a player.
	UpdateRanking(ctx context.Context, playerID, metric string, value int) error
}
