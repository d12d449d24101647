package battle

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/rng"
)

// Ranking metric names reported to the reward sink.
const (
	MetricWins   = "wins"
	MetricLosses = "losses"
)

// Reward settlement bounds: the stolen fraction of the loser's balance is
// drawn uniformly from [stealMin, stealMax).
const (
	stealMin = 0.1
	stealMax = 0.3
)

// ApplyResult reports one action submission.
type ApplyResult struct {
	// Committed is false when the atomic precondition failed (session
	// finished, attacker dead, or a losing race). The caller should treat
	// this as "try again shortly", not as a failure.
	Committed bool
	// Session is the state after the attempt.
	Session Session
	// Damage holds the calculation that was applied; nil when not committed.
	Damage *combat.DamageResult
}

// Service orchestrates battle sessions over injected collaborators.
// Construct once at process start and share; all methods are safe for
// concurrent use.
type Service struct {
	store    Store
	profiles ProfileProvider
	presence PresenceSource
	rewards  RewardSink
	src      rng.Source
	logger   *zap.Logger
	now      func() int64

	// profileGroup deduplicates concurrent profile fetches per player, so
	// two gauge-driven submissions arriving together share one fetch.
	profileGroup singleflight.Group
}

// NewService creates a battle Service.
//
// Precondition: all arguments must be non-nil.
func NewService(store Store, profiles ProfileProvider, presence PresenceSource, rewards RewardSink, src rng.Source, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		profiles: profiles,
		presence: presence,
		rewards:  rewards,
		src:      src,
		logger:   logger,
		now:      func() int64 { return time.Now().UnixMilli() },
	}
}

// profile fetches a combatant profile, deduplicating concurrent fetches for
// the same player.
func (s *Service) profile(ctx context.Context, playerID string) (Profile, error) {
	v, err, _ := s.profileGroup.Do(playerID, func() (any, error) {
		return s.profiles.CombatantProfile(ctx, playerID)
	})
	if err != nil {
		return Profile{}, fmt.Errorf("fetching profile %q: %w", playerID, err)
	}
	return v.(Profile), nil
}

// snapshot builds the calculation input for one participant from a profile
// and the session-recorded HP.
func snapshot(p Profile, hp, maxHP int) combat.Snapshot {
	return combat.Snapshot{
		ID:           p.ID,
		Name:         p.DisplayName,
		BasePower:    p.BasePower,
		CriticalRate: p.CriticalRate,
		Defense:      p.Defense,
		Symbol:       p.Symbol,
		Armor:        p.Armor,
		TacticSymbol: p.TacticSymbol,
		HP:           hp,
		MaxHP:        maxHP,
		Level:        p.Level,
		PrimaryStat:  p.PrimaryStat,
		Speed:        p.Speed,
	}
}

// ApplyAction applies one attack by attackerID to the session.
//
// Profiles are fetched and damage is computed outside the atomic region
// from a point-in-time snapshot; a profile change between snapshot and
// commit can make the figure slightly stale, which is accepted. The commit
// itself checks, atomically: the session is Active, the attacker is a
// participant, and the attacker's HP is above zero. If any precondition
// fails the call returns Committed=false with no mutation.
//
// When the committed mutation drops the defender to 0 HP the session
// transitions to Finished with the attacker as winner; that transition can
// succeed exactly once per session, and reward settlement runs exactly once
// from its success branch.
//
// Precondition: ctx must be non-nil; sessionID and attackerID non-empty.
// Postcondition: Returns ErrSessionNotFound when no such session exists;
// otherwise a non-error ApplyResult.
func (s *Service) ApplyAction(ctx context.Context, sessionID, attackerID string) (ApplyResult, error) {
	current, err := s.store.Read(ctx, sessionID)
	if err != nil {
		return ApplyResult{}, err
	}

	attacker := current.Participant(attackerID)
	defender := current.Opponent(attackerID)
	if attacker == nil || defender == nil {
		return ApplyResult{}, fmt.Errorf("player %q is not part of session %q", attackerID, sessionID)
	}

	attackerProfile, err := s.profile(ctx, attacker.PlayerID)
	if err != nil {
		return ApplyResult{}, err
	}
	defenderProfile, err := s.profile(ctx, defender.PlayerID)
	if err != nil {
		return ApplyResult{}, err
	}

	atkSnap := snapshot(attackerProfile, attacker.HP, attacker.MaxHP)
	defSnap := snapshot(defenderProfile, defender.HP, defender.MaxHP)
	tactics := combat.ResolveTactics(atkSnap.Tactic(), defSnap.Tactic())
	dmg := combat.CalculateDamage(atkSnap, defSnap, tactics, s.src)

	at := s.now()
	res, err := s.store.CommitIf(ctx, sessionID,
		func(sess *Session) bool {
			a := sess.Participant(attackerID)
			return sess.Status == StatusActive && a != nil && a.HP > 0
		},
		func(sess *Session) {
			def := sess.Opponent(attackerID)
			def.HP -= dmg.Final
			if def.HP < 0 {
				def.HP = 0
			}
			crit := ""
			if dmg.Critical {
				crit = " critically"
			}
			sess.AppendEvent(at, fmt.Sprintf("%s%s hits %s for %d.",
				attackerProfile.DisplayName, crit, defenderProfile.DisplayName, dmg.Final))
			if def.HP <= 0 {
				sess.Status = StatusFinished
				sess.WinnerID = attackerID
				sess.AppendEvent(at, fmt.Sprintf("%s is defeated. %s wins.",
					defenderProfile.DisplayName, attackerProfile.DisplayName))
			}
		},
	)
	if err != nil {
		return ApplyResult{}, err
	}
	if !res.Committed {
		s.logger.Debug("action commit precondition failed",
			zap.String("session_id", sessionID),
			zap.String("attacker_id", attackerID),
		)
		return ApplyResult{Committed: false, Session: res.Session}, nil
	}

	// Only the commit that flipped the session to Finished reaches this
	// branch with a finished state: later actions fail the Active
	// precondition, so settlement runs at most once per session.
	if res.Session.Status == StatusFinished {
		s.settleRewards(ctx, attackerID, defender.PlayerID)
	}

	return ApplyResult{Committed: true, Session: res.Session, Damage: &dmg}, nil
}

// ClaimForfeit ends the session in the claimant's favor when the opponent's
// presence flag reads offline. The presence flag is trusted as maintained
// by the external store's disconnect detection; beyond it the only
// precondition is that the session is not already finished.
//
// Postcondition: Returns Committed=false when the opponent is still online,
// the session is already finished, or the claim lost a commit race.
func (s *Service) ClaimForfeit(ctx context.Context, sessionID, claimantID string) (ApplyResult, error) {
	current, err := s.store.Read(ctx, sessionID)
	if err != nil {
		return ApplyResult{}, err
	}

	claimant := current.Participant(claimantID)
	opponent := current.Opponent(claimantID)
	if claimant == nil || opponent == nil {
		return ApplyResult{}, fmt.Errorf("player %q is not part of session %q", claimantID, sessionID)
	}

	online, err := s.presence.IsOnline(ctx, opponent.PlayerID)
	if err != nil {
		return ApplyResult{}, fmt.Errorf("checking presence of %q: %w", opponent.PlayerID, err)
	}
	if online {
		return ApplyResult{Committed: false, Session: current}, nil
	}

	at := s.now()
	res, err := s.store.CommitIf(ctx, sessionID,
		func(sess *Session) bool {
			return sess.Status == StatusActive && sess.Participant(claimantID) != nil
		},
		func(sess *Session) {
			sess.Status = StatusFinished
			sess.WinnerID = claimantID
			opp := sess.Opponent(claimantID)
			opp.Online = false
			sess.AppendEvent(at, fmt.Sprintf("%s left the battle. %s wins by forfeit.",
				opp.PlayerID, claimantID))
		},
	)
	if err != nil {
		return ApplyResult{}, err
	}
	if !res.Committed {
		return ApplyResult{Committed: false, Session: res.Session}, nil
	}

	s.settleRewards(ctx, claimantID, opponent.PlayerID)
	return ApplyResult{Committed: true, Session: res.Session}, nil
}

// settleRewards transfers the stolen bounty and updates rankings after a
// terminal transition. Called exactly once from the transition-success
// branch; failures are logged and never retried.
func (s *Service) settleRewards(ctx context.Context, winnerID, loserID string) {
	balance, bounty, err := s.rewards.Purse(ctx, loserID)
	if err != nil {
		s.logger.Error("reading loser purse for settlement",
			zap.String("loser_id", loserID),
			zap.Error(err),
		)
		return
	}

	stolen := int(math.Floor(float64(balance) * rng.Between(s.src, stealMin, stealMax)))
	if stolen < bounty {
		stolen = bounty
	}

	if err := s.rewards.TransferCurrency(ctx, loserID, winnerID, stolen); err != nil {
		s.logger.Error("transferring settlement currency",
			zap.String("winner_id", winnerID),
			zap.String("loser_id", loserID),
			zap.Int("amount", stolen),
			zap.Error(err),
		)
	}
	if err := s.rewards.UpdateRanking(ctx, winnerID, MetricWins, 1); err != nil {
		s.logger.Error("updating winner ranking", zap.String("player_id", winnerID), zap.Error(err))
	}
	if err := s.rewards.UpdateRanking(ctx, loserID, MetricLosses, 1); err != nil {
		s.logger.Error("updating loser ranking", zap.String("player_id", loserID), zap.Error(err))
	}

	s.logger.Info("battle rewards settled",
		zap.String("winner_id", winnerID),
		zap.String("loser_id", loserID),
		zap.Int("stolen", stolen),
	)
}
