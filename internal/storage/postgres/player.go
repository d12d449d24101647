package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/gear"
)

// ErrPlayerNotFound is returned when a player lookup yields no results.
var ErrPlayerNotFound = errors.New("player not found")

// PlayerRepository provides player persistence and implements the battle
// package's ProfileProvider, PresenceSource, and RewardSink contracts over
// the players table.
type PlayerRepository struct {
	db *pgxpool.Pool
}

// NewPlayerRepository creates a PlayerRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// playerRow mirrors the players table columns that feed a combat profile.
type playerRow struct {
	id            string
	displayName   string
	basePower     int
	defense       int
	criticalRate  float64
	level         int
	primaryStat   int
	speed         int
	symbolID      *string
	symbolKind    *string
	symbolElement *string
	symbolPower   *int
	symbolPayload map[string]string
	tacticID      *string
	tacticPayload map[string]string
	armorTags     []string
}

// CombatantProfile loads the point-in-time combat profile for a player.
//
// Postcondition: Returns the profile or ErrPlayerNotFound. A player with no
// equipped symbol yields a nil Symbol (bare-handed); a missing tactic symbol
// yields a nil TacticSymbol (default stance).
func (r *PlayerRepository) CombatantProfile(ctx context.Context, playerID string) (battle.Profile, error) {
	var row playerRow
	err := r.db.QueryRow(ctx, `
		SELECT id, display_name, base_power, defense, critical_rate,
		       level, primary_stat, speed,
		       symbol_id, symbol_kind, symbol_element, symbol_power, symbol_payload,
		       tactic_id, tactic_payload, armor_tags
		FROM players WHERE id = $1`,
		playerID,
	).Scan(
		&row.id, &row.displayName, &row.basePower, &row.defense, &row.criticalRate,
		&row.level, &row.primaryStat, &row.speed,
		&row.symbolID, &row.symbolKind, &row.symbolElement, &row.symbolPower, &row.symbolPayload,
		&row.tacticID, &row.tacticPayload, &row.armorTags,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return battle.Profile{}, ErrPlayerNotFound
		}
		return battle.Profile{}, fmt.Errorf("querying player: %w", err)
	}

	profile := battle.Profile{
		ID:           row.id,
		DisplayName:  row.displayName,
		BasePower:    row.basePower,
		Defense:      row.defense,
		CriticalRate: row.criticalRate,
		Level:        row.level,
		PrimaryStat:  row.primaryStat,
		Speed:        row.speed,
		Armor:        gear.NewArmor(row.armorTags),
	}

	if row.symbolID != nil {
		power := 0
		if row.symbolPower != nil {
			power = *row.symbolPower
		}
		kind, element := "", ""
		if row.symbolKind != nil {
			kind = *row.symbolKind
		}
		if row.symbolElement != nil {
			element = *row.symbolElement
		}
		sym, err := gear.NewSymbol(*row.symbolID, gear.ParseKind(kind), gear.ParseElement(element), power, row.symbolPayload)
		if err != nil {
			return battle.Profile{}, fmt.Errorf("building symbol for player %q: %w", playerID, err)
		}
		profile.Symbol = sym
	}

	if row.tacticID != nil {
		sym, err := gear.NewSymbol(*row.tacticID, gear.KindPassive, gear.ElementNone, 0, row.tacticPayload)
		if err != nil {
			return battle.Profile{}, fmt.Errorf("building tactic symbol for player %q: %w", playerID, err)
		}
		profile.TacticSymbol = sym
	}

	return profile, nil
}

// IsOnline reports the player's persisted presence flag, maintained by the
// connection layer's disconnect detection.
//
// Postcondition: Returns the flag or ErrPlayerNotFound.
func (r *PlayerRepository) IsOnline(ctx context.Context, playerID string) (bool, error) {
	var online bool
	err := r.db.QueryRow(ctx,
		`SELECT online FROM players WHERE id = $1`,
		playerID,
	).Scan(&online)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrPlayerNotFound
		}
		return false, fmt.Errorf("querying presence: %w", err)
	}
	return online, nil
}

// SetOnline updates the player's presence flag.
//
// Postcondition: Returns nil on success, ErrPlayerNotFound if no row updated.
func (r *PlayerRepository) SetOnline(ctx context.Context, playerID string, online bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE players SET online = $2 WHERE id = $1`,
		playerID, online,
	)
	if err != nil {
		return fmt.Errorf("updating presence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// Purse returns the player's spendable balance and held bounty.
//
// Postcondition: Returns the purse or ErrPlayerNotFound.
func (r *PlayerRepository) Purse(ctx context.Context, playerID string) (int, int, error) {
	var balance, bounty int
	err := r.db.QueryRow(ctx,
		`SELECT balance, bounty FROM players WHERE id = $1`,
		playerID,
	).Scan(&balance, &bounty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, ErrPlayerNotFound
		}
		return 0, 0, fmt.Errorf("querying purse: %w", err)
	}
	return balance, bounty, nil
}

// TransferCurrency moves amount from one player's balance into the other's
// bounty inside a single transaction. The debit clamps at zero: a loser
// whose balance dropped below the settled figure between read and transfer
// pays what remains rather than going negative.
//
// Precondition: amount must be >= 0.
// Postcondition: Either both rows are updated or neither is.
func (r *PlayerRepository) TransferCurrency(ctx context.Context, fromID, toID string, amount int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transfer: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE players SET balance = GREATEST(balance - $2, 0) WHERE id = $1`,
		fromID, amount,
	)
	if err != nil {
		return fmt.Errorf("debiting %q: %w", fromID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}

	tag, err = tx.Exec(ctx,
		`UPDATE players SET bounty = bounty + $2 WHERE id = $1`,
		toID, amount,
	)
	if err != nil {
		return fmt.Errorf("crediting %q: %w", toID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transfer: %w", err)
	}
	return nil
}

// UpdateRanking adjusts the named ranking metric for a player.
//
// Precondition: metric must be battle.MetricWins or battle.MetricLosses.
// Postcondition: Returns nil on success, ErrPlayerNotFound if no row updated.
func (r *PlayerRepository) UpdateRanking(ctx context.Context, playerID, metric string, value int) error {
	var column string
	switch metric {
	case battle.MetricWins:
		column = "wins"
	case battle.MetricLosses:
		column = "losses"
	default:
		return fmt.Errorf("unknown ranking metric %q", metric)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE players SET `+column+` = `+column+` + $2 WHERE id = $1`,
		playerID, value,
	)
	if err != nil {
		return fmt.Errorf("updating ranking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}
