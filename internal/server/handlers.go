package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/rng"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context, timeout time.Duration) error
}

// Handler exposes the battle API over HTTP.
type Handler struct {
	battles  *battle.Service
	store    battle.Store
	profiles battle.ProfileProvider
	src      rng.Source
	health   HealthChecker
	logger   *zap.Logger
}

// NewHandler creates a Handler. health may be nil when no backing store
// participates in readiness checks.
//
// Precondition: battles, store, profiles, src, and logger must be non-nil.
func NewHandler(battles *battle.Service, store battle.Store, profiles battle.ProfileProvider, src rng.Source, health HealthChecker, logger *zap.Logger) *Handler {
	return &Handler{
		battles:  battles,
		store:    store,
		profiles: profiles,
		src:      src,
		health:   health,
		logger:   logger,
	}
}

// Router builds the gin engine with all routes registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.POST("/battles", h.CreateBattle)
	api.GET("/battles/:id", h.GetBattle)
	api.POST("/battles/:id/actions", h.SubmitAction)
	api.POST("/battles/:id/forfeit", h.ClaimForfeit)
	api.POST("/duels/simulate", h.SimulateDuel)

	return r
}

// participantView is the JSON shape of one session participant.
type participantView struct {
	PlayerID string `json:"player_id"`
	HP       int    `json:"hp"`
	MaxHP    int    `json:"max_hp"`
	Speed    int    `json:"speed"`
	Online   bool   `json:"online"`
}

// eventView is the JSON shape of one narrative log entry.
type eventView struct {
	ID      string `json:"id"`
	At      int64  `json:"at"`
	Message string `json:"message"`
}

// sessionView is the JSON shape of a battle session.
type sessionView struct {
	ID           string            `json:"id"`
	Participants []participantView `json:"participants"`
	Status       string            `json:"status"`
	WinnerID     string            `json:"winner_id,omitempty"`
	Events       []eventView       `json:"events"`
}

func viewOf(s battle.Session) sessionView {
	view := sessionView{
		ID:       s.ID,
		Status:   s.Status.String(),
		WinnerID: s.WinnerID,
		Events:   make([]eventView, 0, len(s.Events)),
	}
	for _, p := range s.Participants {
		view.Participants = append(view.Participants, participantView{
			PlayerID: p.PlayerID,
			HP:       p.HP,
			MaxHP:    p.MaxHP,
			Speed:    p.Speed,
			Online:   p.Online,
		})
	}
	for _, e := range s.Events {
		view.Events = append(view.Events, eventView{ID: e.ID, At: e.At, Message: e.Message})
	}
	return view
}

// Healthz reports process and dependency health.
func (h *Handler) Healthz(c *gin.Context) {
	if h.health != nil {
		if err := h.health.Health(c.Request.Context(), 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createBattleRequest struct {
	Participants []struct {
		PlayerID string `json:"player_id"`
		HP       int    `json:"hp"`
		MaxHP    int    `json:"max_hp"`
		Speed    int    `json:"speed"`
	} `json:"participants"`
}

// CreateBattle opens a new session between two players.
func (h *Handler) CreateBattle(c *gin.Context) {
	var req createBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Participants) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly two participants required"})
		return
	}

	parts := [2]battle.Participant{}
	for i, p := range req.Participants {
		maxHP := p.MaxHP
		if maxHP == 0 {
			maxHP = p.HP
		}
		parts[i] = battle.Participant{
			PlayerID: p.PlayerID,
			HP:       p.HP,
			MaxHP:    maxHP,
			Speed:    p.Speed,
			Online:   true,
		}
	}

	sess, err := battle.NewSession(parts[0], parts[1])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.Create(c.Request.Context(), sess); err != nil {
		h.logger.Error("creating battle session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create battle"})
		return
	}

	c.JSON(http.StatusCreated, viewOf(sess))
}

// GetBattle returns the current session state.
func (h *Handler) GetBattle(c *gin.Context) {
	sess, err := h.store.Read(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, battle.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "battle not found"})
			return
		}
		h.logger.Error("reading battle session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read battle"})
		return
	}
	c.JSON(http.StatusOK, viewOf(sess))
}

type playerRequest struct {
	PlayerID string `json:"player_id"`
}

// SubmitAction applies one attack submission. A failed precondition (the
// session finished, the attacker died, or a lost race) returns 409 so the
// client backs off and refreshes rather than treating it as an error.
func (h *Handler) SubmitAction(c *gin.Context) {
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PlayerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id required"})
		return
	}

	res, err := h.battles.ApplyAction(c.Request.Context(), c.Param("id"), req.PlayerID)
	if err != nil {
		if errors.Is(err, battle.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "battle not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !res.Committed {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "action rejected, refresh and retry shortly",
			"session": viewOf(res.Session),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"damage":   res.Damage.Final,
		"critical": res.Damage.Critical,
		"session":  viewOf(res.Session),
	})
}

// ClaimForfeit ends the battle in the claimant's favor when the opponent
// has disconnected. An online opponent yields 409, not an error.
func (h *Handler) ClaimForfeit(c *gin.Context) {
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PlayerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id required"})
		return
	}

	res, err := h.battles.ClaimForfeit(c.Request.Context(), c.Param("id"), req.PlayerID)
	if err != nil {
		if errors.Is(err, battle.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "battle not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !res.Committed {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "forfeit claim rejected",
			"session": viewOf(res.Session),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": viewOf(res.Session)})
}

type simulateRequest struct {
	Attacker simulateSide `json:"attacker"`
	Defender simulateSide `json:"defender"`
}

type simulateSide struct {
	PlayerID string `json:"player_id"`
	HP       int    `json:"hp"`
}

// SimulateDuel resolves a full turn-capped duel synchronously from the two
// players' current profiles and returns the outcome with its narrative.
func (h *Handler) SimulateDuel(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Attacker.PlayerID == "" || req.Defender.PlayerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "attacker and defender player_id required"})
		return
	}
	if req.Attacker.HP <= 0 || req.Defender.HP <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "both sides require positive hp"})
		return
	}

	atkSnap, err := h.snapshotFor(c.Request.Context(), req.Attacker)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	defSnap, err := h.snapshotFor(c.Request.Context(), req.Defender)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	result := combat.Simulate(atkSnap, defSnap, h.src)
	c.JSON(http.StatusOK, gin.H{
		"winner_id":    result.WinnerID,
		"escaped":      result.Escaped,
		"draw":         result.Draw,
		"rounds":       result.Rounds,
		"remaining_hp": result.RemainingHP,
		"narrative":    result.Narrative,
	})
}

func (h *Handler) snapshotFor(ctx context.Context, side simulateSide) (combat.Snapshot, error) {
	p, err := h.profiles.CombatantProfile(ctx, side.PlayerID)
	if err != nil {
		return combat.Snapshot{}, err
	}
	return combat.Snapshot{
		ID:           p.ID,
		Name:         p.DisplayName,
		BasePower:    p.BasePower,
		CriticalRate: p.CriticalRate,
		Defense:      p.Defense,
		Symbol:       p.Symbol,
		Armor:        p.Armor,
		TacticSymbol: p.TacticSymbol,
		HP:           side.HP,
		MaxHP:        side.HP,
		Level:        p.Level,
		PrimaryStat:  p.PrimaryStat,
		Speed:        p.Speed,
	}, nil
}
