package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/skillgomoku/internal/dependencies/clock"
	"github.com/mcoot/skillgomoku/internal/dependencies/random"
	"github.com/mcoot/skillgomoku/internal/model"
	"github.com/mcoot/skillgomoku/internal/services/effects"
	"github.com/mcoot/skillgomoku/internal/services/rules"
	"github.com/mcoot/skillgomoku/internal/services/tracker"
	"github.com/mcoot/skillgomoku/internal/services/turn"
	"github.com/mcoot/skillgomoku/internal/storage"
)

const (
	gameIDAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	gameIDLength      = 12
	maxGameIDAttempts = 5
)

// Notifier receives game events for presentation collaborators.
// Publish may be called concurrently from async effects.
type Notifier interface {
	Publish(ctx context.Context, event model.Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, model.Event) {}

// Notifiers fans each event out to every notifier in order
type Notifiers []Notifier

func (n Notifiers) Publish(ctx context.Context, event model.Event) {
	for _, notifier := range n {
		notifier.Publish(ctx, event)
	}
}

// session holds the per-game serialisation lock and effect queue
type session struct {
	mu      sync.Mutex
	effects *effects.Manager
}

// Controller is the session root. It owns every mutation of a game and
// serialises turns per game.
type Controller struct {
	storage   storage.Storage
	validator *rules.Validator
	tracker   *tracker.Service
	turns     *turn.Manager
	notifier  Notifier
	effectCfg effects.Config
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[model.GameID]*session
}

// NewController creates a new game Controller. A nil notifier discards events.
func NewController(
	storage storage.Storage,
	validator *rules.Validator,
	tracker *tracker.Service,
	turns *turn.Manager,
	notifier Notifier,
	effectCfg effects.Config,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Controller{
		storage:   storage,
		validator: validator,
		tracker:   tracker,
		turns:     turns,
		notifier:  notifier,
		effectCfg: effectCfg,
		clock:     clock,
		random:    random,
		logger:    logger,
		sessions:  make(map[model.GameID]*session),
	}
}

func (c *Controller) session(id model.GameID) *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess, ok := c.sessions[id]
	if !ok {
		sess = &session{
			effects: effects.NewManager(c.effectCfg, c.clock, c.logger.With(slog.String("game_id", string(id)))),
		}
		c.sessions[id] = sess
	}
	return sess
}

// lockSession loads the game under its session lock. Sessions are only
// created for stored games, and dropped once the game is gone. On success
// the caller must unlock the returned session.
func (c *Controller) lockSession(ctx context.Context, id model.GameID) (*session, *model.Game, error) {
	if _, err := c.storage.GetGame(ctx, id); err != nil {
		return nil, nil, err
	}

	sess := c.session(id)
	sess.mu.Lock()

	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrGameNotFound) {
			c.dropSession(id, sess)
		}
		sess.mu.Unlock()
		return nil, nil, err
	}
	return sess, game, nil
}

func (c *Controller) dropSession(id model.GameID, sess *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessions[id] == sess {
		delete(c.sessions, id)
	}
}

// pruneSessions drops idle sessions whose game is no longer stored,
// e.g. after a Redis TTL expiry
func (c *Controller) pruneSessions(live []model.GameSummary) {
	ids := make(map[model.GameID]bool, len(live))
	for _, summary := range live {
		ids[summary.ID] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for id, sess := range c.sessions {
		if ids[id] || !sess.mu.TryLock() {
			continue
		}
		delete(c.sessions, id)
		sess.mu.Unlock()
	}
}

// CreateGame starts a new game with the given rules
func (c *Controller) CreateGame(ctx context.Context, gameRules model.Rules) (*model.Game, error) {
	if err := gameRules.Validate(); err != nil {
		return nil, err
	}

	gameID, err := c.newGameID(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	game := model.NewGame(gameID, gameRules, now)
	c.tracker.Reset(game)

	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(gameID)),
		slog.Int("board_size", gameRules.BoardSize),
		slog.Int("win_length", gameRules.WinLength),
	)

	c.notifier.Publish(ctx, model.Event{
		Type:      model.EventGameStarted,
		Timestamp: now,
		GameID:    gameID,
		Payload:   model.GameStartedPayload{Rules: gameRules},
	})

	return game, nil
}

// newGameID draws ids until one is not already stored
func (c *Controller) newGameID(ctx context.Context) (model.GameID, error) {
	for attempt := 0; attempt < maxGameIDAttempts; attempt++ {
		id := model.GameID(c.random.String(gameIDLength, gameIDAlphabet))
		_, err := c.storage.GetGame(ctx, id)
		if errors.Is(err, model.ErrGameNotFound) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
		c.logger.Warn("game id collision", slog.String("game_id", string(id)))
	}
	return "", fmt.Errorf("no unused game id after %d attempts", maxGameIDAttempts)
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, gameID)
}

// ListGames returns a summary of every stored game
func (c *Controller) ListGames(ctx context.Context) ([]model.GameSummary, error) {
	summaries, err := c.storage.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	c.pruneSessions(summaries)
	return summaries, nil
}

// DeleteGame removes a game and its session
func (c *Controller) DeleteGame(ctx context.Context, gameID model.GameID) error {
	sess, _, err := c.lockSession(ctx, gameID)
	if err != nil {
		return err
	}
	defer sess.mu.Unlock()

	if err := c.storage.DeleteGame(ctx, gameID); err != nil {
		return err
	}
	c.dropSession(gameID, sess)

	c.logger.Info("game deleted", slog.String("game_id", string(gameID)))
	return nil
}

// RestartGame clears the board and both players' records. Turn ids keep
// counting so they stay unique for the lifetime of the game.
func (c *Controller) RestartGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	sess, game, err := c.lockSession(ctx, gameID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	// Let effects from the previous game finish before its state goes away
	if err := sess.effects.WaitForAllEffects(ctx); err != nil {
		return nil, err
	}

	now := c.clock.Now()
	game.ResetBoard(now)
	game.Turns.Completed = nil
	c.tracker.Reset(game)

	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game restarted", slog.String("game_id", string(gameID)))

	c.notifier.Publish(ctx, model.Event{
		Type:      model.EventGameStarted,
		Timestamp: now,
		GameID:    gameID,
		Payload:   model.GameStartedPayload{Rules: game.Rules, Restarted: true},
	})

	return game, nil
}

// SubmitOperation runs one turn for the player. The turn executes against a
// copy of the game which is only persisted if every phase succeeds. A failed
// turn leaves the game as it was apart from the consumed turn id, and the
// returned error carries the failure alongside the result.
func (c *Controller) SubmitOperation(ctx context.Context, gameID model.GameID, player model.Player, op model.Operation) (*model.TurnResult, error) {
	sess, game, err := c.lockSession(ctx, gameID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	before := c.availability(game)

	working := game.Clone()
	t := c.turns.CreateTurn(working, player, op)
	tc := &turn.Context{
		Game:    working,
		Turn:    t,
		Effects: sess.effects,
		Sink:    &effectSink{notifier: c.notifier, clock: c.clock},
	}

	if execErr := c.turns.Execute(ctx, tc); execErr != nil {
		game.Turns.NextID = working.Turns.NextID
		if err := c.save(ctx, game); err != nil {
			return nil, err
		}

		c.notifier.Publish(ctx, model.Event{
			Type:      model.EventTurnFailed,
			Timestamp: c.clock.Now(),
			GameID:    gameID,
			Player:    player,
			Payload: model.TurnFailedPayload{
				TurnID: t.ID,
				Phase:  t.Phase,
				Type:   op.Type,
				Error:  execErr.Error(),
			},
		})

		return &model.TurnResult{
			Success: false,
			Turn:    t,
			Game:    game,
			Error:   execErr.Error(),
		}, execErr
	}

	working.UpdatedAt = c.clock.Now()
	if err := c.save(ctx, working); err != nil {
		return nil, err
	}

	now := c.clock.Now()
	c.notifier.Publish(ctx, model.Event{
		Type:      model.EventTurnCompleted,
		Timestamp: now,
		GameID:    gameID,
		Player:    player,
		Payload: model.TurnCompletedPayload{
			Turn:          t,
			CurrentPlayer: working.CurrentPlayer,
			Board:         working.Board,
		},
	})
	c.publishAvailability(ctx, working, before)

	if t.GameEnded {
		c.logger.Info("game ended",
			slog.String("game_id", string(gameID)),
			slog.String("winner", string(working.Winner)),
			slog.Int("turn_id", t.ID),
		)
		c.notifier.Publish(ctx, model.Event{
			Type:      model.EventGameEnded,
			Timestamp: now,
			GameID:    gameID,
			Player:    working.Winner,
			Payload: model.GameEndedPayload{
				Winner: working.Winner,
				Draw:   working.Winner == "",
				TurnID: t.ID,
			},
		})
	}

	return &model.TurnResult{
		Success: true,
		Turn:    t,
		Game:    working,
	}, nil
}

func (c *Controller) save(ctx context.Context, game *model.Game) error {
	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

type availabilityKey struct {
	player model.Player
	skill  model.SkillID
}

func (c *Controller) availability(game *model.Game) map[availabilityKey]bool {
	result := make(map[availabilityKey]bool)
	for _, player := range model.Players {
		for _, status := range c.tracker.SkillStatus(game, player) {
			result[availabilityKey{player: player, skill: status.Skill}] = status.Available
		}
	}
	return result
}

// publishAvailability emits one event per skill whose availability flipped
func (c *Controller) publishAvailability(ctx context.Context, game *model.Game, before map[availabilityKey]bool) {
	now := c.clock.Now()
	for _, player := range model.Players {
		energy := c.tracker.Energy(game, player)
		for _, status := range c.tracker.SkillStatus(game, player) {
			if before[availabilityKey{player: player, skill: status.Skill}] == status.Available {
				continue
			}
			c.notifier.Publish(ctx, model.Event{
				Type:      model.EventSkillAvailability,
				Timestamp: now,
				GameID:    game.ID,
				Player:    player,
				Payload: model.SkillAvailabilityPayload{
					Skill:     status.Skill,
					Available: status.Available,
					Energy:    energy,
					Cooldown:  status.Cooldown,
				},
			})
		}
	}
}

// PlayerStatus returns the energy, cooldown and usage view of a player
func (c *Controller) PlayerStatus(ctx context.Context, gameID model.GameID, player model.Player) (tracker.PlayerStatus, error) {
	if !player.Valid() {
		return tracker.PlayerStatus{}, fmt.Errorf("%w: %q", model.ErrInvalidPlayer, player)
	}
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return tracker.PlayerStatus{}, err
	}
	return c.tracker.PlayerStatus(game, player), nil
}

// LegalPlacements lists the cells the player could place on right now.
// Forbidden regions are taken into account.
func (c *Controller) LegalPlacements(ctx context.Context, gameID model.GameID, player model.Player) ([]model.Position, error) {
	if !player.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidPlayer, player)
	}
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !game.IsPlaying() {
		return []model.Position{}, nil
	}
	return c.validator.LegalPlacements(game, player), nil
}

// IsProtected reports whether a cell is in the player's protection set
func (c *Controller) IsProtected(ctx context.Context, gameID model.GameID, player model.Player, pos model.Position) (bool, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return false, err
	}
	return game.IsProtected(player, pos), nil
}

// SkillCatalogue returns the static skill definitions
func (c *Controller) SkillCatalogue() []model.SkillDefinition {
	return model.Skills()
}

// EffectStats returns the async effect counters of a game's session.
// Games without a session report zero counters.
func (c *Controller) EffectStats(gameID model.GameID) effects.Stats {
	c.mu.Lock()
	sess, ok := c.sessions[gameID]
	c.mu.Unlock()
	if !ok {
		return effects.Stats{}
	}
	return sess.effects.Stats()
}

// effectSink turns resolved skill effects into skill_effect events
type effectSink struct {
	notifier Notifier
	clock    clock.Clock
}

func (s *effectSink) PublishEffect(ctx context.Context, gameID model.GameID, turnID int, effect model.SkillEffect) error {
	s.notifier.Publish(ctx, model.Event{
		Type:      model.EventSkillEffect,
		Timestamp: s.clock.Now(),
		GameID:    gameID,
		Player:    effect.Player,
		Payload: model.SkillEffectPayload{
			TurnID: turnID,
			Effect: effect,
		},
	})
	return nil
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateGame(ctx context.Context, gameRules model.Rules) (*model.Game, error)
	GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error)
	ListGames(ctx context.Context) ([]model.GameSummary, error)
	DeleteGame(ctx context.Context, gameID model.GameID) error
	RestartGame(ctx context.Context, gameID model.GameID) (*model.Game, error)
	SubmitOperation(ctx context.Context, gameID model.GameID, player model.Player, op model.Operation) (*model.TurnResult, error)
	PlayerStatus(ctx context.Context, gameID model.GameID, player model.Player) (tracker.PlayerStatus, error)
	LegalPlacements(ctx context.Context, gameID model.GameID, player model.Player) ([]model.Position, error)
	IsProtected(ctx context.Context, gameID model.GameID, player model.Player, pos model.Position) (bool, error)
	SkillCatalogue() []model.SkillDefinition
}

var _ ControllerInterface = (*Controller)(nil)
