package turn

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/skillgomoku/internal/dependencies/clock"
	"github.com/mcoot/skillgomoku/internal/model"
	"github.com/mcoot/skillgomoku/internal/services/effects"
	"github.com/mcoot/skillgomoku/internal/services/executor"
)

// Config holds the tunables of the turn manager
type Config struct {
	HistoryCap int // Completed turns kept per game
}

// DefaultConfig returns the default turn manager configuration
func DefaultConfig() Config {
	return Config{
		HistoryCap: 100,
	}
}

// EffectSink receives resolved skill effects from async effects
type EffectSink interface {
	PublishEffect(ctx context.Context, gameID model.GameID, turnID int, effect model.SkillEffect) error
}

// Context carries the state of one turn through its phases
type Context struct {
	Game    *model.Game
	Turn    *model.Turn
	Effects effects.ManagerInterface
	Sink    EffectSink // Optional

	// Populated by CORE_OPERATION hooks
	Placed       *model.Position
	SkillEffects []model.SkillEffect
	Undone       *model.HistoryEntry

	// Populated by TURN_SWITCH hooks
	Switch *executor.SwitchResult
}

// Hook is a phase handler. Returning an error aborts the turn.
type Hook func(ctx context.Context, tc *Context) error

type namedHook struct {
	name string
	fn   Hook
}

// Manager sequences the four phases of a turn and runs their hooks in
// registration order
type Manager struct {
	config Config
	hooks  map[model.Phase][]namedHook
	clock  clock.Clock
	logger *slog.Logger
}

// NewManager creates a new turn Manager with no hooks registered
func NewManager(config Config, clock clock.Clock, logger *slog.Logger) *Manager {
	if config.HistoryCap <= 0 {
		config.HistoryCap = DefaultConfig().HistoryCap
	}
	return &Manager{
		config: config,
		hooks:  make(map[model.Phase][]namedHook),
		clock:  clock,
		logger: logger,
	}
}

// Register appends a hook to a phase
func (m *Manager) Register(phase model.Phase, name string, hook Hook) {
	m.hooks[phase] = append(m.hooks[phase], namedHook{name: name, fn: hook})
}

// Hooks returns the names of the hooks registered for a phase, in order
func (m *Manager) Hooks(phase model.Phase) []string {
	names := make([]string, 0, len(m.hooks[phase]))
	for _, h := range m.hooks[phase] {
		names = append(names, h.name)
	}
	return names
}

// CreateTurn assigns the next turn id of the game. Ids are never reused,
// including for turns that later fail.
func (m *Manager) CreateTurn(game *model.Game, player model.Player, op model.Operation) *model.Turn {
	id := game.Turns.NextID
	if id < 1 {
		id = 1
	}
	game.Turns.NextID = id + 1

	return &model.Turn{
		ID:        id,
		Player:    player,
		Operation: op,
		Phase:     model.PhasePreCheck,
		Status:    model.TurnPending,
		CreatedAt: m.clock.Now(),
	}
}

// Execute runs every phase of the turn in order. The first hook error aborts
// the remaining phases and marks the turn failed. Async effects registered
// during EFFECT_SETTLEMENT are awaited before TURN_SWITCH.
func (m *Manager) Execute(ctx context.Context, tc *Context) error {
	turn := tc.Turn
	turn.Status = model.TurnExecuting

	for _, phase := range model.Phases {
		turn.Phase = phase
		for _, h := range m.hooks[phase] {
			if err := h.fn(ctx, tc); err != nil {
				return m.fail(tc, fmt.Errorf("%w: %s/%s: %w", model.ErrHookFailed, phase, h.name, err))
			}
		}

		if phase == model.PhaseEffectSettlement && tc.Effects != nil {
			if err := tc.Effects.WaitForAllEffects(ctx); err != nil {
				return m.fail(tc, fmt.Errorf("waiting for effects: %w", err))
			}
		}
	}

	now := m.clock.Now()
	turn.Status = model.TurnCompleted
	turn.CompletedAt = &now
	m.record(tc.Game, turn)

	m.logger.Info("turn completed",
		slog.String("game_id", string(tc.Game.ID)),
		slog.Int("turn_id", turn.ID),
		slog.String("player", string(turn.Player)),
		slog.String("operation", string(turn.Operation.Type)),
		slog.String("current_player", string(tc.Game.CurrentPlayer)),
	)
	return nil
}

func (m *Manager) fail(tc *Context, err error) error {
	tc.Turn.Status = model.TurnFailed
	tc.Turn.Error = err.Error()

	m.logger.Warn("turn failed",
		slog.String("game_id", string(tc.Game.ID)),
		slog.Int("turn_id", tc.Turn.ID),
		slog.String("player", string(tc.Turn.Player)),
		slog.String("phase", tc.Turn.Phase.String()),
		slog.String("error", err.Error()),
	)
	return err
}

// record appends a completed turn to the game's log, dropping the oldest beyond the cap
func (m *Manager) record(game *model.Game, turn *model.Turn) {
	game.Turns.Completed = append(game.Turns.Completed, turn)
	if over := len(game.Turns.Completed) - m.config.HistoryCap; over > 0 {
		game.Turns.Completed = append([]*model.Turn(nil), game.Turns.Completed[over:]...)
	}
}

// Interface for dependency injection
type ManagerInterface interface {
	Register(phase model.Phase, name string, hook Hook)
	CreateTurn(game *model.Game, player model.Player, op model.Operation) *model.Turn
	Execute(ctx context.Context, tc *Context) error
}

var _ ManagerInterface = (*Manager)(nil)
