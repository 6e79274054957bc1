package turn

import (
	"context"
	"fmt"

	"github.com/mcoot/skillgomoku/internal/model"
	"github.com/mcoot/skillgomoku/internal/services/board"
	"github.com/mcoot/skillgomoku/internal/services/executor"
	"github.com/mcoot/skillgomoku/internal/services/rules"
)

// DefaultHooks holds the collaborators of the standard rule pipeline
type DefaultHooks struct {
	validator *rules.Validator
	executor  *executor.Executor
	board     *board.Service
}

// NewDefaultHooks creates the standard hook set
func NewDefaultHooks(validator *rules.Validator, executor *executor.Executor, board *board.Service) *DefaultHooks {
	return &DefaultHooks{
		validator: validator,
		executor:  executor,
		board:     board,
	}
}

// RegisterDefaultHooks installs the standard pipeline on the manager
func (m *Manager) RegisterDefaultHooks(h *DefaultHooks) {
	m.Register(model.PhasePreCheck, "validate", h.Validate)
	m.Register(model.PhaseCoreOperation, "apply_operation", h.ApplyOperation)
	m.Register(model.PhaseEffectSettlement, "check_victory", h.CheckVictory)
	m.Register(model.PhaseEffectSettlement, "spawn_effects", h.SpawnEffects)
	m.Register(model.PhaseTurnSwitch, "switch_player", h.SwitchPlayer)
}

// Validate runs the rule validator against the operation
func (h *DefaultHooks) Validate(_ context.Context, tc *Context) error {
	return h.validator.ValidateOperation(tc.Game, tc.Turn.Player, tc.Turn.Operation)
}

// ApplyOperation performs the placement, skill, undo or pass
func (h *DefaultHooks) ApplyOperation(_ context.Context, tc *Context) error {
	op := tc.Turn.Operation
	player := tc.Turn.Player

	switch op.Type {
	case model.OperationPlace:
		pos := *op.Position
		h.executor.ExecutePlaceEffect(tc.Game, player, pos)
		tc.Placed = &pos
	case model.OperationSkill:
		effects, err := h.executor.ExecuteSkillEffect(tc.Game, player, op.Skill, op.Target)
		if err != nil {
			return err
		}
		tc.SkillEffects = effects
		tc.Turn.Effects = effects
	case model.OperationUndo:
		entry, err := h.executor.ExecuteUndoEffect(tc.Game)
		if err != nil {
			return err
		}
		tc.Undone = &entry
	case model.OperationPass:
	default:
		return fmt.Errorf("%w: unknown operation type %q", model.ErrInvalidOperation, op.Type)
	}
	return nil
}

// CheckVictory ends the game on a five-in-a-row or a full board.
// Having no legal cell because of forbidden regions does not end the game:
// that player can still pass or use a skill.
func (h *DefaultHooks) CheckVictory(_ context.Context, tc *Context) error {
	game := tc.Game
	player := tc.Turn.Player

	switch {
	case tc.Placed != nil:
		if h.board.CheckWin(game.Board, *tc.Placed, player, game.Rules.WinLength) {
			game.End(player)
		}
	case movesStones(tc.SkillEffects):
		if winner, ok := h.board.FindWinner(game.Board, game.Rules.WinLength, player); ok {
			game.End(winner)
		}
	}

	if game.IsPlaying() && !h.board.HasEmptyCell(game.Board) {
		game.End("")
	}

	if !game.IsPlaying() {
		tc.Turn.GameEnded = true
		tc.Turn.Winner = game.Winner
	}
	return nil
}

// SpawnEffects hands each resolved skill effect to the async effect manager
func (h *DefaultHooks) SpawnEffects(_ context.Context, tc *Context) error {
	if tc.Effects == nil {
		return nil
	}
	gameID := tc.Game.ID
	turnID := tc.Turn.ID
	sink := tc.Sink
	for _, effect := range tc.SkillEffects {
		tc.Effects.Register(string(effect.Kind), func(ctx context.Context) error {
			if sink == nil {
				return nil
			}
			return sink.PublishEffect(ctx, gameID, turnID, effect)
		})
	}
	return nil
}

// SwitchPlayer hands the turn on, or back to the owner of an undone stone
func (h *DefaultHooks) SwitchPlayer(_ context.Context, tc *Context) error {
	if !tc.Game.IsPlaying() {
		return nil
	}
	if tc.Undone != nil {
		h.executor.ExecuteRestoreTurnEffect(tc.Game, tc.Undone.Player)
		return nil
	}
	result := h.executor.ExecuteTurnSwitchEffect(tc.Game)
	tc.Switch = &result
	return nil
}

func movesStones(effects []model.SkillEffect) bool {
	for _, e := range effects {
		if e.Kind == model.EffectStoneMoved || e.Kind == model.EffectBoardShuffled {
			return true
		}
	}
	return false
}
