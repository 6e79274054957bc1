package executor

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/skillgomoku/internal/dependencies/clock"
	"github.com/mcoot/skillgomoku/internal/model"
	"github.com/mcoot/skillgomoku/internal/services/skill"
	"github.com/mcoot/skillgomoku/internal/services/tracker"
)

// SwitchResult describes the outcome of an end-of-turn player switch
type SwitchResult struct {
	Previous model.Player
	Next     model.Player
	Skipped  model.Player // Frozen player whose turn was skipped, if any
}

// Executor turns validated operations into board and tracker mutations
type Executor struct {
	tracker  *tracker.Service
	resolver *skill.Resolver
	clock    clock.Clock
	logger   *slog.Logger
}

// New creates a new effect Executor
func New(tracker *tracker.Service, resolver *skill.Resolver, clock clock.Clock, logger *slog.Logger) *Executor {
	return &Executor{
		tracker:  tracker,
		resolver: resolver,
		clock:    clock,
		logger:   logger,
	}
}

// ExecutePlaceEffect writes the stone and records the placement
func (e *Executor) ExecutePlaceEffect(game *model.Game, player model.Player, pos model.Position) {
	game.Board.Set(pos, player)
	game.History = append(game.History, model.HistoryEntry{
		Kind:      model.HistoryMove,
		Player:    player,
		Position:  pos,
		Timestamp: e.clock.Now(),
	})
}

// ExecuteSkillEffect resolves a skill through the resolver
func (e *Executor) ExecuteSkillEffect(game *model.Game, player model.Player, id model.SkillID, target *model.SkillTarget) ([]model.SkillEffect, error) {
	return e.resolver.UseSkill(game, player, id, target)
}

// ExecuteUndoEffect takes back the trailing placement and returns it
func (e *Executor) ExecuteUndoEffect(game *model.Game) (model.HistoryEntry, error) {
	last, ok := game.LastEntry()
	if !ok {
		return model.HistoryEntry{}, model.ErrNothingToUndo
	}
	if last.Kind != model.HistoryMove {
		return model.HistoryEntry{}, fmt.Errorf("%w: last action was skill %s", model.ErrNothingToUndo, last.Skill)
	}

	game.Board.Clear(last.Position)
	game.ProtectionSet(last.Player).Remove(last.Position)
	game.PopEntry()
	return last, nil
}

// ExecuteTurnSwitchEffect runs end-of-turn bookkeeping and hands the turn
// to the next player, skipping a frozen player's turn entirely
func (e *Executor) ExecuteTurnSwitchEffect(game *model.Game) SwitchResult {
	mover := game.CurrentPlayer

	e.tracker.UpdateCooldowns(game)
	e.decayForbiddenRegions(game)
	e.decayProtection(game)
	e.tracker.RegenEnergy(game, mover)
	e.tracker.AdvanceTurn(game)

	result := SwitchResult{Previous: mover, Next: mover.Opponent()}
	if game.Frozen != nil && game.Frozen.Player == result.Next {
		game.Frozen.Turns--
		if game.Frozen.Turns <= 0 {
			game.Frozen = nil
		}
		result.Skipped = result.Next
		result.Next = mover

		e.logger.Info("frozen turn skipped",
			slog.String("game_id", string(game.ID)),
			slog.String("player", string(result.Skipped)),
		)
	}

	game.CurrentPlayer = result.Next
	return result
}

// ExecuteRestoreTurnEffect hands the turn back to player after an undo.
// No cooldown, energy or turn-counter bookkeeping is run.
func (e *Executor) ExecuteRestoreTurnEffect(game *model.Game, player model.Player) {
	game.CurrentPlayer = player
}

func (e *Executor) decayForbiddenRegions(game *model.Game) {
	remaining := game.ForbiddenRegions[:0]
	for _, region := range game.ForbiddenRegions {
		region.Duration--
		if region.Duration > 0 {
			remaining = append(remaining, region)
		}
	}
	if len(remaining) == 0 {
		remaining = nil
	}
	game.ForbiddenRegions = remaining
}

func (e *Executor) decayProtection(game *model.Game) {
	if game.ProtectionTurns <= 0 {
		return
	}
	game.ProtectionTurns--
	if game.ProtectionTurns == 0 {
		for _, player := range model.Players {
			game.Protected[player] = make(model.PositionSet)
		}
	}
}

// Interface for dependency injection
type ExecutorInterface interface {
	ExecutePlaceEffect(game *model.Game, player model.Player, pos model.Position)
	ExecuteSkillEffect(game *model.Game, player model.Player, id model.SkillID, target *model.SkillTarget) ([]model.SkillEffect, error)
	ExecuteUndoEffect(game *model.Game) (model.HistoryEntry, error)
	ExecuteTurnSwitchEffect(game *model.Game) SwitchResult
	ExecuteRestoreTurnEffect(game *model.Game, player model.Player)
}

var _ ExecutorInterface = (*Executor)(nil)
