package rules

import (
	"fmt"

	"github.com/mcoot/skillgomoku/internal/model"
	"github.com/mcoot/skillgomoku/internal/services/board"
	"github.com/mcoot/skillgomoku/internal/services/tracker"
)

// Validator is the read-only gate in front of every turn.
// Each check returns a distinct sentinel error rather than a bool.
type Validator struct {
	board   *board.Service
	tracker *tracker.Service
}

// NewValidator creates a new rule Validator
func NewValidator(board *board.Service, tracker *tracker.Service) *Validator {
	return &Validator{
		board:   board,
		tracker: tracker,
	}
}

// ValidatePlayerAction checks that the game is running and it is the player's turn
func (v *Validator) ValidatePlayerAction(game *model.Game, player model.Player) error {
	if !player.Valid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidPlayer, player)
	}
	if !game.IsPlaying() {
		return model.ErrNotPlaying
	}
	if game.CurrentPlayer != player {
		return fmt.Errorf("%w: current player is %s", model.ErrWrongTurn, game.CurrentPlayer)
	}
	return nil
}

// ValidatePlacePosition checks that the player may place a stone at pos
func (v *Validator) ValidatePlacePosition(game *model.Game, player model.Player, pos model.Position) error {
	if !game.Board.IsValidPosition(pos) {
		return fmt.Errorf("%w: %s", model.ErrOutOfBounds, pos)
	}
	if !game.Board.IsEmpty(pos) {
		return fmt.Errorf("%w: %s", model.ErrCellOccupied, pos)
	}
	if v.board.InForbiddenRegion(game, player, pos) {
		return fmt.Errorf("%w: %s", model.ErrCellForbidden, pos)
	}
	return nil
}

// ValidateSkillUse checks that the skill exists, is affordable and is off cooldown
func (v *Validator) ValidateSkillUse(game *model.Game, player model.Player, id model.SkillID) (model.SkillDefinition, error) {
	def, ok := model.LookupSkill(id)
	if !ok {
		return model.SkillDefinition{}, fmt.Errorf("%w: %q", model.ErrUnknownSkill, id)
	}
	energy := v.tracker.Energy(game, player)
	if energy < def.Cost {
		return def, fmt.Errorf("%w: %s costs %d, have %d", model.ErrInsufficientEnergy, id, def.Cost, energy)
	}
	if cd := v.tracker.Cooldown(game, player, id); cd > 0 {
		return def, fmt.Errorf("%w: %s ready in %d turns", model.ErrSkillOnCooldown, id, cd)
	}
	return def, nil
}

// ValidateOperation runs the gate checks relevant to an operation
func (v *Validator) ValidateOperation(game *model.Game, player model.Player, op model.Operation) error {
	if err := v.ValidatePlayerAction(game, player); err != nil {
		return err
	}
	if err := op.Validate(); err != nil {
		return err
	}
	switch op.Type {
	case model.OperationPlace:
		return v.ValidatePlacePosition(game, player, *op.Position)
	case model.OperationSkill:
		_, err := v.ValidateSkillUse(game, player, op.Skill)
		return err
	}
	return nil
}

// LegalPlacements lists every cell the player could place on right now
func (v *Validator) LegalPlacements(game *model.Game, player model.Player) []model.Position {
	var positions []model.Position
	for row := 0; row < game.Board.Size; row++ {
		for col := 0; col < game.Board.Size; col++ {
			pos := model.Position{Row: row, Col: col}
			if v.ValidatePlacePosition(game, player, pos) == nil {
				positions = append(positions, pos)
			}
		}
	}
	return positions
}

// Interface for dependency injection
type ValidatorInterface interface {
	ValidatePlayerAction(game *model.Game, player model.Player) error
	ValidatePlacePosition(game *model.Game, player model.Player, pos model.Position) error
	ValidateSkillUse(game *model.Game, player model.Player, id model.SkillID) (model.SkillDefinition, error)
	ValidateOperation(game *model.Game, player model.Player, op model.Operation) error
	LegalPlacements(game *model.Game, player model.Player) []model.Position
}

var _ ValidatorInterface = (*Validator)(nil)
