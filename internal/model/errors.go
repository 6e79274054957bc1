package model

import "errors"

// Common errors used across the application
var (
	// Game lifecycle errors
	ErrGameNotFound  = errors.New("game not found")
	ErrInvalidRules  = errors.New("invalid game rules")
	ErrInvalidPlayer = errors.New("invalid player")
	ErrNotPlaying    = errors.New("game is not in progress")
	ErrWrongTurn     = errors.New("not this player's turn")

	// Placement errors
	ErrOutOfBounds   = errors.New("position is out of bounds")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrCellForbidden = errors.New("cell is inside a forbidden region")

	// Skill errors
	ErrUnknownSkill       = errors.New("unknown skill")
	ErrInsufficientEnergy = errors.New("insufficient energy")
	ErrSkillOnCooldown    = errors.New("skill is on cooldown")
	ErrSkillEffectFailed  = errors.New("skill had no legal effect")

	// Turn errors
	ErrInvalidOperation = errors.New("invalid operation")
	ErrNothingToUndo    = errors.New("no placement to undo")
	ErrHookFailed       = errors.New("turn hook failed")

	// Async effect errors
	ErrEffectTimeout = errors.New("effect timed out")
)
