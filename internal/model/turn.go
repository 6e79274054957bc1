package model

import (
	"fmt"
	"time"
)

// OperationType identifies the kind of operation a player submits
type OperationType string

const (
	OperationPlace OperationType = "place"
	OperationSkill OperationType = "skill"
	OperationUndo  OperationType = "undo"
	OperationPass  OperationType = "pass"
)

// Operation is a player's intent for a single turn.
// Position is set for place, Skill and Target for skill.
type Operation struct {
	Type     OperationType `json:"type"`
	Position *Position     `json:"position,omitempty"`
	Skill    SkillID       `json:"skill,omitempty"`
	Target   *SkillTarget  `json:"target,omitempty"`
}

// PlaceOperation builds a placement operation
func PlaceOperation(pos Position) Operation {
	return Operation{Type: OperationPlace, Position: &pos}
}

// SkillOperation builds a skill operation
func SkillOperation(id SkillID, target *SkillTarget) Operation {
	return Operation{Type: OperationSkill, Skill: id, Target: target}
}

// UndoOperation builds an undo operation
func UndoOperation() Operation {
	return Operation{Type: OperationUndo}
}

// PassOperation builds a pass operation
func PassOperation() Operation {
	return Operation{Type: OperationPass}
}

// Validate checks that the operation carries the payload its type requires
func (o Operation) Validate() error {
	switch o.Type {
	case OperationPlace:
		if o.Position == nil {
			return fmt.Errorf("%w: place requires a position", ErrInvalidOperation)
		}
	case OperationSkill:
		if o.Skill == "" {
			return fmt.Errorf("%w: skill requires a skill id", ErrInvalidOperation)
		}
	case OperationUndo, OperationPass:
	default:
		return fmt.Errorf("%w: unknown operation type %q", ErrInvalidOperation, o.Type)
	}
	return nil
}

// Phase is one of the four ordered stages of a turn
type Phase int

const (
	PhasePreCheck Phase = iota
	PhaseCoreOperation
	PhaseEffectSettlement
	PhaseTurnSwitch
)

var phaseNames = map[Phase]string{
	PhasePreCheck:         "PRE_CHECK",
	PhaseCoreOperation:    "CORE_OPERATION",
	PhaseEffectSettlement: "EFFECT_SETTLEMENT",
	PhaseTurnSwitch:       "TURN_SWITCH",
}

// Phases lists every phase in execution order
var Phases = []Phase{
	PhasePreCheck,
	PhaseCoreOperation,
	PhaseEffectSettlement,
	PhaseTurnSwitch,
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name
func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", string(text))
}

// TurnStatus is the lifecycle status of a turn
type TurnStatus string

const (
	TurnPending   TurnStatus = "pending"
	TurnExecuting TurnStatus = "executing"
	TurnCompleted TurnStatus = "completed"
	TurnFailed    TurnStatus = "failed"
)

// Turn is one validated operation cycle
type Turn struct {
	ID          int           `json:"id"`
	Player      Player        `json:"player"`
	Operation   Operation     `json:"operation"`
	Phase       Phase         `json:"phase"`
	Status      TurnStatus    `json:"status"`
	Error       string        `json:"error,omitempty"`
	Effects     []SkillEffect `json:"effects,omitempty"`
	GameEnded   bool          `json:"game_ended"`
	Winner      Player        `json:"winner,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// TurnResult is the outcome of a submitted operation
type TurnResult struct {
	Success bool   `json:"success"`
	Turn    *Turn  `json:"turn"`
	Game    *Game  `json:"game,omitempty"`
	Error   string `json:"error,omitempty"`
}
