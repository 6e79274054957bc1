package request

import (
	"fmt"

	"github.com/mcoot/skillgomoku/internal/model"
)

// CreateGameRequest is the request body for creating a game.
// Omitted fields fall back to the default rules.
type CreateGameRequest struct {
	BoardSize     *int `json:"board_size,omitempty"`
	WinLength     *int `json:"win_length,omitempty"`
	MaxEnergy     *int `json:"max_energy,omitempty"`
	InitialEnergy *int `json:"initial_energy,omitempty"`
	EnergyRegen   *int `json:"energy_regen,omitempty"`
}

// Rules merges the request over the given defaults
func (r CreateGameRequest) Rules(defaults model.Rules) model.Rules {
	rules := defaults
	if r.BoardSize != nil {
		rules.BoardSize = *r.BoardSize
	}
	if r.WinLength != nil {
		rules.WinLength = *r.WinLength
	}
	if r.MaxEnergy != nil {
		rules.MaxEnergy = *r.MaxEnergy
	}
	if r.InitialEnergy != nil {
		rules.InitialEnergy = *r.InitialEnergy
	}
	if r.EnergyRegen != nil {
		rules.EnergyRegen = *r.EnergyRegen
	}
	return rules
}

// Position is a board cell in request bodies
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p *Position) toModel() *model.Position {
	if p == nil {
		return nil
	}
	return &model.Position{Row: p.Row, Col: p.Col}
}

// SkillTarget is the target of a skill operation
type SkillTarget struct {
	Cell *Position `json:"cell,omitempty"`
	From *Position `json:"from,omitempty"`
	To   *Position `json:"to,omitempty"`
}

// OperationRequest is the request body for submitting a turn
type OperationRequest struct {
	Player   string       `json:"player"`
	Type     string       `json:"type"`
	Position *Position    `json:"position,omitempty"`
	Skill    string       `json:"skill,omitempty"`
	Target   *SkillTarget `json:"target,omitempty"`
}

// ToOperation validates the request shape and converts it
func (r OperationRequest) ToOperation() (model.Player, model.Operation, error) {
	player, err := model.ParsePlayer(r.Player)
	if err != nil {
		return "", model.Operation{}, fmt.Errorf("%w: %q", err, r.Player)
	}

	op := model.Operation{
		Type:     model.OperationType(r.Type),
		Position: r.Position.toModel(),
		Skill:    model.SkillID(r.Skill),
	}
	if r.Target != nil {
		op.Target = &model.SkillTarget{
			Cell: r.Target.Cell.toModel(),
			From: r.Target.From.toModel(),
			To:   r.Target.To.toModel(),
		}
	}

	if err := op.Validate(); err != nil {
		return "", model.Operation{}, err
	}
	return player, op, nil
}
