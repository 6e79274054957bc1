package response

import (
	"time"

	"github.com/mcoot/skillgomoku/internal/model"
)

// Board represents a game board
type Board struct {
	Size  int        `json:"size"`
	Cells [][]string `json:"cells"`
}

// BoardFromModel converts model.Board to response Board
// Empty cells are represented as empty strings
func BoardFromModel(b *model.Board) Board {
	cells := make([][]string, b.Size)
	for row := 0; row < b.Size; row++ {
		cells[row] = make([]string, b.Size)
		for col := 0; col < b.Size; col++ {
			cells[row][col] = string(b.Cells[row][col])
		}
	}
	return Board{Size: b.Size, Cells: cells}
}

// Protection lists the protected cells of both players
type Protection struct {
	Black          []model.Position `json:"black"`
	White          []model.Position `json:"white"`
	RemainingTurns int              `json:"remaining_turns"`
}

// GameState represents the current game state
type GameState struct {
	ID               string                  `json:"id"`
	Status           string                  `json:"status"`
	Rules            model.Rules             `json:"rules"`
	Board            Board                   `json:"board"`
	CurrentPlayer    string                  `json:"current_player"`
	Winner           *string                 `json:"winner"`
	Draw             bool                    `json:"draw,omitempty"`
	Protection       Protection              `json:"protection"`
	ForbiddenRegions []model.ForbiddenRegion `json:"forbidden_regions"`
	Frozen           *model.FreezeMarker     `json:"frozen,omitempty"`
	MoveCount        int                     `json:"move_count"`
	LastTurn         *model.Turn             `json:"last_turn,omitempty"`
	NextTurnID       int                     `json:"next_turn_id"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// GameStateFromModel converts model.Game to response GameState
func GameStateFromModel(g *model.Game) GameState {
	var winner *string
	if g.Winner != "" {
		w := string(g.Winner)
		winner = &w
	}

	var lastTurn *model.Turn
	if n := len(g.Turns.Completed); n > 0 {
		lastTurn = g.Turns.Completed[n-1]
	}

	moves := 0
	for _, entry := range g.History {
		if entry.Kind == model.HistoryMove {
			moves++
		}
	}

	regions := g.ForbiddenRegions
	if regions == nil {
		regions = []model.ForbiddenRegion{}
	}

	return GameState{
		ID:            string(g.ID),
		Status:        string(g.Status),
		Rules:         g.Rules,
		Board:         BoardFromModel(g.Board),
		CurrentPlayer: string(g.CurrentPlayer),
		Winner:        winner,
		Draw:          g.Status == model.GameStatusEnded && g.Winner == "",
		Protection: Protection{
			Black:          g.ProtectionSet(model.PlayerBlack).Sorted(),
			White:          g.ProtectionSet(model.PlayerWhite).Sorted(),
			RemainingTurns: g.ProtectionTurns,
		},
		ForbiddenRegions: regions,
		Frozen:           g.Frozen,
		MoveCount:        moves,
		LastTurn:         lastTurn,
		NextTurnID:       g.Turns.NextID,
		UpdatedAt:        g.UpdatedAt,
	}
}

// GameList is the response for listing games
type GameList struct {
	Games []model.GameSummary `json:"games"`
}

// TurnResult is the response after submitting an operation
type TurnResult struct {
	Success bool        `json:"success"`
	Turn    *model.Turn `json:"turn"`
	Game    *GameState  `json:"game,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// TurnResultFromModel converts model.TurnResult
func TurnResultFromModel(r *model.TurnResult) TurnResult {
	resp := TurnResult{
		Success: r.Success,
		Turn:    r.Turn,
		Error:   r.Error,
	}
	if r.Game != nil {
		state := GameStateFromModel(r.Game)
		resp.Game = &state
	}
	return resp
}

// LegalMoves lists the cells a player may place on
type LegalMoves struct {
	Player    string           `json:"player"`
	Positions []model.Position `json:"positions"`
}

// SkillList is the response for the skill catalogue
type SkillList struct {
	Skills []model.SkillDefinition `json:"skills"`
}

// Health is the response of the health endpoint
type Health struct {
	Status string `json:"status"`
}
