package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(os.Stderr, string(data))
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		o.println(string(data))
	} else {
		o.println(msg)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) println(args ...any) {
	_, _ = fmt.Fprintln(o.w, args...)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case GameState:
		o.printGameState(v)
	case GameList:
		o.printGameList(v)
	case TurnResult:
		o.printTurnResult(v)
	case PlayerStatus:
		o.printPlayerStatus(v)
	case LegalMoves:
		o.printLegalMoves(v)
	case SkillList:
		o.printSkillList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Position is a board cell
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// SkillTarget is the target of a skill operation
type SkillTarget struct {
	Cell *Position `json:"cell,omitempty"`
	From *Position `json:"from,omitempty"`
	To   *Position `json:"to,omitempty"`
}

// OperationRequest is the body of an operation submission
type OperationRequest struct {
	Player   string       `json:"player"`
	Type     string       `json:"type"`
	Position *Position    `json:"position,omitempty"`
	Skill    string       `json:"skill,omitempty"`
	Target   *SkillTarget `json:"target,omitempty"`
}

// Rules response type
type Rules struct {
	BoardSize     int `json:"board_size"`
	WinLength     int `json:"win_length"`
	MaxEnergy     int `json:"max_energy"`
	InitialEnergy int `json:"initial_energy"`
	EnergyRegen   int `json:"energy_regen"`
}

// Board response type
type Board struct {
	Size  int        `json:"size"`
	Cells [][]string `json:"cells"`
}

// Protection response type
type Protection struct {
	Black          []Position `json:"black"`
	White          []Position `json:"white"`
	RemainingTurns int        `json:"remaining_turns"`
}

// ForbiddenRegion response type
type ForbiddenRegion struct {
	Center   Position `json:"center"`
	Duration int      `json:"duration"`
	Owner    string   `json:"owner"`
}

// FreezeMarker response type
type FreezeMarker struct {
	Player string `json:"player"`
	Turns  int    `json:"turns"`
}

// Operation response type
type Operation struct {
	Type     string       `json:"type"`
	Position *Position    `json:"position,omitempty"`
	Skill    string       `json:"skill,omitempty"`
	Target   *SkillTarget `json:"target,omitempty"`
}

// SkillEffect response type
type SkillEffect struct {
	Kind      string     `json:"kind"`
	Skill     string     `json:"skill"`
	Player    string     `json:"player"`
	Positions []Position `json:"positions,omitempty"`
	Target    string     `json:"target,omitempty"`
}

// Turn response type
type Turn struct {
	ID        int           `json:"id"`
	Player    string        `json:"player"`
	Operation Operation     `json:"operation"`
	Phase     string        `json:"phase"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Effects   []SkillEffect `json:"effects,omitempty"`
	GameEnded bool          `json:"game_ended"`
	Winner    string        `json:"winner,omitempty"`
}

// GameState response type
type GameState struct {
	ID               string            `json:"id"`
	Status           string            `json:"status"`
	Rules            Rules             `json:"rules"`
	Board            Board             `json:"board"`
	CurrentPlayer    string            `json:"current_player"`
	Winner           *string           `json:"winner"`
	Draw             bool              `json:"draw,omitempty"`
	Protection       Protection        `json:"protection"`
	ForbiddenRegions []ForbiddenRegion `json:"forbidden_regions"`
	Frozen           *FreezeMarker     `json:"frozen,omitempty"`
	MoveCount        int               `json:"move_count"`
	LastTurn         *Turn             `json:"last_turn,omitempty"`
	NextTurnID       int               `json:"next_turn_id"`
}

// GameSummary response type
type GameSummary struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	CurrentPlayer string `json:"current_player"`
	Winner        string `json:"winner,omitempty"`
	UpdatedAt     string `json:"updated_at"`
}

// GameList response type
type GameList struct {
	Games []GameSummary `json:"games"`
}

// TurnResult response type
type TurnResult struct {
	Success bool       `json:"success"`
	Turn    *Turn      `json:"turn"`
	Game    *GameState `json:"game,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// SkillStatus response type
type SkillStatus struct {
	Skill     string `json:"skill"`
	Available bool   `json:"available"`
	Cooldown  int    `json:"cooldown"`
	Cost      int    `json:"cost"`
}

// SkillStats response type
type SkillStats struct {
	TotalUses int            `json:"total_uses"`
	PerSkill  map[string]int `json:"per_skill"`
}

// PlayerStatus response type
type PlayerStatus struct {
	Player    string        `json:"player"`
	Energy    int           `json:"energy"`
	MaxEnergy int           `json:"max_energy"`
	Skills    []SkillStatus `json:"skills"`
	Stats     SkillStats    `json:"stats"`
	TurnCount int           `json:"turn_count"`
}

// LegalMoves response type
type LegalMoves struct {
	Player    string     `json:"player"`
	Positions []Position `json:"positions"`
}

// SkillDefinition response type
type SkillDefinition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int    `json:"cost"`
	Cooldown    int    `json:"cooldown"`
	Category    string `json:"category"`
}

// SkillList response type
type SkillList struct {
	Skills []SkillDefinition `json:"skills"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printGameState(g GameState) {
	o.printf("Game: %s\n", g.ID)
	o.printf("Status: %s\n", g.Status)
	o.printf("Rules: %dx%d board, %d in a row\n", g.Rules.BoardSize, g.Rules.BoardSize, g.Rules.WinLength)

	switch {
	case g.Winner != nil:
		o.printf("Winner: %s\n", *g.Winner)
	case g.Draw:
		o.println("Result: draw")
	default:
		o.printf("To move: %s\n", g.CurrentPlayer)
	}
	o.printf("Moves: %d\n", g.MoveCount)

	if g.Frozen != nil {
		o.printf("Frozen: %s (%d turn(s))\n", g.Frozen.Player, g.Frozen.Turns)
	}
	for _, r := range g.ForbiddenRegions {
		o.printf("Forbidden region: %s owned by %s, %d turn(s) left\n", r.Center, r.Owner, r.Duration)
	}
	if g.Protection.RemainingTurns > 0 {
		o.printf("Protection: %d turn(s) left (black %d, white %d cells)\n",
			g.Protection.RemainingTurns, len(g.Protection.Black), len(g.Protection.White))
	}

	o.println()
	o.printBoard(&g.Board)
}

func (o *Output) printBoard(b *Board) {
	if b == nil || len(b.Cells) == 0 {
		return
	}

	size := len(b.Cells)

	// Print column headers
	o.printf("    ")
	for col := 0; col < size; col++ {
		o.printf("%2d ", col)
	}
	o.println()

	// Print top border
	o.printf("   +")
	for col := 0; col < size; col++ {
		o.printf("---")
	}
	o.println("+")

	// Print rows
	for row := 0; row < size; row++ {
		o.printf("%2d |", row)
		for col := 0; col < size; col++ {
			o.printf(" %s ", cellSymbol(b.Cells[row][col]))
		}
		o.println("|")
	}

	// Print bottom border
	o.printf("   +")
	for col := 0; col < size; col++ {
		o.printf("---")
	}
	o.println("+")
}

func cellSymbol(cell string) string {
	switch cell {
	case "black":
		return "X"
	case "white":
		return "O"
	default:
		return "."
	}
}

func (o *Output) printGameList(l GameList) {
	if len(l.Games) == 0 {
		o.println("No games")
		return
	}
	for _, g := range l.Games {
		detail := "to move: " + g.CurrentPlayer
		if g.Status == "ended" {
			detail = "winner: " + g.Winner
			if g.Winner == "" {
				detail = "draw"
			}
		}
		o.printf("%s  %-8s %s\n", g.ID, g.Status, detail)
	}
}

func (o *Output) printTurnResult(r TurnResult) {
	if r.Turn != nil {
		o.printf("Turn %d: %s %s", r.Turn.ID, r.Turn.Player, r.Turn.Operation.Type)
		if r.Turn.Operation.Position != nil {
			o.printf(" %s", r.Turn.Operation.Position)
		}
		if r.Turn.Operation.Skill != "" {
			o.printf(" %s", r.Turn.Operation.Skill)
		}
		o.println()
		for _, e := range r.Turn.Effects {
			positions := make([]string, 0, len(e.Positions))
			for _, p := range e.Positions {
				positions = append(positions, p.String())
			}
			o.printf("  effect: %s %s\n", e.Kind, strings.Join(positions, " "))
		}
	}

	if !r.Success {
		o.printf("Failed: %s\n", r.Error)
		return
	}

	if r.Game != nil {
		if r.Game.Status == "ended" {
			if r.Game.Winner != nil {
				o.printf("Game over! Winner: %s\n", *r.Game.Winner)
			} else {
				o.println("Game over! Draw")
			}
		} else {
			o.printf("Next: %s\n", r.Game.CurrentPlayer)
		}
		o.println()
		o.printBoard(&r.Game.Board)
	}
}

func (o *Output) printPlayerStatus(p PlayerStatus) {
	o.printf("Player: %s\n", p.Player)
	o.printf("Energy: %d/%d\n", p.Energy, p.MaxEnergy)
	o.printf("Skills used: %d\n", p.Stats.TotalUses)
	o.println("Skills:")
	for _, s := range p.Skills {
		state := "ready"
		if s.Cooldown > 0 {
			state = fmt.Sprintf("cooldown %d", s.Cooldown)
		} else if !s.Available {
			state = "not enough energy"
		}
		o.printf("  %-16s cost %d  %s\n", s.Skill, s.Cost, state)
	}
}

func (o *Output) printLegalMoves(m LegalMoves) {
	o.printf("Legal placements for %s: %d\n", m.Player, len(m.Positions))
	if len(m.Positions) == 0 {
		return
	}

	// Group by row for compact display
	byRow := make(map[int][]string)
	for _, p := range m.Positions {
		byRow[p.Row] = append(byRow[p.Row], fmt.Sprint(p.Col))
	}
	rows := make([]int, 0, len(byRow))
	for row := range byRow {
		rows = append(rows, row)
	}
	sort.Ints(rows)
	for _, row := range rows {
		o.printf("  row %2d: %s\n", row, strings.Join(byRow[row], " "))
	}
}

func (o *Output) printSkillList(l SkillList) {
	for _, s := range l.Skills {
		o.printf("%-16s %s  [%s] cost %d, cooldown %d\n", s.ID, s.Name, s.Category, s.Cost, s.Cooldown)
		o.printf("  %s\n", s.Description)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	o.printf("Status: %s\n", h.Status)
}
