package model

import (
	"fmt"
	"time"
)

// GameID uniquely identifies a game
type GameID string

// GameStatus represents whether a game is still being played
type GameStatus string

const (
	GameStatusPlaying GameStatus = "playing"
	GameStatusEnded   GameStatus = "ended"
)

// Rules holds the per-game rule constants
type Rules struct {
	BoardSize     int `json:"board_size"`
	WinLength     int `json:"win_length"`
	MaxEnergy     int `json:"max_energy"`
	InitialEnergy int `json:"initial_energy"`
	EnergyRegen   int `json:"energy_regen"`
}

// DefaultRules returns the standard 15x15 five-in-a-row rules
func DefaultRules() Rules {
	return Rules{
		BoardSize:     15,
		WinLength:     5,
		MaxEnergy:     5,
		InitialEnergy: 3,
		EnergyRegen:   1,
	}
}

// Validate checks that the rules describe a playable game
func (r Rules) Validate() error {
	switch {
	case r.BoardSize < 3 || r.BoardSize > 25:
		return fmt.Errorf("%w: board size %d must be between 3 and 25", ErrInvalidRules, r.BoardSize)
	case r.WinLength < 3 || r.WinLength > r.BoardSize:
		return fmt.Errorf("%w: win length %d must be between 3 and the board size", ErrInvalidRules, r.WinLength)
	case r.MaxEnergy < 0 || r.InitialEnergy < 0 || r.InitialEnergy > r.MaxEnergy:
		return fmt.Errorf("%w: initial energy %d must be between 0 and max energy %d", ErrInvalidRules, r.InitialEnergy, r.MaxEnergy)
	case r.EnergyRegen < 0:
		return fmt.Errorf("%w: energy regen must not be negative", ErrInvalidRules)
	}
	return nil
}

// HistoryKind distinguishes placements from skill uses in the history
type HistoryKind string

const (
	HistoryMove  HistoryKind = "move"
	HistorySkill HistoryKind = "skill"
)

// HistoryEntry records a placement or a successful skill use
type HistoryEntry struct {
	Kind      HistoryKind  `json:"kind"`
	Player    Player       `json:"player"`
	Position  Position     `json:"position"` // Placement cell (moves only)
	Skill     SkillID      `json:"skill,omitempty"`
	Target    *SkillTarget `json:"target,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// ForbiddenRegion blocks the 3x3 block around Center for the owner's opponent
type ForbiddenRegion struct {
	Center   Position `json:"center"`
	Duration int      `json:"duration"` // Remaining completed turns
	Owner    Player   `json:"owner"`
}

// Contains returns true if pos is within Chebyshev distance 1 of the center
func (r ForbiddenRegion) Contains(pos Position) bool {
	return abs(pos.Row-r.Center.Row) <= 1 && abs(pos.Col-r.Center.Col) <= 1
}

// FreezeMarker names a player whose next turn(s) will be skipped
type FreezeMarker struct {
	Player Player `json:"player"`
	Turns  int    `json:"turns"`
}

// SkillUsage records one successful skill use
type SkillUsage struct {
	Skill     SkillID   `json:"skill"`
	Turn      int       `json:"turn"`
	Timestamp time.Time `json:"timestamp"`
}

// PlayerRecord is the energy/cooldown/usage record of one player
type PlayerRecord struct {
	Energy    int             `json:"energy"`
	Cooldowns map[SkillID]int `json:"cooldowns"` // Absent or 0 means ready
	Usage     []SkillUsage    `json:"usage"`
}

// TrackerState holds both players' records and the shared turn counter
type TrackerState struct {
	Records   map[Player]*PlayerRecord `json:"records"`
	TurnCount int                      `json:"turn_count"`
}

// Record returns the player's record, creating an empty one if missing
func (t *TrackerState) Record(player Player) *PlayerRecord {
	if t.Records == nil {
		t.Records = make(map[Player]*PlayerRecord)
	}
	rec, ok := t.Records[player]
	if !ok {
		rec = &PlayerRecord{Cooldowns: make(map[SkillID]int)}
		t.Records[player] = rec
	}
	if rec.Cooldowns == nil {
		rec.Cooldowns = make(map[SkillID]int)
	}
	return rec
}

// TurnLog holds the turn id sequence and the bounded list of completed turns
type TurnLog struct {
	NextID    int     `json:"next_id"`
	Completed []*Turn `json:"completed"`
}

// Game is the aggregate root of a single game
type Game struct {
	ID            GameID     `json:"id"`
	Rules         Rules      `json:"rules"`
	Board         *Board     `json:"board"`
	CurrentPlayer Player     `json:"current_player"`
	Status        GameStatus `json:"status"`
	Winner        Player     `json:"winner,omitempty"` // Empty when ended means draw

	History []HistoryEntry `json:"history"`

	// Skill state
	Protected        map[Player]PositionSet `json:"protected"`
	ProtectionTurns  int                    `json:"protection_turns"` // Shared timer for all protected cells
	ForbiddenRegions []ForbiddenRegion      `json:"forbidden_regions"`
	Frozen           *FreezeMarker          `json:"frozen,omitempty"`

	Tracker TrackerState `json:"tracker"`
	Turns   TurnLog      `json:"turns"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGame creates a fresh game with black to move
func NewGame(id GameID, rules Rules, now time.Time) *Game {
	g := &Game{
		ID:        id,
		Rules:     rules,
		Turns:     TurnLog{NextID: 1},
		CreatedAt: now,
	}
	g.ResetBoard(now)
	return g
}

// ResetBoard clears all board-level state for a new game boundary.
// Tracker state is reset separately by the tracker service.
func (g *Game) ResetBoard(now time.Time) {
	g.Board = NewBoard(g.Rules.BoardSize)
	g.CurrentPlayer = PlayerBlack
	g.Status = GameStatusPlaying
	g.Winner = ""
	g.History = nil
	g.Protected = map[Player]PositionSet{
		PlayerBlack: make(PositionSet),
		PlayerWhite: make(PositionSet),
	}
	g.ProtectionTurns = 0
	g.ForbiddenRegions = nil
	g.Frozen = nil
	g.UpdatedAt = now
}

// IsPlaying returns true while the game accepts operations
func (g *Game) IsPlaying() bool {
	return g.Status == GameStatusPlaying
}

// IsProtected returns true if the cell is in the player's protection set
func (g *Game) IsProtected(player Player, pos Position) bool {
	set, ok := g.Protected[player]
	if !ok {
		return false
	}
	return set.Has(pos)
}

// ProtectionSet returns the player's protection set, creating it if missing
func (g *Game) ProtectionSet(player Player) PositionSet {
	if g.Protected == nil {
		g.Protected = make(map[Player]PositionSet)
	}
	set, ok := g.Protected[player]
	if !ok || set == nil {
		set = make(PositionSet)
		g.Protected[player] = set
	}
	return set
}

// LastEntry returns the most recent history entry, if any
func (g *Game) LastEntry() (HistoryEntry, bool) {
	if len(g.History) == 0 {
		return HistoryEntry{}, false
	}
	return g.History[len(g.History)-1], true
}

// PopEntry removes the most recent history entry
func (g *Game) PopEntry() {
	if len(g.History) > 0 {
		g.History = g.History[:len(g.History)-1]
	}
}

// End marks the game as finished. An empty winner records a draw.
func (g *Game) End(winner Player) {
	g.Status = GameStatusEnded
	g.Winner = winner
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	clone := *g
	if g.Board != nil {
		clone.Board = g.Board.Clone()
	}
	clone.History = append([]HistoryEntry(nil), g.History...)
	clone.Protected = make(map[Player]PositionSet, len(g.Protected))
	for player, set := range g.Protected {
		clone.Protected[player] = set.Clone()
	}
	clone.ForbiddenRegions = append([]ForbiddenRegion(nil), g.ForbiddenRegions...)
	if g.Frozen != nil {
		frozen := *g.Frozen
		clone.Frozen = &frozen
	}
	clone.Tracker = TrackerState{
		TurnCount: g.Tracker.TurnCount,
		Records:   make(map[Player]*PlayerRecord, len(g.Tracker.Records)),
	}
	for player, rec := range g.Tracker.Records {
		recCopy := &PlayerRecord{
			Energy:    rec.Energy,
			Cooldowns: make(map[SkillID]int, len(rec.Cooldowns)),
			Usage:     append([]SkillUsage(nil), rec.Usage...),
		}
		for id, cd := range rec.Cooldowns {
			recCopy.Cooldowns[id] = cd
		}
		clone.Tracker.Records[player] = recCopy
	}
	clone.Turns = TurnLog{
		NextID:    g.Turns.NextID,
		Completed: append([]*Turn(nil), g.Turns.Completed...),
	}
	return &clone
}

// GameSummary is a lightweight listing record for a game
type GameSummary struct {
	ID            GameID     `json:"id"`
	Status        GameStatus `json:"status"`
	CurrentPlayer Player     `json:"current_player"`
	Winner        Player     `json:"winner,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Summary returns the listing record for the game
func (g *Game) Summary() GameSummary {
	return GameSummary{
		ID:            g.ID,
		Status:        g.Status,
		CurrentPlayer: g.CurrentPlayer,
		Winner:        g.Winner,
		UpdatedAt:     g.UpdatedAt,
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
