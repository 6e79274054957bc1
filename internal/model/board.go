package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Position identifies a cell on the board
type Position struct {
	Row int `json:"row"` // 0-indexed from top
	Col int `json:"col"` // 0-indexed from left
}

// String returns the position as "row,col"
func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.Row, p.Col)
}

// Board is the shared N×N grid of stones
type Board struct {
	Size  int        `json:"size"`
	Cells [][]Player `json:"cells"` // Row-major: Cells[row][col], "" means empty
}

// NewBoard creates an empty board of the given size
func NewBoard(size int) *Board {
	cells := make([][]Player, size)
	for i := range cells {
		cells[i] = make([]Player, size)
	}
	return &Board{
		Size:  size,
		Cells: cells,
	}
}

// Get returns the stone at the given position, or "" if empty or out of bounds
func (b *Board) Get(pos Position) Player {
	if !b.IsValidPosition(pos) {
		return ""
	}
	return b.Cells[pos.Row][pos.Col]
}

// Set places a stone at the given position
func (b *Board) Set(pos Position, player Player) {
	if b.IsValidPosition(pos) {
		b.Cells[pos.Row][pos.Col] = player
	}
}

// Clear empties the cell at the given position
func (b *Board) Clear(pos Position) {
	b.Set(pos, "")
}

// IsEmpty returns true if the cell at the given position is empty
func (b *Board) IsEmpty(pos Position) bool {
	return b.Get(pos) == ""
}

// IsValidPosition returns true if the position is within bounds
func (b *Board) IsValidPosition(pos Position) bool {
	return pos.Row >= 0 && pos.Row < b.Size && pos.Col >= 0 && pos.Col < b.Size
}

// Count returns the number of stones the player has on the board
func (b *Board) Count(player Player) int {
	count := 0
	for row := 0; row < b.Size; row++ {
		for col := 0; col < b.Size; col++ {
			if b.Cells[row][col] == player {
				count++
			}
		}
	}
	return count
}

// EmptyCount returns the number of empty cells
func (b *Board) EmptyCount() int {
	return b.Count("")
}

// PositionsOf returns every cell holding the player's stones in row-major order
func (b *Board) PositionsOf(player Player) []Position {
	var positions []Position
	for row := 0; row < b.Size; row++ {
		for col := 0; col < b.Size; col++ {
			if b.Cells[row][col] == player {
				positions = append(positions, Position{Row: row, Col: col})
			}
		}
	}
	return positions
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	clone := NewBoard(b.Size)
	for row := range b.Cells {
		copy(clone.Cells[row], b.Cells[row])
	}
	return clone
}

// PositionSet is a set of board cells
type PositionSet map[Position]struct{}

// Add inserts a position
func (s PositionSet) Add(pos Position) {
	s[pos] = struct{}{}
}

// Has returns true if the position is in the set
func (s PositionSet) Has(pos Position) bool {
	_, ok := s[pos]
	return ok
}

// Remove deletes a position
func (s PositionSet) Remove(pos Position) {
	delete(s, pos)
}

// Sorted returns the positions in row-major order
func (s PositionSet) Sorted() []Position {
	positions := make([]Position, 0, len(s))
	for pos := range s {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Row != positions[j].Row {
			return positions[i].Row < positions[j].Row
		}
		return positions[i].Col < positions[j].Col
	})
	return positions
}

// Clone returns a copy of the set
func (s PositionSet) Clone() PositionSet {
	clone := make(PositionSet, len(s))
	for pos := range s {
		clone[pos] = struct{}{}
	}
	return clone
}

// MarshalJSON encodes the set as a sorted list of positions
func (s PositionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes a list of positions
func (s *PositionSet) UnmarshalJSON(data []byte) error {
	var positions []Position
	if err := json.Unmarshal(data, &positions); err != nil {
		return err
	}
	set := make(PositionSet, len(positions))
	for _, pos := range positions {
		set.Add(pos)
	}
	*s = set
	return nil
}
