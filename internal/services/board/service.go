package board

import (
	"github.com/mcoot/skillgomoku/internal/model"
)

// directions are the four line orientations: horizontal, vertical, and both diagonals
var directions = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// Service provides board geometry and victory detection
type Service struct{}

// New creates a new BoardService
func New() *Service {
	return &Service{}
}

// CheckWin returns true if the player's stone at pos is part of a run of at
// least winLength contiguous stones in any of the four directions.
// Each direction scan stops after winLength-1 cells.
func (s *Service) CheckWin(board *model.Board, pos model.Position, player model.Player, winLength int) bool {
	if player == "" || board.Get(pos) != player {
		return false
	}
	for _, dir := range directions {
		count := 1
		count += s.countRun(board, pos, player, dir[0], dir[1], winLength-1)
		count += s.countRun(board, pos, player, -dir[0], -dir[1], winLength-1)
		if count >= winLength {
			return true
		}
	}
	return false
}

// countRun counts contiguous stones of player from pos (exclusive) stepping by (dr, dc)
func (s *Service) countRun(board *model.Board, pos model.Position, player model.Player, dr, dc, limit int) int {
	count := 0
	row, col := pos.Row+dr, pos.Col+dc
	for count < limit {
		next := model.Position{Row: row, Col: col}
		if board.Get(next) != player {
			break
		}
		count++
		row += dr
		col += dc
	}
	return count
}

// FindWinner scans the whole board for a winning line. Used after skills that
// move stones without placing one. If both players have a line, prefer wins.
func (s *Service) FindWinner(board *model.Board, winLength int, prefer model.Player) (model.Player, bool) {
	order := []model.Player{prefer, prefer.Opponent()}
	for _, player := range order {
		for _, pos := range board.PositionsOf(player) {
			if s.CheckWin(board, pos, player, winLength) {
				return player, true
			}
		}
	}
	return "", false
}

// HasEmptyCell returns true if any cell on the board is empty
func (s *Service) HasEmptyCell(board *model.Board) bool {
	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			if board.Cells[row][col] == "" {
				return true
			}
		}
	}
	return false
}

// InForbiddenRegion returns true if an active region owned by the player's
// opponent covers pos
func (s *Service) InForbiddenRegion(game *model.Game, player model.Player, pos model.Position) bool {
	for _, region := range game.ForbiddenRegions {
		if region.Duration <= 0 || region.Owner == player {
			continue
		}
		if region.Contains(pos) {
			return true
		}
	}
	return false
}

// IsOuterRing returns true if pos lies on the edge of the board
func (s *Service) IsOuterRing(board *model.Board, pos model.Position) bool {
	last := board.Size - 1
	return pos.Row == 0 || pos.Col == 0 || pos.Row == last || pos.Col == last
}

// ManhattanDistance returns |dr| + |dc| between two positions
func ManhattanDistance(a, b model.Position) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Interface for dependency injection
type ServiceInterface interface {
	CheckWin(board *model.Board, pos model.Position, player model.Player, winLength int) bool
	FindWinner(board *model.Board, winLength int, prefer model.Player) (model.Player, bool)
	HasEmptyCell(board *model.Board) bool
	InForbiddenRegion(game *model.Game, player model.Player, pos model.Position) bool
	IsOuterRing(board *model.Board, pos model.Position) bool
}

var _ ServiceInterface = (*Service)(nil)
