package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/skillgomoku/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
	board   *model.Board
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New()
	s.board = model.NewBoard(15)
}

func (s *ServiceSuite) place(player model.Player, positions ...model.Position) {
	for _, pos := range positions {
		s.board.Set(pos, player)
	}
}

func line(start model.Position, dr, dc, n int) []model.Position {
	positions := make([]model.Position, n)
	for i := 0; i < n; i++ {
		positions[i] = model.Position{Row: start.Row + i*dr, Col: start.Col + i*dc}
	}
	return positions
}

// CheckWin tests

func (s *ServiceSuite) TestCheckWinAllOrientations() {
	tests := []struct {
		name   string
		start  model.Position
		dr, dc int
	}{
		{"horizontal", model.Position{Row: 7, Col: 3}, 0, 1},
		{"vertical", model.Position{Row: 2, Col: 9}, 1, 0},
		{"diagonal", model.Position{Row: 0, Col: 0}, 1, 1},
		{"anti-diagonal", model.Position{Row: 4, Col: 14}, 1, -1},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.board = model.NewBoard(15)
			stones := line(tt.start, tt.dr, tt.dc, 5)
			s.place(model.PlayerBlack, stones...)

			// Any stone in the line is a winning anchor
			for _, pos := range stones {
				s.True(s.service.CheckWin(s.board, pos, model.PlayerBlack, 5), "anchor %s", pos)
			}
		})
	}
}

func (s *ServiceSuite) TestCheckWinFourInARowIsNotAWin() {
	stones := line(model.Position{Row: 7, Col: 7}, 0, 1, 4)
	s.place(model.PlayerBlack, stones...)

	for _, pos := range stones {
		s.False(s.service.CheckWin(s.board, pos, model.PlayerBlack, 5))
	}
}

func (s *ServiceSuite) TestCheckWinBlockedByOpponent() {
	s.place(model.PlayerBlack, line(model.Position{Row: 7, Col: 7}, 0, 1, 4)...)
	s.place(model.PlayerWhite, model.Position{Row: 7, Col: 11})

	s.False(s.service.CheckWin(s.board, model.Position{Row: 7, Col: 11}, model.PlayerWhite, 5))
	s.False(s.service.CheckWin(s.board, model.Position{Row: 7, Col: 10}, model.PlayerBlack, 5))
}

func (s *ServiceSuite) TestCheckWinOverlineCounts() {
	s.place(model.PlayerWhite, line(model.Position{Row: 3, Col: 0}, 0, 1, 7)...)

	s.True(s.service.CheckWin(s.board, model.Position{Row: 3, Col: 3}, model.PlayerWhite, 5))
}

func (s *ServiceSuite) TestCheckWinGapIsNotContiguous() {
	s.place(model.PlayerBlack,
		model.Position{Row: 0, Col: 0},
		model.Position{Row: 0, Col: 1},
		model.Position{Row: 0, Col: 3},
		model.Position{Row: 0, Col: 4},
		model.Position{Row: 0, Col: 5},
	)

	s.False(s.service.CheckWin(s.board, model.Position{Row: 0, Col: 4}, model.PlayerBlack, 5))
}

func (s *ServiceSuite) TestCheckWinWrongPlayerAtAnchor() {
	s.place(model.PlayerBlack, line(model.Position{Row: 0, Col: 0}, 1, 0, 5)...)

	s.False(s.service.CheckWin(s.board, model.Position{Row: 0, Col: 0}, model.PlayerWhite, 5))
	s.False(s.service.CheckWin(s.board, model.Position{Row: 10, Col: 10}, model.PlayerBlack, 5))
}

// FindWinner tests

func (s *ServiceSuite) TestFindWinnerNoLine() {
	s.place(model.PlayerBlack, line(model.Position{Row: 1, Col: 1}, 1, 1, 4)...)

	_, ok := s.service.FindWinner(s.board, 5, model.PlayerBlack)
	s.False(ok)
}

func (s *ServiceSuite) TestFindWinnerFindsOpponentLine() {
	s.place(model.PlayerWhite, line(model.Position{Row: 10, Col: 2}, 0, 1, 5)...)

	winner, ok := s.service.FindWinner(s.board, 5, model.PlayerBlack)
	s.True(ok)
	s.Equal(model.PlayerWhite, winner)
}

func (s *ServiceSuite) TestFindWinnerPrefersGivenPlayer() {
	s.place(model.PlayerWhite, line(model.Position{Row: 10, Col: 2}, 0, 1, 5)...)
	s.place(model.PlayerBlack, line(model.Position{Row: 0, Col: 2}, 0, 1, 5)...)

	winner, ok := s.service.FindWinner(s.board, 5, model.PlayerBlack)
	s.True(ok)
	s.Equal(model.PlayerBlack, winner)

	winner, ok = s.service.FindWinner(s.board, 5, model.PlayerWhite)
	s.True(ok)
	s.Equal(model.PlayerWhite, winner)
}

// HasEmptyCell tests

func (s *ServiceSuite) TestHasEmptyCell() {
	small := model.NewBoard(2)
	s.True(s.service.HasEmptyCell(small))

	small.Set(model.Position{Row: 0, Col: 0}, model.PlayerBlack)
	small.Set(model.Position{Row: 0, Col: 1}, model.PlayerWhite)
	small.Set(model.Position{Row: 1, Col: 0}, model.PlayerWhite)
	s.True(s.service.HasEmptyCell(small))

	small.Set(model.Position{Row: 1, Col: 1}, model.PlayerBlack)
	s.False(s.service.HasEmptyCell(small))
}

// Forbidden region tests

func (s *ServiceSuite) TestInForbiddenRegionBlocksOpponentOnly() {
	game := model.NewGame("g", model.DefaultRules(), testTime)
	game.ForbiddenRegions = []model.ForbiddenRegion{
		{Center: model.Position{Row: 5, Col: 5}, Duration: 2, Owner: model.PlayerBlack},
	}

	for _, pos := range []model.Position{{Row: 4, Col: 4}, {Row: 5, Col: 5}, {Row: 6, Col: 6}, {Row: 4, Col: 6}} {
		s.True(s.service.InForbiddenRegion(game, model.PlayerWhite, pos), "white at %s", pos)
		s.False(s.service.InForbiddenRegion(game, model.PlayerBlack, pos), "black at %s", pos)
	}
	s.False(s.service.InForbiddenRegion(game, model.PlayerWhite, model.Position{Row: 3, Col: 5}))
	s.False(s.service.InForbiddenRegion(game, model.PlayerWhite, model.Position{Row: 5, Col: 7}))
}

func (s *ServiceSuite) TestInForbiddenRegionIgnoresExpired() {
	game := model.NewGame("g", model.DefaultRules(), testTime)
	game.ForbiddenRegions = []model.ForbiddenRegion{
		{Center: model.Position{Row: 5, Col: 5}, Duration: 0, Owner: model.PlayerBlack},
	}

	s.False(s.service.InForbiddenRegion(game, model.PlayerWhite, model.Position{Row: 5, Col: 5}))
}

func (s *ServiceSuite) TestIsOuterRing() {
	s.True(s.service.IsOuterRing(s.board, model.Position{Row: 0, Col: 7}))
	s.True(s.service.IsOuterRing(s.board, model.Position{Row: 7, Col: 14}))
	s.True(s.service.IsOuterRing(s.board, model.Position{Row: 14, Col: 14}))
	s.False(s.service.IsOuterRing(s.board, model.Position{Row: 1, Col: 1}))
	s.False(s.service.IsOuterRing(s.board, model.Position{Row: 13, Col: 7}))
}

func (s *ServiceSuite) TestManhattanDistance() {
	s.Equal(1, ManhattanDistance(model.Position{Row: 3, Col: 3}, model.Position{Row: 3, Col: 4}))
	s.Equal(2, ManhattanDistance(model.Position{Row: 3, Col: 3}, model.Position{Row: 4, Col: 4}))
	s.Equal(0, ManhattanDistance(model.Position{Row: 3, Col: 3}, model.Position{Row: 3, Col: 3}))
}

var testTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
