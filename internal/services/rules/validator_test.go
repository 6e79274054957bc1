package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/skillgomoku/internal/dependencies/mocks"
	"github.com/mcoot/skillgomoku/internal/model"
	"github.com/mcoot/skillgomoku/internal/services/board"
	"github.com/mcoot/skillgomoku/internal/services/tracker"
	"github.com/mcoot/skillgomoku/internal/testutil"
)

type ValidatorSuite struct {
	suite.Suite
	tracker   *tracker.Service
	validator *Validator
	game      *model.Game
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorSuite))
}

func (s *ValidatorSuite) SetupTest() {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.tracker = tracker.New(clk, testutil.NopLogger())
	s.validator = NewValidator(board.New(), s.tracker)
	s.game = model.NewGame("game-1", model.DefaultRules(), clk.Now())
	s.tracker.Reset(s.game)
}

// ValidatePlayerAction tests

func (s *ValidatorSuite) TestPlayerActionCurrentPlayer() {
	s.NoError(s.validator.ValidatePlayerAction(s.game, model.PlayerBlack))
}

func (s *ValidatorSuite) TestPlayerActionWrongTurn() {
	s.ErrorIs(s.validator.ValidatePlayerAction(s.game, model.PlayerWhite), model.ErrWrongTurn)
}

func (s *ValidatorSuite) TestPlayerActionInvalidPlayer() {
	s.ErrorIs(s.validator.ValidatePlayerAction(s.game, "green"), model.ErrInvalidPlayer)
}

func (s *ValidatorSuite) TestPlayerActionGameEnded() {
	s.game.End(model.PlayerBlack)
	s.ErrorIs(s.validator.ValidatePlayerAction(s.game, model.PlayerBlack), model.ErrNotPlaying)
}

// ValidatePlacePosition tests

func (s *ValidatorSuite) TestPlacePosition() {
	s.game.Board.Set(model.Position{Row: 7, Col: 7}, model.PlayerWhite)
	s.game.ForbiddenRegions = []model.ForbiddenRegion{
		{Center: model.Position{Row: 3, Col: 3}, Duration: 2, Owner: model.PlayerWhite},
	}

	tests := []struct {
		name string
		pos  model.Position
		err  error
	}{
		{"empty cell", model.Position{Row: 0, Col: 0}, nil},
		{"row out of bounds", model.Position{Row: 15, Col: 0}, model.ErrOutOfBounds},
		{"negative col", model.Position{Row: 0, Col: -1}, model.ErrOutOfBounds},
		{"occupied", model.Position{Row: 7, Col: 7}, model.ErrCellOccupied},
		{"forbidden center", model.Position{Row: 3, Col: 3}, model.ErrCellForbidden},
		{"forbidden corner", model.Position{Row: 2, Col: 4}, model.ErrCellForbidden},
		{"just outside region", model.Position{Row: 1, Col: 3}, nil},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.validator.ValidatePlacePosition(s.game, model.PlayerBlack, tt.pos)
			if tt.err == nil {
				s.NoError(err)
			} else {
				s.ErrorIs(err, tt.err)
			}
		})
	}
}

func (s *ValidatorSuite) TestPlacePositionOwnRegionIsAllowed() {
	s.game.ForbiddenRegions = []model.ForbiddenRegion{
		{Center: model.Position{Row: 3, Col: 3}, Duration: 2, Owner: model.PlayerBlack},
	}
	s.NoError(s.validator.ValidatePlacePosition(s.game, model.PlayerBlack, model.Position{Row: 3, Col: 3}))
}

// ValidateSkillUse tests

func (s *ValidatorSuite) TestSkillUseUnknown() {
	_, err := s.validator.ValidateSkillUse(s.game, model.PlayerBlack, "fireball")
	s.ErrorIs(err, model.ErrUnknownSkill)
}

func (s *ValidatorSuite) TestSkillUseInsufficientEnergy() {
	s.game.Tracker.Records[model.PlayerBlack].Energy = 1
	_, err := s.validator.ValidateSkillUse(s.game, model.PlayerBlack, model.SkillRemoveStone)
	s.ErrorIs(err, model.ErrInsufficientEnergy)
}

func (s *ValidatorSuite) TestSkillUseOnCooldown() {
	s.game.Tracker.Records[model.PlayerBlack].Cooldowns[model.SkillShield] = 1
	_, err := s.validator.ValidateSkillUse(s.game, model.PlayerBlack, model.SkillShield)
	s.ErrorIs(err, model.ErrSkillOnCooldown)
}

func (s *ValidatorSuite) TestSkillUseReturnsDefinition() {
	def, err := s.validator.ValidateSkillUse(s.game, model.PlayerBlack, model.SkillFreezeTurn)
	s.Require().NoError(err)
	s.Equal(2, def.Cost)
}

// ValidateOperation tests

func (s *ValidatorSuite) TestValidateOperationDispatches() {
	s.NoError(s.validator.ValidateOperation(s.game, model.PlayerBlack, model.PlaceOperation(model.Position{Row: 1, Col: 1})))
	s.NoError(s.validator.ValidateOperation(s.game, model.PlayerBlack, model.PassOperation()))
	s.ErrorIs(s.validator.ValidateOperation(s.game, model.PlayerWhite, model.PassOperation()), model.ErrWrongTurn)
	s.ErrorIs(s.validator.ValidateOperation(s.game, model.PlayerBlack, model.Operation{Type: model.OperationPlace}), model.ErrInvalidOperation)
	s.ErrorIs(s.validator.ValidateOperation(s.game, model.PlayerBlack, model.SkillOperation(model.SkillShuffle, nil)), model.ErrInsufficientEnergy)
}

// LegalPlacements tests

func (s *ValidatorSuite) TestLegalPlacementsExcludesOccupiedAndForbidden() {
	s.game.Board.Set(model.Position{Row: 0, Col: 0}, model.PlayerBlack)
	s.game.ForbiddenRegions = []model.ForbiddenRegion{
		{Center: model.Position{Row: 7, Col: 7}, Duration: 2, Owner: model.PlayerBlack},
	}

	white := s.validator.LegalPlacements(s.game, model.PlayerWhite)
	black := s.validator.LegalPlacements(s.game, model.PlayerBlack)

	s.Len(white, 225-1-9)
	s.Len(black, 225-1)
	s.NotContains(white, model.Position{Row: 7, Col: 7})
	s.Contains(black, model.Position{Row: 7, Col: 7})
}
