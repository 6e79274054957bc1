package skill

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/skillgomoku/internal/dependencies/mocks"
	"github.com/mcoot/skillgomoku/internal/dependencies/random"
	"github.com/mcoot/skillgomoku/internal/model"
	"github.com/mcoot/skillgomoku/internal/services/board"
	"github.com/mcoot/skillgomoku/internal/services/tracker"
	"github.com/mcoot/skillgomoku/internal/testutil"
)

type ResolverSuite struct {
	suite.Suite
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	tracker  *tracker.Service
	resolver *Resolver
	game     *model.Game
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.tracker = tracker.New(s.clock, testutil.NopLogger())
	s.resolver = NewResolver(board.New(), s.tracker, s.random, s.clock, testutil.NopLogger())
	s.game = model.NewGame("game-1", model.DefaultRules(), s.clock.Now())
	s.tracker.Reset(s.game)
	s.setEnergy(model.PlayerBlack, 5)
}

func (s *ResolverSuite) setEnergy(player model.Player, energy int) {
	s.game.Tracker.Records[player].Energy = energy
}

func (s *ResolverSuite) energy(player model.Player) int {
	return s.game.Tracker.Records[player].Energy
}

// placeMove puts a stone on the board and records it as a placement
func (s *ResolverSuite) placeMove(player model.Player, row, col int) model.Position {
	pos := model.Position{Row: row, Col: col}
	s.game.Board.Set(pos, player)
	s.game.History = append(s.game.History, model.HistoryEntry{
		Kind:     model.HistoryMove,
		Player:   player,
		Position: pos,
	})
	return pos
}

func cell(row, col int) *model.Position {
	return &model.Position{Row: row, Col: col}
}

// assertUnchanged checks the all-or-nothing contract after a failed skill
func (s *ResolverSuite) assertUnchanged(before *model.Game) {
	s.Equal(before.Board, s.game.Board)
	s.Equal(before.History, s.game.History)
	s.Equal(before.Tracker, s.game.Tracker)
	s.Equal(before.Protected, s.game.Protected)
	s.Equal(before.ForbiddenRegions, s.game.ForbiddenRegions)
	s.Equal(before.Frozen, s.game.Frozen)
}

// Gate tests

func (s *ResolverSuite) TestUnknownSkill() {
	_, err := s.resolver.UseSkill(s.game, model.PlayerBlack, "fireball", nil)
	s.ErrorIs(err, model.ErrUnknownSkill)
}

func (s *ResolverSuite) TestInsufficientEnergy() {
	s.setEnergy(model.PlayerBlack, 1)
	before := s.game.Clone()

	_, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillFreezeTurn, nil)
	s.ErrorIs(err, model.ErrInsufficientEnergy)
	s.assertUnchanged(before)
}

func (s *ResolverSuite) TestOnCooldown() {
	s.game.Tracker.Records[model.PlayerBlack].Cooldowns[model.SkillShield] = 2

	_, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillShield, nil)
	s.ErrorIs(err, model.ErrSkillOnCooldown)
}

func (s *ResolverSuite) TestSuccessChargesAndRecordsHistory() {
	effects, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillFreezeTurn, nil)
	s.Require().NoError(err)
	s.Len(effects, 1)

	s.Equal(3, s.energy(model.PlayerBlack))
	s.Equal(4, s.game.Tracker.Records[model.PlayerBlack].Cooldowns[model.SkillFreezeTurn])
	last, ok := s.game.LastEntry()
	s.Require().True(ok)
	s.Equal(model.HistorySkill, last.Kind)
	s.Equal(model.SkillFreezeTurn, last.Skill)
	s.Equal(s.clock.Now(), last.Timestamp)
}

func (s *ResolverSuite) TestFailedPredicatesNeverMutate() {
	s.placeMove(model.PlayerBlack, 7, 7)
	s.placeMove(model.PlayerWhite, 7, 8)
	s.game.ProtectionSet(model.PlayerWhite).Add(model.Position{Row: 7, Col: 8})
	s.game.ProtectionTurns = 2

	tests := []struct {
		name   string
		skill  model.SkillID
		target *model.SkillTarget
	}{
		{"remove without target", model.SkillRemoveStone, nil},
		{"remove empty cell", model.SkillRemoveStone, &model.SkillTarget{Cell: cell(0, 0)}},
		{"remove own stone", model.SkillRemoveStone, &model.SkillTarget{Cell: cell(7, 7)}},
		{"remove protected stone", model.SkillRemoveStone, &model.SkillTarget{Cell: cell(7, 8)}},
		{"remove out of bounds", model.SkillRemoveStone, &model.SkillTarget{Cell: cell(20, 20)}},
		{"relocate enemy stone", model.SkillRelocate, &model.SkillTarget{From: cell(7, 8), To: cell(8, 8)}},
		{"relocate diagonal", model.SkillRelocate, &model.SkillTarget{From: cell(7, 7), To: cell(8, 8)}},
		{"relocate onto stone", model.SkillRelocate, &model.SkillTarget{From: cell(7, 7), To: cell(7, 8)}},
		{"relocate off board", model.SkillRelocate, &model.SkillTarget{From: cell(7, 7), To: cell(7, 15)}},
		{"relocate missing to", model.SkillRelocate, &model.SkillTarget{From: cell(7, 7)}},
		{"forbid on edge", model.SkillForbidRegion, &model.SkillTarget{Cell: cell(0, 5)}},
		{"forbid occupied center", model.SkillForbidRegion, &model.SkillTarget{Cell: cell(7, 7)}},
		{"forbid without target", model.SkillForbidRegion, nil},
		{"purge recent protected", model.SkillPurgeRecent, nil},
		{"random purge protected", model.SkillRandomPurge, nil},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			before := s.game.Clone()
			_, err := s.resolver.UseSkill(s.game, model.PlayerBlack, tt.skill, tt.target)
			s.ErrorIs(err, model.ErrSkillEffectFailed)
			s.assertUnchanged(before)
		})
	}
}

// refusingTracker passes the capability check but refuses to charge
type refusingTracker struct {
	*tracker.Service
}

func (refusingTracker) UseSkill(*model.Game, model.Player, model.SkillDefinition) bool {
	return false
}

func (s *ResolverSuite) TestRefusedChargeLeavesBoardUntouched() {
	resolver := NewResolver(board.New(), refusingTracker{s.tracker}, s.random, s.clock, testutil.NopLogger())
	s.placeMove(model.PlayerWhite, 7, 8)
	before := s.game.Clone()

	_, err := resolver.UseSkill(s.game, model.PlayerBlack, model.SkillRemoveStone,
		&model.SkillTarget{Cell: cell(7, 8)})
	s.ErrorIs(err, model.ErrSkillEffectFailed)
	s.assertUnchanged(before)
	s.Equal(model.PlayerWhite, s.game.Board.Get(model.Position{Row: 7, Col: 8}))
}

// Remove stone tests

func (s *ResolverSuite) TestRemoveStone() {
	pos := s.placeMove(model.PlayerWhite, 3, 4)

	effects, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillRemoveStone, &model.SkillTarget{Cell: &pos})
	s.Require().NoError(err)

	s.True(s.game.Board.IsEmpty(pos))
	s.Equal(3, s.energy(model.PlayerBlack))
	s.Require().Len(effects, 1)
	s.Equal(model.EffectStonesRemoved, effects[0].Kind)
	s.Equal([]model.Position{pos}, effects[0].Positions)
}

// Freeze tests

func (s *ResolverSuite) TestFreezeMarksOpponent() {
	_, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillFreezeTurn, nil)
	s.Require().NoError(err)

	s.Require().NotNil(s.game.Frozen)
	s.Equal(model.PlayerWhite, s.game.Frozen.Player)
	s.Equal(1, s.game.Frozen.Turns)
}

// Shield tests

func (s *ResolverSuite) TestShieldProtectsAllOwnStones() {
	a := s.placeMove(model.PlayerBlack, 1, 1)
	b := s.placeMove(model.PlayerBlack, 2, 2)
	enemy := s.placeMove(model.PlayerWhite, 3, 3)

	_, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillShield, nil)
	s.Require().NoError(err)

	s.True(s.game.IsProtected(model.PlayerBlack, a))
	s.True(s.game.IsProtected(model.PlayerBlack, b))
	s.False(s.game.IsProtected(model.PlayerWhite, enemy))
	s.Equal(2, s.game.ProtectionTurns)
	s.Equal(4, s.energy(model.PlayerBlack))
}

func (s *ResolverSuite) TestShieldedStoneResistsRemoval() {
	s.placeMove(model.PlayerBlack, 5, 5)
	s.game.CurrentPlayer = model.PlayerBlack
	_, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillShield, nil)
	s.Require().NoError(err)

	s.setEnergy(model.PlayerWhite, 5)
	_, err = s.resolver.UseSkill(s.game, model.PlayerWhite, model.SkillRemoveStone, &model.SkillTarget{Cell: cell(5, 5)})
	s.ErrorIs(err, model.ErrSkillEffectFailed)
	s.Equal(5, s.energy(model.PlayerWhite))
}

// Relocate tests

func (s *ResolverSuite) TestRelocateMovesStoneAndProtection() {
	from := s.placeMove(model.PlayerBlack, 6, 6)
	s.game.ProtectionSet(model.PlayerBlack).Add(from)
	to := model.Position{Row: 5, Col: 6}

	effects, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillRelocate, &model.SkillTarget{From: &from, To: &to})
	s.Require().NoError(err)

	s.True(s.game.Board.IsEmpty(from))
	s.Equal(model.PlayerBlack, s.game.Board.Get(to))
	s.True(s.game.IsProtected(model.PlayerBlack, to))
	s.False(s.game.IsProtected(model.PlayerBlack, from))
	s.Equal([]model.Position{from, to}, effects[0].Positions)
}

// Rewind tests

func (s *ResolverSuite) TestRewindPopsLastPlacement() {
	s.placeMove(model.PlayerBlack, 7, 7)
	last := s.placeMove(model.PlayerWhite, 8, 8)

	_, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillRewind, nil)
	s.Require().NoError(err)

	s.True(s.game.Board.IsEmpty(last))
	s.Equal(model.PlayerBlack, s.game.Board.Get(model.Position{Row: 7, Col: 7}))
	// The popped placement is replaced by the skill entry
	s.Require().Len(s.game.History, 2)
	s.Equal(model.HistoryMove, s.game.History[0].Kind)
	s.Equal(model.HistorySkill, s.game.History[1].Kind)
}

func (s *ResolverSuite) TestRewindEmptyHistoryFails() {
	_, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillRewind, nil)
	s.ErrorIs(err, model.ErrSkillEffectFailed)
	s.Equal(5, s.energy(model.PlayerBlack))
}

func (s *ResolverSuite) TestRewindAfterSkillFails() {
	s.placeMove(model.PlayerWhite, 8, 8)
	_, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillShield, nil)
	s.Require().NoError(err)

	before := s.game.Clone()
	_, err = s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillRewind, nil)
	s.ErrorIs(err, model.ErrSkillEffectFailed)
	s.assertUnchanged(before)
}

// Shuffle tests

func (s *ResolverSuite) TestShufflePreservesStoneCounts() {
	seeded := NewResolver(board.New(), s.tracker, random.NewSeeded(7), s.clock, testutil.NopLogger())
	for i := 0; i < 6; i++ {
		s.placeMove(model.PlayerBlack, i, i)
		s.placeMove(model.PlayerWhite, i, 14-i)
	}
	s.placeMove(model.PlayerBlack, 10, 3)

	_, err := seeded.UseSkill(s.game, model.PlayerBlack, model.SkillShuffle, nil)
	s.Require().NoError(err)

	s.Equal(7, s.game.Board.Count(model.PlayerBlack))
	s.Equal(6, s.game.Board.Count(model.PlayerWhite))
	s.Equal(225-13, s.game.Board.EmptyCount())
	s.Equal(1, s.energy(model.PlayerBlack))
}

func (s *ResolverSuite) TestShuffleUsesFisherYatesOverAllCells() {
	s.placeMove(model.PlayerWhite, 0, 0)

	_, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillShuffle, nil)
	s.Require().NoError(err)

	// One Intn call per swap, over the full board
	s.Require().Len(s.random.IntnCalls, 224)
	s.Equal(225, s.random.IntnCalls[0])
	s.Equal(2, s.random.IntnCalls[223])
	s.Equal(1, s.game.Board.Count(model.PlayerWhite))
}

func (s *ResolverSuite) TestShuffleCarriesProtection() {
	pos := s.placeMove(model.PlayerWhite, 4, 4)
	s.game.ProtectionSet(model.PlayerWhite).Add(pos)

	effects, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillShuffle, nil)
	s.Require().NoError(err)

	s.Require().Len(effects[0].Positions, 1)
	dest := effects[0].Positions[0]
	s.Equal(model.PlayerWhite, s.game.Board.Get(dest))
	s.True(s.game.IsProtected(model.PlayerWhite, dest))
	s.Len(s.game.Protected[model.PlayerWhite], 1)
}

// Forbid region tests

func (s *ResolverSuite) TestForbidRegion() {
	_, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillForbidRegion, &model.SkillTarget{Cell: cell(1, 13)})
	s.Require().NoError(err)

	s.Require().Len(s.game.ForbiddenRegions, 1)
	region := s.game.ForbiddenRegions[0]
	s.Equal(model.Position{Row: 1, Col: 13}, region.Center)
	s.Equal(2, region.Duration)
	s.Equal(model.PlayerBlack, region.Owner)
}

// Purge recent tests

func (s *ResolverSuite) TestPurgeRecentSingleStone() {
	pos := s.placeMove(model.PlayerWhite, 9, 9)

	effects, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillPurgeRecent, nil)
	s.Require().NoError(err)

	s.True(s.game.Board.IsEmpty(pos))
	s.Equal([]model.Position{pos}, effects[0].Positions)
	s.Equal(2, s.energy(model.PlayerBlack))
}

func (s *ResolverSuite) TestPurgeRecentSingleProtectedStoneFails() {
	pos := s.placeMove(model.PlayerWhite, 9, 9)
	s.game.ProtectionSet(model.PlayerWhite).Add(pos)

	_, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillPurgeRecent, nil)
	s.ErrorIs(err, model.ErrSkillEffectFailed)
	s.Equal(model.PlayerWhite, s.game.Board.Get(pos))
	s.Equal(5, s.energy(model.PlayerBlack))
}

func (s *ResolverSuite) TestPurgeRecentOnlyLastThree() {
	oldest := s.placeMove(model.PlayerWhite, 0, 1)
	s.placeMove(model.PlayerBlack, 0, 0)
	a := s.placeMove(model.PlayerWhite, 1, 1)
	b := s.placeMove(model.PlayerWhite, 2, 2)
	c := s.placeMove(model.PlayerWhite, 3, 3)

	_, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillPurgeRecent, nil)
	s.Require().NoError(err)

	for _, pos := range []model.Position{a, b, c} {
		s.True(s.game.Board.IsEmpty(pos))
	}
	s.Equal(model.PlayerWhite, s.game.Board.Get(oldest))
	s.Equal(model.PlayerBlack, s.game.Board.Get(model.Position{Row: 0, Col: 0}))
}

func (s *ResolverSuite) TestPurgeRecentSkipsStonesAlreadyGone() {
	a := s.placeMove(model.PlayerWhite, 1, 1)
	b := s.placeMove(model.PlayerWhite, 2, 2)
	s.game.Board.Clear(a)

	effects, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillPurgeRecent, nil)
	s.Require().NoError(err)
	s.Equal([]model.Position{b}, effects[0].Positions)
}

// Random purge tests

func (s *ResolverSuite) TestRandomPurgeCountThenSample() {
	var stones []model.Position
	for col := 0; col < 5; col++ {
		stones = append(stones, s.placeMove(model.PlayerWhite, 4, col))
	}
	s.random.QueueIntn(2, 4, 0, 0) // count 3, then swap in index 4, keep 1 and 2

	effects, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillRandomPurge, nil)
	s.Require().NoError(err)

	s.Equal([]int{3, 5, 4, 3}, s.random.IntnCalls)
	s.ElementsMatch([]model.Position{stones[4], stones[1], stones[2]}, effects[0].Positions)
	s.Equal(2, s.game.Board.Count(model.PlayerWhite))
	s.Equal(model.PlayerWhite, s.game.Board.Get(stones[0]))
	s.Equal(model.PlayerWhite, s.game.Board.Get(stones[3]))
}

func (s *ResolverSuite) TestRandomPurgeSkipsProtected() {
	protected := s.placeMove(model.PlayerWhite, 0, 0)
	open := s.placeMove(model.PlayerWhite, 0, 1)
	s.game.ProtectionSet(model.PlayerWhite).Add(protected)
	s.random.QueueIntn(2) // Clamped to the single candidate

	effects, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillRandomPurge, nil)
	s.Require().NoError(err)

	s.Equal([]model.Position{open}, effects[0].Positions)
	s.Equal(model.PlayerWhite, s.game.Board.Get(protected))
}

func (s *ResolverSuite) TestRandomPurgeNoEnemyStonesFails() {
	_, err := s.resolver.UseSkill(s.game, model.PlayerBlack, model.SkillRandomPurge, nil)
	s.ErrorIs(err, model.ErrSkillEffectFailed)
}
