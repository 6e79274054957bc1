package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/skillgomoku/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

// Game tests

func (s *StorageSuite) TestSaveAndGetGame() {
	game := model.NewGame("game-1", model.DefaultRules(), s.now)
	game.Board.Set(model.Position{Row: 7, Col: 7}, model.PlayerBlack)

	err := s.storage.SaveGame(s.ctx, game)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(game.ID, retrieved.ID)
	s.Equal(model.PlayerBlack, retrieved.Board.Get(model.Position{Row: 7, Col: 7}))
}

func (s *StorageSuite) TestStoredGameIsIsolated() {
	game := model.NewGame("game-1", model.DefaultRules(), s.now)
	_ = s.storage.SaveGame(s.ctx, game)

	// Mutating the saved or the retrieved value must not leak into storage
	game.Board.Set(model.Position{Row: 0, Col: 0}, model.PlayerWhite)
	retrieved, _ := s.storage.GetGame(s.ctx, "game-1")
	s.True(retrieved.Board.IsEmpty(model.Position{Row: 0, Col: 0}))

	retrieved.CurrentPlayer = model.PlayerWhite
	again, _ := s.storage.GetGame(s.ctx, "game-1")
	s.Equal(model.PlayerBlack, again.CurrentPlayer)
}

func (s *StorageSuite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestDeleteGame() {
	_ = s.storage.SaveGame(s.ctx, model.NewGame("game-1", model.DefaultRules(), s.now))

	err := s.storage.DeleteGame(s.ctx, "game-1")
	s.Require().NoError(err)

	_, err = s.storage.GetGame(s.ctx, "game-1")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestListGamesMostRecentFirst() {
	older := model.NewGame("game-a", model.DefaultRules(), s.now)
	newer := model.NewGame("game-b", model.DefaultRules(), s.now.Add(time.Minute))
	_ = s.storage.SaveGame(s.ctx, older)
	_ = s.storage.SaveGame(s.ctx, newer)

	summaries, err := s.storage.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(summaries, 2)
	s.Equal(model.GameID("game-b"), summaries[0].ID)
	s.Equal(model.GameID("game-a"), summaries[1].ID)
}

func (s *StorageSuite) TestPing() {
	s.NoError(s.storage.Ping(s.ctx))
}
