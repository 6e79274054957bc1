package storage

import (
	"context"
	"sort"

	"github.com/mcoot/skillgomoku/internal/model"
)

// Storage defines the interface for game persistence
type Storage interface {
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	DeleteGame(ctx context.Context, id model.GameID) error
	ListGames(ctx context.Context) ([]model.GameSummary, error)

	// Ping reports whether the backing store is reachable
	Ping(ctx context.Context) error
}

// SortSummaries orders summaries most recently updated first, then by id
func SortSummaries(summaries []model.GameSummary) {
	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})
}
