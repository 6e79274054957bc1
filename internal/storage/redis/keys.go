package redis

import (
	"fmt"

	"github.com/mcoot/skillgomoku/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "gomoku"

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gamesIndexKey returns the Redis key for the SET of known game keys
func gamesIndexKey() string {
	return fmt.Sprintf("%s:idx:games", keyPrefix)
}
