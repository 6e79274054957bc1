package model

// Player identifies one of the two sides of a game
type Player string

const (
	PlayerBlack Player = "black"
	PlayerWhite Player = "white"
)

// Players lists both sides in the order they first move
var Players = []Player{PlayerBlack, PlayerWhite}

// Valid returns true if the player is black or white
func (p Player) Valid() bool {
	return p == PlayerBlack || p == PlayerWhite
}

// Opponent returns the other side
func (p Player) Opponent() Player {
	if p == PlayerBlack {
		return PlayerWhite
	}
	return PlayerBlack
}

// ParsePlayer converts a string into a Player
func ParsePlayer(s string) (Player, error) {
	p := Player(s)
	if !p.Valid() {
		return "", ErrInvalidPlayer
	}
	return p, nil
}
