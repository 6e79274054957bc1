package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventGameStarted       EventType = "game_started"
	EventGameEnded         EventType = "game_ended"
	EventTurnCompleted     EventType = "turn_completed"
	EventTurnFailed        EventType = "turn_failed"
	EventSkillAvailability EventType = "skill_availability"
	EventSkillEffect       EventType = "skill_effect"
)

// Event is the base structure for all events
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	GameID    GameID    `json:"game_id"`
	Player    Player    `json:"player,omitempty"` // The player who triggered or is affected
	Payload   any       `json:"payload,omitempty"`
}

// GameStartedPayload contains data for game started events
type GameStartedPayload struct {
	Rules     Rules `json:"rules"`
	Restarted bool  `json:"restarted"`
}

// GameEndedPayload contains data for game ended events
type GameEndedPayload struct {
	Winner Player `json:"winner,omitempty"` // Empty on a draw
	Draw   bool   `json:"draw"`
	TurnID int    `json:"turn_id"`
}

// TurnCompletedPayload contains data for turn completed events
type TurnCompletedPayload struct {
	Turn          *Turn  `json:"turn"`
	CurrentPlayer Player `json:"current_player"`
	Board         *Board `json:"board"`
}

// TurnFailedPayload contains data for turn failed events
type TurnFailedPayload struct {
	TurnID int           `json:"turn_id"`
	Phase  Phase         `json:"phase"`
	Type   OperationType `json:"type"`
	Error  string        `json:"error"`
}

// SkillAvailabilityPayload is sent when a skill becomes usable or unusable
type SkillAvailabilityPayload struct {
	Skill     SkillID `json:"skill"`
	Available bool    `json:"available"`
	Energy    int     `json:"energy"`
	Cooldown  int     `json:"cooldown"`
}

// SkillEffectPayload carries a resolved skill effect for presentation
type SkillEffectPayload struct {
	TurnID int         `json:"turn_id"`
	Effect SkillEffect `json:"effect"`
}
