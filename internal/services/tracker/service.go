package tracker

import (
	"log/slog"

	"github.com/mcoot/skillgomoku/internal/dependencies/clock"
	"github.com/mcoot/skillgomoku/internal/model"
)

// SkillStatus is a read-only view of one skill for one player
type SkillStatus struct {
	Skill     model.SkillID `json:"skill"`
	Available bool          `json:"available"`
	Cooldown  int           `json:"cooldown"`
	Cost      int           `json:"cost"`
}

// SkillStats summarises a player's skill usage
type SkillStats struct {
	TotalUses int                   `json:"total_uses"`
	PerSkill  map[model.SkillID]int `json:"per_skill"`
	LastUsed  *model.SkillUsage     `json:"last_used,omitempty"`
}

// PlayerStatus is a read-only snapshot of a player's tracker record
type PlayerStatus struct {
	Player    model.Player  `json:"player"`
	Energy    int           `json:"energy"`
	MaxEnergy int           `json:"max_energy"`
	Skills    []SkillStatus `json:"skills"`
	Stats     SkillStats    `json:"stats"`
	TurnCount int           `json:"turn_count"`
}

// Service owns energy, cooldown and skill-usage bookkeeping.
// The state it operates on lives in the game and is passed on every call.
type Service struct {
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a new TrackerService
func New(clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		clock:  clock,
		logger: logger,
	}
}

// CanUseSkill returns true if the skill is off cooldown and the player can pay for it
func (s *Service) CanUseSkill(game *model.Game, player model.Player, def model.SkillDefinition) bool {
	rec := game.Tracker.Record(player)
	return rec.Cooldowns[def.ID] <= 0 && rec.Energy >= def.Cost
}

// UseSkill charges the skill's cost, starts its cooldown and records the use.
// Returns false without mutation if the skill cannot be used.
func (s *Service) UseSkill(game *model.Game, player model.Player, def model.SkillDefinition) bool {
	if !s.CanUseSkill(game, player, def) {
		return false
	}

	rec := game.Tracker.Record(player)
	rec.Energy -= def.Cost
	rec.Cooldowns[def.ID] = def.Cooldown
	rec.Usage = append(rec.Usage, model.SkillUsage{
		Skill:     def.ID,
		Turn:      game.Tracker.TurnCount,
		Timestamp: s.clock.Now(),
	})

	s.logger.Debug("skill charged",
		slog.String("game_id", string(game.ID)),
		slog.String("player", string(player)),
		slog.String("skill", string(def.ID)),
		slog.Int("energy", rec.Energy),
	)
	return true
}

// UpdateCooldowns decrements every positive cooldown of every player by one
func (s *Service) UpdateCooldowns(game *model.Game) {
	for _, player := range model.Players {
		rec := game.Tracker.Record(player)
		for id, cd := range rec.Cooldowns {
			if cd > 0 {
				rec.Cooldowns[id] = cd - 1
			}
		}
	}
}

// RegenEnergy grants the per-turn energy regen, clamped to the maximum
func (s *Service) RegenEnergy(game *model.Game, player model.Player) {
	rec := game.Tracker.Record(player)
	if rec.Energy >= game.Rules.MaxEnergy {
		return
	}
	rec.Energy += game.Rules.EnergyRegen
	if rec.Energy > game.Rules.MaxEnergy {
		rec.Energy = game.Rules.MaxEnergy
	}
}

// AdvanceTurn increments the shared turn counter
func (s *Service) AdvanceTurn(game *model.Game) {
	game.Tracker.TurnCount++
}

// Energy returns a player's current energy
func (s *Service) Energy(game *model.Game, player model.Player) int {
	return game.Tracker.Record(player).Energy
}

// Cooldown returns the remaining cooldown of a skill for a player
func (s *Service) Cooldown(game *model.Game, player model.Player, id model.SkillID) int {
	return game.Tracker.Record(player).Cooldowns[id]
}

// SkillStatus returns the availability of every catalogue skill for a player.
// It reads a copy so it can never mutate the game.
func (s *Service) SkillStatus(game *model.Game, player model.Player) []SkillStatus {
	rec := s.snapshot(game, player)
	defs := model.Skills()
	result := make([]SkillStatus, 0, len(defs))
	for _, def := range defs {
		cd := rec.Cooldowns[def.ID]
		result = append(result, SkillStatus{
			Skill:     def.ID,
			Available: cd <= 0 && rec.Energy >= def.Cost,
			Cooldown:  cd,
			Cost:      def.Cost,
		})
	}
	return result
}

// SkillStats summarises how often a player used each skill
func (s *Service) SkillStats(game *model.Game, player model.Player) SkillStats {
	rec := s.snapshot(game, player)
	stats := SkillStats{
		TotalUses: len(rec.Usage),
		PerSkill:  make(map[model.SkillID]int),
	}
	for _, usage := range rec.Usage {
		stats.PerSkill[usage.Skill]++
	}
	if len(rec.Usage) > 0 {
		last := rec.Usage[len(rec.Usage)-1]
		stats.LastUsed = &last
	}
	return stats
}

// PlayerStatus returns a full read-only snapshot for a player
func (s *Service) PlayerStatus(game *model.Game, player model.Player) PlayerStatus {
	return PlayerStatus{
		Player:    player,
		Energy:    s.snapshot(game, player).Energy,
		MaxEnergy: game.Rules.MaxEnergy,
		Skills:    s.SkillStatus(game, player),
		Stats:     s.SkillStats(game, player),
		TurnCount: game.Tracker.TurnCount,
	}
}

// Reset reinitialises both players' records. Only used at new-game boundaries.
func (s *Service) Reset(game *model.Game) {
	game.Tracker = model.TrackerState{
		Records: make(map[model.Player]*model.PlayerRecord, len(model.Players)),
	}
	for _, player := range model.Players {
		game.Tracker.Records[player] = &model.PlayerRecord{
			Energy:    game.Rules.InitialEnergy,
			Cooldowns: make(map[model.SkillID]int),
		}
	}
}

// snapshot returns the player's record without creating one on the game
func (s *Service) snapshot(game *model.Game, player model.Player) model.PlayerRecord {
	rec, ok := game.Tracker.Records[player]
	if !ok || rec == nil {
		return model.PlayerRecord{Cooldowns: map[model.SkillID]int{}}
	}
	return *rec
}

// Interface for dependency injection
type ServiceInterface interface {
	CanUseSkill(game *model.Game, player model.Player, def model.SkillDefinition) bool
	UseSkill(game *model.Game, player model.Player, def model.SkillDefinition) bool
	Cooldown(game *model.Game, player model.Player, id model.SkillID) int
	UpdateCooldowns(game *model.Game)
	RegenEnergy(game *model.Game, player model.Player)
	AdvanceTurn(game *model.Game)
	SkillStatus(game *model.Game, player model.Player) []SkillStatus
	SkillStats(game *model.Game, player model.Player) SkillStats
	PlayerStatus(game *model.Game, player model.Player) PlayerStatus
	Reset(game *model.Game)
}

var _ ServiceInterface = (*Service)(nil)
