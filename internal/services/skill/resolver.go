package skill

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/skillgomoku/internal/dependencies/clock"
	"github.com/mcoot/skillgomoku/internal/dependencies/random"
	"github.com/mcoot/skillgomoku/internal/model"
	"github.com/mcoot/skillgomoku/internal/services/board"
	"github.com/mcoot/skillgomoku/internal/services/tracker"
)

const (
	shieldDuration   = 2
	regionDuration   = 2
	freezeDuration   = 1
	purgeRecentCount = 3
	randomPurgeMax   = 3
)

// applyFunc mutates the game once every predicate of a skill has passed.
// It must not fail.
type applyFunc func() []model.SkillEffect

// Resolver applies skill effects to a game with all-or-nothing semantics:
// a skill whose target predicate fails leaves the game untouched.
type Resolver struct {
	board   *board.Service
	tracker tracker.ServiceInterface
	random  random.Random
	clock   clock.Clock
	logger  *slog.Logger
}

// NewResolver creates a new skill Resolver
func NewResolver(
	board *board.Service,
	tracker tracker.ServiceInterface,
	random random.Random,
	clock clock.Clock,
	logger *slog.Logger,
) *Resolver {
	return &Resolver{
		board:   board,
		tracker: tracker,
		random:  random,
		clock:   clock,
		logger:  logger,
	}
}

// UseSkill resolves a skill for the player. On success the cost and cooldown
// are charged and a skill history entry appended; on failure nothing changes.
func (r *Resolver) UseSkill(game *model.Game, player model.Player, id model.SkillID, target *model.SkillTarget) ([]model.SkillEffect, error) {
	def, ok := model.LookupSkill(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownSkill, id)
	}
	if err := r.checkCapability(game, player, def); err != nil {
		return nil, err
	}
	if target == nil {
		target = &model.SkillTarget{}
	}

	apply, err := r.prepare(game, player, id, target)
	if err != nil {
		r.logger.Debug("skill rejected",
			slog.String("game_id", string(game.ID)),
			slog.String("player", string(player)),
			slog.String("skill", string(id)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	// Charge before applying; prepare has already proven the effect succeeds
	if !r.tracker.UseSkill(game, player, def) {
		return nil, fmt.Errorf("%w: %s could not be charged", model.ErrSkillEffectFailed, id)
	}
	effects := apply()

	game.History = append(game.History, model.HistoryEntry{
		Kind:      model.HistorySkill,
		Player:    player,
		Skill:     id,
		Target:    target,
		Timestamp: r.clock.Now(),
	})

	r.logger.Info("skill used",
		slog.String("game_id", string(game.ID)),
		slog.String("player", string(player)),
		slog.String("skill", string(id)),
		slog.Int("effects", len(effects)),
	)
	return effects, nil
}

// checkCapability reports why the tracker would refuse the skill
func (r *Resolver) checkCapability(game *model.Game, player model.Player, def model.SkillDefinition) error {
	if r.tracker.CanUseSkill(game, player, def) {
		return nil
	}
	if cd := r.tracker.Cooldown(game, player, def.ID); cd > 0 {
		return fmt.Errorf("%w: %s ready in %d turns", model.ErrSkillOnCooldown, def.ID, cd)
	}
	return fmt.Errorf("%w: %s costs %d", model.ErrInsufficientEnergy, def.ID, def.Cost)
}

// prepare runs the skill's target predicate and returns its effect.
// Every case must be side-effect free up to the returned applyFunc.
func (r *Resolver) prepare(game *model.Game, player model.Player, id model.SkillID, target *model.SkillTarget) (applyFunc, error) {
	switch id {
	case model.SkillRemoveStone:
		return r.prepareRemoveStone(game, player, target)
	case model.SkillFreezeTurn:
		return r.prepareFreezeTurn(game, player)
	case model.SkillShield:
		return r.prepareShield(game, player)
	case model.SkillRelocate:
		return r.prepareRelocate(game, player, target)
	case model.SkillRewind:
		return r.prepareRewind(game, player)
	case model.SkillShuffle:
		return r.prepareShuffle(game, player)
	case model.SkillForbidRegion:
		return r.prepareForbidRegion(game, player, target)
	case model.SkillPurgeRecent:
		return r.preparePurgeRecent(game, player)
	case model.SkillRandomPurge:
		return r.prepareRandomPurge(game, player)
	}
	return nil, fmt.Errorf("%w: %q", model.ErrUnknownSkill, id)
}

func effectFailed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{model.ErrSkillEffectFailed}, args...)...)
}

func (r *Resolver) prepareRemoveStone(game *model.Game, player model.Player, target *model.SkillTarget) (applyFunc, error) {
	if target.Cell == nil {
		return nil, effectFailed("no target cell")
	}
	cell := *target.Cell
	opponent := player.Opponent()
	if game.Board.Get(cell) != opponent {
		return nil, effectFailed("no enemy stone at %s", cell)
	}
	if game.IsProtected(opponent, cell) {
		return nil, effectFailed("stone at %s is protected", cell)
	}

	return func() []model.SkillEffect {
		game.Board.Clear(cell)
		return []model.SkillEffect{{
			Kind:      model.EffectStonesRemoved,
			Skill:     model.SkillRemoveStone,
			Player:    player,
			Positions: []model.Position{cell},
			Target:    opponent,
		}}
	}, nil
}

func (r *Resolver) prepareFreezeTurn(game *model.Game, player model.Player) (applyFunc, error) {
	opponent := player.Opponent()
	return func() []model.SkillEffect {
		game.Frozen = &model.FreezeMarker{Player: opponent, Turns: freezeDuration}
		return []model.SkillEffect{{
			Kind:   model.EffectFreeze,
			Skill:  model.SkillFreezeTurn,
			Player: player,
			Target: opponent,
		}}
	}, nil
}

func (r *Resolver) prepareShield(game *model.Game, player model.Player) (applyFunc, error) {
	return func() []model.SkillEffect {
		set := game.ProtectionSet(player)
		stones := game.Board.PositionsOf(player)
		for _, pos := range stones {
			set.Add(pos)
		}
		game.ProtectionTurns = shieldDuration
		return []model.SkillEffect{{
			Kind:      model.EffectShield,
			Skill:     model.SkillShield,
			Player:    player,
			Positions: stones,
			Target:    player,
		}}
	}, nil
}

func (r *Resolver) prepareRelocate(game *model.Game, player model.Player, target *model.SkillTarget) (applyFunc, error) {
	if target.From == nil || target.To == nil {
		return nil, effectFailed("relocate needs from and to")
	}
	from, to := *target.From, *target.To
	if game.Board.Get(from) != player {
		return nil, effectFailed("no own stone at %s", from)
	}
	if !game.Board.IsValidPosition(to) || !game.Board.IsEmpty(to) {
		return nil, effectFailed("destination %s is not an empty cell", to)
	}
	if board.ManhattanDistance(from, to) != 1 {
		return nil, effectFailed("destination %s is not adjacent to %s", to, from)
	}

	return func() []model.SkillEffect {
		game.Board.Clear(from)
		game.Board.Set(to, player)
		set := game.ProtectionSet(player)
		if set.Has(from) {
			set.Remove(from)
			set.Add(to)
		}
		return []model.SkillEffect{{
			Kind:      model.EffectStoneMoved,
			Skill:     model.SkillRelocate,
			Player:    player,
			Positions: []model.Position{from, to},
			Target:    player,
		}}
	}, nil
}

func (r *Resolver) prepareRewind(game *model.Game, player model.Player) (applyFunc, error) {
	last, ok := game.LastEntry()
	if !ok {
		return nil, effectFailed("history is empty")
	}
	if last.Kind != model.HistoryMove {
		return nil, effectFailed("last action was not a placement")
	}

	return func() []model.SkillEffect {
		game.Board.Clear(last.Position)
		game.ProtectionSet(last.Player).Remove(last.Position)
		game.PopEntry()
		return []model.SkillEffect{{
			Kind:      model.EffectRewind,
			Skill:     model.SkillRewind,
			Player:    player,
			Positions: []model.Position{last.Position},
			Target:    last.Player,
		}}
	}, nil
}

func (r *Resolver) prepareShuffle(game *model.Game, player model.Player) (applyFunc, error) {
	return func() []model.SkillEffect {
		type stone struct {
			from      model.Position
			owner     model.Player
			protected bool
		}

		// Lift every stone in row-major order
		var stones []stone
		for row := 0; row < game.Board.Size; row++ {
			for col := 0; col < game.Board.Size; col++ {
				pos := model.Position{Row: row, Col: col}
				owner := game.Board.Get(pos)
				if owner == "" {
					continue
				}
				stones = append(stones, stone{from: pos, owner: owner, protected: game.IsProtected(owner, pos)})
				game.Board.Clear(pos)
			}
		}

		// The board is now empty: Fisher-Yates over all of its cells
		cells := make([]model.Position, 0, game.Board.Size*game.Board.Size)
		for row := 0; row < game.Board.Size; row++ {
			for col := 0; col < game.Board.Size; col++ {
				cells = append(cells, model.Position{Row: row, Col: col})
			}
		}
		for i := len(cells) - 1; i > 0; i-- {
			j := r.random.Intn(i + 1)
			cells[i], cells[j] = cells[j], cells[i]
		}

		for _, p := range model.Players {
			game.Protected[p] = make(model.PositionSet)
		}
		moved := make([]model.Position, 0, len(stones))
		for i, st := range stones {
			dest := cells[i]
			game.Board.Set(dest, st.owner)
			if st.protected {
				game.ProtectionSet(st.owner).Add(dest)
			}
			moved = append(moved, dest)
		}

		return []model.SkillEffect{{
			Kind:      model.EffectBoardShuffled,
			Skill:     model.SkillShuffle,
			Player:    player,
			Positions: moved,
		}}
	}, nil
}

func (r *Resolver) prepareForbidRegion(game *model.Game, player model.Player, target *model.SkillTarget) (applyFunc, error) {
	if target.Cell == nil {
		return nil, effectFailed("no region center")
	}
	center := *target.Cell
	if !game.Board.IsValidPosition(center) || r.board.IsOuterRing(game.Board, center) {
		return nil, effectFailed("region center %s must not be on the edge", center)
	}
	if !game.Board.IsEmpty(center) {
		return nil, effectFailed("region center %s is occupied", center)
	}

	return func() []model.SkillEffect {
		game.ForbiddenRegions = append(game.ForbiddenRegions, model.ForbiddenRegion{
			Center:   center,
			Duration: regionDuration,
			Owner:    player,
		})
		return []model.SkillEffect{{
			Kind:      model.EffectRegionBlocked,
			Skill:     model.SkillForbidRegion,
			Player:    player,
			Positions: []model.Position{center},
			Target:    player.Opponent(),
		}}
	}, nil
}

func (r *Resolver) preparePurgeRecent(game *model.Game, player model.Player) (applyFunc, error) {
	opponent := player.Opponent()

	// The opponent's last placements, most recent first
	var recent []model.Position
	for i := len(game.History) - 1; i >= 0 && len(recent) < purgeRecentCount; i-- {
		entry := game.History[i]
		if entry.Kind == model.HistoryMove && entry.Player == opponent {
			recent = append(recent, entry.Position)
		}
	}

	seen := make(model.PositionSet)
	var targets []model.Position
	for _, pos := range recent {
		if seen.Has(pos) {
			continue
		}
		seen.Add(pos)
		if game.Board.Get(pos) == opponent && !game.IsProtected(opponent, pos) {
			targets = append(targets, pos)
		}
	}
	if len(targets) == 0 {
		return nil, effectFailed("no recent enemy stone can be removed")
	}

	return func() []model.SkillEffect {
		for _, pos := range targets {
			game.Board.Clear(pos)
		}
		return []model.SkillEffect{{
			Kind:      model.EffectStonesRemoved,
			Skill:     model.SkillPurgeRecent,
			Player:    player,
			Positions: targets,
			Target:    opponent,
		}}
	}, nil
}

func (r *Resolver) prepareRandomPurge(game *model.Game, player model.Player) (applyFunc, error) {
	opponent := player.Opponent()

	var candidates []model.Position
	for _, pos := range game.Board.PositionsOf(opponent) {
		if !game.IsProtected(opponent, pos) {
			candidates = append(candidates, pos)
		}
	}
	if len(candidates) == 0 {
		return nil, effectFailed("no unprotected enemy stones")
	}

	// Count first, then sample without replacement
	count := 1 + r.random.Intn(min(randomPurgeMax, len(candidates)))
	for i := 0; i < count; i++ {
		j := i + r.random.Intn(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	targets := candidates[:count]

	return func() []model.SkillEffect {
		for _, pos := range targets {
			game.Board.Clear(pos)
		}
		return []model.SkillEffect{{
			Kind:      model.EffectStonesRemoved,
			Skill:     model.SkillRandomPurge,
			Player:    player,
			Positions: targets,
			Target:    opponent,
		}}
	}, nil
}

// Interface for dependency injection
type ResolverInterface interface {
	UseSkill(game *model.Game, player model.Player, id model.SkillID, target *model.SkillTarget) ([]model.SkillEffect, error)
}

var _ ResolverInterface = (*Resolver)(nil)
