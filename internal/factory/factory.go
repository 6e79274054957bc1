package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/skillgomoku/internal/dependencies/clock"
	"github.com/mcoot/skillgomoku/internal/dependencies/random"
	"github.com/mcoot/skillgomoku/internal/model"
	"github.com/mcoot/skillgomoku/internal/services/board"
	"github.com/mcoot/skillgomoku/internal/services/effects"
	"github.com/mcoot/skillgomoku/internal/services/executor"
	"github.com/mcoot/skillgomoku/internal/services/game"
	"github.com/mcoot/skillgomoku/internal/services/rules"
	"github.com/mcoot/skillgomoku/internal/services/skill"
	"github.com/mcoot/skillgomoku/internal/services/tracker"
	"github.com/mcoot/skillgomoku/internal/services/turn"
	"github.com/mcoot/skillgomoku/internal/storage"
	"github.com/mcoot/skillgomoku/internal/storage/memory"
	redisstorage "github.com/mcoot/skillgomoku/internal/storage/redis"
	"github.com/mcoot/skillgomoku/internal/web/sse"
	"github.com/mcoot/skillgomoku/internal/web/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Rule engine
	BoardService   *board.Service
	TrackerService *tracker.Service
	Validator      *rules.Validator
	SkillResolver  *skill.Resolver
	Executor       *executor.Executor
	TurnManager    *turn.Manager

	// Session root and notifications
	GameController *game.Controller
	HubManager     *sse.HubManager
	Broadcaster    *sse.Broadcaster
	SocketManager  *ws.HubManager

	// DefaultRules seed games created without explicit rules
	DefaultRules model.Rules
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Rules are the defaults for new games (optional)
	// If zero value, defaults to model.DefaultRules()
	Rules model.Rules
	// TurnConfig and EffectsConfig tune the engine (optional)
	TurnConfig    turn.Config
	EffectsConfig effects.Config
	// Seed makes skill randomness reproducible when non-nil
	Seed *uint64
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	gameRules := cfg.Rules
	if gameRules == (model.Rules{}) {
		gameRules = model.DefaultRules()
	}
	if err := gameRules.Validate(); err != nil {
		return nil, err
	}

	// Create external dependencies. A seed only makes skills reproducible;
	// game ids always come from the crypto source.
	clk := clock.New()
	ids := random.New()
	var rnd random.Random = ids
	if cfg.Seed != nil {
		rnd = random.NewSeeded(*cfg.Seed)
	}

	return newWithDependencies(store, clk, ids, rnd, gameRules, cfg.TurnConfig, cfg.EffectsConfig, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	ids random.Random,
	rnd random.Random,
	gameRules model.Rules,
	turnCfg turn.Config,
	effectsCfg effects.Config,
	logger *slog.Logger,
) *App {
	// Rule engine
	boardService := board.New()
	trackerService := tracker.New(clk, logger)
	validator := rules.NewValidator(boardService, trackerService)
	resolver := skill.NewResolver(boardService, trackerService, rnd, clk, logger)
	exec := executor.New(trackerService, resolver, clk, logger)
	turnManager := turn.NewManager(turnCfg, clk, logger)
	turnManager.RegisterDefaultHooks(turn.NewDefaultHooks(validator, exec, boardService))

	// Notifications
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)
	socketManager := ws.NewHubManager(logger)
	notifiers := game.Notifiers{broadcaster, ws.NewBroadcaster(socketManager, logger)}

	gameController := game.NewController(
		store, validator, trackerService, turnManager, notifiers,
		effectsCfg, clk, ids, logger,
	)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		BoardService:   boardService,
		TrackerService: trackerService,
		Validator:      validator,
		SkillResolver:  resolver,
		Executor:       exec,
		TurnManager:    turnManager,
		GameController: gameController,
		HubManager:     hubManager,
		Broadcaster:    broadcaster,
		SocketManager:  socketManager,
		DefaultRules:   gameRules,
	}
}
