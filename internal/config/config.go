// Package config loads server settings from an optional YAML file and
// GOMOKU_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mcoot/skillgomoku/internal/api"
	"github.com/mcoot/skillgomoku/internal/factory"
	"github.com/mcoot/skillgomoku/internal/model"
	"github.com/mcoot/skillgomoku/internal/services/effects"
	"github.com/mcoot/skillgomoku/internal/services/turn"
	redisstorage "github.com/mcoot/skillgomoku/internal/storage/redis"
)

// EnvPrefix is prepended to every environment override, e.g.
// GOMOKU_SERVER_PORT or GOMOKU_STORAGE_REDIS_URL.
const EnvPrefix = "GOMOKU"

// Config is the full server configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Rules   RulesConfig   `mapstructure:"rules"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig selects and configures the game store
type StorageConfig struct {
	Type  string      `mapstructure:"type"`
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	GameTTL      time.Duration `mapstructure:"game_ttl"`
}

// RulesConfig holds the default rules for new games
type RulesConfig struct {
	BoardSize     int `mapstructure:"board_size"`
	WinLength     int `mapstructure:"win_length"`
	MaxEnergy     int `mapstructure:"max_energy"`
	InitialEnergy int `mapstructure:"initial_energy"`
	EnergyRegen   int `mapstructure:"energy_regen"`
}

// EngineConfig tunes the turn pipeline and async effects
type EngineConfig struct {
	TurnHistory       int           `mapstructure:"turn_history"`
	EffectConcurrency int           `mapstructure:"effect_concurrency"`
	EffectTimeout     time.Duration `mapstructure:"effect_timeout"`
	// Seed makes skill randomness reproducible; nil uses a random source
	Seed *uint64 `mapstructure:"-"`
}

// LoggingConfig controls the application logger
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

func setDefaults(v *viper.Viper) {
	server := api.DefaultServerConfig()
	v.SetDefault("server.host", server.Host)
	v.SetDefault("server.port", server.Port)
	v.SetDefault("server.read_timeout", server.ReadTimeout)
	v.SetDefault("server.write_timeout", server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", server.ShutdownTimeout)

	redis := redisstorage.DefaultConfig()
	v.SetDefault("storage.type", factory.StorageTypeMemory)
	v.SetDefault("storage.redis.url", redis.URL)
	v.SetDefault("storage.redis.pool_size", redis.PoolSize)
	v.SetDefault("storage.redis.min_idle_conns", redis.MinIdleConns)
	v.SetDefault("storage.redis.game_ttl", redis.GameTTL)

	rules := model.DefaultRules()
	v.SetDefault("rules.board_size", rules.BoardSize)
	v.SetDefault("rules.win_length", rules.WinLength)
	v.SetDefault("rules.max_energy", rules.MaxEnergy)
	v.SetDefault("rules.initial_energy", rules.InitialEnergy)
	v.SetDefault("rules.energy_regen", rules.EnergyRegen)

	effectsCfg := effects.DefaultConfig()
	v.SetDefault("engine.turn_history", turn.DefaultConfig().HistoryCap)
	v.SetDefault("engine.effect_concurrency", effectsCfg.Concurrency)
	v.SetDefault("engine.effect_timeout", effectsCfg.Timeout)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Load reads configuration from path, if it exists, and the environment.
// An empty path loads defaults and environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if v.IsSet("engine.seed") {
		seed := v.GetUint64("engine.seed")
		cfg.Engine.Seed = &seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail late at startup
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.Storage.Redis.URL == "" {
			return errors.New("storage.redis.url is required for redis storage")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return c.Rules.ToModel().Validate()
}

// ToModel converts the rules section
func (r RulesConfig) ToModel() model.Rules {
	return model.Rules{
		BoardSize:     r.BoardSize,
		WinLength:     r.WinLength,
		MaxEnergy:     r.MaxEnergy,
		InitialEnergy: r.InitialEnergy,
		EnergyRegen:   r.EnergyRegen,
	}
}

// ServerConfig returns the HTTP server settings
func (c *Config) ServerConfig() api.ServerConfig {
	return api.ServerConfig{
		Host:            c.Server.Host,
		Port:            c.Server.Port,
		ReadTimeout:     c.Server.ReadTimeout,
		WriteTimeout:    c.Server.WriteTimeout,
		ShutdownTimeout: c.Server.ShutdownTimeout,
	}
}

// FactoryConfig returns the application factory settings
func (c *Config) FactoryConfig(logger *slog.Logger) factory.Config {
	cfg := factory.Config{
		Logger:      logger,
		StorageType: c.Storage.Type,
		Rules:       c.Rules.ToModel(),
		TurnConfig:  turn.Config{HistoryCap: c.Engine.TurnHistory},
		EffectsConfig: effects.Config{
			Concurrency: c.Engine.EffectConcurrency,
			Timeout:     c.Engine.EffectTimeout,
		},
		Seed: c.Engine.Seed,
	}
	if c.Storage.Type == factory.StorageTypeRedis {
		cfg.RedisConfig = &redisstorage.Config{
			URL:          c.Storage.Redis.URL,
			PoolSize:     c.Storage.Redis.PoolSize,
			MinIdleConns: c.Storage.Redis.MinIdleConns,
			GameTTL:      c.Storage.Redis.GameTTL,
		}
	}
	return cfg
}

// NewLogger builds the application logger writing to w
func (c LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
