package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the root server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
}

// ServerConfig configures the websocket relay and session handling.
type ServerConfig struct {
	Address     string        `mapstructure:"address"`
	LeasePeriod time.Duration `mapstructure:"lease_period"`
	MaxSessions int           `mapstructure:"max_sessions"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig configures the optional postgres pool for match results.
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// DSN renders the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// GameConfig carries the table defaults applied when a match starts without
// explicit overrides.
type GameConfig struct {
	CardsPerCharacter int  `mapstructure:"cards_per_character"`
	CardsPerPlayer    int  `mapstructure:"cards_per_player"`
	StartingCoins     int  `mapstructure:"starting_coins"`
	Factions          bool `mapstructure:"factions"`
}

// Load reads the YAML configuration at path. Missing keys fall back to
// defaults suitable for local development.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.lease_period", "5m")
	v.SetDefault("server.max_sessions", 1000)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "coup")
	v.SetDefault("database.name", "coup")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("game.cards_per_character", 3)
	v.SetDefault("game.cards_per_player", 2)
	v.SetDefault("game.starting_coins", 2)
	v.SetDefault("game.factions", false)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Server.LeasePeriod <= 0 {
		return nil, fmt.Errorf("server.lease_period must be positive, got %s", cfg.Server.LeasePeriod)
	}
	return &cfg, nil
}
