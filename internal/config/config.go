// Package config loads the platform configuration from file, environment
// and defaults.
//
// Sources in order of precedence:
//  1. Environment variables (CRTN_*, dots replaced by underscores)
//  2. Configuration file (YAML)
//  3. Default values
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/K-John/createrington-sub002/internal/api"
	"github.com/K-John/createrington-sub002/internal/bot"
	"github.com/K-John/createrington-sub002/internal/cache"
	"github.com/K-John/createrington-sub002/internal/database"
	"github.com/K-John/createrington-sub002/internal/gateway"
	"github.com/K-John/createrington-sub002/internal/logger"
	"github.com/K-John/createrington-sub002/internal/scheduler"
)

// Config is the full platform configuration.
type Config struct {
	Logging logger.Config `mapstructure:"logging" yaml:"logging"`

	// ShutdownTimeout bounds graceful teardown of all services.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	Database  database.Config  `mapstructure:"database" yaml:"database"`
	Redis     cache.Config     `mapstructure:"redis" yaml:"redis"`
	Discord   DiscordConfig    `mapstructure:"discord" yaml:"discord"`
	Gateway   gateway.Config   `mapstructure:"gateway" yaml:"gateway"`
	Scheduler scheduler.Config `mapstructure:"scheduler" yaml:"scheduler"`
	API       api.Config       `mapstructure:"api" yaml:"api"`
}

// DiscordConfig holds the two bot sessions the platform runs.
type DiscordConfig struct {
	// Bot is the main community bot.
	Bot bot.Config `mapstructure:"bot" yaml:"bot"`
	// Bridge relays in-game chat to and from Discord.
	Bridge bot.Config `mapstructure:"bridge" yaml:"bridge"`
}

// Load reads configuration from path (or the default search locations when
// path is empty), applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("shutdown_timeout", 30*time.Second)
	v.SetDefault("api.addr", ":8080")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("scheduler.enabled", true)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("createrington")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/createrington")
	}

	v.SetEnvPrefix("CRTN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing file in the default search path is fine; an explicit
		// path that cannot be read is not.
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields that have no usable default.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}
	return nil
}
