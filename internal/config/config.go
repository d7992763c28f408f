package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/lexivo/lexivo/internal/review"
)

// Config holds all configuration for the application.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Session   SessionConfig   `mapstructure:"session"`
	Log       LogConfig       `mapstructure:"log"`
}

// DatabaseConfig holds the SQLite location. An empty path falls back to
// the XDG default.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SchedulerConfig overrides the scheduling parameters. Zero values mean
// "use the built-in default".
type SchedulerConfig struct {
	InitialEase    float64 `mapstructure:"initial_ease"`
	MinEase        float64 `mapstructure:"min_ease"`
	MaxEase        float64 `mapstructure:"max_ease"`
	MaxIntervalDay int     `mapstructure:"max_interval_days"`
}

// SessionConfig holds lesson session tunables.
type SessionConfig struct {
	MinLives int `mapstructure:"min_lives"`
	MaxLives int `mapstructure:"max_lives"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from lexivo.yaml and LEXIVO_* environment
// variables. A missing config file is fine; defaults cover everything.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("lexivo")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/lexivo")

	setDefaults(v)

	v.SetEnvPrefix("lexivo")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	d := review.DefaultParams()

	v.SetDefault("database.path", "")

	v.SetDefault("scheduler.initial_ease", d.InitialEase)
	v.SetDefault("scheduler.min_ease", d.MinEase)
	v.SetDefault("scheduler.max_ease", d.MaxEase)
	v.SetDefault("scheduler.max_interval_days", d.MaxInterval)

	v.SetDefault("session.min_lives", 1)
	v.SetDefault("session.max_lives", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// SchedulerParams folds the configured overrides into the default
// parameter set.
func (c *Config) SchedulerParams() review.Params {
	p := review.DefaultParams()
	if c.Scheduler.InitialEase > 0 {
		p.InitialEase = c.Scheduler.InitialEase
	}
	if c.Scheduler.MinEase > 0 {
		p.MinEase = c.Scheduler.MinEase
	}
	if c.Scheduler.MaxEase > 0 {
		p.MaxEase = c.Scheduler.MaxEase
	}
	if c.Scheduler.MaxIntervalDay > 0 {
		p.MaxInterval = c.Scheduler.MaxIntervalDay
	}
	return p
}
