// Package config loads server configuration from config.yaml with
// environment overrides.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"

	"github.com/tecu23/match-server/pkg/game"
)

// Config holds the runtime settings of the server.
type Config struct {
	Port  string
	Debug bool

	TickInterval    time.Duration
	DisconnectGrace time.Duration
	InitialTimeMs   int64
	RatingRange     int
}

// Load reads config.yaml (working directory or ./configs) if present
// and applies environment variable overrides. Missing config files are
// fine; defaults cover every key.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.debug", false)
	v.SetDefault("game.tick_interval", "1s")
	v.SetDefault("game.disconnect_grace", "30s")
	v.SetDefault("game.initial_time_ms", int64(900000))
	v.SetDefault("matchmaking.rating_range", game.DefaultRatingRange)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return &Config{
		Port:            v.GetString("server.port"),
		Debug:           v.GetBool("server.debug"),
		TickInterval:    v.GetDuration("game.tick_interval"),
		DisconnectGrace: v.GetDuration("game.disconnect_grace"),
		InitialTimeMs:   v.GetInt64("game.initial_time_ms"),
		RatingRange:     v.GetInt("matchmaking.rating_range"),
	}, nil
}
