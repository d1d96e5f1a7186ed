// Package config implements the typed, validated gateway configuration
// (A4): loaded via spf13/viper from a file/env layer, validated with
// go-playground/validator/v10. An fsnotify watch reloads and revalidates the
// whole Config on change and passes each new value to OnReload callbacks.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/mucharafal/py4j/liberr"
	"github.com/mucharafal/py4j/logger"
)

// Config is the gateway's full configuration surface.
type Config struct {
	Listen  Listen  `mapstructure:"listen" json:"listen" yaml:"listen" toml:"listen" validate:"required"`
	Auth    Auth    `mapstructure:"auth" json:"auth" yaml:"auth" toml:"auth"`
	Logging Logging `mapstructure:"logging" json:"logging" yaml:"logging" toml:"logging"`
	Pool    Pool    `mapstructure:"pool" json:"pool" yaml:"pool" toml:"pool"`

	// Views maps a jvmview name to its startup imports, each either a fully
	// qualified class or a "pkg.*" wildcard package import.
	Views map[string][]string `mapstructure:"views" json:"views" yaml:"views" toml:"views"`
}

// Listen configures the inbound TCP accept loop.
type Listen struct {
	Address string `mapstructure:"address" json:"address" yaml:"address" toml:"address" validate:"required"`
	Port    int    `mapstructure:"port" json:"port" yaml:"port" toml:"port" validate:"required,min=1,max=65535"`
}

// Auth configures the optional shared-token authentication.
type Auth struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled" toml:"enabled"`
	Token   string `mapstructure:"token" json:"token" yaml:"token" toml:"token" validate:"required_if=Enabled true"`
}

// Logging configures the structured logger (A3). Level and hot-reloadable.
type Logging struct {
	Level string `mapstructure:"level" json:"level" yaml:"level" toml:"level" validate:"required,oneof=panic fatal error warn info debug nil"`
}

// Pool configures the peer connection pool (C8) used for non-duplex
// callbacks.
type Pool struct {
	MaxSize         int `mapstructure:"max_size" json:"max_size" yaml:"max_size" toml:"max_size" validate:"min=0"`
	IdleTimeoutSecs int `mapstructure:"idle_timeout_secs" json:"idle_timeout_secs" yaml:"idle_timeout_secs" toml:"idle_timeout_secs" validate:"min=0"`
}

// Default returns a Config with the gateway's baseline defaults.
func Default() Config {
	return Config{
		Listen:  Listen{Address: "127.0.0.1", Port: 25333},
		Logging: Logging{Level: "info"},
		Pool:    Pool{MaxSize: 8, IdleTimeoutSecs: 60},
	}
}

// Validate runs struct-tag validation, collecting every violating field into
// a single chained liberr.Error.
func (c Config) Validate() liberr.Error {
	val := validator.New()
	err := val.Struct(c)
	if err == nil {
		return nil
	}

	if e, ok := err.(*validator.InvalidValidationError); ok {
		return liberr.Wrap(liberr.ProtocolError, e)
	}

	out := liberr.New(liberr.ProtocolError, "invalid gateway configuration", nil)
	for _, e := range err.(validator.ValidationErrors) {
		out = liberr.New(liberr.ProtocolError, fmt.Sprintf("config field %q failed constraint %q", e.Namespace(), e.ActualTag()), out)
	}
	return out
}

// LogLevel parses Logging.Level into a logger.Level.
func (c Config) LogLevel() logger.Level {
	return logger.ParseLevel(c.Logging.Level)
}
