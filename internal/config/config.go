// Package config loads process configuration from an optional .env file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string `env:"APP_ENV"   envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	SendQueueSize    int           `env:"SEND_QUEUE_SIZE"    envDefault:"256"`
	TypingTimeout    time.Duration `env:"TYPING_TIMEOUT"     envDefault:"1s"`
	MaxMessageLength int           `env:"MAX_MESSAGE_LENGTH" envDefault:"2000"`
	MaxFrameBytes    int64         `env:"MAX_FRAME_BYTES"    envDefault:"16384"`
	FramesPerSecond  float64       `env:"FRAMES_PER_SECOND"  envDefault:"40"`
	FrameBurst       int           `env:"FRAME_BURST"        envDefault:"80"`
	HistoryLimit     int           `env:"HISTORY_LIMIT"      envDefault:"50"`

	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	SeedData        bool          `env:"SEED_DATA"        envDefault:"true"`
}

// AuthEnabled reports whether connections are bound to a token identity.
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// Load reads the given .env files (missing files are skipped) and parses the
// environment into a Config.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.SendQueueSize <= 0:
		return fmt.Errorf("SEND_QUEUE_SIZE must be positive, got %d", c.SendQueueSize)
	case c.TypingTimeout <= 0:
		return fmt.Errorf("TYPING_TIMEOUT must be positive, got %s", c.TypingTimeout)
	case c.MaxMessageLength <= 0:
		return fmt.Errorf("MAX_MESSAGE_LENGTH must be positive, got %d", c.MaxMessageLength)
	case c.MaxFrameBytes <= 0:
		return fmt.Errorf("MAX_FRAME_BYTES must be positive, got %d", c.MaxFrameBytes)
	case c.FramesPerSecond <= 0 || c.FrameBurst <= 0:
		return fmt.Errorf("FRAMES_PER_SECOND and FRAME_BURST must be positive")
	}
	return nil
}
