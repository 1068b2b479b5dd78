// Package config loads service settings from the environment. Every timing
// knob of the detector and the games is injectable here rather than hard-coded.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the complete moodlift configuration.
type Config struct {
	Addr     string `env:"ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	ClassifierURL     string        `env:"CLASSIFIER_URL" envDefault:"http://localhost:5000/detect_emotion"`
	ClassifierTimeout time.Duration `env:"CLASSIFIER_TIMEOUT" envDefault:"20s"`
	MaxInFlight       int           `env:"MAX_INFLIGHT" envDefault:"2"`

	PollInterval  time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`
	FrameInterval time.Duration `env:"FRAME_INTERVAL" envDefault:"1s"`
	FrameMaxAge   time.Duration `env:"FRAME_MAX_AGE" envDefault:"5s"`
	ViewIdle      time.Duration `env:"VIEW_IDLE_TIMEOUT" envDefault:"2m"`
	GameIdle      time.Duration `env:"GAME_IDLE_TIMEOUT" envDefault:"5m"`

	QuizCountdown int           `env:"QUIZ_COUNTDOWN" envDefault:"15"`
	QuizTick      time.Duration `env:"QUIZ_TICK" envDefault:"1s"`
	FeedbackDelay time.Duration `env:"FEEDBACK_DELAY" envDefault:"1s"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// Prefix is prepended to every variable name, e.g. MOODLIFT_POLL_INTERVAL.
const Prefix = "MOODLIFT_"

// Load reads an optional dotenv file and then parses the environment.
// A missing dotenv file is not an error.
func Load(dotenv string) (Config, error) {
	if dotenv != "" {
		if err := loadDotEnv(dotenv); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}
	return Parse()
}

// Parse builds a Config from the current environment and validates it.
func Parse() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the timing loops cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ClassifierURL) == "" {
		errs = append(errs, errors.New("classifier url is required"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %s", c.PollInterval))
	}
	if c.QuizCountdown <= 0 {
		errs = append(errs, fmt.Errorf("quiz countdown must be positive, got %d", c.QuizCountdown))
	}
	if c.QuizTick <= 0 {
		errs = append(errs, fmt.Errorf("quiz tick must be positive, got %s", c.QuizTick))
	}
	if c.FeedbackDelay <= 0 {
		errs = append(errs, fmt.Errorf("feedback delay must be positive, got %s", c.FeedbackDelay))
	}
	if c.ViewIdle <= 0 {
		errs = append(errs, fmt.Errorf("view idle timeout must be positive, got %s", c.ViewIdle))
	}
	if c.GameIdle <= 0 {
		errs = append(errs, fmt.Errorf("game idle timeout must be positive, got %s", c.GameIdle))
	}
	if c.FrameInterval <= 0 {
		errs = append(errs, fmt.Errorf("frame interval must be positive, got %s", c.FrameInterval))
	}
	if c.MaxInFlight < 1 {
		errs = append(errs, fmt.Errorf("max in-flight must be at least 1, got %d", c.MaxInFlight))
	}
	return errors.Join(errs...)
}

// Level maps LogLevel onto a slog level, defaulting to info.
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
