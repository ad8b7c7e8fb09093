package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/mnemos/internal/prediction"
	"github.com/abhisek/mnemos/internal/spacedrep"
)

// Config holds all configuration for mnemos.
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Prediction PredictionConfig `mapstructure:"prediction"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// CatalogConfig points at extra course definitions.
type CatalogConfig struct {
	Dir string `mapstructure:"dir"`
}

// SchedulerConfig tunes spaced-repetition scheduling.
type SchedulerConfig struct {
	DesiredRetention    float64  `mapstructure:"desired_retention"`
	LearningSteps       []string `mapstructure:"learning_steps"`
	RelearningSteps     []string `mapstructure:"relearning_steps"`
	MaximumIntervalDays int      `mapstructure:"maximum_interval_days"`
	FuzzFactor          float64  `mapstructure:"fuzz_factor"`
	EnableFuzz          bool     `mapstructure:"enable_fuzz"`
}

// PredictionConfig tunes readiness reports.
type PredictionConfig struct {
	DefaultSecondsPerCard float64 `mapstructure:"default_seconds_per_card"`
	WeakTopicLimit        int     `mapstructure:"weak_topic_limit"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables. When path
// is empty the file is looked up as config.yaml in ~/.mnemos and the
// working directory; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(homeDir(), ".mnemos"))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MNEMOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "")
	v.SetDefault("catalog.dir", "")

	v.SetDefault("scheduler.desired_retention", spacedrep.DefaultDesiredRetention)
	v.SetDefault("scheduler.learning_steps", []string{"1m", "10m"})
	v.SetDefault("scheduler.relearning_steps", []string{"10m"})
	v.SetDefault("scheduler.maximum_interval_days", spacedrep.DefaultMaximumIntervalDays)
	v.SetDefault("scheduler.fuzz_factor", spacedrep.DefaultFuzzFactor)
	v.SetDefault("scheduler.enable_fuzz", true)

	v.SetDefault("prediction.default_seconds_per_card", prediction.DefaultSecondsPerCard)
	v.SetDefault("prediction.weak_topic_limit", prediction.DefaultWeakTopicLimit)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks ranges and formats.
func (c *Config) Validate() error {
	s := c.Scheduler
	if s.DesiredRetention < spacedrep.MinDesiredRetention || s.DesiredRetention > spacedrep.MaxDesiredRetention {
		return fmt.Errorf("scheduler.desired_retention must be between %.2f and %.2f", spacedrep.MinDesiredRetention, spacedrep.MaxDesiredRetention)
	}
	learning, err := parseSteps(s.LearningSteps)
	if err != nil {
		return fmt.Errorf("scheduler.learning_steps: %w", err)
	}
	if len(learning) == 0 {
		return fmt.Errorf("scheduler.learning_steps must not be empty")
	}
	relearning, err := parseSteps(s.RelearningSteps)
	if err != nil {
		return fmt.Errorf("scheduler.relearning_steps: %w", err)
	}
	if len(relearning) != 1 {
		return fmt.Errorf("scheduler.relearning_steps must hold exactly one step, got %d", len(relearning))
	}
	if s.MaximumIntervalDays < 1 || s.MaximumIntervalDays > spacedrep.MaxIntervalDaysLimit {
		return fmt.Errorf("scheduler.maximum_interval_days must be between 1 and %d", spacedrep.MaxIntervalDaysLimit)
	}
	if s.FuzzFactor < 0 || s.FuzzFactor >= 1 {
		return fmt.Errorf("scheduler.fuzz_factor must be in [0, 1)")
	}
	if c.Prediction.DefaultSecondsPerCard <= 0 {
		return fmt.Errorf("prediction.default_seconds_per_card must be greater than 0")
	}
	if c.Prediction.WeakTopicLimit < 0 {
		return fmt.Errorf("prediction.weak_topic_limit must be >= 0")
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// SchedulerParams converts the scheduler section into scheduler parameters
// with the default weights.
func (c *Config) SchedulerParams() (spacedrep.Config, error) {
	p := spacedrep.DefaultConfig()
	var err error
	if p.LearningSteps, err = parseSteps(c.Scheduler.LearningSteps); err != nil {
		return p, err
	}
	if p.RelearningSteps, err = parseSteps(c.Scheduler.RelearningSteps); err != nil {
		return p, err
	}
	p.MaximumIntervalDays = c.Scheduler.MaximumIntervalDays
	p.FuzzFactor = c.Scheduler.FuzzFactor
	p.EnableFuzz = c.Scheduler.EnableFuzz
	return p, p.Validate()
}

// PredictionParams converts the prediction section.
func (c *Config) PredictionParams() prediction.Config {
	return prediction.Config{
		WeakTopicLimit:        c.Prediction.WeakTopicLimit,
		DefaultSecondsPerCard: c.Prediction.DefaultSecondsPerCard,
	}
}

// NewLogger builds the process logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Logging.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseSteps(raw []string) ([]time.Duration, error) {
	steps := make([]time.Duration, 0, len(raw))
	for _, r := range raw {
		d, err := time.ParseDuration(strings.TrimSpace(r))
		if err != nil {
			return nil, err
		}
		if d <= 0 {
			return nil, fmt.Errorf("step %q must be positive", r)
		}
		steps = append(steps, d)
	}
	return steps, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
