package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/derekprior/golfsched/internal/generate"
	"github.com/derekprior/golfsched/internal/score"
)

// EnvPrefix prefixes every environment override, e.g. GOLFSCHED_ITERATIONS.
const EnvPrefix = "GOLFSCHED_"

type Limits struct {
	DateCapacity   int `yaml:"date_capacity" env:"DATE_CAPACITY" validate:"min=1"`
	PlayerMatchCap int `yaml:"player_match_cap" env:"PLAYER_MATCH_CAP" validate:"min=0"`
}

type Weights struct {
	Balance  float64 `yaml:"balance" env:"BALANCE" validate:"gte=0"`
	Coverage float64 `yaml:"coverage" env:"COVERAGE" validate:"gte=0"`
	Seasonal float64 `yaml:"seasonal" env:"SEASONAL" validate:"gte=0"`
}

type Seasonal struct {
	Player string `yaml:"player" env:"PLAYER" validate:"required"`
	Months []int  `yaml:"months" env:"MONTHS" validate:"unique,dive,min=1,max=12"`
}

type Scoring struct {
	Weights  Weights  `yaml:"weights" envPrefix:"WEIGHT_"`
	Seasonal Seasonal `yaml:"seasonal" envPrefix:"SEASONAL_"`
}

type Log struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT" validate:"oneof=text json"`
}

type Config struct {
	Input      string  `yaml:"input" env:"INPUT" validate:"required"`
	Output     string  `yaml:"output" env:"OUTPUT" validate:"required"`
	Iterations int     `yaml:"iterations" env:"ITERATIONS" validate:"min=1"`
	Seed       int64   `yaml:"seed" env:"SEED"`
	Workers    int     `yaml:"workers" env:"WORKERS" validate:"min=1"`
	Limits     Limits  `yaml:"limits" envPrefix:"LIMITS_"`
	Scoring    Scoring `yaml:"scoring" envPrefix:"SCORING_"`
	Log        Log     `yaml:"log" envPrefix:"LOG_"`
}

// Default returns the settings used when no config file is present.
func Default() *Config {
	lim := generate.DefaultLimits()
	opts := score.DefaultOptions()
	return &Config{
		Input:      "./data/schedule.csv",
		Output:     "./data/optimized_golf_schedule.csv",
		Iterations: 1000,
		Workers:    1,
		Limits: Limits{
			DateCapacity:   lim.DateCapacity,
			PlayerMatchCap: lim.PlayerMatchCap,
		},
		Scoring: Scoring{
			Weights: Weights{
				Balance:  opts.Weights.Balance,
				Coverage: opts.Weights.Coverage,
				Seasonal: opts.Weights.Seasonal,
			},
			Seasonal: Seasonal{
				Player: opts.Player,
				Months: opts.Months,
			},
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// LoadFromBytes overlays YAML bytes on the defaults and validates the result.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg, err := ParseBytes(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads, parses and validates a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	cfg, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseBytes overlays YAML bytes on the defaults without validating, for
// callers that apply more overrides and call Validate last.
func ParseBytes(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// ParseFile is ParseBytes for a file.
func ParseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ParseBytes(data)
}

// ApplyEnv overrides fields from GOLFSCHED_* environment variables. Unset
// variables leave the current values alone.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(nil)
}

func (c *Config) applyEnv(environment map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		var agg env.AggregateError
		if errors.As(err, &agg) && len(agg.Errors) > 0 {
			return fmt.Errorf("reading environment: %w", agg.Errors[0])
		}
		return fmt.Errorf("reading environment: %w", err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := logrus.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("invalid config: log level: %w", err)
	}

	w := c.Scoring.Weights
	for _, f := range []struct {
		name string
		v    float64
	}{{"balance", w.Balance}, {"coverage", w.Coverage}, {"seasonal", w.Seasonal}} {
		if math.IsInf(f.v, 0) || math.IsNaN(f.v) {
			return fmt.Errorf("invalid config: %s weight must be a finite number, got %v", f.name, f.v)
		}
	}
	if w.Balance+w.Coverage+w.Seasonal == 0 {
		return fmt.Errorf("invalid config: at least one scoring weight must be positive")
	}

	if c.Input == c.Output {
		return fmt.Errorf("invalid config: output %q would overwrite the input", c.Output)
	}

	return nil
}

// LimitsValue converts the config limits for the generator.
func (c *Config) LimitsValue() generate.Limits {
	return generate.Limits{
		DateCapacity:   c.Limits.DateCapacity,
		PlayerMatchCap: c.Limits.PlayerMatchCap,
	}
}

// ScoreOptions converts the scoring section for the scorer.
func (c *Config) ScoreOptions() score.Options {
	return score.Options{
		Player: c.Scoring.Seasonal.Player,
		Months: c.Scoring.Seasonal.Months,
		Weights: score.Weights{
			Balance:  c.Scoring.Weights.Balance,
			Coverage: c.Scoring.Weights.Coverage,
			Seasonal: c.Scoring.Weights.Seasonal,
		},
	}
}
