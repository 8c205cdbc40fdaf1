package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfigYAML = `
input: ./data/spring.csv
output: ./data/spring_optimized.xlsx
iterations: 250
seed: 17
workers: 2

limits:
  date_capacity: 4
  player_match_cap: 8

scoring:
  weights:
    balance: 0.5
    coverage: 0.25
    seasonal: 0.25
  seasonal:
    player: Aidan
    months: [5, 6, 7]

log:
  level: debug
  format: json
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("paths", func(t *testing.T) {
		if cfg.Input != "./data/spring.csv" {
			t.Errorf("input = %q, want ./data/spring.csv", cfg.Input)
		}
		if cfg.Output != "./data/spring_optimized.xlsx" {
			t.Errorf("output = %q, want ./data/spring_optimized.xlsx", cfg.Output)
		}
	})

	t.Run("run settings", func(t *testing.T) {
		if cfg.Iterations != 250 {
			t.Errorf("iterations = %d, want 250", cfg.Iterations)
		}
		if cfg.Seed != 17 {
			t.Errorf("seed = %d, want 17", cfg.Seed)
		}
		if cfg.Workers != 2 {
			t.Errorf("workers = %d, want 2", cfg.Workers)
		}
	})

	t.Run("limits", func(t *testing.T) {
		lim := cfg.LimitsValue()
		if lim.DateCapacity != 4 || lim.PlayerMatchCap != 8 {
			t.Errorf("limits = %+v, want {4 8}", lim)
		}
	})

	t.Run("scoring", func(t *testing.T) {
		opts := cfg.ScoreOptions()
		if opts.Weights.Balance != 0.5 || opts.Weights.Coverage != 0.25 || opts.Weights.Seasonal != 0.25 {
			t.Errorf("weights = %+v, want {0.5 0.25 0.25}", opts.Weights)
		}
		if opts.Player != "Aidan" {
			t.Errorf("player = %q, want Aidan", opts.Player)
		}
		if len(opts.Months) != 3 || opts.Months[0] != 5 {
			t.Errorf("months = %v, want [5 6 7]", opts.Months)
		}
	})

	t.Run("log", func(t *testing.T) {
		if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
			t.Errorf("log = %+v, want debug/json", cfg.Log)
		}
	})
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("iterations: 10\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Iterations != 10 {
		t.Errorf("iterations = %d, want 10", cfg.Iterations)
	}
	if cfg.Input != "./data/schedule.csv" {
		t.Errorf("input = %q, want ./data/schedule.csv", cfg.Input)
	}
	if cfg.Output != "./data/optimized_golf_schedule.csv" {
		t.Errorf("output = %q, want ./data/optimized_golf_schedule.csv", cfg.Output)
	}
	if cfg.Limits.DateCapacity != 4 || cfg.Limits.PlayerMatchCap != 9 {
		t.Errorf("limits = %+v, want {4 9}", cfg.Limits)
	}
	w := cfg.Scoring.Weights
	if w.Balance != 0.4 || w.Coverage != 0.3 || w.Seasonal != 0.3 {
		t.Errorf("weights = %+v, want {0.4 0.3 0.3}", w)
	}
	if cfg.Scoring.Seasonal.Player != "Aidan" {
		t.Errorf("player = %q, want Aidan", cfg.Scoring.Seasonal.Player)
	}
	if len(cfg.Scoring.Seasonal.Months) != 4 {
		t.Errorf("months = %v, want [4 5 6 7]", cfg.Scoring.Seasonal.Months)
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error: %v", err)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero iterations", "iterations: 0\n"},
		{"zero workers", "workers: 0\n"},
		{"zero capacity", "limits:\n  date_capacity: 0\n"},
		{"negative weight", "scoring:\n  weights:\n    balance: -1\n"},
		{"all weights zero", "scoring:\n  weights:\n    balance: 0\n    coverage: 0\n    seasonal: 0\n"},
		{"month out of range", "scoring:\n  seasonal:\n    months: [4, 13]\n"},
		{"duplicate month", "scoring:\n  seasonal:\n    months: [4, 4]\n"},
		{"empty player", "scoring:\n  seasonal:\n    player: \"\"\n"},
		{"bad log level", "log:\n  level: loud\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"output overwrites input", "input: a.csv\noutput: a.csv\n"},
		{"malformed yaml", "iterations: [\n"},
		{"infinite weight", "scoring:\n  weights:\n    coverage: .inf\n"},
		{"NaN weight", "scoring:\n  weights:\n    balance: .nan\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFromBytes([]byte(tt.yaml)); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestZeroPlayerMatchCapIsValid(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("limits:\n  player_match_cap: 0\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Limits.PlayerMatchCap != 0 {
		t.Errorf("player match cap = %d, want 0", cfg.Limits.PlayerMatchCap)
	}
}

func TestParseBytesSkipsValidation(t *testing.T) {
	data := []byte("iterations: 0\ninput: a.csv\noutput: a.csv\n")
	if _, err := LoadFromBytes(data); err == nil {
		t.Fatal("LoadFromBytes() expected error")
	}

	cfg, err := ParseBytes(data)
	if err != nil {
		t.Fatalf("ParseBytes() error: %v", err)
	}
	cfg.Iterations = 100
	cfg.Output = "b.csv"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after overrides error: %v", err)
	}

	if _, err := ParseBytes([]byte("iterations: [\n")); err == nil {
		t.Error("ParseBytes() expected error for malformed yaml")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testConfigYAML), 0644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Iterations != 250 {
		t.Errorf("iterations = %d, want 250", cfg.Iterations)
	}

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(map[string]string{
		"GOLFSCHED_ITERATIONS":              "5000",
		"GOLFSCHED_OUTPUT":                  "out.xlsx",
		"GOLFSCHED_LIMITS_PLAYER_MATCH_CAP": "6",
		"GOLFSCHED_SCORING_SEASONAL_PLAYER": "Brendan",
		"GOLFSCHED_SCORING_SEASONAL_MONTHS": "6,7,8",
		"GOLFSCHED_SCORING_WEIGHT_BALANCE":  "1.5",
		"GOLFSCHED_LOG_LEVEL":               "warn",
	})
	if err != nil {
		t.Fatalf("applyEnv() error: %v", err)
	}

	if cfg.Iterations != 5000 {
		t.Errorf("iterations = %d, want 5000", cfg.Iterations)
	}
	if cfg.Output != "out.xlsx" {
		t.Errorf("output = %q, want out.xlsx", cfg.Output)
	}
	if cfg.Limits.PlayerMatchCap != 6 {
		t.Errorf("player match cap = %d, want 6", cfg.Limits.PlayerMatchCap)
	}
	if cfg.Scoring.Seasonal.Player != "Brendan" {
		t.Errorf("player = %q, want Brendan", cfg.Scoring.Seasonal.Player)
	}
	if m := cfg.Scoring.Seasonal.Months; len(m) != 3 || m[2] != 8 {
		t.Errorf("months = %v, want [6 7 8]", m)
	}
	if cfg.Scoring.Weights.Balance != 1.5 {
		t.Errorf("balance weight = %v, want 1.5", cfg.Scoring.Weights.Balance)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q, want warn", cfg.Log.Level)
	}

	t.Run("untouched fields keep their values", func(t *testing.T) {
		if cfg.Input != "./data/schedule.csv" {
			t.Errorf("input = %q, want default", cfg.Input)
		}
		if cfg.Scoring.Weights.Coverage != 0.3 {
			t.Errorf("coverage weight = %v, want 0.3", cfg.Scoring.Weights.Coverage)
		}
	})

	t.Run("bad value", func(t *testing.T) {
		cfg := Default()
		if err := cfg.applyEnv(map[string]string{"GOLFSCHED_ITERATIONS": "lots"}); err == nil {
			t.Error("expected error for non-numeric iterations")
		}
	})
}
