package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/derekprior/golfsched/internal/checker"
	"github.com/derekprior/golfsched/internal/config"
	"github.com/derekprior/golfsched/internal/grid"
	"github.com/derekprior/golfsched/internal/metrics"
	"github.com/derekprior/golfsched/internal/optimize"
	"github.com/derekprior/golfsched/internal/score"
	"github.com/derekprior/golfsched/internal/sheet"
)

const defaultConfigFile = "config.yaml"

// loadConfig layers the config file (if any), then GOLFSCHED_* variables.
// Without --config, config.yaml is used when present and the built-in
// defaults otherwise. Nothing is validated here: callers apply their flags
// and then call Validate.
func loadConfig(configFlag string) (*config.Config, error) {
	path := configFlag
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.ParseFile(path); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(lc config.Log) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(strings.ToLower(lc.Level)); err == nil {
		log.SetLevel(level)
	}
	if lc.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return log
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "golfsched",
		Short: "Golf league match schedule optimizer",
	}

	var configFile string
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: config.yaml in current directory, if present)")

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter config.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	var (
		input, output, metricsFile string
		iterations, workers        int
		seed                       int64
	)
	optimizeCmd := &cobra.Command{
		Use:          "optimize",
		Short:        "Fill the open cells of a schedule and keep the best scoring result",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("input") {
				cfg.Input = input
			}
			if flags.Changed("output") {
				cfg.Output = output
			}
			if flags.Changed("iterations") {
				cfg.Iterations = iterations
			}
			if flags.Changed("seed") {
				cfg.Seed = seed
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runOptimize(cfg, metricsFile)
		},
	}
	optimizeCmd.Flags().StringVarP(&input, "input", "i", "", "Schedule to optimize, CSV or .xlsx (default ./data/schedule.csv)")
	optimizeCmd.Flags().StringVarP(&output, "output", "o", "", "Where to write the optimized schedule (default ./data/optimized_golf_schedule.csv)")
	optimizeCmd.Flags().IntVarP(&iterations, "iterations", "n", 0, "Number of random candidates to try (default 1000)")
	optimizeCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed; 0 picks one from the clock")
	optimizeCmd.Flags().IntVar(&workers, "workers", 0, "Parallel workers (default 1)")
	optimizeCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics for the run to this file")

	var originalPath string
	checkCmd := &cobra.Command{
		Use:          "check <schedule>",
		Short:        "Check a finished schedule and print its score",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runCheck(cfg, args[0], originalPath)
		},
	}
	checkCmd.Flags().StringVar(&originalPath, "original", "", "Pre-filled schedule whose fixed cells must be unchanged")

	rootCmd.AddCommand(initCmd, optimizeCmd, checkCmd)
	return rootCmd
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

const configTemplate = `# Golf Schedule Configuration
# ===========================
# Every setting can also be set with a GOLFSCHED_ environment variable,
# e.g. GOLFSCHED_ITERATIONS=5000 or GOLFSCHED_SCORING_SEASONAL_PLAYER=Aidan.
# Command line flags win over both.

# Input schedule: a CSV export with a "Name" column, or an .xlsx workbook.
# Cells hold S (scheduled), X (excluded) or nothing (to be decided).
input: ./data/schedule.csv

# Where the optimized schedule is written. Use .xlsx for a formatted workbook.
output: ./data/optimized_golf_schedule.csv

# Number of random schedules to try. More iterations, better odds.
iterations: 1000

# Random seed. 0 picks one from the clock; the seed used is logged so a good
# run can be repeated.
seed: 0

# Parallel workers. A fixed seed gives the same result for a given count.
workers: 1

# Limits applied while filling open cells.
limits:
  date_capacity: 4        # Players scheduled per date before the rest are excluded
  player_match_cap: 9     # Stop scheduling a player once they exceed this many matches

# Scoring. The total is the weighted sum of the three components.
scoring:
  weights:
    balance: 0.4          # Even number of matches across players
    coverage: 0.3         # How often players share a date
    seasonal: 0.3         # Matches for the seasonal player in the chosen months
  seasonal:
    player: Aidan
    months: [4, 5, 6, 7]  # April through July

log:
  level: info             # debug, info, warn, error
  format: text            # text or json
`

func runOptimize(cfg *config.Config, metricsFile string) error {
	log := newLogger(cfg.Log).WithField("run_id", uuid.NewString())

	original, err := sheet.Read(cfg.Input)
	if err != nil {
		return fmt.Errorf("loading schedule: %w", err)
	}
	fmt.Printf("Loaded %d players and %d dates from %s\n", original.NumPlayers(), original.NumDates(), cfg.Input)
	printPreview(original, 5)

	scorer, err := score.New(original.Dates(), cfg.ScoreOptions())
	if err != nil {
		return err
	}

	var rec *metrics.Recorder
	if metricsFile != "" {
		rec = metrics.NewRecorder()
	}

	fmt.Printf("\nTrying %d candidate schedules...\n", cfg.Iterations)
	res, err := optimize.New(original, scorer, optimize.Options{
		Iterations: cfg.Iterations,
		Limits:     cfg.LimitsValue(),
		Seed:       cfg.Seed,
		Workers:    cfg.Workers,
		Logger:     log,
		Metrics:    rec,
	}).Run()
	if err != nil {
		return fmt.Errorf("optimizing: %w", err)
	}

	fmt.Printf("✓ Best score %.4f after %d iterations (seed %d)\n", res.Score.Total, res.Iterations, res.Seed)
	fmt.Printf("  %-10s %.4f\n  %-10s %.4f\n  %-10s %.0f\n",
		"Balance", res.Score.Balance, "Coverage", res.Score.Coverage, "Seasonal", res.Score.Seasonal)

	printPlayerTable(res.Best)

	violations, err := checker.Check(res.Best, checker.Options{Limits: cfg.LimitsValue(), Original: original})
	if err != nil {
		return fmt.Errorf("checking result: %w", err)
	}
	printViolations(violations)

	if err := sheet.Write(cfg.Output, res.Best); err != nil {
		return fmt.Errorf("saving schedule: %w", err)
	}
	fmt.Printf("\n✓ Optimized schedule saved to %s\n", cfg.Output)

	if rec != nil {
		if err := rec.WriteFile(metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		fmt.Printf("✓ Metrics written to %s\n", metricsFile)
	}
	return nil
}

func runCheck(cfg *config.Config, schedulePath, originalPath string) error {
	g, err := sheet.Read(schedulePath)
	if err != nil {
		return fmt.Errorf("loading schedule: %w", err)
	}

	opts := checker.Options{Limits: cfg.LimitsValue()}
	if originalPath != "" {
		if opts.Original, err = sheet.Read(originalPath); err != nil {
			return fmt.Errorf("loading original: %w", err)
		}
	}

	violations, err := checker.Check(g, opts)
	if err != nil {
		return fmt.Errorf("checking: %w", err)
	}
	errors := printViolations(violations)

	scorer, err := score.New(g.Dates(), cfg.ScoreOptions())
	if err != nil {
		return err
	}
	if b, err := scorer.Score(g); err != nil {
		fmt.Printf("⚠ Could not score schedule: %s\n", err)
	} else {
		fmt.Printf("\nScore: %s\n", b)
	}

	printPlayerTable(g)

	if errors > 0 {
		return fmt.Errorf("%d rule violations found", errors)
	}
	return nil
}

// printViolations lists violations and returns the number of errors.
func printViolations(violations []checker.Violation) int {
	errors, warnings := 0, 0
	for _, v := range violations {
		switch v.Type {
		case "error":
			errors++
			fmt.Printf("✗ Rule violation: %s\n", v.Message)
		case "warning":
			warnings++
			fmt.Printf("⚠ Warning: %s\n", v.Message)
		}
	}
	if errors == 0 && warnings == 0 {
		fmt.Println("\n✓ No rule violations")
	} else {
		fmt.Printf("\nCheck complete: %d rule violations, %d warnings\n", errors, warnings)
	}
	return errors
}

func printPlayerTable(g *grid.Grid) {
	fmt.Println("\nPer Player Matches:")
	fmt.Printf("  %-20s %7s %8s\n", "Player", "Matches", "Excluded")
	for p := 0; p < g.NumPlayers(); p++ {
		fmt.Printf("  %-20s %7d %8d\n", g.Player(p), g.PlayerCount(p, grid.Scheduled), g.PlayerCount(p, grid.Excluded))
	}
}

// printPreview shows the first n rows of a grid the way it was read.
func printPreview(g *grid.Grid, n int) {
	fmt.Printf("  %-20s", "Name")
	for _, d := range g.Dates() {
		fmt.Printf(" %7s", d)
	}
	fmt.Println()
	for p := 0; p < min(n, g.NumPlayers()); p++ {
		fmt.Printf("  %-20s", g.Player(p))
		for d := 0; d < g.NumDates(); d++ {
			m := g.At(p, d).Marker()
			if m == "" {
				m = "."
			}
			fmt.Printf(" %7s", m)
		}
		fmt.Println()
	}
}
