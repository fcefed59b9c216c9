package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/penwyp/go-claude-predictor/internal/analyzer"
	"github.com/penwyp/go-claude-predictor/internal/core/predict"
	"github.com/penwyp/go-claude-predictor/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug bool

	// Data path
	dataDir string

	// Output related
	timezone string

	// Policy overrides
	currentWindow time.Duration
	longLookback  time.Duration
	tolerance     time.Duration

	rootCmd = &cobra.Command{
		Use:   "go-claude-predictor [flags]",
		Short: "Claude Code usage-limit prediction tool",
		Long: `go-claude-predictor analyzes Claude Code conversation logs and predicts
when current usage will cross a rate/usage ceiling.

It scans JSONL files in the Claude project directory, reconstructs historical
limit hits, and combines the current burn rate with the pre-limit pattern to
estimate time, tokens and messages remaining until the next limit.

Examples:
  go-claude-predictor                                  # Analyze and predict with defaults
  go-claude-predictor --dir /path/to/claude/projects   # Analyze specified directory
  go-claude-predictor backtest                         # Validate the predictor against history
  go-claude-predictor predict --horizons 15,30,60      # Probabilistic multi-horizon forecast`,
		RunE: runAnalyze,
	}
)

const (
	defaultLogFile = "~/.go-claude-predictor/logs/app.log"
	defaultDataDir = "~/.claude/projects"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", defaultDataDir,
		"Claude project directory path")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "Local",
		"Timezone setting (e.g., Asia/Shanghai, UTC)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")

	rootCmd.PersistentFlags().DurationVar(&currentWindow, "current-window", 3*time.Hour,
		"Trailing window used to measure the live rate")
	rootCmd.PersistentFlags().DurationVar(&longLookback, "lookback", 5*time.Hour,
		"Pre-limit snapshot window used for threshold statistics")
	rootCmd.PersistentFlags().DurationVar(&tolerance, "tolerance", 30*time.Minute,
		"Backtest accuracy tolerance band")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup initializes logging, timezone and the analyzer shared by every
// command.
func setup() (*analyzer.Analyzer, error) {
	util.InitLogger(logLevel(), expandPath(defaultLogFile), debug)

	if err := util.InitializeTimeProvider(timezone); err != nil {
		return nil, err
	}

	cfg := predict.DefaultConfig()
	cfg.CurrentWindow = currentWindow
	cfg.LongLookback = longLookback
	cfg.Tolerance = tolerance

	return analyzer.New(&analyzer.Config{
		DataDir: expandPath(dataDir),
		Predict: cfg,
	}), nil
}

func logLevel() string {
	if debug {
		return "debug"
	}
	return "info"
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			expanded := filepath.Join(home, path[2:])
			if strings.HasSuffix(path, "logs/app.log") {
				os.MkdirAll(filepath.Dir(expanded), 0755)
			}
			return expanded
		}
	}
	return path
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	snap, err := a.Load()
	if err != nil {
		return err
	}

	metrics := analyzer.ComputeMetrics(snap)
	printMetrics(metrics)

	pred, err := a.PredictLegacy(snap)
	if err != nil {
		return err
	}
	printLegacyPrediction(pred)
	return nil
}
