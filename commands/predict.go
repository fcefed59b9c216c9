package commands

import (
	"fmt"

	"github.com/penwyp/go-claude-predictor/internal/core/forecast"
	"github.com/penwyp/go-claude-predictor/internal/data/watcher"
	"github.com/penwyp/go-claude-predictor/internal/util"
	"github.com/spf13/cobra"
)

var (
	horizons []int
	watch    bool

	predictCmd = &cobra.Command{
		Use:   "predict",
		Short: "Probabilistic multi-horizon limit forecast",
		Long: `predict classifies the current session behavior, fits a time-to-limit
distribution from matching historical sessions, and reports breach probability,
confidence intervals and a risk score for each horizon.`,
		RunE: runPredict,
	}
)

func init() {
	predictCmd.Flags().IntSliceVar(&horizons, "horizons", []int{15, 30, 60, 120},
		"Forecast horizons in minutes")
	predictCmd.Flags().BoolVarP(&watch, "watch", "w", false,
		"Re-run the forecast whenever conversation logs change")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	cfg := forecast.DefaultConfig()
	cfg.Horizons = horizons
	cfg.CurrentWindow = currentWindow

	runOnce := func() error {
		snap, err := a.Load()
		if err != nil {
			return err
		}
		engine := forecast.NewEngine(cfg)
		predictions, err := engine.PredictAtLatest(snap.Records, snap.Events)
		if err != nil {
			return err
		}
		printAdvancedPredictions(predictions)
		return nil
	}

	if err := runOnce(); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	fw, err := watcher.New([]string{expandPath(dataDir)})
	if err != nil {
		return fmt.Errorf("failed to start watch mode: %w", err)
	}
	defer fw.Close()

	fmt.Println("\nWatching for log changes (Ctrl-C to stop)...")
	for range fw.Events() {
		util.LogDebug("Log change detected, re-running forecast")
		if err := runOnce(); err != nil {
			util.LogWarnf("Forecast re-run failed: %v", err)
		}
	}
	return nil
}
