package commands

import (
	"github.com/spf13/cobra"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Validate the predictor against historical limit hits",
	Long: `backtest replays every historical limit hit, feeding the predictor only
the data that was available before each one, and scores the prediction error
against the known outcome.`,
	RunE: runBacktest,
}

func init() {
	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	snap, err := a.Load()
	if err != nil {
		return err
	}

	report, err := a.Backtest(snap)
	if err != nil {
		return err
	}

	printBacktestReport(report)
	return nil
}
