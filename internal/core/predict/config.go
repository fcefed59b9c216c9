package predict

import "time"

// Config collects the tunable policy constants of the prediction
// engine. Defaults mirror the look-back lengths the backtesting harness
// was validated against; none of them is a structural contract.
type Config struct {
	// CurrentWindow is the trailing window used to measure the live
	// rate, anchored at the latest record timestamp.
	CurrentWindow time.Duration

	// ShortLookback and LongLookback are the pre-limit snapshot window
	// lengths. Threshold statistics use the long snapshot; the short
	// one is kept for diagnostics.
	ShortLookback time.Duration
	LongLookback  time.Duration

	// Tolerance is the backtest accuracy band: a replayed prediction
	// counts as accurate when its absolute error is within it.
	Tolerance time.Duration

	// DangerRatio flags an estimate once current usage reaches this
	// fraction of the historical threshold.
	DangerRatio float64

	// BacktestWorkers bounds the per-event backtest worker pool.
	BacktestWorkers int
}

// DefaultConfig returns the default prediction policy.
func DefaultConfig() Config {
	return Config{
		CurrentWindow:   3 * time.Hour,
		ShortLookback:   3 * time.Hour,
		LongLookback:    5 * time.Hour,
		Tolerance:       30 * time.Minute,
		DangerRatio:     0.8,
		BacktestWorkers: 4,
	}
}
