// Package predict implements the deterministic usage-limit predictor
// and its backtesting harness. The predictor combines the live trailing
// window rate with the median pre-limit pattern extracted from
// historical limit hits.
package predict

import (
	"time"

	"github.com/penwyp/go-claude-predictor/internal/core/model"
	"github.com/penwyp/go-claude-predictor/internal/core/window"
	"github.com/penwyp/go-claude-predictor/internal/util"
)

// Estimate is a single remaining-quantity projection. ETA carries no
// value when the current rate gives no signal.
type Estimate struct {
	Threshold  float64
	Current    float64
	Rate       float64 // per minute
	Remaining  float64
	ETAMinutes *float64

	// Danger is set once current usage reaches the configured fraction
	// of the threshold.
	Danger bool
}

// LegacyPrediction is the deterministic point estimate of time to the
// next limit, derived separately for tokens, messages and cost.
type LegacyPrediction struct {
	Now    time.Time
	Window window.Stats

	Tokens   Estimate
	Messages Estimate
	Cost     Estimate

	// HasSignal is false when the current window carries no activity:
	// every ETA is undefined and the caller should render the defined
	// no-signal state rather than a number.
	HasSignal bool

	// LowConfidence marks predictions built on insufficient history
	// (no complete pre-limit snapshots to derive thresholds from).
	LowConfidence bool
}

// Legacy predicts time to the next limit from the trailing current
// window and the historical pre-limit pattern. now is normally the
// latest record timestamp; backtesting passes an earlier anchor. The
// record stream must be sorted.
func Legacy(cfg Config, records []model.UsageRecord, hist History, now time.Time) (LegacyPrediction, error) {
	if err := model.EnsureSorted(records); err != nil {
		return LegacyPrediction{}, err
	}

	// The live window clamps to the first activity inside it: a session
	// younger than the configured window measures rate over its actual
	// span instead of diluting it across empty lead-in time.
	start := now.Add(-cfg.CurrentWindow)
	if span := window.Records(records, start, now); len(span) > 0 && span[0].Timestamp.After(start) {
		start = span[0].Timestamp
	}
	current, err := window.Aggregate(records, start, now)
	if err != nil {
		return LegacyPrediction{}, err
	}

	pred := LegacyPrediction{
		Now:           now,
		Window:        current,
		HasSignal:     current.Count > 0 && current.TokensPerMinute > 0,
		LowConfidence: hist.Samples == 0,
	}

	pred.Tokens = estimate(hist.TokenThreshold, float64(current.TotalTokens), current.TokensPerMinute, cfg.DangerRatio)
	pred.Messages = estimate(hist.MessageThreshold, float64(current.Count), current.MessagesPerMinute, cfg.DangerRatio)
	pred.Cost = estimate(hist.CostThreshold, current.TotalCost, current.CostPerMinute, cfg.DangerRatio)

	if pred.LowConfidence {
		util.LogDebug("legacy prediction has no complete pre-limit snapshots, thresholds default to zero")
	}
	return pred, nil
}

// LegacyAtLatest anchors the prediction at the latest record timestamp.
func LegacyAtLatest(cfg Config, records []model.UsageRecord, hist History) (LegacyPrediction, error) {
	return Legacy(cfg, records, hist, model.LatestTimestamp(records))
}

// estimate projects the remaining quantity and ETA for one usage kind.
// Remaining is clamped at zero; ETA stays nil on a zero rate so a stall
// never turns into a divide-by-zero or a bogus infinity.
func estimate(threshold, current, rate, dangerRatio float64) Estimate {
	est := Estimate{
		Threshold: threshold,
		Current:   current,
		Rate:      rate,
	}
	est.Remaining = threshold - current
	if est.Remaining < 0 {
		est.Remaining = 0
	}
	if rate > 0 {
		eta := est.Remaining / rate
		est.ETAMinutes = &eta
	}
	est.Danger = threshold > 0 && dangerRatio > 0 && current >= dangerRatio*threshold
	return est
}
