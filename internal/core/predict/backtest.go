package predict

import (
	"sort"
	"sync"
	"time"

	"github.com/penwyp/go-claude-predictor/internal/core/limits"
	"github.com/penwyp/go-claude-predictor/internal/core/model"
	"github.com/penwyp/go-claude-predictor/internal/core/window"
	"github.com/penwyp/go-claude-predictor/internal/util"
)

// BacktestResult scores one replayed limit event.
type BacktestResult struct {
	EventTimestamp   time.Time
	TrainingEvents   int
	PredictedMinutes float64
	ActualMinutes    float64
	ErrorMinutes     float64
	RelativeError    float64
	Accurate         bool
}

// BacktestReport aggregates per-event backtest errors.
type BacktestReport struct {
	// EventCount is the number of events actually scored. Skipped is
	// how many complete events could not be replayed (no prior history
	// to train on, or no activity in the replay window).
	EventCount int
	Skipped    int

	MeanAbsError     float64
	MedianAbsError   float64
	AccuracyFraction float64

	Results []BacktestResult
}

// Backtest replays every complete historical limit event, feeding the
// legacy predictor only the data available before it. For event N the
// training pattern comes from events 1..N-1; the prediction is anchored
// at the event's current-window start, so ground truth is exactly the
// current-window length. With zero scoreable events the report is empty
// rather than an error.
func Backtest(cfg Config, records []model.UsageRecord, events []limits.Event) (BacktestReport, error) {
	if err := model.EnsureSorted(records); err != nil {
		return BacktestReport{}, err
	}

	complete := limits.Complete(events)
	sort.Slice(complete, func(i, j int) bool {
		return complete[i].Timestamp.Before(complete[j].Timestamp)
	})

	report := BacktestReport{}
	if len(complete) < 2 {
		util.LogDebugf("backtest needs at least 2 complete limit events, have %d", len(complete))
		report.Skipped = len(complete)
		return report, nil
	}

	type outcome struct {
		result BacktestResult
		ok     bool
	}

	// Each replay works on its own truncated view of the immutable
	// stream, so the per-event loop parallelizes without locks.
	outcomes := make([]outcome, len(complete))
	sem := make(chan struct{}, max(1, cfg.BacktestWorkers))
	var wg sync.WaitGroup

	for i := 1; i < len(complete); i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			target := complete[idx]
			training := BuildHistory(eventsBefore(complete[:idx], target.Timestamp))
			if training.Samples == 0 {
				return
			}

			anchor := target.Timestamp.Add(-cfg.CurrentWindow)
			truncated := window.Before(records, target.Timestamp)

			pred, err := Legacy(cfg, truncated, training, anchor)
			if err != nil || !pred.HasSignal || pred.Tokens.ETAMinutes == nil {
				return
			}

			actual := target.Timestamp.Sub(anchor).Minutes()
			errMinutes := *pred.Tokens.ETAMinutes - actual
			if errMinutes < 0 {
				errMinutes = -errMinutes
			}

			res := BacktestResult{
				EventTimestamp:   target.Timestamp,
				TrainingEvents:   training.Samples,
				PredictedMinutes: *pred.Tokens.ETAMinutes,
				ActualMinutes:    actual,
				ErrorMinutes:     errMinutes,
				Accurate:         errMinutes <= cfg.Tolerance.Minutes(),
			}
			if actual > 0 {
				res.RelativeError = errMinutes / actual
			}
			outcomes[idx] = outcome{result: res, ok: true}
		}(i)
	}
	wg.Wait()

	var errs []float64
	accurate := 0
	for _, o := range outcomes[1:] {
		if !o.ok {
			report.Skipped++
			continue
		}
		report.Results = append(report.Results, o.result)
		errs = append(errs, o.result.ErrorMinutes)
		if o.result.Accurate {
			accurate++
		}
	}
	report.EventCount = len(report.Results)

	if report.EventCount > 0 {
		sum := 0.0
		for _, e := range errs {
			sum += e
		}
		report.MeanAbsError = sum / float64(report.EventCount)
		report.MedianAbsError = median(errs)
		report.AccuracyFraction = float64(accurate) / float64(report.EventCount)
	}

	util.LogInfof("backtest scored %d events (%d skipped), accuracy %.0f%%",
		report.EventCount, report.Skipped, report.AccuracyFraction*100)
	return report, nil
}

// eventsBefore filters events strictly preceding the cutoff. The
// snapshots inside them were already built without look-ahead, so no
// further truncation is needed.
func eventsBefore(events []limits.Event, cutoff time.Time) []limits.Event {
	out := make([]limits.Event, 0, len(events))
	for _, ev := range events {
		if ev.Timestamp.Before(cutoff) {
			out = append(out, ev)
		}
	}
	return out
}
