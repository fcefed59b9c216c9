package commands

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/go-claude-predictor/internal/analyzer"
	"github.com/penwyp/go-claude-predictor/internal/core/forecast"
	"github.com/penwyp/go-claude-predictor/internal/core/predict"
	"github.com/penwyp/go-claude-predictor/internal/util"
)

func printMetrics(m analyzer.UsageMetrics) {
	tp := util.GetTimeProvider()

	fmt.Println(section("USAGE SUMMARY"))
	fmt.Printf("  Total cost:        %s (cache saved %s)\n",
		util.FormatCurrency(m.TotalCost), util.FormatCurrency(m.CacheSavings))
	fmt.Printf("  Total tokens:      %s (%s input, %s output)\n",
		util.FormatNumber(m.TotalTokens),
		util.FormatNumber(m.Tokens.Input), util.FormatNumber(m.Tokens.Output))
	fmt.Printf("  Cache hit rate:    %s\n", util.FormatPercent(m.CacheHitRate))
	fmt.Printf("  Messages:          %d across %d sessions (avg %s per session)\n",
		m.MessageCount, m.SessionCount, util.FormatMinutes(m.AvgSessionMinutes))
	fmt.Printf("  Limit hits:        %d (%d usable for pattern statistics)\n",
		m.LimitHits, m.CompleteEvents())
	if !m.FirstRecord.IsZero() {
		fmt.Printf("  History span:      %s to %s\n",
			tp.Format(m.FirstRecord, "2006-01-02 15:04"),
			tp.Format(m.LastRecord, "2006-01-02 15:04"))
	}

	if len(m.ModelDistribution) > 0 {
		fmt.Println(section("MODEL BREAKDOWN"))
		models := make([]*analyzer.ModelStats, 0, len(m.ModelDistribution))
		for _, stats := range m.ModelDistribution {
			models = append(models, stats)
		}
		sort.Slice(models, func(i, j int) bool { return models[i].Cost > models[j].Cost })

		nameWidth := 0
		for _, stats := range models {
			if w := util.CellWidth(stats.Model); w > nameWidth {
				nameWidth = w
			}
		}
		for _, stats := range models {
			fmt.Printf("  %s  %s tokens  %s  %d messages\n",
				util.PadRight(stats.Model, nameWidth),
				util.PadLeft(util.FormatNumber(stats.Tokens), 8),
				util.PadLeft(util.FormatCurrency(stats.Cost), 10),
				stats.Count)
		}
	}
}

func printLegacyPrediction(pred predict.LegacyPrediction) {
	fmt.Println(section("USAGE LIMIT PREDICTION"))

	if pred.LowConfidence {
		fmt.Println("  No complete limit history yet; thresholds unavailable (low confidence).")
	}

	fmt.Printf("  Current window:    %s ending %s\n",
		util.FormatDuration(pred.Window.Duration),
		util.GetTimeProvider().Format(pred.Now, "15:04"))
	fmt.Printf("  Current rate:      %s, %.1f messages/min\n",
		util.FormatBurnRate(pred.Window.TokensPerMinute), pred.Window.MessagesPerMinute)

	if !pred.HasSignal {
		fmt.Println("  No activity in the current window; time-to-limit is undefined.")
		return
	}

	printEstimate("Tokens", pred.Tokens, func(v float64) string {
		return util.FormatNumber(int(v))
	})
	printEstimate("Messages", pred.Messages, func(v float64) string {
		return fmt.Sprintf("%.0f", v)
	})
	printEstimate("Cost", pred.Cost, util.FormatCurrency)
}

func printEstimate(label string, est predict.Estimate, format func(float64) string) {
	if est.ETAMinutes == nil {
		fmt.Printf("  %s  remaining %s, rate gives no signal\n",
			util.PadRight(label+":", 10), format(est.Remaining))
		return
	}
	warning := ""
	if est.Danger {
		warning = "  [DANGER ZONE]"
	}
	fmt.Printf("  %s  remaining %s of %s threshold, about %s to limit%s\n",
		util.PadRight(label+":", 10),
		format(est.Remaining), format(est.Threshold),
		util.FormatMinutes(*est.ETAMinutes), warning)
}

func printBacktestReport(report predict.BacktestReport) {
	fmt.Println(section("BACKTEST REPORT"))

	if report.EventCount == 0 {
		fmt.Printf("  No scoreable limit events (%d skipped); accuracy is undefined.\n", report.Skipped)
		return
	}

	fmt.Printf("  Events tested:     %d (%d skipped)\n", report.EventCount, report.Skipped)
	fmt.Printf("  Mean abs error:    %s\n", util.FormatMinutes(report.MeanAbsError))
	fmt.Printf("  Median abs error:  %s\n", util.FormatMinutes(report.MedianAbsError))
	fmt.Printf("  Accuracy:          %s within tolerance\n", util.FormatPercent(report.AccuracyFraction))

	for i, res := range report.Results {
		status := "accurate"
		if !res.Accurate {
			status = "inaccurate"
		}
		fmt.Printf("  #%d %s  predicted %s, actual %s, error %s (%s)\n",
			i+1,
			util.GetTimeProvider().Format(res.EventTimestamp, "2006-01-02 15:04"),
			util.FormatMinutes(res.PredictedMinutes),
			util.FormatMinutes(res.ActualMinutes),
			util.FormatMinutes(res.ErrorMinutes),
			status)
	}
}

func printAdvancedPredictions(predictions map[int]forecast.Prediction) {
	fmt.Println(section("PROBABILISTIC FORECAST"))

	horizons := make([]int, 0, len(predictions))
	for h := range predictions {
		horizons = append(horizons, h)
	}
	sort.Ints(horizons)
	if len(horizons) == 0 {
		return
	}

	first := predictions[horizons[0]]
	fmt.Printf("  Context:           %s\n", first.Context)
	fmt.Printf("  Time to limit:     %s (90%% interval %s to %s)\n",
		util.FormatMinutes(first.PointEstimateMinutes),
		util.FormatMinutes(first.LowerBoundMinutes),
		util.FormatMinutes(first.UpperBoundMinutes))
	if first.LowConfidence {
		fmt.Println("  Confidence:        low (sparse history for this context)")
	}

	fmt.Println()
	fmt.Printf("  %s %s %s\n",
		util.PadRight("Horizon", 10),
		util.PadLeft("Breach prob", 12),
		util.PadLeft("Risk", 8))
	for _, h := range horizons {
		p := predictions[h]
		fmt.Printf("  %s %s %s\n",
			util.PadRight(util.FormatDuration(time.Duration(h)*time.Minute), 10),
			util.PadLeft(util.FormatPercent(p.BreachProbability), 12),
			util.PadLeft(fmt.Sprintf("%.0f", p.RiskScore), 8))
	}

	if len(first.Insights) > 0 {
		fmt.Println(section("INSIGHTS"))
		for _, insight := range first.Insights {
			fmt.Printf("  - %s\n", insight)
		}
	}
}

// section renders a header sized to the terminal.
func section(title string) string {
	width := util.TerminalWidth(60)
	if width > 72 {
		width = 72
	}
	return "\n" + title + "\n" + strings.Repeat("=", width)
}
