// Package forecast implements the probabilistic usage-limit prediction
// engine: per-category log-normal time-to-limit distributions,
// multi-horizon breach probabilities with confidence intervals, and
// bounded risk scores.
package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/penwyp/go-claude-predictor/internal/core/features"
	"github.com/penwyp/go-claude-predictor/internal/core/limits"
	"github.com/penwyp/go-claude-predictor/internal/core/model"
	"github.com/penwyp/go-claude-predictor/internal/util"
)

// Config holds the forecast policy constants.
type Config struct {
	// CurrentWindow is the trailing window feeding the live feature
	// vector.
	CurrentWindow time.Duration

	// Horizons are the forecast horizons in minutes.
	Horizons []int

	// MinCategorySamples is the sample floor below which a category
	// falls back to the pooled distribution.
	MinCategorySamples int

	// ConfidenceLevel sets the interval width (0.90 means the 5th to
	// 95th percentile band).
	ConfidenceLevel float64

	// FallbackSigma is the log-space spread assumed when history is
	// too thin to estimate one.
	FallbackSigma float64

	// FallbackMedianMinutes seeds the global fallback distribution
	// when no historical sessions exist at all.
	FallbackMedianMinutes float64

	Thresholds features.Thresholds
}

// DefaultConfig returns the default forecast policy.
func DefaultConfig() Config {
	return Config{
		CurrentWindow:         3 * time.Hour,
		Horizons:              []int{15, 30, 60, 120},
		MinCategorySamples:    3,
		ConfidenceLevel:       0.90,
		FallbackSigma:         0.6,
		FallbackMedianMinutes: 180,
	}
}

// Prediction is the forecast for a single horizon.
type Prediction struct {
	HorizonMinutes int

	// PointEstimateMinutes is the distribution median time to limit.
	PointEstimateMinutes float64
	LowerBoundMinutes    float64
	UpperBoundMinutes    float64

	// BreachProbability is P(time to limit <= horizon).
	BreachProbability float64

	// RiskScore is in [0,100], monotone in breach probability and in
	// current rate over the category baseline.
	RiskScore float64

	Context       features.Category
	Insights      []string
	LowConfidence bool
}

// Engine produces advanced predictions. It holds only configuration;
// every invocation is a pure function of its inputs.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine with the given policy.
func NewEngine(cfg Config) *Engine {
	if cfg.Thresholds == (features.Thresholds{}) {
		cfg.Thresholds = features.DefaultThresholds()
	}
	if len(cfg.Horizons) == 0 {
		cfg.Horizons = DefaultConfig().Horizons
	}
	return &Engine{cfg: cfg}
}

// Predict classifies the live window and emits one Prediction per
// configured horizon. The engine never refuses to answer: with empty
// history or an empty live window it degrades to the global fallback
// distribution and marks the results low confidence.
func (e *Engine) Predict(records []model.UsageRecord, events []limits.Event, now time.Time) (map[int]Prediction, error) {
	if err := model.EnsureSorted(records); err != nil {
		return nil, err
	}

	live := features.Extract(records, now.Add(-e.cfg.CurrentWindow), now)
	category := features.Classify(live, e.cfg.Thresholds)

	sessions := BuildSessions(records, events, e.cfg.Thresholds)
	stats, pooled := statsFor(sessions, category, e.cfg.MinCategorySamples, e.cfg.FallbackSigma)

	lowConfidence := pooled || !live.Defined
	if stats.Samples == 0 {
		// Global fallback: no usable history anywhere.
		stats.Dist = fitFallback(e.cfg)
		stats.BaselineRate = live.TokensPerMinute
		lowConfidence = true
		util.LogDebug("forecast has no historical sessions, using global fallback distribution")
	}

	dist := stats.Dist
	rateRatio := 1.0
	if stats.BaselineRate > 0 && live.TokensPerMinute > 0 {
		rateRatio = live.TokensPerMinute / stats.BaselineRate
		// Running hotter than the historical pre-limit baseline
		// shifts the whole distribution proportionally closer.
		dist.Mu -= math.Log(rateRatio)
	}

	insights := buildInsights(live, stats, rateRatio, pooled)

	tail := (1 - e.cfg.ConfidenceLevel) / 2
	out := make(map[int]Prediction, len(e.cfg.Horizons))
	for _, h := range e.cfg.Horizons {
		p := dist.CDF(float64(h))
		out[h] = Prediction{
			HorizonMinutes:       h,
			PointEstimateMinutes: dist.Median(),
			LowerBoundMinutes:    dist.Quantile(tail),
			UpperBoundMinutes:    dist.Quantile(1 - tail),
			BreachProbability:    p,
			RiskScore:            riskScore(p, rateRatio),
			Context:              category,
			Insights:             insights,
			LowConfidence:        lowConfidence,
		}
	}
	return out, nil
}

// PredictAtLatest anchors the forecast at the latest record timestamp.
func (e *Engine) PredictAtLatest(records []model.UsageRecord, events []limits.Event) (map[int]Prediction, error) {
	return e.Predict(records, events, model.LatestTimestamp(records))
}

// riskScore maps breach probability and relative rate onto [0,100].
// Both inputs strictly increase the score: probability carries 80
// points, above-baseline rate the remaining 20 through a saturating
// ratio term.
func riskScore(breachProb, rateRatio float64) float64 {
	if rateRatio < 0 {
		rateRatio = 0
	}
	score := 80*breachProb + 20*(rateRatio/(1+rateRatio))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

func buildInsights(live features.Vector, stats categoryStats, rateRatio float64, pooled bool) []string {
	var insights []string
	if !live.Defined {
		return []string{"no activity in the current window; forecast reflects historical patterns only"}
	}
	if pooled {
		insights = append(insights, "too few sessions of this context type; forecast uses the pooled history")
	}
	if rateRatio > 1.2 {
		insights = append(insights, fmt.Sprintf("current rate is %.1fx the pre-limit baseline for this context", rateRatio))
	} else if rateRatio > 0 && rateRatio < 0.5 {
		insights = append(insights, fmt.Sprintf("current rate is well below the pre-limit baseline (%.1fx)", rateRatio))
	}
	if stats.VarianceQ3 > 0 && live.RateVariance > stats.VarianceQ3 {
		insights = append(insights, "rate variance is in the top quartile for this context")
	}
	if live.SizeSkew > stats.SkewMedian && live.SizeSkew > 0 {
		insights = append(insights, fmt.Sprintf("%.0f%% of recent messages are large or xlarge, above the historical median", live.SizeSkew*100))
	}
	if stats.CacheMean > 0 && live.CacheHitRate < stats.CacheMean/2 {
		insights = append(insights, "cache hit rate is running at less than half the historical mean")
	}
	if live.RateAcceleration > 0 {
		insights = append(insights, "usage is accelerating across the current window")
	}
	return insights
}

func fitFallback(cfg Config) logNormal {
	dist, _ := fitLogNormal([]float64{cfg.FallbackMedianMinutes}, cfg.FallbackSigma)
	return dist
}
