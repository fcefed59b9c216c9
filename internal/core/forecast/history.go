package forecast

import (
	"sort"

	"github.com/penwyp/go-claude-predictor/internal/core/features"
	"github.com/penwyp/go-claude-predictor/internal/core/limits"
	"github.com/penwyp/go-claude-predictor/internal/core/model"
)

// HistoricalSession is one observed run-up to a limit hit: the behavior
// in the pre-limit window, its classified category, and how long the
// activity ran before breaching.
type HistoricalSession struct {
	Category           features.Category
	Features           features.Vector
	TimeToLimitMinutes float64
	TokensPerMinute    float64
	EventTimestamp     int64
}

// BuildSessions derives historical sessions from complete limit events.
// The time-to-limit of each is the span from the first record inside
// the long pre-limit window to the breach itself.
func BuildSessions(records []model.UsageRecord, events []limits.Event, th features.Thresholds) []HistoricalSession {
	var sessions []HistoricalSession
	for _, ev := range limits.Complete(events) {
		start := ev.Long.Start
		vec := features.Extract(records, start, ev.Timestamp)
		if !vec.Defined {
			continue
		}

		ttl := vec.ElapsedMinutes
		sessions = append(sessions, HistoricalSession{
			Category:           features.Classify(vec, th),
			Features:           vec,
			TimeToLimitMinutes: ttl,
			TokensPerMinute:    vec.TokensPerMinute,
			EventTimestamp:     ev.Timestamp.Unix(),
		})
	}
	return sessions
}

// categoryStats summarizes the historical sessions of one category.
type categoryStats struct {
	Dist    logNormal
	Samples int

	BaselineRate float64 // mean pre-limit token rate

	// Feature distribution quartiles used for insight generation.
	VarianceQ3 float64
	SkewMedian float64
	CacheMean  float64
}

// statsFor fits the distribution for the matched category, pooling
// everything when the category has fewer than minSamples sessions.
// The pooled flag reports that degraded mode.
func statsFor(sessions []HistoricalSession, cat features.Category, minSamples int, fallbackSigma float64) (stats categoryStats, pooled bool) {
	var matched []HistoricalSession
	for _, s := range sessions {
		if s.Category == cat {
			matched = append(matched, s)
		}
	}
	if len(matched) < minSamples {
		matched = sessions
		pooled = true
	}
	return summarize(matched, fallbackSigma), pooled
}

func summarize(sessions []HistoricalSession, fallbackSigma float64) categoryStats {
	stats := categoryStats{}
	if len(sessions) == 0 {
		return stats
	}

	times := make([]float64, 0, len(sessions))
	variances := make([]float64, 0, len(sessions))
	skews := make([]float64, 0, len(sessions))
	rateSum, cacheSum := 0.0, 0.0
	for _, s := range sessions {
		times = append(times, s.TimeToLimitMinutes)
		variances = append(variances, s.Features.RateVariance)
		skews = append(skews, s.Features.SizeSkew)
		rateSum += s.TokensPerMinute
		cacheSum += s.Features.CacheHitRate
	}

	stats.Dist, stats.Samples = fitLogNormal(times, fallbackSigma)
	stats.BaselineRate = rateSum / float64(len(sessions))
	stats.CacheMean = cacheSum / float64(len(sessions))
	stats.VarianceQ3 = quantileOf(variances, 0.75)
	stats.SkewMedian = quantileOf(skews, 0.5)
	return stats
}

func quantileOf(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	idx := int(q * float64(len(sorted)-1))
	return sorted[idx]
}
