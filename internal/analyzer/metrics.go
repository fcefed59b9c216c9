package analyzer

import (
	"time"

	"github.com/penwyp/go-claude-predictor/internal/core/model"
	"github.com/penwyp/go-claude-predictor/internal/core/pricing"
)

// UsageMetrics is the aggregate usage summary reported alongside the
// predictions.
type UsageMetrics struct {
	// Cost
	TotalCost             float64
	TotalCostWithoutCache float64
	CacheSavings          float64
	CostPerMessage        float64
	TokensPerDollar       float64

	// Tokens
	TotalTokens  int
	Tokens       model.TokenCounts
	CacheHitRate float64

	// Sessions
	SessionCount      int
	MessageCount      int
	AvgSessionMinutes float64
	ModelDistribution map[string]*ModelStats

	// Limits
	LimitHits        int
	PartialSnapshots int

	// Span
	FirstRecord time.Time
	LastRecord  time.Time
}

// ModelStats contains statistics for a specific model
type ModelStats struct {
	Model  string
	Tokens int
	Cost   float64
	Count  int
}

// ComputeMetrics derives the usage summary from a loaded snapshot.
func ComputeMetrics(snap *Snapshot) UsageMetrics {
	m := UsageMetrics{
		ModelDistribution: make(map[string]*ModelStats),
		SessionCount:      len(snap.Sessions),
		MessageCount:      len(snap.Records),
		LimitHits:         len(snap.Events),
	}

	for _, ev := range snap.Events {
		if ev.Partial {
			m.PartialSnapshots++
		}
	}

	for _, rec := range snap.Records {
		m.TotalCost += rec.Cost
		m.Tokens.Add(rec.Tokens)
		m.TotalCostWithoutCache += pricing.GetPricing(rec.Model).CostWithoutCache(rec.Tokens)

		stats, ok := m.ModelDistribution[rec.Model]
		if !ok {
			stats = &ModelStats{Model: rec.Model}
			m.ModelDistribution[rec.Model] = stats
		}
		stats.Tokens += rec.TotalTokens()
		stats.Cost += rec.Cost
		stats.Count++
	}
	m.TotalTokens = m.Tokens.Total()
	m.CacheSavings = m.TotalCostWithoutCache - m.TotalCost

	if inputLike := m.Tokens.Input + m.Tokens.CacheCreation + m.Tokens.CacheRead; inputLike > 0 {
		m.CacheHitRate = float64(m.Tokens.CacheRead) / float64(inputLike)
	}
	if m.MessageCount > 0 {
		m.CostPerMessage = m.TotalCost / float64(m.MessageCount)
	}
	if m.TotalCost > 0 {
		m.TokensPerDollar = float64(m.TotalTokens) / m.TotalCost
	}

	if len(snap.Records) > 0 {
		m.FirstRecord = snap.Records[0].Timestamp
		m.LastRecord = snap.Records[len(snap.Records)-1].Timestamp
	}

	if len(snap.Sessions) > 0 {
		total := 0.0
		for _, sess := range snap.Sessions {
			total += sess.DurationMinutes()
		}
		m.AvgSessionMinutes = total / float64(len(snap.Sessions))
	}

	return m
}

// CompleteEvents returns the number of limit events usable for
// threshold statistics.
func (m UsageMetrics) CompleteEvents() int {
	return m.LimitHits - m.PartialSnapshots
}
