package features

import (
	"testing"
	"time"

	"github.com/penwyp/go-claude-predictor/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRecords(t0 time.Time, count int, spacing time.Duration, tokensEach int) []model.UsageRecord {
	records := make([]model.UsageRecord, count)
	for i := range records {
		records[i] = model.UsageRecord{
			Timestamp: t0.Add(time.Duration(i) * spacing),
			Tokens:    model.TokenCounts{Output: tokensEach},
			Cost:      float64(tokensEach) / 1e6,
		}
	}
	return records
}

func TestExtractEmptyWindow(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	v := Extract(nil, t0, t0.Add(time.Hour))
	assert.False(t, v.Defined)
	assert.Equal(t, Vector{}, v)
}

func TestExtractSingleRecord(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	records := makeRecords(t0, 1, time.Minute, 800)

	v := Extract(records, t0, t0.Add(time.Hour))
	require.True(t, v.Defined)

	// Elapsed is clamped to a floor of one minute.
	assert.Equal(t, 1.0, v.ElapsedMinutes)
	assert.Equal(t, 800.0, v.TokensPerMinute)
	assert.Equal(t, 1.0, v.MessagesPerMinute)
	assert.Equal(t, 0.0, v.RateVariance)
	assert.Equal(t, 800.0, v.AvgMessageTokens)
	assert.Equal(t, 12, v.HourOfDay)
}

func TestExtractSteadyStream(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	records := makeRecords(t0, 120, time.Minute, 1000)

	v := Extract(records, t0, t0.Add(2*time.Hour))
	require.True(t, v.Defined)

	assert.InDelta(t, 119.0, v.ElapsedMinutes, 0.001)
	assert.InDelta(t, 120000.0/119.0, v.TokensPerMinute, 0.001)
	assert.InDelta(t, 1000.0, v.AvgMessageTokens, 0.001)
	assert.Equal(t, 0.0, v.SizeSkew)

	// A constant-rate stream shows near-zero acceleration and a
	// variance well under the mean rate.
	assert.InDelta(t, 0.0, v.RateAcceleration, 50.0)
	assert.Less(t, v.RateVariance, 0.35*v.TokensPerMinute)
}

func TestExtractAcceleratingStream(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	// First half trickles, second half burns five times as fast.
	records := makeRecords(t0, 30, time.Minute, 1000)
	records = append(records, makeRecords(t0.Add(30*time.Minute), 30, time.Minute, 5000)...)

	v := Extract(records, t0, t0.Add(time.Hour))
	require.True(t, v.Defined)
	assert.Greater(t, v.RateAcceleration, 0.0)
}

func TestExtractCacheHitRate(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	records := []model.UsageRecord{
		{Timestamp: t0, Tokens: model.TokenCounts{Input: 100, CacheCreation: 100, CacheRead: 300, Output: 50}},
		{Timestamp: t0.Add(time.Minute), Tokens: model.TokenCounts{Input: 100, CacheRead: 400, Output: 50}},
	}

	v := Extract(records, t0, t0.Add(time.Hour))
	require.True(t, v.Defined)
	assert.InDelta(t, 700.0/1000.0, v.CacheHitRate, 0.001)
}

func TestExtractSizeSkew(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	records := []model.UsageRecord{
		{Timestamp: t0, Tokens: model.TokenCounts{Output: 400}},
		{Timestamp: t0.Add(time.Minute), Tokens: model.TokenCounts{Output: 3000}},
		{Timestamp: t0.Add(2 * time.Minute), Tokens: model.TokenCounts{Output: 12000}},
		{Timestamp: t0.Add(3 * time.Minute), Tokens: model.TokenCounts{Output: 2000}},
	}

	v := Extract(records, t0, t0.Add(time.Hour))
	assert.InDelta(t, 0.5, v.SizeSkew, 0.001)
}

// Records sitting exactly on bucket boundaries must land in exactly
// one bucket, so the bucket totals sum to the stream total.
func TestBucketRatesCountBoundaryRecordsOnce(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	records := makeRecords(t0, 121, time.Minute, 1000) // minutes 0..120

	rates := bucketRates(records, records[0].Timestamp, records[120].Timestamp)
	require.Len(t, rates, 12)

	total := 0.0
	for _, r := range rates {
		total += r * subWindow.Minutes()
	}
	assert.InDelta(t, 121000.0, total, 0.001)
}

// A record exactly on the midpoint belongs to the second half only.
func TestHalfRateBoundaryCountsOnce(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	records := makeRecords(t0, 121, time.Minute, 1000)
	first := records[0].Timestamp
	last := records[120].Timestamp
	mid := first.Add(last.Sub(first) / 2) // minute 60

	firstHalf := halfRate(records, first, mid)
	secondHalf := halfRate(records, mid, last.Add(time.Nanosecond))

	assert.InDelta(t, 60000.0/60.0, firstHalf, 0.001)
	assert.InDelta(t, 61000.0/60.0, secondHalf, 0.01)
}

func TestSizeBand(t *testing.T) {
	cases := map[int]string{
		0:     "small",
		500:   "small",
		501:   "medium",
		2500:  "medium",
		2501:  "large",
		10000: "large",
		10001: "xlarge",
	}
	for tokens, band := range cases {
		assert.Equal(t, band, SizeBand(tokens), "tokens=%d", tokens)
	}
}
