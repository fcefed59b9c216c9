package window

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
			Model:     model.ModelSonnet4,
			Tokens:    model.TokenCounts{Input: tokensEach / 2, Output: tokensEach / 2},
			Cost:      0.01,
			SessionID: "session-1",
		}
	}
	return records
}

func TestAggregateRates(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	records := makeRecords(t0, 60, time.Minute, 1000)

	stats, err := Aggregate(records, t0, t0.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 60, stats.Count)
	assert.Equal(t, 60000, stats.TotalTokens)
	assert.InDelta(t, 1000.0, stats.TokensPerMinute, 0.001)
	assert.InDelta(t, 1.0, stats.MessagesPerMinute, 0.001)
	assert.InDelta(t, 0.6/60, stats.CostPerMinute, 0.0001)
}

func TestAggregateHalfOpenRange(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	records := makeRecords(t0, 10, time.Minute, 100)

	// A record exactly at the end boundary is excluded.
	stats, err := Aggregate(records, t0, t0.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Count)

	// A record exactly at the start boundary is included.
	stats, err = Aggregate(records, t0.Add(5*time.Minute), t0.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Count)
}

func TestAggregateEmptyWindow(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	records := makeRecords(t0, 10, time.Minute, 100)

	stats, err := Aggregate(records, t0.Add(-2*time.Hour), t0.Add(-time.Hour))
	require.NoError(t, err)

	assert.True(t, stats.Empty())
	assert.Zero(t, stats.TokensPerMinute)
	assert.Zero(t, stats.MessagesPerMinute)
	assert.Zero(t, stats.CostPerMinute)
}

func TestAggregateZeroDuration(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	records := makeRecords(t0, 10, time.Minute, 100)

	// A zero-length window is valid and yields zero rates, not infinity.
	stats, err := Aggregate(records, t0, t0)
	require.NoError(t, err)
	assert.Zero(t, stats.TokensPerMinute)
}

func TestAggregateInvalidWindow(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	_, err := Aggregate(nil, t0, t0.Add(-time.Minute))
	assert.Error(t, err)
}

func TestAggregateLinearity(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	records := makeRecords(t0, 120, time.Minute, 500)
	mid := t0.Add(time.Hour)
	end := t0.Add(2 * time.Hour)

	firstHalf, err := Aggregate(records, t0, mid)
	require.NoError(t, err)
	secondHalf, err := Aggregate(records, mid, end)
	require.NoError(t, err)
	union, err := Aggregate(records, t0, end)
	require.NoError(t, err)

	assert.Equal(t, union.Count, firstHalf.Count+secondHalf.Count)
	assert.Equal(t, union.TotalTokens, firstHalf.TotalTokens+secondHalf.TotalTokens)
	assert.InDelta(t, union.TotalCost, firstHalf.TotalCost+secondHalf.TotalCost, 1e-9)
}

func TestBefore(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	records := makeRecords(t0, 10, time.Minute, 100)

	prior := Before(records, t0.Add(5*time.Minute))
	assert.Len(t, prior, 5)

	// The cutoff instant itself is excluded.
	prior = Before(records, t0)
	assert.Empty(t, prior)
}
