package limits

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
			SessionID: "session-1",
		}
	}
	return records
}

func TestExtractSnapshots(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	// 6 hours of activity, one record per minute.
	records := makeRecords(t0, 360, time.Minute, 1000)
	markers := []Marker{{Timestamp: t0.Add(6 * time.Hour), Kind: model.LimitKindUsage}}

	events, err := Extract(records, markers, 3*time.Hour, 5*time.Hour)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.False(t, ev.Partial)
	assert.Equal(t, model.LimitKindUsage, ev.Kind)
	// 5h window covers minutes 60..359: 300 records.
	assert.Equal(t, 300, ev.Long.Count)
	assert.Equal(t, 300000, ev.Long.TotalTokens)
	// 3h window covers minutes 180..359: 180 records.
	assert.Equal(t, 180, ev.Short.Count)
}

func TestExtractNoLookahead(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	records := makeRecords(t0, 360, time.Minute, 1000)

	// A marker placed exactly on a record timestamp must not count that
	// record: snapshots are built strictly from earlier records.
	markerAt := t0.Add(300 * time.Minute)
	events, err := Extract(records, []Marker{{Timestamp: markerAt, Kind: model.LimitKindUsage}}, 3*time.Hour, 5*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 300, events[0].Long.Count)
	for _, rec := range records[:events[0].Long.Count] {
		assert.True(t, rec.Timestamp.Before(markerAt))
	}
}

func TestExtractPartial(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	// Only 2 hours of history before the marker.
	records := makeRecords(t0, 120, time.Minute, 1000)
	markers := []Marker{{Timestamp: t0.Add(2 * time.Hour), Kind: model.LimitKindUsage}}

	events, err := Extract(records, markers, 3*time.Hour, 5*time.Hour)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.True(t, events[0].Partial)
	// Partial snapshots still aggregate whatever history exists.
	assert.Equal(t, 120, events[0].Long.Count)

	assert.Empty(t, Complete(events))
}

func TestExtractMarkerWithoutHistory(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	markers := []Marker{{Timestamp: t0, Kind: model.LimitKindRate}}

	events, err := Extract(nil, markers, 3*time.Hour, 5*time.Hour)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Partial)
	assert.True(t, events[0].Long.Empty())
}

func TestExtractRejectsUnsorted(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []model.UsageRecord{
		{Timestamp: t0.Add(time.Minute)},
		{Timestamp: t0},
	}
	_, err := Extract(records, nil, 3*time.Hour, 5*time.Hour)
	assert.Error(t, err)
}
