package analyzer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/penwyp/go-claude-predictor/internal/core/limits"
	"github.com/penwyp/go-claude-predictor/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMetrics(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []model.UsageRecord{
		{
			Timestamp: t0,
			Model:     model.ModelSonnet4,
			Tokens:    model.TokenCounts{Input: 1000, Output: 500, CacheRead: 3000},
			Cost:      0.0114,
			SessionID: "a",
		},
		{
			Timestamp: t0.Add(30 * time.Minute),
			Model:     model.ModelOpus4,
			Tokens:    model.TokenCounts{Input: 2000, Output: 1000},
			Cost:      0.105,
			SessionID: "b",
		},
	}

	snap := &Snapshot{
		Records:  records,
		Sessions: model.BuildSessions(records),
		Events: []limits.Event{
			{Timestamp: t0.Add(time.Hour), Partial: false},
			{Timestamp: t0.Add(2 * time.Hour), Partial: true},
		},
	}

	m := ComputeMetrics(snap)

	assert.Equal(t, 2, m.MessageCount)
	assert.Equal(t, 2, m.SessionCount)
	assert.Equal(t, 7500, m.TotalTokens)
	assert.InDelta(t, 0.1164, m.TotalCost, 1e-9)
	assert.InDelta(t, 0.5, m.CacheHitRate, 1e-9) // 3000 of 6000 input-like
	assert.Greater(t, m.CacheSavings, 0.0)

	assert.Equal(t, 2, m.LimitHits)
	assert.Equal(t, 1, m.PartialSnapshots)
	assert.Equal(t, 1, m.CompleteEvents())

	require.Contains(t, m.ModelDistribution, model.ModelOpus4)
	assert.Equal(t, 3000, m.ModelDistribution[model.ModelOpus4].Tokens)
	assert.Equal(t, 1, m.ModelDistribution[model.ModelOpus4].Count)

	assert.Equal(t, t0, m.FirstRecord)
	assert.Equal(t, t0.Add(30*time.Minute), m.LastRecord)
}

func TestComputeMetricsEmpty(t *testing.T) {
	m := ComputeMetrics(&Snapshot{})
	assert.Equal(t, 0, m.TotalTokens)
	assert.Equal(t, 0.0, m.CostPerMessage)
	assert.True(t, m.FirstRecord.IsZero())
}

func TestLoadEndToEnd(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "-home-user-demo")
	require.NoError(t, os.MkdirAll(project, 0o755))

	content := `{"type":"assistant","timestamp":"2025-06-01T10:00:00Z","sessionId":"s1","uuid":"u1","message":{"role":"assistant","model":"claude-sonnet-4-20250514","usage":{"input_tokens":100,"output_tokens":50,"cache_creation_input_tokens":0,"cache_read_input_tokens":0}}}
{"type":"assistant","timestamp":"2025-06-01T10:05:00Z","sessionId":"s1","uuid":"u2","message":{"role":"assistant","model":"claude-sonnet-4-20250514","usage":{"input_tokens":200,"output_tokens":80,"cache_creation_input_tokens":0,"cache_read_input_tokens":0}}}
{"type":"system","timestamp":"2025-06-01T10:10:00Z","sessionId":"s1","uuid":"u3","content":"You've reached your usage limit."}
`
	require.NoError(t, os.WriteFile(filepath.Join(project, "s1.jsonl"), []byte(content), 0o644))

	a := New(&Config{DataDir: dir})
	snap, err := a.Load()
	require.NoError(t, err)

	assert.Len(t, snap.Records, 2)
	assert.Len(t, snap.Sessions, 1)
	require.Len(t, snap.Events, 1)
	// A ten-minute-old stream cannot fill the long look-back.
	assert.True(t, snap.Events[0].Partial)
	assert.Equal(t, 0, snap.History.Samples)

	pred, err := a.PredictLegacy(snap)
	require.NoError(t, err)
	assert.True(t, pred.LowConfidence)
}

func TestLoadEmptyDirectory(t *testing.T) {
	a := New(&Config{DataDir: t.TempDir()})
	_, err := a.Load()
	assert.Error(t, err)
}
