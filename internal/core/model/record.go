package model

import (
	"fmt"
	"time"
)

// TokenCounts breaks a usage record's tokens down by kind.
type TokenCounts struct {
	Input         int `json:"inputTokens"`
	Output        int `json:"outputTokens"`
	CacheCreation int `json:"cacheCreation"`
	CacheRead     int `json:"cacheRead"`
}

// Total returns the sum of all token kinds.
func (t TokenCounts) Total() int {
	return t.Input + t.Output + t.CacheCreation + t.CacheRead
}

// Add accumulates another set of counts into this one.
func (t *TokenCounts) Add(other TokenCounts) {
	t.Input += other.Input
	t.Output += other.Output
	t.CacheCreation += other.CacheCreation
	t.CacheRead += other.CacheRead
}

// UsageRecord is a single costed usage event from a conversation log.
// Records are immutable once built and the engine requires them sorted
// by timestamp ascending.
type UsageRecord struct {
	Timestamp time.Time   `json:"timestamp"`
	Model     string      `json:"model"`
	Tokens    TokenCounts `json:"tokens"`
	Cost      float64     `json:"cost"`
	SessionID string      `json:"sessionId"`
	ProjectID string      `json:"projectId"`
}

// TotalTokens returns the record's token total across all kinds.
func (r UsageRecord) TotalTokens() int {
	return r.Tokens.Total()
}

// EnsureSorted verifies the stream is ordered by timestamp ascending.
// Every windowing operation depends on this invariant, so an unsorted
// stream is a hard failure rather than something to silently repair.
func EnsureSorted(records []UsageRecord) error {
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Before(records[i-1].Timestamp) {
			return fmt.Errorf("record stream not sorted by timestamp: record %d (%s) precedes record %d (%s)",
				i, records[i].Timestamp.Format(time.RFC3339),
				i-1, records[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// LatestTimestamp returns the timestamp of the last record, or the zero
// time for an empty stream.
func LatestTimestamp(records []UsageRecord) time.Time {
	if len(records) == 0 {
		return time.Time{}
	}
	return records[len(records)-1].Timestamp
}
