// Package window computes rate statistics over trailing time ranges of
// the usage record stream. Windows are derived views: recomputed on
// demand, never persisted.
package window

import (
	"fmt"
	"sort"
	"time"

	"github.com/penwyp/go-claude-predictor/internal/core/model"
)

// minDuration clamps the rate denominator. Windows shorter than this
// report zero rates instead of dividing toward infinity.
const minDuration = time.Second

// Stats holds the aggregate of all records falling within [Start, End).
type Stats struct {
	Start time.Time
	End   time.Time

	Count       int
	Tokens      model.TokenCounts
	TotalTokens int
	TotalCost   float64
	Duration    time.Duration

	TokensPerMinute   float64
	MessagesPerMinute float64
	CostPerMinute     float64
}

// Empty reports whether the window contains no records.
func (s Stats) Empty() bool {
	return s.Count == 0
}

// Aggregate computes Stats for the records in [start, end). The stream
// must be sorted by timestamp ascending; the range boundaries are
// located by binary search. An empty window is valid and yields zero
// rates. end before start is a hard failure.
func Aggregate(records []model.UsageRecord, start, end time.Time) (Stats, error) {
	if end.Before(start) {
		return Stats{}, fmt.Errorf("invalid window: end %s before start %s",
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	stats := Stats{
		Start:    start,
		End:      end,
		Duration: end.Sub(start),
	}

	lo := sort.Search(len(records), func(i int) bool {
		return !records[i].Timestamp.Before(start)
	})
	hi := sort.Search(len(records), func(i int) bool {
		return !records[i].Timestamp.Before(end)
	})

	for _, rec := range records[lo:hi] {
		stats.Count++
		stats.Tokens.Add(rec.Tokens)
		stats.TotalCost += rec.Cost
	}
	stats.TotalTokens = stats.Tokens.Total()

	if stats.Duration >= minDuration {
		minutes := stats.Duration.Minutes()
		stats.TokensPerMinute = float64(stats.TotalTokens) / minutes
		stats.MessagesPerMinute = float64(stats.Count) / minutes
		stats.CostPerMinute = stats.TotalCost / minutes
	}

	return stats, nil
}

// Trailing aggregates the window of the given length ending at anchor.
func Trailing(records []model.UsageRecord, anchor time.Time, length time.Duration) (Stats, error) {
	return Aggregate(records, anchor.Add(-length), anchor)
}

// Records returns the subsequence of the stream falling within
// [start, end). The returned slice aliases the input; callers must not
// mutate it.
func Records(records []model.UsageRecord, start, end time.Time) []model.UsageRecord {
	lo := sort.Search(len(records), func(i int) bool {
		return !records[i].Timestamp.Before(start)
	})
	hi := sort.Search(len(records), func(i int) bool {
		return !records[i].Timestamp.Before(end)
	})
	return records[lo:hi]
}

// Before returns the subsequence of the stream strictly preceding cutoff.
func Before(records []model.UsageRecord, cutoff time.Time) []model.UsageRecord {
	hi := sort.Search(len(records), func(i int) bool {
		return !records[i].Timestamp.Before(cutoff)
	})
	return records[:hi]
}
