// Package limits reconstructs the usage state preceding historical
// limit-hit events. The raw limit markers come from the log parsing
// layer; this package's job is building the look-back window snapshots
// behind each one.
package limits

import (
	"time"

	"github.com/penwyp/go-claude-predictor/internal/core/model"
	"github.com/penwyp/go-claude-predictor/internal/core/window"
	"github.com/penwyp/go-claude-predictor/internal/util"
)

// Marker is a raw limit-hit signal supplied by the parsing layer.
type Marker struct {
	Timestamp time.Time
	Kind      string // model.LimitKindRate or model.LimitKindUsage
}

// Event is a limit hit together with snapshots of the usage observed in
// the windows immediately preceding it. Snapshots are built strictly
// from records before the event timestamp.
type Event struct {
	Timestamp time.Time
	Kind      string

	// Short and Long are the look-back snapshots ending exactly at the
	// event (3h and 5h by default).
	Short window.Stats
	Long  window.Stats

	// Partial marks events with less prior history than the long
	// look-back. Partial snapshots are kept for inspection but excluded
	// from threshold statistics.
	Partial bool
}

// Extract builds an Event for every marker. Markers whose timestamp has
// no preceding records still produce an event, flagged partial with
// empty snapshots. The record stream must be sorted.
func Extract(records []model.UsageRecord, markers []Marker, short, long time.Duration) ([]Event, error) {
	if err := model.EnsureSorted(records); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(markers))
	for _, m := range markers {
		// The snapshot window ends at the marker; Aggregate's
		// half-open range already excludes the event instant itself.
		shortStats, err := window.Trailing(records, m.Timestamp, short)
		if err != nil {
			return nil, err
		}
		longStats, err := window.Trailing(records, m.Timestamp, long)
		if err != nil {
			return nil, err
		}

		ev := Event{
			Timestamp: m.Timestamp,
			Kind:      m.Kind,
			Short:     shortStats,
			Long:      longStats,
			Partial:   isPartial(records, m.Timestamp, long),
		}
		if ev.Partial {
			util.LogDebugf("limit event at %s has under %s of prior history, flagged partial",
				m.Timestamp.Format(time.RFC3339), long)
		}
		events = append(events, ev)
	}

	util.LogDebugf("extracted %d limit events (%d partial) from %d markers",
		len(events), countPartial(events), len(markers))
	return events, nil
}

// Complete returns only the events whose long snapshot covers the full
// look-back, i.e. the ones usable for threshold statistics.
func Complete(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		if !ev.Partial {
			out = append(out, ev)
		}
	}
	return out
}

// isPartial reports whether less than the long look-back of history
// exists before the event.
func isPartial(records []model.UsageRecord, at time.Time, long time.Duration) bool {
	prior := window.Before(records, at)
	if len(prior) == 0 {
		return true
	}
	return prior[0].Timestamp.After(at.Add(-long))
}

func countPartial(events []Event) int {
	n := 0
	for _, ev := range events {
		if ev.Partial {
			n++
		}
	}
	return n
}
