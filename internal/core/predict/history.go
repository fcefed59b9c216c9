package predict

import (
	"sort"

	"github.com/penwyp/go-claude-predictor/internal/core/limits"
)

// History is the pre-limit pattern statistics derived from historical
// limit events. It is computed once per invocation from the full event
// set and threaded through the predictors; there is no hidden cache.
type History struct {
	// Events holds every extracted event, partial ones included.
	Events []limits.Event

	// Samples is the number of complete (non-partial) events backing
	// the thresholds below.
	Samples int

	// Median cumulative usage observed in the long pre-limit snapshots.
	TokenThreshold   float64
	MessageThreshold float64
	CostThreshold    float64

	// Mean token rate observed across the long pre-limit snapshots.
	AvgRateBeforeLimit float64
}

// BuildHistory derives pattern statistics from the extracted limit
// events. Partial events are excluded from every statistic. With zero
// complete events the thresholds stay zero and Samples reports 0; the
// predictors treat that as the insufficient-history degraded state.
func BuildHistory(events []limits.Event) History {
	hist := History{Events: events}

	complete := limits.Complete(events)
	hist.Samples = len(complete)
	if hist.Samples == 0 {
		return hist
	}

	tokens := make([]float64, 0, len(complete))
	messages := make([]float64, 0, len(complete))
	costs := make([]float64, 0, len(complete))
	rateSum := 0.0
	for _, ev := range complete {
		tokens = append(tokens, float64(ev.Long.TotalTokens))
		messages = append(messages, float64(ev.Long.Count))
		costs = append(costs, ev.Long.TotalCost)
		rateSum += ev.Long.TokensPerMinute
	}

	// Median resists the outlier sessions that blow past a limit in a
	// burst or crawl into one over many hours.
	hist.TokenThreshold = median(tokens)
	hist.MessageThreshold = median(messages)
	hist.CostThreshold = median(costs)
	hist.AvgRateBeforeLimit = rateSum / float64(hist.Samples)

	return hist
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
