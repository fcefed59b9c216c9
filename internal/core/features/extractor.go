// Package features derives behavioral feature vectors from usage
// windows and classifies them into session context categories.
package features

import (
	"math"
	"time"

	"github.com/penwyp/go-claude-predictor/internal/core/model"
	"github.com/penwyp/go-claude-predictor/internal/core/window"
)

// Message size bands in total tokens.
const (
	BandSmallMax  = 500
	BandMediumMax = 2500
	BandLargeMax  = 10000
)

// subWindow is the bucket length used for rate variance sampling.
const subWindow = 10 * time.Minute

// Vector is the fixed-shape behavioral feature tuple for one window.
// All components are finite; an empty window yields the zero vector
// with Defined false.
type Vector struct {
	TokensPerMinute   float64
	MessagesPerMinute float64
	CostPerMinute     float64

	// RateVariance is the standard deviation of per-bucket token rates
	// inside the window.
	RateVariance float64

	// RateAcceleration is the second-half rate minus the first-half
	// rate: positive when usage is speeding up.
	RateAcceleration float64

	// CacheTrend is the change in cache hit rate between the window
	// halves: positive when cache efficiency is improving.
	CacheTrend float64

	// SizeSkew is the proportion of messages in the large and xlarge
	// bands.
	SizeSkew float64

	AvgMessageTokens float64
	CacheHitRate     float64
	HourOfDay        int
	ElapsedMinutes   float64

	// Defined is false for a window with zero records; such vectors
	// classify as unknown and predictions built on them degrade to
	// low confidence.
	Defined bool
}

// Extract computes the feature vector for the records in [start, end).
// A single-record window produces a degenerate vector with zero
// variance rather than failing.
func Extract(records []model.UsageRecord, start, end time.Time) Vector {
	span := window.Records(records, start, end)
	if len(span) == 0 {
		return Vector{}
	}

	first := span[0].Timestamp
	last := span[len(span)-1].Timestamp
	elapsed := last.Sub(first).Minutes()
	if elapsed < 1 {
		elapsed = 1
	}

	v := Vector{
		Defined:        true,
		HourOfDay:      last.UTC().Hour(),
		ElapsedMinutes: elapsed,
	}

	totalTokens := 0
	totalCost := 0.0
	upperBand := 0
	for _, rec := range span {
		t := rec.TotalTokens()
		totalTokens += t
		totalCost += rec.Cost
		if t > BandMediumMax {
			upperBand++
		}
	}
	v.TokensPerMinute = float64(totalTokens) / elapsed
	v.MessagesPerMinute = float64(len(span)) / elapsed
	v.CostPerMinute = totalCost / elapsed
	v.AvgMessageTokens = float64(totalTokens) / float64(len(span))
	v.SizeSkew = float64(upperBand) / float64(len(span))
	v.CacheHitRate = cacheHitRate(span)

	rates := bucketRates(span, first, last)
	v.RateVariance = stddev(rates)

	// The halves are half-open at mid, so a record sitting exactly on
	// the midpoint counts only toward the second half. The second half
	// keeps the final record.
	mid := first.Add(last.Sub(first) / 2)
	v.RateAcceleration = halfRate(span, mid, last.Add(time.Nanosecond)) - halfRate(span, first, mid)
	v.CacheTrend = cacheHitRate(window.Records(span, mid, last.Add(time.Nanosecond))) -
		cacheHitRate(window.Records(span, first, mid))

	return v
}

// SizeBand returns the band name for a message of the given token size.
func SizeBand(tokens int) string {
	switch {
	case tokens <= BandSmallMax:
		return "small"
	case tokens <= BandMediumMax:
		return "medium"
	case tokens <= BandLargeMax:
		return "large"
	default:
		return "xlarge"
	}
}

// bucketRates samples tokens-per-minute over fixed sub-window buckets
// spanning the records. Buckets are half-open so a record on a bucket
// boundary counts exactly once; only the final bucket includes its end,
// to keep the last record.
func bucketRates(span []model.UsageRecord, first, last time.Time) []float64 {
	if len(span) < 2 {
		return nil
	}
	var rates []float64
	for cursor := first; cursor.Before(last); cursor = cursor.Add(subWindow) {
		bucketEnd := cursor.Add(subWindow)
		endExclusive := bucketEnd
		if !bucketEnd.Before(last) {
			bucketEnd = last
			endExclusive = last.Add(time.Nanosecond)
		}
		minutes := bucketEnd.Sub(cursor).Minutes()
		if minutes <= 0 {
			break
		}
		tokens := 0
		for _, rec := range window.Records(span, cursor, endExclusive) {
			tokens += rec.TotalTokens()
		}
		rates = append(rates, float64(tokens)/minutes)
	}
	return rates
}

// halfRate computes the token rate over [start, end) of the window.
func halfRate(span []model.UsageRecord, start, end time.Time) float64 {
	minutes := end.Sub(start).Minutes()
	if minutes <= 0 {
		return 0
	}
	tokens := 0
	for _, rec := range window.Records(span, start, end) {
		tokens += rec.TotalTokens()
	}
	return float64(tokens) / minutes
}

func cacheHitRate(span []model.UsageRecord) float64 {
	inputLike := 0
	cacheReads := 0
	for _, rec := range span {
		inputLike += rec.Tokens.Input + rec.Tokens.CacheCreation + rec.Tokens.CacheRead
		cacheReads += rec.Tokens.CacheRead
	}
	if inputLike == 0 {
		return 0
	}
	return float64(cacheReads) / float64(inputLike)
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
