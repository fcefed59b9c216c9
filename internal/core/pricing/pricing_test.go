package pricing

import (
	"testing"

	"github.com/penwyp/go-claude-predictor/internal/core/model"
	"github.com/stretchr/testify/assert"
)

func TestGetPricingExactMatch(t *testing.T) {
	p := GetPricing(model.ModelOpus4)
	assert.Equal(t, 15.00, p.Input)
	assert.Equal(t, 75.00, p.Output)
	assert.Equal(t, 18.75, p.CacheCreation)
	assert.Equal(t, 1.50, p.CacheRead)
}

func TestGetPricingFamilyFallback(t *testing.T) {
	assert.Equal(t, 75.00, GetPricing("claude-opus-4-1-20250805").Output)
	assert.Equal(t, 4.00, GetPricing("claude-haiku-9-future").Output)
	assert.Equal(t, 15.00, GetPricing("Claude-Sonnet-5").Output)
}

func TestGetPricingUnknownModel(t *testing.T) {
	// Unknown names bill at the default (sonnet-level) rates.
	p := GetPricing("some-new-model")
	assert.Equal(t, 3.00, p.Input)
	assert.Equal(t, 15.00, p.Output)
}

func TestCost(t *testing.T) {
	p := GetPricing(model.ModelSonnet4)
	tokens := model.TokenCounts{
		Input:         1_000_000,
		Output:        200_000,
		CacheCreation: 400_000,
		CacheRead:     2_000_000,
	}

	// 3.00 + 3.00 + 1.50 + 0.60
	assert.InDelta(t, 8.10, p.Cost(tokens), 1e-9)
	assert.Equal(t, 0.0, p.Cost(model.TokenCounts{}))
}

func TestCostWithoutCache(t *testing.T) {
	p := GetPricing(model.ModelSonnet4)
	tokens := model.TokenCounts{
		Input:         1_000_000,
		Output:        200_000,
		CacheCreation: 400_000,
		CacheRead:     2_000_000,
	}

	// All cache tokens rebilled at the input rate: (1M+2.4M)*3/M + 3.00
	without := p.CostWithoutCache(tokens)
	assert.InDelta(t, 13.20, without, 1e-9)

	// Cached reads are cheaper than raw input, so the hypothetical
	// uncached cost always dominates.
	assert.Greater(t, without, p.Cost(tokens))
}
