package pricing

import (
	"strings"

	"github.com/penwyp/go-claude-predictor/internal/core/model"
)

// ModelPricing defines token pricing for different Claude models
type ModelPricing struct {
	Input         float64 // Per million tokens
	Output        float64 // Per million tokens
	CacheCreation float64 // Per million tokens
	CacheRead     float64 // Per million tokens
}

// modelPricingMap stores pricing for all Claude models
var modelPricingMap = map[string]ModelPricing{
	model.ModelDefault: {
		Input:         3.00,
		Output:        15.00,
		CacheCreation: 3.75,
		CacheRead:     0.30,
	},
	model.ModelSonnet35: {
		Input:         3.00,
		Output:        15.00,
		CacheCreation: 3.75,
		CacheRead:     0.30,
	},
	model.ModelHaiku35: {
		Input:         0.80,
		Output:        4.00,
		CacheCreation: 1.00,
		CacheRead:     0.08,
	},
	model.ModelSonnet4: {
		Input:         3.00,
		Output:        15.00,
		CacheCreation: 3.75,
		CacheRead:     0.30,
	},
	model.ModelOpus4: {
		Input:         15.00,
		Output:        75.00,
		CacheCreation: 18.75,
		CacheRead:     1.50,
	},
}

// GetPricing returns pricing for the given model name, falling back to
// family-level matching and then to the default pricing.
func GetPricing(modelName string) ModelPricing {
	if pricing, ok := modelPricingMap[modelName]; ok {
		return pricing
	}

	lower := strings.ToLower(modelName)
	switch {
	case strings.Contains(lower, "opus"):
		return modelPricingMap[model.ModelOpus4]
	case strings.Contains(lower, "haiku"):
		return modelPricingMap[model.ModelHaiku35]
	case strings.Contains(lower, "sonnet"):
		return modelPricingMap[model.ModelSonnet4]
	default:
		return modelPricingMap[model.ModelDefault]
	}
}

// Cost computes the dollar cost of the given token counts under this
// pricing.
func (p ModelPricing) Cost(tokens model.TokenCounts) float64 {
	const million = 1_000_000
	return float64(tokens.Input)/million*p.Input +
		float64(tokens.Output)/million*p.Output +
		float64(tokens.CacheCreation)/million*p.CacheCreation +
		float64(tokens.CacheRead)/million*p.CacheRead
}

// CostWithoutCache computes what the same tokens would cost if every
// cached token had been billed at the input rate. Used for cache
// savings reporting.
func (p ModelPricing) CostWithoutCache(tokens model.TokenCounts) float64 {
	const million = 1_000_000
	cacheAsInput := tokens.CacheCreation + tokens.CacheRead
	return float64(tokens.Input+cacheAsInput)/million*p.Input +
		float64(tokens.Output)/million*p.Output
}
