package features

// Category classifies a session's behavioral pattern. The enumeration
// is closed: adding a category means extending the rule table here.
type Category string

const (
	CategoryExploration  Category = "exploration"
	CategoryCoding       Category = "coding"
	CategoryDebugging    Category = "debugging"
	CategoryOptimization Category = "optimization"
	CategoryUnknown      Category = "unknown"
)

// Categories lists every category in rule order.
var Categories = []Category{
	CategoryExploration,
	CategoryCoding,
	CategoryDebugging,
	CategoryOptimization,
	CategoryUnknown,
}

// Thresholds are the classification policy constants. Variance and
// acceleration thresholds are ratios against the window's mean rate so
// the rules hold across very different absolute usage levels.
type Thresholds struct {
	HighVarianceRatio float64 // rate stddev / mean rate above this is bursty
	LowVarianceRatio  float64 // below this is steady
	AccelRatio        float64 // |acceleration| / mean rate above this is a trend
	DebugSizeSkew     float64 // upper-band message proportion marking heavy payloads
	ShortSessionMin   float64 // elapsed minutes below which a session is "young"
}

// DefaultThresholds returns the classification policy defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighVarianceRatio: 0.8,
		LowVarianceRatio:  0.35,
		AccelRatio:        0.25,
		DebugSizeSkew:     0.35,
		ShortSessionMin:   60,
	}
}

// Classify maps a feature vector to exactly one category. Rules are
// ordered and the first match wins; the final rule is a catch-all, so
// classification is total. An undefined vector is always unknown.
func Classify(v Vector, th Thresholds) Category {
	if !v.Defined || v.TokensPerMinute <= 0 {
		return CategoryUnknown
	}

	varianceRatio := v.RateVariance / v.TokensPerMinute
	accelRatio := v.RateAcceleration / v.TokensPerMinute

	switch {
	// Heavy payloads arriving in bursts: dumping logs and stack traces
	// back and forth.
	case v.SizeSkew >= th.DebugSizeSkew && varianceRatio >= th.HighVarianceRatio:
		return CategoryDebugging

	// Usage ramping up fast early in a session.
	case accelRatio >= th.AccelRatio && v.ElapsedMinutes < th.ShortSessionMin:
		return CategoryExploration

	// Declining rate after sustained activity, with the cache warm.
	case accelRatio <= -th.AccelRatio && v.ElapsedMinutes >= th.ShortSessionMin:
		return CategoryOptimization

	// Steady rate, low variance.
	case varianceRatio <= th.LowVarianceRatio && v.RateAcceleration >= -v.TokensPerMinute*th.AccelRatio:
		return CategoryCoding

	default:
		return CategoryUnknown
	}
}
