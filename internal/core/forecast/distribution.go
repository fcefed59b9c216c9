package forecast

import "math"

// logNormal is a log-normal distribution parameterized by the mean and
// standard deviation of the underlying normal. Time-to-limit samples
// are right-skewed, which is why the fit happens in log space.
type logNormal struct {
	Mu    float64
	Sigma float64
}

// fitLogNormal estimates parameters from positive duration samples.
// Non-positive samples are ignored. With fewer than two usable samples
// sigma falls back to the given default so the distribution stays
// usable.
func fitLogNormal(samples []float64, fallbackSigma float64) (logNormal, int) {
	var logs []float64
	for _, s := range samples {
		if s > 0 {
			logs = append(logs, math.Log(s))
		}
	}
	n := len(logs)
	if n == 0 {
		return logNormal{}, 0
	}

	mean := 0.0
	for _, l := range logs {
		mean += l
	}
	mean /= float64(n)

	sigma := fallbackSigma
	if n > 1 {
		sum := 0.0
		for _, l := range logs {
			d := l - mean
			sum += d * d
		}
		sigma = math.Sqrt(sum / float64(n-1))
		if sigma <= 0 {
			sigma = fallbackSigma
		}
	}

	return logNormal{Mu: mean, Sigma: sigma}, n
}

// CDF returns P(X <= x).
func (d logNormal) CDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if d.Sigma <= 0 {
		if math.Log(x) >= d.Mu {
			return 1
		}
		return 0
	}
	z := (math.Log(x) - d.Mu) / (d.Sigma * math.Sqrt2)
	return 0.5 * (1 + math.Erf(z))
}

// Median returns exp(mu), the distribution's median.
func (d logNormal) Median() float64 {
	return math.Exp(d.Mu)
}

// Quantile returns the value below which the given probability mass
// falls, via the normal quantile in log space.
func (d logNormal) Quantile(p float64) float64 {
	return math.Exp(d.Mu + d.Sigma*normalQuantile(p))
}

// normalQuantile is the standard normal inverse CDF, computed by
// bisection over erf. Accuracy is far beyond what minute-granularity
// forecasts need.
func normalQuantile(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	if p >= 1 {
		return math.Inf(1)
	}
	lo, hi := -8.0, 8.0
	for i := 0; i < 80; i++ {
		mid := (lo + hi) / 2
		if 0.5*(1+math.Erf(mid/math.Sqrt2)) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
