// Package randx provides a seedable random source and the named
// distribution draws used by the dataset generators. Every probabilistic
// branch in the generators goes through one of these functions so the
// distributional contract stays reviewable and testable in one place.
package randx

import (
	"math"
	"math/rand"
	"time"
)

// NewSeeded creates a seeded random number generator. A seed of 0 selects a
// time-based seed; runs with a nonzero seed are fully reproducible.
func NewSeeded(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Bernoulli reports a single success draw with probability p.
func Bernoulli(r *rand.Rand, p float64) bool {
	return r.Float64() < p
}

// UniformInt returns an integer uniformly drawn from [lo, hi).
// When hi <= lo it returns lo.
func UniformInt(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo)
}

// UniformFloat returns a float uniformly drawn from [lo, hi).
func UniformFloat(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// Exponential returns a draw from an exponential distribution with the
// given mean.
func Exponential(r *rand.Rand, mean float64) float64 {
	return r.ExpFloat64() * mean
}

// Poisson returns a draw from a Poisson distribution with the given mean,
// using Knuth's multiplication method. Adequate for the small means used
// here; a mean <= 0 yields 0.
func Poisson(r *rand.Rand, mean float64) int {
	if mean <= 0 {
		return 0
	}
	l := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		p *= r.Float64()
		if p <= l {
			return k
		}
		k++
	}
}

// WeightedIndex returns an index drawn from the discrete distribution given
// by weights. Weights must be non-negative; they need not sum to one.
// An all-zero weight slice returns the last index.
func WeightedIndex(r *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	x := r.Float64() * total
	for i, w := range weights {
		x -= w
		if x < 0 {
			return i
		}
	}
	return len(weights) - 1
}
