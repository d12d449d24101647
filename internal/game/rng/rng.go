// Package rng provides the injectable random source used by all combat
// calculations. Production code rolls against a crypto-backed Source;
// tests substitute deterministic sequences so every probabilistic branch
// (critical hits, escapes, status application, reward percentages) can be
// forced.
package rng

// Source produces random values for combat calculations.
// Implementations must be safe to share across calculations unless
// documented otherwise.
type Source interface {
	// Intn returns a uniform random int in [0, n). Panics if n <= 0.
	Intn(n int) int
	// Float64 returns a uniform random float64 in [0.0, 1.0).
	Float64() float64
}

// Chance performs one Bernoulli trial against probability p.
//
// Precondition: src must be non-nil.
// Postcondition: Returns true with probability clamp(p, 0, 1); p <= 0 always
// returns false and p >= 1 always returns true, with no draw consumed in
// either degenerate case.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Between returns a uniform random float64 in [lo, hi).
//
// Precondition: src must be non-nil; lo <= hi.
// Postcondition: Returns lo when lo == hi; otherwise a value in [lo, hi).
func Between(src Source, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + src.Float64()*(hi-lo)
}
