package simulator

import "math/rand"

// Rand is the outcome source for turnout, scheduling jitter and campaign metrics.
// *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// NewRand returns a seeded source.
func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

// between returns a value in [lo, hi].
func between(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}
