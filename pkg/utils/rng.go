package utils

import (
	"math/rand"
)

// NewRand returns a deterministic source for the given seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// RandomIntRange returns a number in [start, end). end must be greater than
// start.
func RandomIntRange(rng *rand.Rand, start, end int) int {
	return start + rng.Intn(end-start)
}

// RandomIntSliceRange returns n numbers in [min, max).
func RandomIntSliceRange(rng *rand.Rand, min, max, n int) []int {
	res := make([]int, n)
	for i := 0; i < n; i++ {
		res[i] = RandomIntRange(rng, min, max)
	}

	return res
}
