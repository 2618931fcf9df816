// Package randutil builds reproducible random sources for shuffles and
// generated player input.
package randutil

import rand "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed. Equal seeds
// give equal shuffles and equal generated intents, which makes a session
// replayable from its seed alone.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(splitmix(u), splitmix(u+goldenRatio64)))
}

// Seed returns seed, or a fresh random seed when seed is zero
func Seed(seed int64) int64 {
	for seed == 0 {
		seed = rand.Int64()
	}
	return seed
}

// Derive returns the seed of the index-th game in a batch started from base.
// Derived seeds are spread across the whole int64 range and never zero, so
// any single game can be replayed by passing its seed back in.
func Derive(base int64, index int) int64 {
	seed := int64(splitmix(uint64(base) + uint64(index)*goldenRatio64))
	if seed == 0 {
		return 1
	}
	return seed
}

func splitmix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
