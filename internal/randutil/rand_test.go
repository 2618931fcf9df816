package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	t.Parallel()

	a, b := New(42), New(42)
	for range 100 {
		assert.Equal(t, a.IntN(81), b.IntN(81))
	}
}

func TestNewDiffersBySeed(t *testing.T) {
	t.Parallel()

	a, b := New(1), New(2)
	same := 0
	for range 100 {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	assert.Less(t, same, 100)
}

func TestSeed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(7), Seed(7))
	assert.NotZero(t, Seed(0))
}

func TestDerive(t *testing.T) {
	t.Parallel()

	seen := make(map[int64]bool)
	for i := range 1000 {
		seed := Derive(42, i)
		assert.NotZero(t, seed)
		assert.False(t, seen[seed], "game %d repeats an earlier seed", i)
		seen[seed] = true
	}
	assert.Equal(t, Derive(42, 3), Derive(42, 3))
	assert.NotEqual(t, Derive(42, 0), Derive(43, 0))
}
