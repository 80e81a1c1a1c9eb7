package challenge

import "math/rand/v2"

// Rand is the randomness used by selection and generation. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// DefaultRand returns a Rand backed by the runtime's concurrency-safe global source.
func DefaultRand() Rand {
	return globalRand{}
}

func pick[T any](rnd Rand, items []T) T {
	return items[rnd.IntN(len(items))]
}
