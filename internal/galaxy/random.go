package galaxy

import (
	"time"

	"golang.org/x/exp/rand"
)

// RandomSource supplies uniform samples in [0,1).
type RandomSource interface {
	Float64() float64
}

// NewSeededSource returns a reproducible source.
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// NewSource returns a source seeded from the clock, for visual use.
func NewSource() RandomSource {
	return rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
}
