// Package rng provides the explicit random draw stream used for substrate
// perturbation. A Stream is seeded once and consumed as a single linear
// sequence; the order of draws is part of the reproducibility contract.
package rng

import "math/rand/v2"

// Stream is a deterministic source of random draws backed by math/rand/v2 PCG.
type Stream struct {
	r *rand.Rand
}

// New creates a deterministic Stream using the provided seed.
func New(seed int64) *Stream {
	return &Stream{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Float64 returns the next draw in [0, 1).
func (s *Stream) Float64() float64 {
	return s.r.Float64()
}

// Norm returns the next standard normal draw.
func (s *Stream) Norm() float64 {
	return s.r.NormFloat64()
}

// Source exposes the underlying rand.Rand for advanced use.
func (s *Stream) Source() *rand.Rand { return s.r }
