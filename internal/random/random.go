package random

import "math/rand/v2"

// Provider is the source of randomness for the engine and simulator.
type Provider interface {
	// Random returns a value in [0,1).
	Random() float64

	// RandomInt returns a value in [0,max). It returns 0 when max <= 0.
	RandomInt(max int) int
}

const (
	lcgMultiplier uint64 = 1664525
	lcgIncrement  uint64 = 1013904223
	lcgModulus    uint64 = 1 << 32
)

// Seeded is the reproducible linear-congruential provider.
//
// Seeded is not safe for concurrent use. Each simulated game owns its own.
type Seeded struct {
	state uint32
}

// NewSeeded creates a provider from seed. Seeds outside the uint32 range
// wrap modulo 2^32.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{state: uint32(seed)}
}

// Random advances the recurrence once and returns state / 2^32.
func (s *Seeded) Random() float64 {
	next := (uint64(s.state)*lcgMultiplier + lcgIncrement) % lcgModulus
	s.state = uint32(next)
	return float64(s.state) / float64(lcgModulus)
}

// RandomInt returns floor(Random() * max).
func (s *Seeded) RandomInt(max int) int {
	return randomInt(s, max)
}

// State returns the current generator state.
func (s *Seeded) State() uint32 {
	return s.state
}

// Default draws from math/rand/v2 and is not reproducible.
type Default struct{}

// Random returns a value in [0,1).
func (Default) Random() float64 {
	return rand.Float64()
}

// RandomInt returns a value in [0,max).
func (d Default) RandomInt(max int) int {
	return randomInt(d, max)
}

func randomInt(p Provider, max int) int {
	if max <= 0 {
		return 0
	}
	n := int(p.Random() * float64(max))
	if n >= max {
		n = max - 1
	}
	return n
}

// Pick returns a uniformly chosen element of items, or false when items
// is empty.
func Pick[T any](p Provider, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[p.RandomInt(len(items))], true
}

// Shuffle returns a Fisher–Yates shuffled copy of items. The input is not
// modified.
func Shuffle[T any](p Provider, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := p.RandomInt(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// PartialShuffle draws k elements uniformly without replacement, running
// only the first k steps of a forward Fisher–Yates pass. When k exceeds
// len(items) every element is returned.
func PartialShuffle[T any](p Provider, items []T, k int) []T {
	out := make([]T, len(items))
	copy(out, items)
	if k > len(out) {
		k = len(out)
	}
	if k < 0 {
		k = 0
	}
	for i := 0; i < k; i++ {
		j := i + p.RandomInt(len(out)-i)
		out[i], out[j] = out[j], out[i]
	}
	return out[:k]
}
