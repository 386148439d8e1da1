package testutil

import "sync"

// ScriptedRandom replays a fixed list of values from Random.
//
// Once the script is exhausted it keeps returning the last value (or 0
// for an empty script). Reset rewinds for test reuse.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ScriptedRandom struct {
	mu     sync.Mutex
	values []float64
	pos    int
}

// NewScriptedRandom creates a provider returning values in order.
func NewScriptedRandom(values ...float64) *ScriptedRandom {
	return &ScriptedRandom{values: values}
}

// Random returns the next scripted value.
func (r *ScriptedRandom) Random() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return 0
	}
	if r.pos >= len(r.values) {
		return r.values[len(r.values)-1]
	}
	v := r.values[r.pos]
	r.pos++
	return v
}

// RandomInt scales the next scripted value to [0, max).
func (r *ScriptedRandom) RandomInt(max int) int {
	if max <= 0 {
		return 0
	}
	n := int(r.Random() * float64(max))
	if n >= max {
		n = max - 1
	}
	return n
}

// Draws returns how many scripted values have been consumed.
func (r *ScriptedRandom) Draws() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pos
}

// Reset rewinds to the first value.
func (r *ScriptedRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pos = 0
}
