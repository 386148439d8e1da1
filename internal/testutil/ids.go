package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator generates predictable ids: "<prefix>-0001",
// "<prefix>-0002", ...
//
// This enables deterministic store tests and golden comparison of
// listings. If prefix is empty, "test" is used.
//
// Thread-safety: safe for concurrent use.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDGenerator creates a generator with the given prefix.
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	if prefix == "" {
		prefix = "test"
	}
	return &SequentialIDGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
