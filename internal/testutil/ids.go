package testutil

import "sync"

// FixedIDGenerator returns the same run id every time.
//
// The same collection with the same FixedIDGenerator produces byte-identical
// transcripts.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator for id. If id is empty, Generate
// returns "test-run-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed id.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}

// SequenceIDGenerator returns predetermined ids in order.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewSequenceIDGenerator creates a generator that returns ids in order.
//
//	gen := NewSequenceIDGenerator("run-1", "run-2")
//	gen.Generate() // "run-1"
//	gen.Generate() // "run-2"
//	gen.Generate() // panic: all ids exhausted
func NewSequenceIDGenerator(ids ...string) *SequenceIDGenerator {
	return &SequenceIDGenerator{ids: ids}
}

// Generate returns the next id. It panics once the ids are exhausted so a
// test that mints more runs than expected fails loudly.
func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("SequenceIDGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
