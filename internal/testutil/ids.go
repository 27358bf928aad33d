package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates ids "<prefix>00...01", "<prefix>00...02", ...
// padded so that, without a prefix, every id has the 32 hex digit shape of
// a real page or block id.
//
// This enables deterministic test execution and golden snapshot comparison.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator. prefix may be empty.
func NewSequentialIDs(prefix string) *SequentialIDs {
	return &SequentialIDs{prefix: prefix}
}

// NewID returns the next id. Implements model.IDGenerator.
func (g *SequentialIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	width := 32 - len(g.prefix)
	if width < 1 {
		width = 1
	}
	return fmt.Sprintf("%s%0*x", g.prefix, width, g.n)
}
